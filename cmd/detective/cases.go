package main

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/myrjola/detectivequest/internal/casefile"
	"github.com/myrjola/detectivequest/internal/errors"
	"github.com/myrjola/detectivequest/internal/repositories"
	"github.com/myrjola/detectivequest/internal/sqlite"
	"github.com/spf13/cobra"
)

var libraryGroup = &cobra.Group{
	ID:    "library",
	Title: "Case library",
}

// withLibrary opens the case library for the duration of fn.
func (app *application) withLibrary(ctx context.Context, fn func(library *repositories.CaseRepository) error) error {
	db, err := sqlite.NewDatabase(ctx, app.cfg.SQLiteURL, app.logger)
	if err != nil {
		return errors.Wrap(err, "open case library")
	}
	defer func() {
		if err = db.Close(ctx); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to close case library", errors.SlogError(err))
		}
	}()
	return fn(repositories.NewCaseRepository(db, app.logger))
}

func (app *application) casesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cases",
		GroupID: libraryGroup.ID,
		Short:   "Manage the case library",
		Long: `Manage the case library.

Imported case files are kept in the SQLite database given by --sqlite-url or DETECTIVE_SQLITE_URL
and can be played with "detective play --case <id>".`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "import <file>...",
			Short: "Validate case files and add them to the library",
			Long:  `Validates the case files and stores them in the library. A case with the same id is replaced.`,
			Args:  cobra.MinimumNArgs(1),
			RunE:  app.importCases,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the cases in the library",
			Args:  cobra.NoArgs,
			RunE:  app.listCases,
		},
		&cobra.Command{
			Use:   "show [id]",
			Short: "Print a case as YAML",
			Long:  `Prints a case of the library as YAML. Without an id the built-in case is printed.`,
			Args:  cobra.MaximumNArgs(1),
			RunE:  app.showCase,
		},
		&cobra.Command{
			Use:   "verify",
			Short: "Check that every stored case still loads",
			Long: `Reads every case of the library back and validates it. Run it after upgrading the game
to find cases that the new version rejects.`,
			Args: cobra.NoArgs,
			RunE: app.verifyCases,
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Remove a case from the library",
			Args:  cobra.ExactArgs(1),
			RunE:  app.deleteCase,
		},
	)
	return cmd
}

func (app *application) importCases(cmd *cobra.Command, paths []string) error {
	ctx := cmd.Context()
	cases := make([]*casefile.Case, 0, len(paths))
	// Every file is validated before anything is stored.
	for _, path := range paths {
		c, err := casefile.LoadFile(path)
		if err != nil {
			return errors.Wrap(err, "import case")
		}
		cases = append(cases, c)
	}
	return app.withLibrary(ctx, func(library *repositories.CaseRepository) error {
		for _, c := range cases {
			if err := library.Save(ctx, c); err != nil {
				return errors.Wrap(err, "import case")
			}
			cmd.Printf("Imported %q (%s)\n", c.ID, c.Title)
			for _, name := range c.Unconvictable() {
				cmd.Printf("Warning: %s can never be convicted\n", name)
			}
		}
		return nil
	})
}

func (app *application) listCases(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	return app.withLibrary(ctx, func(library *repositories.CaseRepository) error {
		summaries, err := library.List(ctx)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			cmd.Println("The case library is empty.")
			return nil
		}

		r := lipgloss.NewRenderer(cmd.OutOrStdout())
		headerStyle := r.NewStyle().Bold(!app.cfg.NoColor).Padding(0, 1)
		cellStyle := r.NewStyle().Padding(0, 1)
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "TITLE", "ROOMS", "SUSPECTS").
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		for _, s := range summaries {
			t.Row(s.ID, s.Title, strconv.Itoa(s.Rooms), strconv.Itoa(s.Suspects))
		}
		cmd.Println(t.Render())
		return nil
	})
}

func (app *application) showCase(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c := casefile.Default()
	if len(args) == 1 {
		err := app.withLibrary(ctx, func(library *repositories.CaseRepository) error {
			var err error
			c, err = library.Get(ctx, args[0])
			return err
		})
		if err != nil {
			return errors.Wrap(err, "show case")
		}
	}
	data, err := c.Marshal()
	if err != nil {
		return errors.Wrap(err, "show case")
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

var errInvalidCases = errors.NewSentinel("library holds invalid cases")

func (app *application) verifyCases(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	start := time.Now()
	return app.withLibrary(ctx, func(library *repositories.CaseRepository) error {
		summaries, err := library.List(ctx)
		if err != nil {
			return err
		}
		invalid := 0
		for _, s := range summaries {
			c, err := library.Get(ctx, s.ID)
			if err != nil {
				invalid++
				app.logger.LogAttrs(ctx, slog.LevelError, "invalid case", errors.SlogError(err))
				cmd.Printf("%s: %v\n", s.ID, err)
				continue
			}
			if names := c.Unconvictable(); len(names) > 0 {
				cmd.Printf("%s: ok, %s can never be convicted\n", s.ID, strings.Join(names, ", "))
				continue
			}
			cmd.Printf("%s: ok\n", s.ID)
		}
		app.logger.LogAttrs(ctx, slog.LevelInfo, "verified case library",
			slog.Int("cases", len(summaries)), slog.Int("invalid", invalid),
			slog.Duration("duration", time.Since(start)))
		if invalid > 0 {
			return errors.Wrap(errInvalidCases, "verify cases", slog.Int("invalid", invalid))
		}
		return nil
	})
}

func (app *application) deleteCase(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return app.withLibrary(ctx, func(library *repositories.CaseRepository) error {
		if err := library.Delete(ctx, args[0]); err != nil {
			return errors.Wrap(err, "delete case")
		}
		cmd.Printf("Deleted %q\n", args[0])
		return nil
	})
}
