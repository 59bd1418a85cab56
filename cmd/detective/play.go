package main

import (
	"context"
	"log/slog"

	"github.com/myrjola/detectivequest/internal/casefile"
	"github.com/myrjola/detectivequest/internal/console"
	"github.com/myrjola/detectivequest/internal/errors"
	"github.com/myrjola/detectivequest/internal/investigation"
	"github.com/myrjola/detectivequest/internal/repositories"
	"github.com/spf13/cobra"
)

var gameGroup = &cobra.Group{
	ID:    "game",
	Title: "Game",
}

func (app *application) playCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "play",
		GroupID: gameGroup.ID,
		Short:   "Investigate a case",
		Long: `Investigate a case interactively.

Move with l (left), r (right) and q (leave), or type the word: left, right, quit, exit or leave.
The Portuguese keys e, d and s and the words esquerda, direita and sair work too. Ctrl-C stops the game.
The built-in Almeida manor is played unless a case file or a case from the library is chosen.`,
		Args: cobra.NoArgs,
		RunE: app.play,
	}
	app.addPlayFlags(cmd)
	return cmd
}

func (app *application) addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&app.cfg.CaseFile, "case-file", app.cfg.CaseFile, "YAML case file to play")
	cmd.Flags().StringVar(&app.caseID, "case", app.caseID, "id of an imported case to play")
	cmd.Flags().BoolVar(&app.cfg.NoColor, "no-color", app.cfg.NoColor, "disable colored output")
	cmd.MarkFlagsMutuallyExclusive("case-file", "case")
}

func (app *application) play(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c, err := app.loadCase(ctx)
	if err != nil {
		return err
	}

	terminal := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), console.Options{NoColor: app.cfg.NoColor})
	if _, err = investigation.NewSession(c, terminal, app.logger).Play(ctx); err != nil {
		return errors.Wrap(err, "play case", slog.String("case", c.ID))
	}
	return nil
}

// loadCase picks the case from the library, from a case file or the built-in one, in that order.
func (app *application) loadCase(ctx context.Context) (*casefile.Case, error) {
	switch {
	case app.caseID != "":
		var c *casefile.Case
		err := app.withLibrary(ctx, func(library *repositories.CaseRepository) error {
			var err error
			c, err = library.Get(ctx, app.caseID)
			return err
		})
		if err != nil {
			return nil, errors.Wrap(err, "load case from library")
		}
		return c, nil
	case app.cfg.CaseFile != "":
		c, err := casefile.LoadFile(app.cfg.CaseFile)
		if err != nil {
			return nil, errors.Wrap(err, "load case")
		}
		return c, nil
	default:
		return casefile.Default(), nil
	}
}
