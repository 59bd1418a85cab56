package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/myrjola/detectivequest/internal/envstruct"
	"github.com/myrjola/detectivequest/internal/errors"
	"github.com/myrjola/detectivequest/internal/logging"
	"github.com/spf13/cobra"
)

// exitInterrupted is the conventional status of a program stopped by SIGINT.
const exitInterrupted = 130

type config struct {
	// CaseFile is the YAML case to play. The built-in manor is played when empty.
	CaseFile  string `env:"DETECTIVE_CASE_FILE" envDefault:""`
	SQLiteURL string `env:"DETECTIVE_SQLITE_URL" envDefault:"./detective.sqlite"`
	LogLevel  string `env:"DETECTIVE_LOG_LEVEL" envDefault:"warn"`
	NoColor   bool   `env:"DETECTIVE_NO_COLOR" envDefault:"false"`
}

type application struct {
	cfg    config
	logger *slog.Logger
	// caseID selects a case from the library instead of a case file.
	caseID string
}

func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	lookupEnv func(string) (string, bool),
) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "read configuration")
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "read configuration")
	}

	app := &application{
		cfg:    cfg,
		logger: logging.NewLogger(stderr, level),
	}
	root := app.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err = root.ExecuteContext(ctx); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelDebug, "command failed", errors.SlogError(err))
		return err
	}
	return nil
}

func (app *application) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "detective",
		Short: "Detective Quest, a murder mystery for the terminal",
		Long: `Explore the crime scene room by room, collect the clues and accuse the culprit.

Without a command the game is played, see "detective play --help".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          app.play,
	}
	root.PersistentFlags().StringVar(&app.cfg.SQLiteURL, "sqlite-url", app.cfg.SQLiteURL,
		"case library database, \":memory:\" for a throwaway one")
	app.addPlayFlags(root)

	root.AddGroup(gameGroup, libraryGroup)
	root.AddCommand(app.playCommand(), app.casesCommand())
	return root
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.LookupEnv)
	stop()
	switch {
	case errors.Is(err, context.Canceled):
		os.Exit(exitInterrupted)
	case err != nil:
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
