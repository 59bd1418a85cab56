// Package investigation runs one game: the detective explores the crime scene, reviews the clues and accuses a
// suspect.
package investigation

import (
	"context"
	"iter"
	"log/slog"

	"github.com/myrjola/detectivequest/internal/casefile"
	"github.com/myrjola/detectivequest/internal/errors"
	"github.com/myrjola/detectivequest/internal/explorer"
	"github.com/myrjola/detectivequest/internal/ledger"
	"github.com/myrjola/detectivequest/internal/logging"
	"github.com/myrjola/detectivequest/internal/verdict"
)

// Reporter tells the player what happens.
type Reporter interface {
	explorer.Narrator
	Intro(title, synopsis string)
	Clues(clues iter.Seq[string])
	NoClues()
	Verdict(v verdict.Verdict)
}

// Player answers the questions of the game.
type Player interface {
	explorer.ChoiceSource
	ReadAccusation(ctx context.Context, suspects []string) string
}

// Terminal is both ends of the conversation with the player. [console.Console] implements it.
type Terminal interface {
	Reporter
	Player
}

// Outcome summarises a finished game.
type Outcome struct {
	Exploration explorer.Result
	Clues       []string
	// Verdict is nil when no clue was collected and nobody could be accused.
	Verdict *verdict.Verdict
}

type Session struct {
	c        *casefile.Case
	terminal Terminal
	logger   *slog.Logger
}

func NewSession(c *casefile.Case, terminal Terminal, logger *slog.Logger) *Session {
	return &Session{
		c:        c,
		terminal: terminal,
		logger:   logger.With("source", "Session"),
	}
}

// Play runs the game to the end. Everything the player does is handled inside the game. Errors are returned for a
// case that cannot be set up and when ctx is done before the verdict. An interrupted game returns the outcome so far
// without a verdict.
func (s *Session) Play(ctx context.Context) (*Outcome, error) {
	ctx = logging.WithAttrs(ctx, slog.String("case", s.c.ID))

	rooms, err := s.c.Layout()
	if err != nil {
		return nil, errors.Wrap(err, "set up rooms")
	}
	index := s.c.Index()
	clues := ledger.New()

	s.logger.LogAttrs(ctx, slog.LevelInfo, "investigation started",
		slog.Int("rooms", rooms.Len()), slog.Int("attributions", index.Len()))
	s.terminal.Intro(s.c.Title, s.c.Synopsis)

	var outcome Outcome
	outcome.Exploration = explorer.New(clues, s.terminal, s.terminal, s.logger).Explore(ctx, rooms.Entry())
	outcome.Clues = clues.Clues()
	if err = ctx.Err(); err != nil {
		return &outcome, s.interrupted(ctx, err, "exploration")
	}

	if clues.Empty() {
		s.terminal.NoClues()
		s.logger.LogAttrs(ctx, slog.LevelInfo, "investigation ended without clues",
			slog.Int("visited", rooms.VisitedCount()))
		return &outcome, nil
	}
	s.terminal.Clues(clues.All())

	accused := s.terminal.ReadAccusation(ctx, s.c.SuspectNames())
	if err = ctx.Err(); err != nil {
		return &outcome, s.interrupted(ctx, err, "accusation")
	}
	v := verdict.Judge(clues.All(), index, accused, s.c.Motives())
	s.terminal.Verdict(v)
	outcome.Verdict = &v

	s.logger.LogAttrs(ctx, slog.LevelInfo, "investigation closed",
		slog.String("accused", accused),
		slog.Int("count", v.Count),
		slog.String("outcome", v.Outcome.String()),
		slog.Int("visited", rooms.VisitedCount()),
		slog.Int("clues", clues.Len()),
		slog.Int("ledger_depth", clues.Depth()))
	return &outcome, nil
}

func (s *Session) interrupted(ctx context.Context, err error, stage string) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "investigation interrupted", slog.String("stage", stage))
	return errors.Wrap(err, "investigation interrupted", slog.String("stage", stage))
}
