// Package explorer walks the detective through the rooms of a case and collects the clues found on the way.
package explorer

import (
	"context"
	"log/slog"

	"github.com/myrjola/detectivequest/internal/errors"
	"github.com/myrjola/detectivequest/internal/layout"
	"github.com/myrjola/detectivequest/internal/ledger"
	"github.com/myrjola/detectivequest/internal/logging"
)

var (
	ErrNoPathLeft    = errors.NewSentinel("there is no room to the left")
	ErrNoPathRight   = errors.NewSentinel("there is no room to the right")
	ErrInvalidChoice = errors.NewSentinel("invalid choice")
)

// Choice is a single answer of the player when asked where to go.
type Choice int

const (
	// ChoiceUnknown is input that could be read but not understood.
	ChoiceUnknown Choice = iota
	ChoiceLeft
	ChoiceRight
	ChoiceExit
	// ChoiceUnreadable is returned when input ended or could not be read. It ends the exploration.
	ChoiceUnreadable
)

func (c Choice) String() string {
	switch c {
	case ChoiceLeft:
		return "left"
	case ChoiceRight:
		return "right"
	case ChoiceExit:
		return "exit"
	case ChoiceUnreadable:
		return "unreadable"
	case ChoiceUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Prompt describes the moves available in the current room. Left and Right are the names of the neighbouring rooms
// or empty when there is no passage.
type Prompt struct {
	Room  string
	Left  string
	Right string
}

// ChoiceSource asks the player where to go next. NextChoice blocks until the player answers.
type ChoiceSource interface {
	NextChoice(ctx context.Context, prompt Prompt) Choice
}

// FinishReason tells why an exploration ended.
type FinishReason int

const (
	FinishedByPlayer FinishReason = iota
	FinishedInputClosed
	// FinishedInterrupted means the context was done, usually because the player pressed Ctrl-C.
	FinishedInterrupted
)

// Narrator is told what happens during the exploration so that it can be shown to the player.
type Narrator interface {
	Entered(room string)
	ClueFound(clue string)
	NoClue()
	AlreadyVisited()
	InvalidChoice(err error)
	Finished(reason FinishReason)
}

// Result summarises a finished exploration.
type Result struct {
	// Steps is the number of choices that were read.
	Steps int
	// Collected is the number of clues added to the ledger during this exploration.
	Collected int
	// Last is the name of the room the detective was in when the exploration ended.
	Last   string
	Reason FinishReason
}

// Explorer drives the exploration. The ledger is the only state it writes to apart from the visited flags of the
// rooms.
type Explorer struct {
	ledger   *ledger.Ledger
	input    ChoiceSource
	narrator Narrator
	logger   *slog.Logger
}

func New(clues *ledger.Ledger, input ChoiceSource, narrator Narrator, logger *slog.Logger) *Explorer {
	return &Explorer{
		ledger:   clues,
		input:    input,
		narrator: narrator,
		logger:   logger.With("source", "Explorer"),
	}
}

// Explore starts in entry and runs until the player exits, input can no longer be read or ctx is done.
func (e *Explorer) Explore(ctx context.Context, entry *layout.Location) Result {
	var result Result
	current := entry
	for current != nil {
		result.Last = current.Name()
		roomCtx := logging.WithAttrs(ctx, slog.String("room", current.Name()))
		if e.enter(roomCtx, current) {
			result.Collected++
		}

		choice := ChoiceUnreadable
		if ctx.Err() == nil {
			choice = e.input.NextChoice(ctx, promptFor(current))
			result.Steps++
		}
		e.logger.LogAttrs(roomCtx, slog.LevelDebug, "read choice", slog.String("choice", choice.String()))

		next, err := Move(current, choice)
		switch {
		case err != nil:
			e.logger.LogAttrs(roomCtx, slog.LevelDebug, "invalid choice", errors.SlogError(err))
			e.narrator.InvalidChoice(err)
		case next == nil:
			result.Reason = finishReason(ctx, choice)
			e.narrator.Finished(result.Reason)
		}
		current = next
	}

	e.logger.LogAttrs(ctx, slog.LevelInfo, "exploration finished",
		slog.Int("steps", result.Steps),
		slog.Int("collected", result.Collected),
		slog.String("last_room", result.Last))
	return result
}

func finishReason(ctx context.Context, choice Choice) FinishReason {
	switch {
	case choice != ChoiceUnreadable:
		return FinishedByPlayer
	case ctx.Err() != nil:
		return FinishedInterrupted
	default:
		return FinishedInputClosed
	}
}

// enter reports the room and collects its clue on the first visit. It returns true when a new clue was added to
// the ledger.
func (e *Explorer) enter(ctx context.Context, room *layout.Location) bool {
	e.narrator.Entered(room.Name())
	if !room.Visit() {
		e.narrator.AlreadyVisited()
		return false
	}
	if !room.HasClue() {
		e.narrator.NoClue()
		return false
	}
	e.narrator.ClueFound(room.Clue())
	added := e.ledger.Insert(room.Clue())
	e.logger.LogAttrs(ctx, slog.LevelInfo, "collected clue",
		slog.String("clue", room.Clue()), slog.Bool("new", added))
	return added
}

// Move resolves choice in room. It returns the room to continue in, or nil when the exploration ends. A choice
// that cannot be carried out returns room itself together with an error.
func Move(room *layout.Location, choice Choice) (*layout.Location, error) {
	switch choice {
	case ChoiceLeft:
		if room.Left() == nil {
			return room, errors.Wrap(ErrNoPathLeft, "move", slog.String("room", room.Name()))
		}
		return room.Left(), nil
	case ChoiceRight:
		if room.Right() == nil {
			return room, errors.Wrap(ErrNoPathRight, "move", slog.String("room", room.Name()))
		}
		return room.Right(), nil
	case ChoiceExit, ChoiceUnreadable:
		return nil, nil
	case ChoiceUnknown:
		return room, errors.Wrap(ErrInvalidChoice, "move", slog.String("room", room.Name()))
	default:
		return room, errors.Wrap(ErrInvalidChoice, "move", slog.String("room", room.Name()))
	}
}

func promptFor(room *layout.Location) Prompt {
	prompt := Prompt{Room: room.Name()}
	if room.Left() != nil {
		prompt.Left = room.Left().Name()
	}
	if room.Right() != nil {
		prompt.Right = room.Right().Name()
	}
	return prompt
}
