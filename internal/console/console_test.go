package console_test

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/myrjola/detectivequest/internal/console"
	"github.com/myrjola/detectivequest/internal/errors"
	"github.com/myrjola/detectivequest/internal/explorer"
	"github.com/myrjola/detectivequest/internal/verdict"
	"github.com/stretchr/testify/require"
)

func newConsole(input string) (*console.Console, *bytes.Buffer) {
	var out bytes.Buffer
	return console.New(strings.NewReader(input), &out, console.Options{NoColor: true}), &out
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		line string
		want explorer.Choice
	}{
		{line: "l", want: explorer.ChoiceLeft},
		{line: "E", want: explorer.ChoiceLeft},
		{line: "  left", want: explorer.ChoiceLeft},
		{line: "Esquerda", want: explorer.ChoiceLeft},
		{line: "r", want: explorer.ChoiceRight},
		{line: "D", want: explorer.ChoiceRight},
		{line: "right\t", want: explorer.ChoiceRight},
		{line: "direita", want: explorer.ChoiceRight},
		{line: "q", want: explorer.ChoiceExit},
		{line: "S", want: explorer.ChoiceExit},
		{line: "sair", want: explorer.ChoiceExit},
		{line: "leave", want: explorer.ChoiceExit},
		{line: "exit", want: explorer.ChoiceExit},
		{line: "QUIT", want: explorer.ChoiceExit},
		{line: "done", want: explorer.ChoiceUnknown},
		{line: "lx", want: explorer.ChoiceUnknown},
		{line: "l r", want: explorer.ChoiceUnknown},
		{line: "x", want: explorer.ChoiceUnknown},
		{line: "", want: explorer.ChoiceUnknown},
		{line: "émile", want: explorer.ChoiceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			require.Equal(t, tt.want, console.ParseChoice(tt.line))
		})
	}
}

func TestConsole_NextChoice(t *testing.T) {
	c, out := newConsole("\n   \nd\nz\n")
	ctx := context.Background()
	prompt := explorer.Prompt{Room: "Hall de Entrada", Left: "Cozinha", Right: "Corredor"}

	// Blank lines are skipped.
	require.Equal(t, explorer.ChoiceRight, c.NextChoice(ctx, prompt))
	require.Equal(t, explorer.ChoiceUnknown, c.NextChoice(ctx, prompt))
	require.Equal(t, explorer.ChoiceUnreadable, c.NextChoice(ctx, prompt), "end of input")

	require.Contains(t, out.String(), "(l) Left  -> Cozinha")
	require.Contains(t, out.String(), "(r) Right -> Corredor")
	require.Contains(t, out.String(), "(q) Leave the exploration")
}

func TestConsole_NextChoice_onlyExistingPaths(t *testing.T) {
	c, out := newConsole("q")
	choice := c.NextChoice(context.Background(), explorer.Prompt{Room: "Closet"})
	require.Equal(t, explorer.ChoiceExit, choice, "last line without newline is still read")
	require.NotContains(t, out.String(), "Left")
	require.NotContains(t, out.String(), "Right")
}

func TestConsole_NextChoice_cancelled(t *testing.T) {
	c, _ := newConsole("l\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, explorer.ChoiceUnreadable, c.NextChoice(ctx, explorer.Prompt{Room: "Hall"}))
	require.Empty(t, c.ReadAccusation(context.Background(), []string{"Jardineiro"}), "buffered input is ignored")
}

func TestConsole_NextChoice_cancelledWhileWaiting(t *testing.T) {
	in, player := io.Pipe()
	t.Cleanup(func() { _ = player.Close() })
	c := console.New(in, io.Discard, console.Options{NoColor: true})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	prompt := explorer.Prompt{Room: "Hall", Left: "Cozinha"}

	// Nothing has been typed yet, so the console is blocked on the pipe when the context is cancelled.
	timer := time.AfterFunc(50*time.Millisecond, cancel)
	defer timer.Stop()
	returned := make(chan explorer.Choice, 1)
	go func() { returned <- c.NextChoice(ctx, prompt) }()
	select {
	case choice := <-returned:
		require.Equal(t, explorer.ChoiceUnreadable, choice)
	case <-time.After(2 * time.Second):
		t.Fatal("NextChoice did not return after the context was cancelled")
	}

	// A line typed after the interruption is never acted on, whatever the context.
	typed := make(chan error, 1)
	go func() {
		_, err := io.WriteString(player, "l\n")
		typed <- err
	}()
	require.NoError(t, <-typed)
	require.Equal(t, explorer.ChoiceUnreadable, c.NextChoice(context.Background(), prompt))
	require.Empty(t, c.ReadAccusation(context.Background(), []string{"Jardineiro"}))
}

func TestConsole_narration(t *testing.T) {
	c, out := newConsole("")
	c.Entered("Cozinha")
	c.ClueFound("Pétala rosa")
	c.NoClue()
	c.AlreadyVisited()
	c.InvalidChoice(errors.Wrap(explorer.ErrNoPathLeft, "move"))
	c.InvalidChoice(errors.Wrap(explorer.ErrNoPathRight, "move"))
	c.InvalidChoice(explorer.ErrInvalidChoice)
	c.Finished(explorer.FinishedByPlayer)
	c.Finished(explorer.FinishedInputClosed)
	c.Finished(explorer.FinishedInterrupted)

	got := out.String()
	for _, want := range []string{
		"You are in: Cozinha",
		`Clue found: "Pétala rosa"`,
		"No clue in this room.",
		"Room already visited",
		"There is no room to the left.",
		"There is no room to the right.",
		"Invalid choice. Use 'l', 'r' or 'q'.",
		"Exploration finished by the player.",
		"Input closed, the exploration ends here.",
		"Investigation interrupted.",
	} {
		require.Contains(t, got, want)
	}
}

func TestConsole_Clues(t *testing.T) {
	c, out := newConsole("")
	c.Clues(slices.Values([]string{"Carta aberta", "Pétala rosa"}))
	require.Contains(t, out.String(), "COLLECTED CLUES")
	require.Less(t, strings.Index(out.String(), "- Carta aberta"), strings.Index(out.String(), "- Pétala rosa"))

	out.Reset()
	c.NoClues()
	require.Contains(t, out.String(), "No clues were collected.")
}

func TestConsole_ReadAccusation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "line ending stripped", input: "Sra. Almeida\n", want: "Sra. Almeida"},
		{name: "windows line ending", input: "Jardineiro\r\n", want: "Jardineiro"},
		{name: "inner and leading spaces kept", input: " Sr. Silva \n", want: " Sr. Silva "},
		{name: "empty line", input: "\n", want: ""},
		{name: "end of input", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newConsole(tt.input)
			got := c.ReadAccusation(context.Background(), []string{"Sr. Silva", "Sra. Almeida", "Jardineiro"})
			require.Equal(t, tt.want, got)
			require.Contains(t, out.String(), "Who is the culprit? Sr. Silva, Sra. Almeida or Jardineiro?")
		})
	}
}

func TestConsole_Verdict(t *testing.T) {
	t.Run("conviction", func(t *testing.T) {
		c, out := newConsole("")
		c.Verdict(verdict.Verdict{
			Accused:    "Sra. Almeida",
			Count:      2,
			Outcome:    verdict.Conviction,
			Supporting: []string{"Carta aberta", "Pétala rosa"},
			Motive:     "Um chá de espirradeiras.",
		})
		got := out.String()
		require.Contains(t, got, "Result of the accusation against 'Sra. Almeida':")
		require.Contains(t, got, "Collected clues pointing to Sra. Almeida: 2")
		require.Contains(t, got, "ENOUGH EVIDENCE! Sra. Almeida was brought to justice.")
		require.Contains(t, got, "Motive: Um chá de espirradeiras.")
	})

	t.Run("acquittal", func(t *testing.T) {
		c, out := newConsole("")
		c.Verdict(verdict.Verdict{Accused: "Jardineiro", Count: 1, Outcome: verdict.Acquittal})
		got := out.String()
		require.Contains(t, got, "NOT ENOUGH EVIDENCE! Jardineiro CANNOT BE CONVICTED.")
		require.NotContains(t, got, "Motive:")
	})
}
