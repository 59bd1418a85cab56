package investigation_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/myrjola/detectivequest/internal/casefile"
	"github.com/myrjola/detectivequest/internal/console"
	"github.com/myrjola/detectivequest/internal/explorer"
	"github.com/myrjola/detectivequest/internal/investigation"
	"github.com/myrjola/detectivequest/internal/models"
	"github.com/myrjola/detectivequest/internal/testhelpers"
	"github.com/myrjola/detectivequest/internal/verdict"
	"github.com/stretchr/testify/require"
)

func play(t *testing.T, c *casefile.Case, input string) (*investigation.Outcome, string) {
	t.Helper()
	var out bytes.Buffer
	terminal := console.New(strings.NewReader(input), &out, console.Options{NoColor: true})
	outcome, err := investigation.NewSession(c, terminal, testhelpers.NewLogger(io.Discard)).Play(context.Background())
	require.NoError(t, err)
	return outcome, out.String()
}

func TestSession_Play(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantClues   []string
		wantAccused string
		wantCount   int
		wantOutcome verdict.Outcome
		wantOutput  []string
	}{
		{
			name:  "garden path convicts Sra. Almeida",
			input: "l\nl\nl\nq\nSra. Almeida\n",
			wantClues: []string{
				"Jardim de espirradeira rosa",
				"Pegadas de lama seca",
				"Pétala rosa",
				"Tesoura de jardinagem ensanguentada",
			},
			wantAccused: "Sra. Almeida",
			wantCount:   2,
			wantOutcome: verdict.Conviction,
			wantOutput: []string{
				"=== DETECTIVE QUEST: Acusar o Culpado ===",
				"You are in: Estufa",
				"ENOUGH EVIDENCE! Sra. Almeida was brought to justice.",
				"Motive: A Sra. Almeida tinha um caso secreto",
			},
		},
		{
			name:  "bedroom path acquits Sra. Almeida",
			input: "r\nr\nr\nq\nSra. Almeida\n",
			wantClues: []string{
				"Carta aberta",
				"Fio de cabelo preto preso no corrimão",
				"Pegadas de lama seca",
			},
			wantAccused: "Sra. Almeida",
			wantCount:   1,
			wantOutcome: verdict.Acquittal,
			wantOutput: []string{
				"You are in: Closet",
				"No clue in this room.",
				"NOT ENOUGH EVIDENCE! Sra. Almeida CANNOT BE CONVICTED.",
			},
		},
		{
			name:        "invalid moves are reported and the player stays",
			input:       "l\nr\nr\nz\nq\nJardineiro\n",
			wantClues:   []string{"Cofre arrombado, tem as mesmas pegadas de lama", "Pegadas de lama seca", "Pétala rosa", "cigarro pisado"},
			wantAccused: "Jardineiro",
			wantCount:   2,
			wantOutcome: verdict.Conviction,
			wantOutput: []string{
				"You are in: Porão",
				"Invalid choice.",
				"Room already visited",
				"O Jardineiro planejava arrombar o cofre",
			},
		},
		{
			name:        "input ends before the accusation",
			input:       "l\n",
			wantClues:   []string{"Pegadas de lama seca", "Pétala rosa"},
			wantAccused: "",
			wantCount:   0,
			wantOutcome: verdict.Acquittal,
			wantOutput: []string{
				"Input closed, the exploration ends here.",
				"Result of the accusation against '':",
			},
		},
		{
			name:        "unknown suspect",
			input:       "q\nMordomo\n",
			wantClues:   []string{"Pegadas de lama seca"},
			wantAccused: "Mordomo",
			wantCount:   0,
			wantOutcome: verdict.Acquittal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, out := play(t, casefile.Default(), tt.input)

			require.Equal(t, tt.wantClues, outcome.Clues)
			require.NotNil(t, outcome.Verdict)
			require.Equal(t, tt.wantAccused, outcome.Verdict.Accused)
			require.Equal(t, tt.wantCount, outcome.Verdict.Count)
			require.Equal(t, tt.wantOutcome, outcome.Verdict.Outcome)
			for _, want := range tt.wantOutput {
				require.Contains(t, out, want)
			}
		})
	}
}

func TestSession_Play_noClues(t *testing.T) {
	c, err := casefile.FromModel(models.Case{
		ID:    "empty-hall",
		Title: "Empty hall",
		Entry: "Hall",
		Rooms: []models.Room{
			{Name: "Hall", Left: "Closet"},
			{Name: "Closet"},
		},
		Suspects: []models.Suspect{{Name: "Mordomo"}},
	})
	require.NoError(t, err)

	outcome, out := play(t, c, "l\nq\nMordomo\n")

	require.Empty(t, outcome.Clues)
	require.Nil(t, outcome.Verdict, "nobody can be accused without clues")
	require.Equal(t, explorer.FinishedByPlayer, outcome.Exploration.Reason)
	require.Contains(t, out, "No clues were collected.")
	require.NotContains(t, out, "Who is the culprit?")
}

func TestSession_Play_eachGameStartsUnvisited(t *testing.T) {
	c := casefile.Default()
	first, _ := play(t, c, "q\nJardineiro\n")
	second, out := play(t, c, "q\nJardineiro\n")

	require.Equal(t, first.Clues, second.Clues)
	require.NotContains(t, out, "Room already visited")
}

// cancellingTerminal cancels the game right before the accusation is read.
type cancellingTerminal struct {
	*console.Console
	cancel context.CancelFunc
}

func (t cancellingTerminal) ReadAccusation(ctx context.Context, suspects []string) string {
	t.cancel()
	return t.Console.ReadAccusation(ctx, suspects)
}

func TestSession_Play_interrupted(t *testing.T) {
	t.Run("during the exploration", func(t *testing.T) {
		var out bytes.Buffer
		terminal := console.New(strings.NewReader("l\nl\nq\nSra. Almeida\n"), &out, console.Options{NoColor: true})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		outcome, err := investigation.NewSession(casefile.Default(), terminal, testhelpers.NewLogger(io.Discard)).
			Play(ctx)
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, explorer.FinishedInterrupted, outcome.Exploration.Reason)
		require.Equal(t, []string{"Pegadas de lama seca"}, outcome.Clues)
		require.Nil(t, outcome.Verdict)
		require.Contains(t, out.String(), "Investigation interrupted.")
		require.NotContains(t, out.String(), "Who is the culprit?")
	})

	t.Run("during the accusation", func(t *testing.T) {
		var out bytes.Buffer
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		terminal := cancellingTerminal{
			Console: console.New(strings.NewReader("l\nq\nSra. Almeida\n"), &out, console.Options{NoColor: true}),
			cancel:  cancel,
		}

		outcome, err := investigation.NewSession(casefile.Default(), terminal, testhelpers.NewLogger(io.Discard)).
			Play(ctx)
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, explorer.FinishedByPlayer, outcome.Exploration.Reason)
		require.Len(t, outcome.Clues, 2)
		require.Nil(t, outcome.Verdict)
		require.NotContains(t, out.String(), "Result of the accusation")
	})
}
