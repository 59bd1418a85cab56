// Package console is the text interface of the game. It reads the player's choices line by line and tells the story
// of the investigation.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/myrjola/detectivequest/internal/errors"
	"github.com/myrjola/detectivequest/internal/explorer"
	"github.com/myrjola/detectivequest/internal/verdict"
)

type Options struct {
	// NoColor disables styling even when out is a terminal.
	NoColor bool
}

type styles struct {
	title   lipgloss.Style
	room    lipgloss.Style
	clue    lipgloss.Style
	faint   lipgloss.Style
	warning lipgloss.Style
	heading lipgloss.Style
	guilty  lipgloss.Style
	free    lipgloss.Style
}

// Console reads from in and writes to out. It is not safe for concurrent use.
//
// Lines are read in the background so that a cancelled context interrupts a pending read. Once interrupted the
// console reads nothing more.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	styles styles
	// pending delivers the line being read, nil when no read is in flight.
	pending     chan line
	interrupted bool
}

type line struct {
	text string
	ok   bool
}

func New(in io.Reader, out io.Writer, opts Options) *Console {
	r := lipgloss.NewRenderer(out)
	if opts.NoColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
		styles: styles{
			title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
			room:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
			clue:    r.NewStyle().Foreground(lipgloss.Color("220")),
			faint:   r.NewStyle().Faint(true),
			warning: r.NewStyle().Foreground(lipgloss.Color("208")),
			heading: r.NewStyle().Bold(true).Underline(true),
			guilty:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("40")),
			free:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		},
	}
}

func (c *Console) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(c.out, format, a...)
}

// readLine returns the next line without its line ending. ok is false when input has ended or failed before any
// character of the line could be read, and from the moment ctx is done on.
func (c *Console) readLine(ctx context.Context) (string, bool) {
	if c.interrupted {
		return "", false
	}
	if c.pending == nil {
		pending := make(chan line, 1)
		c.pending = pending
		go func() {
			text, err := c.in.ReadString('\n')
			pending <- line{text: strings.TrimRight(text, "\r\n"), ok: err == nil || text != ""}
		}()
	}
	select {
	case <-ctx.Done():
		c.interrupted = true
		return "", false
	case l := <-c.pending:
		c.pending = nil
		if ctx.Err() != nil {
			c.interrupted = true
			return "", false
		}
		return l.text, l.ok
	}
}

// ParseChoice maps a line of input to a choice. The line must hold a single key or a whole word, in either case:
// l, e, left or esquerda go left, r, d, right or direita go right and q, s, quit, exit, leave or sair end the
// exploration.
func ParseChoice(input string) explorer.Choice {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "l", "e", "left", "esquerda":
		return explorer.ChoiceLeft
	case "r", "d", "right", "direita":
		return explorer.ChoiceRight
	case "q", "s", "quit", "exit", "leave", "sair":
		return explorer.ChoiceExit
	default:
		return explorer.ChoiceUnknown
	}
}

// NextChoice lists the available moves and blocks until the player enters a non-blank line.
func (c *Console) NextChoice(ctx context.Context, prompt explorer.Prompt) explorer.Choice {
	c.printf("\nAvailable paths:\n")
	if prompt.Left != "" {
		c.printf("  (l) Left  -> %s\n", c.styles.room.Render(prompt.Left))
	}
	if prompt.Right != "" {
		c.printf("  (r) Right -> %s\n", c.styles.room.Render(prompt.Right))
	}
	c.printf("  (q) Leave the exploration\n")
	c.printf("Choice: ")

	for {
		text, ok := c.readLine(ctx)
		if !ok {
			return explorer.ChoiceUnreadable
		}
		if strings.TrimSpace(text) != "" {
			return ParseChoice(text)
		}
	}
}

func (c *Console) Entered(room string) {
	c.printf("\nYou are in: %s\n", c.styles.room.Render(room))
}

func (c *Console) ClueFound(clue string) {
	c.printf("Clue found: %s\n", c.styles.clue.Render(fmt.Sprintf("%q", clue)))
}

func (c *Console) NoClue() {
	c.printf("%s\n", c.styles.faint.Render("No clue in this room."))
}

func (c *Console) AlreadyVisited() {
	c.printf("%s\n", c.styles.faint.Render("Room already visited (its clue was collected when there was one)."))
}

func (c *Console) InvalidChoice(err error) {
	var msg string
	switch {
	case errors.Is(err, explorer.ErrNoPathLeft):
		msg = "There is no room to the left."
	case errors.Is(err, explorer.ErrNoPathRight):
		msg = "There is no room to the right."
	default:
		msg = "Invalid choice. Use 'l', 'r' or 'q'."
	}
	c.printf("%s\n", c.styles.warning.Render(msg))
}

func (c *Console) Finished(reason explorer.FinishReason) {
	switch reason {
	case explorer.FinishedByPlayer:
		c.printf("Exploration finished by the player.\n")
	case explorer.FinishedInputClosed:
		c.printf("\nInput closed, the exploration ends here.\n")
	case explorer.FinishedInterrupted:
		c.printf("\nInvestigation interrupted.\n")
	}
}

// Intro shows the title and synopsis of the case.
func (c *Console) Intro(title, synopsis string) {
	c.printf("%s\n", c.styles.title.Render(fmt.Sprintf("=== %s ===", title)))
	if synopsis != "" {
		c.printf("%s\n", synopsis)
	}
}

// Clues lists the collected clues.
func (c *Console) Clues(clues iter.Seq[string]) {
	c.printf("\n%s\n", c.styles.heading.Render("===== COLLECTED CLUES ====="))
	for clue := range clues {
		c.printf("- %s\n", c.styles.clue.Render(clue))
	}
}

// NoClues signals that the ledger is empty.
func (c *Console) NoClues() {
	c.printf("\n%s\n", c.styles.heading.Render("===== COLLECTED CLUES ====="))
	c.printf("No clues were collected.\n")
	c.printf("\nWithout clues nobody can be accused. Game over.\n")
}

// ReadAccusation asks who the culprit is and returns the answer verbatim apart from the line ending. An empty
// accusation is returned when input has ended or ctx is done.
func (c *Console) ReadAccusation(ctx context.Context, suspects []string) string {
	c.printf("\nWho is the culprit? %s\n> ", joinSuspects(suspects))
	text, _ := c.readLine(ctx)
	return text
}

func joinSuspects(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0] + "?"
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1] + "?"
	}
}

// Verdict reports the tally, the decision and, on conviction, the motive.
func (c *Console) Verdict(v verdict.Verdict) {
	c.printf("\nResult of the accusation against '%s':\n", v.Accused)
	c.printf("Collected clues pointing to %s: %d\n", v.Accused, v.Count)
	for _, clue := range v.Supporting {
		c.printf("  - %s\n", c.styles.clue.Render(clue))
	}

	if v.Outcome == verdict.Conviction {
		c.printf("\nVerdict: %s\n", c.styles.guilty.Render(
			fmt.Sprintf("ENOUGH EVIDENCE! %s was brought to justice. Good work!", v.Accused)))
		c.printf("\nMotive: %s\n", v.Motive)
		return
	}
	c.printf("\nVerdict: %s\n", c.styles.free.Render(
		fmt.Sprintf("NOT ENOUGH EVIDENCE! %s CANNOT BE CONVICTED.", v.Accused)))
}
