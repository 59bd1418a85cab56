// Package casefile loads and validates case files, the YAML documents that describe a murder mystery.
package casefile

import (
	"bytes"
	_ "embed"
	"io"
	"log/slog"
	"os"

	"github.com/myrjola/detectivequest/internal/errors"
	"github.com/myrjola/detectivequest/internal/layout"
	"github.com/myrjola/detectivequest/internal/models"
	"github.com/myrjola/detectivequest/internal/suspects"
	"github.com/myrjola/detectivequest/internal/verdict"
	"gopkg.in/yaml.v3"
)

//go:embed manor.yaml
var manor []byte

var (
	ErrMissingID      = errors.NewSentinel("case has no id")
	ErrMissingEntry   = errors.NewSentinel("case has no entry room")
	ErrNoSuspects     = errors.NewSentinel("case has no suspects")
	ErrEmptySuspect   = errors.NewSentinel("suspect has no name")
	ErrDuplicateName  = errors.NewSentinel("suspect is listed twice")
	ErrEmptyClue      = errors.NewSentinel("suspect clue is empty")
	ErrDuplicateClue  = errors.NewSentinel("clue implicates more than one suspect")
	ErrMalformedYAML  = errors.NewSentinel("case file is not valid YAML")
	ErrUnplacedClue   = errors.NewSentinel("clue is not found in any room")
	ErrInvalidLayout  = errors.NewSentinel("rooms do not form a valid layout")
	ErrCaseFileAccess = errors.NewSentinel("case file cannot be read")
)

// Case wraps a validated [models.Case] and builds the structures an investigation needs from it.
type Case struct {
	models.Case
}

// Default returns the Almeida manor case that ships with the game.
func Default() *Case {
	c, err := Load(bytes.NewReader(manor))
	if err != nil {
		// The embedded case is covered by tests.
		panic(err)
	}
	return c
}

// LoadFile reads and validates the case file at path.
func LoadFile(path string) (*Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.Join(ErrCaseFileAccess, err), "open case file", slog.String("path", path))
	}
	defer func() {
		_ = f.Close()
	}()
	c, err := Load(f)
	if err != nil {
		return nil, errors.Wrap(err, "load case file", slog.String("path", path))
	}
	return c, nil
}

// Load decodes a case file from r and validates it. Unknown fields are rejected to catch typos.
func Load(r io.Reader) (*Case, error) {
	var m models.Case
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(errors.Join(ErrMalformedYAML, err), "decode case")
	}
	return FromModel(m)
}

// FromModel validates m and wraps it.
func FromModel(m models.Case) (*Case, error) {
	c := &Case{Case: m}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the rooms form a single tree and that every clue implicates at most one suspect.
//
// Every attributed clue must be placed in some room, otherwise the suspect could never be convicted through it.
func (c *Case) Validate() error {
	if c.ID == "" {
		return errors.Wrap(ErrMissingID, "validate case")
	}
	caseAttr := slog.String("case", c.ID)
	if c.Entry == "" {
		return errors.Wrap(ErrMissingEntry, "validate case", caseAttr)
	}
	if _, err := c.Layout(); err != nil {
		return errors.Wrap(errors.Join(ErrInvalidLayout, err), "validate rooms", caseAttr)
	}
	if len(c.Suspects) == 0 {
		return errors.Wrap(ErrNoSuspects, "validate case", caseAttr)
	}

	placed := make(map[string]bool, len(c.Rooms))
	for _, room := range c.Rooms {
		if room.Clue != "" {
			placed[room.Clue] = true
		}
	}

	names := make(map[string]bool, len(c.Suspects))
	owners := make(map[string]string)
	for _, suspect := range c.Suspects {
		if suspect.Name == "" {
			return errors.Wrap(ErrEmptySuspect, "validate suspects", caseAttr)
		}
		suspectAttr := slog.String("suspect", suspect.Name)
		if names[suspect.Name] {
			return errors.Wrap(ErrDuplicateName, "validate suspects", caseAttr, suspectAttr)
		}
		names[suspect.Name] = true
		for _, clue := range suspect.Clues {
			clueAttr := slog.String("clue", clue)
			if clue == "" {
				return errors.Wrap(ErrEmptyClue, "validate clues", caseAttr, suspectAttr)
			}
			if owner, ok := owners[clue]; ok {
				return errors.Wrap(ErrDuplicateClue, "validate clues",
					caseAttr, clueAttr, suspectAttr, slog.String("other_suspect", owner))
			}
			owners[clue] = suspect.Name
			if !placed[clue] {
				return errors.Wrap(ErrUnplacedClue, "validate clues", caseAttr, clueAttr, suspectAttr)
			}
		}
	}
	return nil
}

// Layout builds a fresh set of unvisited rooms.
func (c *Case) Layout() (*layout.Layout, error) {
	specs := make([]layout.RoomSpec, len(c.Rooms))
	for i, room := range c.Rooms {
		specs[i] = layout.RoomSpec{Name: room.Name, Clue: room.Clue, Left: room.Left, Right: room.Right}
	}
	l, err := layout.Build(c.Entry, specs)
	if err != nil {
		return nil, errors.Wrap(err, "build layout")
	}
	return l, nil
}

// Index builds the clue to suspect index.
func (c *Case) Index() *suspects.Index {
	idx := suspects.NewIndex()
	for _, suspect := range c.Suspects {
		for _, clue := range suspect.Clues {
			idx.Put(clue, suspect.Name)
		}
	}
	return idx
}

func (c *Case) Motives() verdict.MotiveBook {
	motives := make(verdict.MotiveBook, len(c.Suspects))
	for _, suspect := range c.Suspects {
		motives[suspect.Name] = suspect.Motive
	}
	return motives
}

// SuspectNames returns the suspects in the order of the case file.
func (c *Case) SuspectNames() []string {
	names := make([]string, len(c.Suspects))
	for i, suspect := range c.Suspects {
		names[i] = suspect.Name
	}
	return names
}

// Unconvictable lists, in case file order, the suspects that too few clues point to for a
// conviction.
func (c *Case) Unconvictable() []string {
	counts := c.Index().ClueCounts()
	var names []string
	for _, suspect := range c.Suspects {
		if counts[suspect.Name] < verdict.ConvictionThreshold {
			names = append(names, suspect.Name)
		}
	}
	return names
}

// Marshal encodes the case back into YAML.
func (c *Case) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2) //nolint:mnd // matches the shipped case files
	if err := enc.Encode(c.Case); err != nil {
		return nil, errors.Wrap(err, "encode case", slog.String("case", c.ID))
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "close encoder")
	}
	return buf.Bytes(), nil
}
