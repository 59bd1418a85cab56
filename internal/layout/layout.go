// Package layout models the rooms of a crime scene as a binary tree.
//
// Every room has at most a left and a right passage. Rooms are created once while a case is set up and are
// only mutated afterwards by visiting them.
package layout

import (
	"log/slog"

	"github.com/myrjola/detectivequest/internal/errors"
)

var (
	ErrEmptyName      = errors.NewSentinel("room name is empty")
	ErrDuplicateRoom  = errors.NewSentinel("room name is not unique")
	ErrUnknownRoom    = errors.NewSentinel("room does not exist")
	ErrSharedRoom     = errors.NewSentinel("room is reachable from more than one room")
	ErrEntryHasParent = errors.NewSentinel("entry room is reachable from another room")
	ErrUnreachable    = errors.NewSentinel("room is unreachable from the entry")
	ErrSelfLoop       = errors.NewSentinel("room leads to itself")
)

// Location is a room. It may hold a clue and owns its left and right passages exclusively.
type Location struct {
	name    string
	clue    string
	visited bool
	left    *Location
	right   *Location
}

// New creates a room without passages that has not been visited. An empty clue means the room holds no clue.
func New(name, clue string) *Location {
	return &Location{name: name, clue: clue}
}

// Attach sets the passages of l. Either may be nil. The caller must not attach a room below two parents or create
// a cycle; [Build] validates this for rooms read from configuration.
func (l *Location) Attach(left, right *Location) *Location {
	l.left = left
	l.right = right
	return l
}

func (l *Location) Name() string {
	return l.name
}

func (l *Location) Clue() string {
	return l.clue
}

func (l *Location) HasClue() bool {
	return l.clue != ""
}

func (l *Location) Left() *Location {
	return l.left
}

func (l *Location) Right() *Location {
	return l.right
}

func (l *Location) Visited() bool {
	return l.visited
}

// Visit marks the room visited. first is true only for the first call; the visited flag is never reset.
func (l *Location) Visit() (first bool) {
	if l.visited {
		return false
	}
	l.visited = true
	return true
}

// Layout is a fully wired tree of rooms together with its entry.
type Layout struct {
	entry *Location
	rooms map[string]*Location
}

// Entry returns the room where the investigation starts.
func (l *Layout) Entry() *Location {
	return l.entry
}

func (l *Layout) Len() int {
	return len(l.rooms)
}

// VisitedCount returns the number of rooms visited so far.
func (l *Layout) VisitedCount() int {
	n := 0
	l.Walk(func(room *Location) {
		if room.visited {
			n++
		}
	})
	return n
}

// Walk calls fn for every room in pre-order starting at the entry.
func (l *Layout) Walk(fn func(*Location)) {
	walk(l.entry, fn)
}

func walk(room *Location, fn func(*Location)) {
	if room == nil {
		return
	}
	fn(room)
	walk(room.left, fn)
	walk(room.right, fn)
}

// RoomSpec describes a room in configuration. Left and Right name the rooms behind the passages, empty for none.
type RoomSpec struct {
	Name  string
	Clue  string
	Left  string
	Right string
}

// Build creates and wires the rooms described by specs and validates that they form a single tree rooted at entry.
func Build(entry string, specs []RoomSpec) (*Layout, error) {
	rooms := make(map[string]*Location, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, errors.Wrap(ErrEmptyName, "create room")
		}
		if _, ok := rooms[spec.Name]; ok {
			return nil, errors.Wrap(ErrDuplicateRoom, "create room", slog.String("room", spec.Name))
		}
		rooms[spec.Name] = New(spec.Name, spec.Clue)
	}

	parents := make(map[string]string, len(specs))
	passage := func(from, to string) (*Location, error) {
		if to == "" {
			return nil, nil //nolint:nilnil // no passage
		}
		room, ok := rooms[to]
		if !ok {
			return nil, errors.Wrap(ErrUnknownRoom, "wire passage",
				slog.String("from", from), slog.String("to", to))
		}
		if to == from {
			return nil, errors.Wrap(ErrSelfLoop, "wire passage", slog.String("room", from))
		}
		if parent, ok := parents[to]; ok {
			return nil, errors.Wrap(ErrSharedRoom, "wire passage",
				slog.String("room", to), slog.String("parent", parent), slog.String("other_parent", from))
		}
		parents[to] = from
		return room, nil
	}

	for _, spec := range specs {
		left, err := passage(spec.Name, spec.Left)
		if err != nil {
			return nil, err
		}
		right, err := passage(spec.Name, spec.Right)
		if err != nil {
			return nil, err
		}
		rooms[spec.Name].Attach(left, right)
	}

	root, ok := rooms[entry]
	if !ok {
		return nil, errors.Wrap(ErrUnknownRoom, "find entry", slog.String("entry", entry))
	}
	if parent, ok := parents[entry]; ok {
		return nil, errors.Wrap(ErrEntryHasParent, "find entry",
			slog.String("entry", entry), slog.String("parent", parent))
	}

	// With a single parent per room and a parentless entry, every room reached from the entry is reached
	// exactly once. Rooms that are not reached are either detached or part of a cycle.
	l := &Layout{entry: root, rooms: rooms}
	reached := make(map[string]bool, len(rooms))
	l.Walk(func(room *Location) { reached[room.name] = true })
	if len(reached) != len(rooms) {
		// The first unreachable room in configuration order is reported.
		for _, spec := range specs {
			if !reached[spec.Name] {
				return nil, errors.Wrap(ErrUnreachable, "validate layout", slog.String("room", spec.Name))
			}
		}
	}

	return l, nil
}
