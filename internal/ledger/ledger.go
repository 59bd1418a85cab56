// Package ledger keeps the clues a detective has collected.
//
// The ledger is an unbalanced binary search tree ordered by byte-wise comparison of the clue text. Clues are
// inserted in the order they are discovered and are never removed, so the depth is bounded by the number of
// distinct clues in a case.
package ledger

import (
	"iter"
)

type node struct {
	clue  string
	left  *node
	right *node
}

// Ledger is an ordered set of distinct clues. The zero value is an empty ledger ready for use.
type Ledger struct {
	root *node
	size int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Insert records clue and reports whether it was new.
//
// The empty string means "no clue" and is never stored. Inserting a clue that is already recorded leaves the
// ledger unchanged.
func (l *Ledger) Insert(clue string) bool {
	if clue == "" {
		return false
	}
	var added bool
	l.root, added = insert(l.root, clue)
	if added {
		l.size++
	}
	return added
}

func insert(n *node, clue string) (*node, bool) {
	if n == nil {
		return &node{clue: clue}, true
	}
	var added bool
	switch {
	case clue == n.clue:
		return n, false
	case clue < n.clue:
		n.left, added = insert(n.left, clue)
	default:
		n.right, added = insert(n.right, clue)
	}
	return n, added
}

// All yields the recorded clues in ascending order. The sequence can be ranged over any number of times and
// does not modify the ledger.
func (l *Ledger) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		inOrder(l.root, yield)
	}
}

// inOrder returns false once yield asks to stop.
func inOrder(n *node, yield func(string) bool) bool {
	if n == nil {
		return true
	}
	return inOrder(n.left, yield) && yield(n.clue) && inOrder(n.right, yield)
}

// Clues returns the recorded clues in ascending order.
func (l *Ledger) Clues() []string {
	clues := make([]string, 0, l.size)
	for clue := range l.All() {
		clues = append(clues, clue)
	}
	return clues
}

func (l *Ledger) Len() int {
	return l.size
}

func (l *Ledger) Empty() bool {
	return l.root == nil
}

// Depth returns the height of the tree, 0 for an empty ledger.
func (l *Ledger) Depth() int {
	return depth(l.root)
}

func depth(n *node) int {
	if n == nil {
		return 0
	}
	return 1 + max(depth(n.left), depth(n.right))
}
