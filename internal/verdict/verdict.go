// Package verdict weighs the collected clues against an accusation.
package verdict

import (
	"iter"
	"slices"
)

// ConvictionThreshold is the number of collected clues that must implicate the accused for a conviction.
const ConvictionThreshold = 2

// UnknownMotive is told when the accused has no motive on record.
const UnknownMotive = "Unknown motive."

// Lookup returns the suspect a clue implicates.
type Lookup interface {
	Get(clue string) (suspect string, ok bool)
}

type Outcome int

const (
	Acquittal Outcome = iota
	Conviction
)

func (o Outcome) String() string {
	if o == Conviction {
		return "conviction"
	}
	return "acquittal"
}

// Tally counts the clues that implicate accused. Names are compared exactly; a clue that implicates nobody counts
// for nothing.
func Tally(clues iter.Seq[string], index Lookup, accused string) int {
	count := 0
	for range implicating(clues, index, accused) {
		count++
	}
	return count
}

func implicating(clues iter.Seq[string], index Lookup, accused string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for clue := range clues {
			if suspect, ok := index.Get(clue); ok && suspect == accused {
				if !yield(clue) {
					return
				}
			}
		}
	}
}

// Decide applies the conviction threshold.
func Decide(count int) Outcome {
	if count >= ConvictionThreshold {
		return Conviction
	}
	return Acquittal
}

// Verdict is the outcome of an accusation.
type Verdict struct {
	Accused string
	Count   int
	Outcome Outcome
	// Supporting lists the clues that implicate the accused in the order they were traversed.
	Supporting []string
	// Motive is only set on conviction.
	Motive string
}

// MotiveBook holds the motive of each suspect.
type MotiveBook map[string]string

// Motive returns the motive of suspect or [UnknownMotive].
func (m MotiveBook) Motive(suspect string) string {
	if motive, ok := m[suspect]; ok && motive != "" {
		return motive
	}
	return UnknownMotive
}

// Judge tallies the clues against accused and decides the case.
func Judge(clues iter.Seq[string], index Lookup, accused string, motives MotiveBook) Verdict {
	v := Verdict{
		Accused:    accused,
		Count:      Tally(clues, index, accused),
		Supporting: slices.Collect(implicating(clues, index, accused)),
	}
	v.Outcome = Decide(v.Count)
	if v.Outcome == Conviction {
		v.Motive = motives.Motive(accused)
	}
	return v
}
