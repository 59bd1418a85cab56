// Package suspects maps clues to the suspect they implicate.
package suspects

// BucketCount is the fixed number of chains. A small prime spreads the handful of clues of a case well enough
// that the table is never resized.
const BucketCount = 31

type entry struct {
	clue    string
	suspect string
	next    *entry
}

// Index is a hash table from clue text to suspect name with separate chaining.
//
// It is filled once while a case is set up and only read afterwards.
type Index struct {
	buckets [BucketCount]*entry
	size    int
}

func NewIndex() *Index {
	return &Index{}
}

// Hash is the djb2 string hash reduced to a bucket number.
func Hash(s string) uint32 {
	var h uint64 = 5381
	for i := range len(s) {
		h = h*33 + uint64(s[i])
	}
	return uint32(h % BucketCount)
}

// Put associates clue with suspect.
//
// The entry is prepended to its chain so a later Put for the same clue shadows the earlier one. Case files are
// validated for duplicate clues before they reach the index, so callers should not depend on the shadowing.
// An empty clue is ignored.
func (idx *Index) Put(clue, suspect string) {
	if clue == "" {
		return
	}
	b := Hash(clue)
	idx.buckets[b] = &entry{clue: clue, suspect: suspect, next: idx.buckets[b]}
	idx.size++
}

// Get returns the suspect implicated by clue. ok is false when the clue implicates nobody.
func (idx *Index) Get(clue string) (suspect string, ok bool) {
	for e := idx.buckets[Hash(clue)]; e != nil; e = e.next {
		if e.clue == clue {
			return e.suspect, true
		}
	}
	return "", false
}

// Len returns the number of associations that were put, shadowed ones included.
func (idx *Index) Len() int {
	return idx.size
}

// ClueCounts returns how many distinct clues implicate each suspect. Shadowed entries are not counted.
func (idx *Index) ClueCounts() map[string]int {
	counts := make(map[string]int)
	for _, head := range idx.buckets {
		seen := make(map[string]bool)
		for e := head; e != nil; e = e.next {
			if seen[e.clue] {
				continue
			}
			seen[e.clue] = true
			counts[e.suspect]++
		}
	}
	return counts
}
