package suspects_test

import (
	"testing"

	"github.com/myrjola/detectivequest/internal/suspects"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want uint32
	}{
		{name: "empty string is the seed", key: "", want: 5381 % suspects.BucketCount},
		{name: "single byte", key: "a", want: 9},
		{name: "multi-byte runes hash per byte", key: "Pétala rosa", want: 16},
		{name: "long key wraps around 64 bits", key: "Cofre arrombado, tem as mesmas pegadas de lama", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, suspects.Hash(tt.key))
			require.Less(t, suspects.Hash(tt.key), uint32(suspects.BucketCount))
		})
	}
}

func TestIndex_PutGet(t *testing.T) {
	associations := map[string]string{
		"Diário com inicial 'S'":                         "Sr. Silva",
		"Testamento alterado":                            "Sr. Silva",
		"Violino quebrado":                               "Sr. Silva",
		"Pétala rosa":                                    "Sra. Almeida",
		"Carta aberta":                                   "Sra. Almeida",
		"Jardim de espirradeira rosa":                    "Sra. Almeida",
		"Pegadas de lama seca":                           "Jardineiro",
		"Tesoura de jardinagem ensanguentada":            "Jardineiro",
		"Cofre arrombado, tem as mesmas pegadas de lama": "Jardineiro",
	}
	idx := suspects.NewIndex()
	for clue, suspect := range associations {
		idx.Put(clue, suspect)
	}
	require.Equal(t, len(associations), idx.Len())

	for clue, want := range associations {
		got, ok := idx.Get(clue)
		require.True(t, ok, "clue %q not found", clue)
		require.Equal(t, want, got)
	}

	for _, clue := range []string{"cigarro pisado", "pétala rosa", "Carta aberta ", ""} {
		got, ok := idx.Get(clue)
		require.False(t, ok, "unexpected attribution for %q", clue)
		require.Empty(t, got)
	}

	require.Equal(t, map[string]int{"Sr. Silva": 3, "Sra. Almeida": 3, "Jardineiro": 3}, idx.ClueCounts())
}

func TestIndex_collisionsAreChained(t *testing.T) {
	// 'A' and '`' are 31 apart so they land in the same bucket.
	require.Equal(t, suspects.Hash("A"), suspects.Hash("`"))

	idx := suspects.NewIndex()
	idx.Put("A", "Sr. Silva")
	idx.Put("`", "Jardineiro")

	got, ok := idx.Get("A")
	require.True(t, ok)
	require.Equal(t, "Sr. Silva", got)
	got, ok = idx.Get("`")
	require.True(t, ok)
	require.Equal(t, "Jardineiro", got)
}

func TestIndex_duplicateKeyShadows(t *testing.T) {
	idx := suspects.NewIndex()
	idx.Put("Carta aberta", "Sr. Silva")
	idx.Put("Carta aberta", "Sra. Almeida")

	got, ok := idx.Get("Carta aberta")
	require.True(t, ok)
	require.Equal(t, "Sra. Almeida", got)
	require.Equal(t, 2, idx.Len())
	require.Equal(t, map[string]int{"Sra. Almeida": 1}, idx.ClueCounts())
}

func TestIndex_emptyClueIgnored(t *testing.T) {
	idx := suspects.NewIndex()
	idx.Put("", "Jardineiro")
	require.Equal(t, 0, idx.Len())
	_, ok := idx.Get("")
	require.False(t, ok)
}
