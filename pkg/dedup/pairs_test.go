package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairs(t *testing.T) {
	tests := []struct {
		name     string
		group    []string
		expected []Pair
	}{
		{"empty", nil, nil},
		{"single", []string{"/a"}, nil},
		{"two_unsorted", []string{"/b", "/a"}, []Pair{{"/a", "/b"}}},
		{"three", []string{"/c", "/a", "/b"}, []Pair{{"/a", "/b"}, {"/a", "/c"}, {"/b", "/c"}}},
		{"repeated_path", []string{"/a", "/b", "/a"}, []Pair{{"/a", "/b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Pairs(tt.group))
		})
	}
}

func TestPairs_CountAndOrdering(t *testing.T) {
	group := []string{"/e", "/d", "/c", "/b", "/a"}
	pairs := Pairs(group)

	assert.Len(t, pairs, 10)
	seen := make(map[Pair]bool)
	for _, p := range pairs {
		assert.Less(t, p.Left, p.Right)
		assert.False(t, seen[p], "pair %v visited twice", p)
		seen[p] = true
	}
}

func TestNewPair(t *testing.T) {
	assert.Equal(t, NewPair("/a", "/b"), NewPair("/b", "/a"))
}
