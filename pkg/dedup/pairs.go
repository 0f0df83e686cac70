package dedup

import "sort"

// Pair is an unordered pair of paths stored with Left < Right.
type Pair struct {
	Left  string
	Right string
}

func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{Left: a, Right: b}
}

// Pairs returns every unordered pair of distinct paths in group exactly once,
// in lexicographic order.
func Pairs(group []string) []Pair {
	paths := append([]string(nil), group...)
	sort.Strings(paths)

	seen := make(map[Pair]struct{})
	var pairs []Pair
	for i := range paths {
		for j := i + 1; j < len(paths); j++ {
			if paths[i] == paths[j] {
				continue
			}

			p := NewPair(paths[i], paths[j])
			if _, exists := seen[p]; exists {
				continue
			}
			seen[p] = struct{}{}
			pairs = append(pairs, p)
		}
	}

	return pairs
}
