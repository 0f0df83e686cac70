package hashcache

import (
	"sort"
	"sync"

	"github.com/scylladb/go-set/strset"

	"github.com/autobrr/hldup/pkg/fingerprint"
)

// Cache maps a fingerprint to the set of paths sharing it. It is safe for
// concurrent inserts, so the walker callbacks of one root can share a cache.
// Independently built caches are combined with Join or Fold.
type Cache struct {
	mu      sync.RWMutex
	entries map[fingerprint.Fingerprint]*strset.Set
}

func New() *Cache {
	return &Cache{
		entries: make(map[fingerprint.Fingerprint]*strset.Set),
	}
}

// Insert adds path under fp. Inserting a path twice is a no-op.
func (c *Cache) Insert(path string, fp fingerprint.Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if paths, exists := c.entries[fp]; exists {
		paths.Add(path)
		return
	}

	c.entries[fp] = strset.New(path)
}

// Join returns a new cache holding the union of c and other, key by key.
// Neither input is modified, so Join is associative and commutative.
func (c *Cache) Join(other *Cache) *Cache {
	joined := New()
	joined.merge(c)
	joined.merge(other)
	return joined
}

func (c *Cache) merge(other *Cache) {
	if other == nil {
		return
	}

	other.mu.RLock()
	defer other.mu.RUnlock()

	for fp, paths := range other.entries {
		if existing, exists := c.entries[fp]; exists {
			existing.Merge(paths)
			continue
		}
		c.entries[fp] = paths.Copy()
	}
}

// Fold reduces any number of caches into one.
func Fold(caches ...*Cache) *Cache {
	folded := New()
	for _, c := range caches {
		folded.merge(c)
	}
	return folded
}

// Duplicates returns every path set with at least two members. Paths inside
// a group are sorted; the order of the groups is unspecified.
func (c *Cache) Duplicates() [][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var groups [][]string
	for _, paths := range c.entries {
		if paths.Size() < 2 {
			continue
		}

		group := paths.List()
		sort.Strings(group)
		groups = append(groups, group)
	}

	return groups
}

// Lookup returns the sorted paths stored under fp.
func (c *Cache) Lookup(fp fingerprint.Fingerprint) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	paths, exists := c.entries[fp]
	if !exists {
		return nil
	}

	list := paths.List()
	sort.Strings(list)
	return list
}

// Len returns the number of distinct fingerprints.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Paths returns the number of stored paths.
func (c *Cache) Paths() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, paths := range c.entries {
		n += paths.Size()
	}
	return n
}

// Equal reports whether both caches hold identical fingerprint -> path set
// mappings.
func (c *Cache) Equal(other *Cache) bool {
	if c == other {
		return true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	if len(c.entries) != len(other.entries) {
		return false
	}

	for fp, paths := range c.entries {
		otherPaths, exists := other.entries[fp]
		if !exists || !paths.IsEqual(otherPaths) {
			return false
		}
	}

	return true
}
