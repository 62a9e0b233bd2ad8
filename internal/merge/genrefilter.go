package merge

import (
	"strings"
)

// Blacklist is a set of genre names to exclude from canonical records,
// matched case-insensitively. It is read-only during a merge; rebuilding it
// between runs is how configuration changes take effect.
type Blacklist map[string]struct{}

// NewBlacklist builds a blacklist from configured genre names. Names are
// trimmed and lower-cased; empty entries are ignored.
func NewBlacklist(names []string) Blacklist {
	b := make(Blacklist, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" {
			continue
		}
		b[key] = struct{}{}
	}
	return b
}

// Contains reports whether a genre name is blacklisted.
func (b Blacklist) Contains(name string) bool {
	_, ok := b[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Filter removes blacklisted genres, preserving the relative order of the
// remaining entries. The input slice is not modified.
func (b Blacklist) Filter(genres []string) []string {
	if len(b) == 0 || len(genres) == 0 {
		return genres
	}
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if !b.Contains(g) {
			out = append(out, g)
		}
	}
	return out
}
