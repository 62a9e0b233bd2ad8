package merge

import (
	"strings"
)

// orderRecords returns the records in list-merge order: sources named in the
// priority list first, in that order, then the rest in input order. A source
// id appearing more than once among the records keeps its input-order
// duplicates adjacent. The result is deterministic for a given input.
func orderRecords(records []SourceRecord, priority []string) []*SourceRecord {
	ordered := make([]*SourceRecord, 0, len(records))
	taken := make([]bool, len(records))

	for _, id := range priority {
		for i := range records {
			if !taken[i] && records[i].SourceID == id {
				ordered = append(ordered, &records[i])
				taken[i] = true
			}
		}
	}
	for i := range records {
		if !taken[i] {
			ordered = append(ordered, &records[i])
		}
	}
	return ordered
}

// reduceGenres concatenates all sources' genre lists in priority-then-input
// order and deduplicates case-insensitively, keeping the first occurrence's
// position and casing. Empty names carry no information and are dropped.
func reduceGenres(records []SourceRecord, priority []string) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, rec := range orderRecords(records, priority) {
		for _, g := range rec.Genres {
			name := strings.TrimSpace(g)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// reduceCast merges cast lists by case-insensitive trimmed name. The first
// occurrence in the priority-ordered sequence fixes the entry's position and
// name casing; the image URL comes from the highest-priority source that has
// one, so a later source fills an image a higher-priority source lacked.
func reduceCast(records []SourceRecord, priority []string) []Actor {
	var out []Actor
	index := make(map[string]int)

	for _, rec := range orderRecords(records, priority) {
		for _, a := range rec.Cast {
			name := strings.TrimSpace(a.Name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)

			if i, dup := index[key]; dup {
				if out[i].ImageURL == "" && a.ImageURL != "" {
					out[i].ImageURL = a.ImageURL
				}
				continue
			}

			index[key] = len(out)
			out = append(out, Actor{Name: name, ImageURL: a.ImageURL})
		}
	}
	return out
}
