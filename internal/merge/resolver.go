package merge

import (
	"errors"
)

// ErrInsufficientInput is returned when a merge is attempted with no source
// records; a canonical record cannot be produced from nothing.
var ErrInsufficientInput = errors.New("merge: no source records supplied")

// Resolve reduces one or more source records for the same movie into a
// single canonical record.
//
// For each scalar field the configured priority order is walked and the
// first non-absent value wins. If no prioritized source supplied the field,
// the records are scanned in input order and the first non-absent value
// wins. Fields no source supplied stay absent; that is not an error.
//
// Genre and cast lists are merged by the list reducer, then the genre
// blacklist is applied. A record with SourceID == SourceUser outranks every
// configured priority for exactly the fields it carries.
//
// Resolve is a pure function of its inputs: it never mutates the records,
// priorities, or blacklist, performs no I/O, and is safe to call
// concurrently for independent movies.
func Resolve(records []SourceRecord, priorities Priorities, blacklist Blacklist) (*CanonicalRecord, error) {
	if len(records) == 0 {
		return nil, ErrInsufficientInput
	}

	out := &CanonicalRecord{
		Fields:       make(map[Field]string, len(ScalarFields)),
		FieldSources: make(map[Field]string, len(ScalarFields)),
	}

	for _, field := range ScalarFields {
		value, sourceID, ok := resolveScalar(records, field, effectivePriority(priorities, field))
		if !ok {
			continue
		}
		out.Fields[field] = value
		out.FieldSources[field] = sourceID
	}

	out.Genres = blacklist.Filter(reduceGenres(records, effectivePriority(priorities, FieldGenres)))
	out.Cast = reduceCast(records, effectivePriority(priorities, FieldCast))

	return out, nil
}

// effectivePriority prepends the reserved user source so manual overrides
// win per field without altering the configured ranking of other sources.
func effectivePriority(priorities Priorities, field Field) []string {
	configured := priorities[field]
	order := make([]string, 0, len(configured)+1)
	order = append(order, SourceUser)
	for _, id := range configured {
		if id != SourceUser {
			order = append(order, id)
		}
	}
	return order
}

// resolveScalar picks the value for one field. Priority entries naming a
// source that did not participate in this merge are skipped silently.
func resolveScalar(records []SourceRecord, field Field, priority []string) (value, sourceID string, ok bool) {
	for _, id := range priority {
		for i := range records {
			if records[i].SourceID != id {
				continue
			}
			if v, present := records[i].Fields[field]; present && v != "" {
				return v, id, true
			}
		}
	}

	// Fallback: first non-absent value in input order.
	for i := range records {
		if v, present := records[i].Fields[field]; present && v != "" {
			return v, records[i].SourceID, true
		}
	}

	return "", "", false
}
