package merge

import (
	"reflect"
	"testing"
)

func TestReduceGenres_DedupKeepsFirstOccurrence(t *testing.T) {
	records := []SourceRecord{
		{SourceID: "a", Genres: []string{"Drama", "ACTION"}},
		{SourceID: "b", Genres: []string{"action", "Comedy", "drama"}},
	}

	got := reduceGenres(records, []string{"a", "b"})
	want := []string{"Drama", "ACTION", "Comedy"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reduceGenres() = %v, want %v", got, want)
	}
}

func TestReduceGenres_PriorityOrderBeforeInputOrder(t *testing.T) {
	// b is prioritized for genres, so its list leads even though a comes
	// first in input order; unconfigured c is appended in input order.
	records := []SourceRecord{
		{SourceID: "a", Genres: []string{"Thriller"}},
		{SourceID: "b", Genres: []string{"Noir"}},
		{SourceID: "c", Genres: []string{"Western"}},
	}

	got := reduceGenres(records, []string{"b"})
	want := []string{"Noir", "Thriller", "Western"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reduceGenres() = %v, want %v", got, want)
	}
}

func TestReduceGenres_DropsEmptyNames(t *testing.T) {
	records := []SourceRecord{
		{SourceID: "a", Genres: []string{"", "  ", "Drama"}},
	}

	got := reduceGenres(records, nil)
	want := []string{"Drama"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reduceGenres() = %v, want %v", got, want)
	}
}

func TestReduceCast_DedupByTrimmedCaseInsensitiveName(t *testing.T) {
	records := []SourceRecord{
		{SourceID: "a", Cast: []Actor{{Name: "Jane Doe"}}},
		{SourceID: "b", Cast: []Actor{{Name: "  jane doe "}, {Name: "John Roe"}}},
	}

	got := reduceCast(records, []string{"a", "b"})
	want := []Actor{{Name: "Jane Doe"}, {Name: "John Roe"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reduceCast() = %v, want %v", got, want)
	}
}

func TestReduceCast_ImageFromHigherPrioritySource(t *testing.T) {
	records := []SourceRecord{
		{SourceID: "a", Cast: []Actor{{Name: "Jane Doe", ImageURL: "https://a/jane.jpg"}}},
		{SourceID: "b", Cast: []Actor{{Name: "Jane Doe", ImageURL: "https://b/jane.jpg"}}},
	}

	got := reduceCast(records, []string{"a", "b"})
	if len(got) != 1 {
		t.Fatalf("expected 1 actor, got %d", len(got))
	}
	if got[0].ImageURL != "https://a/jane.jpg" {
		t.Errorf("image = %q, want higher-priority source's image", got[0].ImageURL)
	}
}

func TestReduceCast_AbsentPlusPresentResolvesToPresent(t *testing.T) {
	// The prioritized source has no image, so the lower-priority one fills it
	// while the prioritized source keeps the name casing and position.
	records := []SourceRecord{
		{SourceID: "a", Cast: []Actor{{Name: "Jane Doe"}}},
		{SourceID: "b", Cast: []Actor{{Name: "JANE DOE", ImageURL: "https://b/jane.jpg"}}},
	}

	got := reduceCast(records, []string{"a", "b"})
	if len(got) != 1 {
		t.Fatalf("expected 1 actor, got %d", len(got))
	}
	if got[0].Name != "Jane Doe" {
		t.Errorf("name = %q, want first-encountered casing", got[0].Name)
	}
	if got[0].ImageURL != "https://b/jane.jpg" {
		t.Errorf("image = %q, want fallback image", got[0].ImageURL)
	}
}

func TestReduceCast_DropsEmptyNames(t *testing.T) {
	records := []SourceRecord{
		{SourceID: "a", Cast: []Actor{{Name: "   "}, {Name: "Jane Doe"}}},
	}

	got := reduceCast(records, nil)
	want := []Actor{{Name: "Jane Doe"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reduceCast() = %v, want %v", got, want)
	}
}

func TestOrderRecords_Deterministic(t *testing.T) {
	records := []SourceRecord{
		{SourceID: "c"},
		{SourceID: "a"},
		{SourceID: "b"},
	}

	ids := func(rs []*SourceRecord) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.SourceID
		}
		return out
	}

	got := ids(orderRecords(records, []string{"b", "ghost", "a"}))
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("orderRecords() = %v, want %v", got, want)
	}
}
