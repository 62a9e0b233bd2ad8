package merge

// Field names a scalar metadata field on a source record.
type Field string

// Scalar fields a scraper source may supply.
const (
	FieldTitle         Field = "title"
	FieldOriginalTitle Field = "original_title"
	FieldDescription   Field = "description"
	FieldReleaseDate   Field = "release_date"
	FieldRuntime       Field = "runtime"
	FieldDirector      Field = "director"
	FieldStudio        Field = "studio"
	FieldLabel         Field = "label"
	FieldSeries        Field = "series"
	FieldPosterURL     Field = "poster_url"
)

// List-valued field keys. They never appear in SourceRecord.Fields; they
// exist so Priorities can rank sources for the genre and cast merges with
// the same per-field rule used for scalars.
const (
	FieldGenres Field = "genres"
	FieldCast   Field = "cast"
)

// SourceUser is the reserved source id for manual user edits. A record
// carrying this id outranks every configured source for exactly the fields
// it supplies.
const SourceUser = "user"

// ScalarFields lists all scalar fields in resolution order. Resolving in a
// fixed order keeps provenance and output deterministic.
var ScalarFields = []Field{
	FieldTitle,
	FieldOriginalTitle,
	FieldDescription,
	FieldReleaseDate,
	FieldRuntime,
	FieldDirector,
	FieldStudio,
	FieldLabel,
	FieldSeries,
	FieldPosterURL,
}

// Actor is one cast entry from a source.
type Actor struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// SourceRecord is one scraper source's extracted metadata for a single
// movie, prior to merging. Absent scalar fields have no map entry; an empty
// string never stands in for absence.
type SourceRecord struct {
	SourceID string          `json:"sourceId"`
	Fields   map[Field]string `json:"fields"`
	Genres   []string        `json:"genres,omitempty"`
	Cast     []Actor         `json:"cast,omitempty"`
}

// Priorities maps a field to the ordered source ids preferred for it,
// highest first. Sources missing from a list rank below all listed ones,
// tie-broken by input order of the records handed to Resolve.
type Priorities map[Field][]string

// CanonicalRecord is the single reconciled metadata object produced by a
// merge. It is constructed once per Resolve call and not mutated afterwards;
// a re-scrape builds a replacement from a fresh record set.
type CanonicalRecord struct {
	Fields map[Field]string `json:"fields"`
	Genres []string         `json:"genres"`
	Cast   []Actor          `json:"cast"`

	// FieldSources records which source supplied each resolved scalar field.
	FieldSources map[Field]string `json:"fieldSources"`
}

// Value returns the resolved value for a scalar field and whether one exists.
func (c *CanonicalRecord) Value(f Field) (string, bool) {
	v, ok := c.Fields[f]
	return v, ok
}
