package nfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shelfmark/shelfmark/internal/merge"
)

func sampleRecord() *merge.CanonicalRecord {
	return &merge.CanonicalRecord{
		Fields: map[merge.Field]string{
			merge.FieldTitle:       "The Matrix",
			merge.FieldDescription: "A computer hacker learns the truth.",
			merge.FieldReleaseDate: "1999-03-31",
			merge.FieldRuntime:     "136",
			merge.FieldDirector:    "Lana Wachowski",
			merge.FieldPosterURL:   "https://img.example/matrix.jpg",
		},
		Genres: []string{"Action", "Science Fiction"},
		Cast: []merge.Actor{
			{Name: "Keanu Reeves", ImageURL: "https://img.example/keanu.jpg"},
			{Name: "Carrie-Anne Moss"},
		},
	}
}

func TestRender(t *testing.T) {
	data, err := Render(sampleRecord())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"<title>The Matrix</title>",
		"<premiered>1999-03-31</premiered>",
		"<runtime>136</runtime>",
		"<genre>Action</genre>",
		"<genre>Science Fiction</genre>",
		"<name>Keanu Reeves</name>",
		"<thumb>https://img.example/keanu.jpg</thumb>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Absent fields stay out of the document entirely.
	for _, reject := range []string{"<studio>", "<tag>", "<set>", "<originaltitle>"} {
		if strings.Contains(out, reject) {
			t.Errorf("output should not contain %q:\n%s", reject, out)
		}
	}
}

func TestRender_SeriesSet(t *testing.T) {
	rec := sampleRecord()
	rec.Fields[merge.FieldSeries] = "The Matrix Collection"

	data, err := Render(rec)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(data), "<name>The Matrix Collection</name>") {
		t.Errorf("set name missing:\n%s", data)
	}
}

func TestRender_NonNumericRuntimeOmitted(t *testing.T) {
	rec := sampleRecord()
	rec.Fields[merge.FieldRuntime] = "unknown"

	data, err := Render(rec)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(string(data), "<runtime>") {
		t.Errorf("runtime should be omitted:\n%s", data)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, sampleRecord())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back nfo: %v", err)
	}
	if !strings.HasPrefix(string(data), xmlHeader()) {
		t.Errorf("missing xml header:\n%s", data)
	}
}

func xmlHeader() string {
	return "<?xml version=\"1.0\" encoding=\"UTF-8\"?>"
}
