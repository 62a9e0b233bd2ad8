// Package nfo renders canonical movie metadata as Kodi-compatible
// movie.nfo XML files.
package nfo

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shelfmark/shelfmark/internal/merge"
)

// FileName is the file name media centers look for next to the movie file.
const FileName = "movie.nfo"

// actorElement is one <actor> entry in the movie element.
type actorElement struct {
	Name  string `xml:"name"`
	Thumb string `xml:"thumb,omitempty"`
	Order int    `xml:"order"`
}

// movieElement is the Kodi <movie> root. Absent fields are omitted
// entirely rather than written empty.
type movieElement struct {
	XMLName       xml.Name       `xml:"movie"`
	Title         string         `xml:"title,omitempty"`
	OriginalTitle string         `xml:"originaltitle,omitempty"`
	Plot          string         `xml:"plot,omitempty"`
	Premiered     string         `xml:"premiered,omitempty"`
	Runtime       int            `xml:"runtime,omitempty"`
	Director      string         `xml:"director,omitempty"`
	Studio        string         `xml:"studio,omitempty"`
	Label         string         `xml:"tag,omitempty"`
	Set           *setElement    `xml:"set,omitempty"`
	Thumb         string         `xml:"thumb,omitempty"`
	Genres        []string       `xml:"genre"`
	Actors        []actorElement `xml:"actor"`
}

type setElement struct {
	Name string `xml:"name"`
}

// Render serializes a canonical record to NFO XML.
func Render(rec *merge.CanonicalRecord) ([]byte, error) {
	m := movieElement{
		Title:         rec.Fields[merge.FieldTitle],
		OriginalTitle: rec.Fields[merge.FieldOriginalTitle],
		Plot:          rec.Fields[merge.FieldDescription],
		Premiered:     rec.Fields[merge.FieldReleaseDate],
		Director:      rec.Fields[merge.FieldDirector],
		Studio:        rec.Fields[merge.FieldStudio],
		Label:         rec.Fields[merge.FieldLabel],
		Thumb:         rec.Fields[merge.FieldPosterURL],
		Genres:        rec.Genres,
	}

	if v, ok := rec.Value(merge.FieldRuntime); ok {
		if minutes, err := strconv.Atoi(v); err == nil {
			m.Runtime = minutes
		}
	}
	if series, ok := rec.Value(merge.FieldSeries); ok {
		m.Set = &setElement{Name: series}
	}
	for i, actor := range rec.Cast {
		m.Actors = append(m.Actors, actorElement{
			Name:  actor.Name,
			Thumb: actor.ImageURL,
			Order: i,
		})
	}

	body, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal nfo: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// Write renders the record and writes movie.nfo into dir.
func Write(dir string, rec *merge.CanonicalRecord) (string, error) {
	data, err := Render(rec)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write nfo: %w", err)
	}
	return path, nil
}
