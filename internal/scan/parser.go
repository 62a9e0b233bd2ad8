package scan

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ParsedMovie represents a movie file parsed from a filename.
type ParsedMovie struct {
	Title    string `json:"title"`
	Year     int    `json:"year,omitempty"`
	FilePath string `json:"filePath"`
	FileSize int64  `json:"fileSize,omitempty"`
}

var (
	// Movie patterns: Title.Year.Junk, Title (Year) Junk, Title.Year
	moviePatternDot    = regexp.MustCompile(`^(.+?)[\.\s_-]+(\d{4})[\.\s_-]+(.*)$`)
	moviePatternParen  = regexp.MustCompile(`^(.+?)\s*\((\d{4})\)\s*(.*)$`)
	moviePatternSimple = regexp.MustCompile(`^(.+?)[\.\s_-]+(\d{4})$`)

	// Release noise trailing the year: quality, source and codec tags.
	releaseNoisePattern = regexp.MustCompile(`(?i)[\.\s_-]+(2160p|1080p|720p|480p|4k|uhd|blu-?ray|bdrip|brrip|remux|web-?dl|webrip|hdtv|dvdrip|x26[45]|h\.?26[45]|hevc|av1|xvid).*$`)

	cleanupPattern = regexp.MustCompile(`[\.\s_-]+`)
)

// ParseFilename parses a movie filename into a title and year.
func ParseFilename(filename string) *ParsedMovie {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)

	parsed := &ParsedMovie{FilePath: filename}

	if match := moviePatternParen.FindStringSubmatch(name); match != nil {
		parsed.Title = cleanTitle(match[1])
		parsed.Year, _ = strconv.Atoi(match[2])
		return parsed
	}

	if match := moviePatternDot.FindStringSubmatch(name); match != nil {
		if year, _ := strconv.Atoi(match[2]); plausibleYear(year) {
			parsed.Title = cleanTitle(match[1])
			parsed.Year = year
			return parsed
		}
	}

	if match := moviePatternSimple.FindStringSubmatch(name); match != nil {
		if year, _ := strconv.Atoi(match[2]); plausibleYear(year) {
			parsed.Title = cleanTitle(match[1])
			parsed.Year = year
			return parsed
		}
	}

	// No year found; strip release tags and use the rest as the title.
	parsed.Title = cleanTitle(releaseNoisePattern.ReplaceAllString(name, ""))
	return parsed
}

// ParsePath parses a full path, preferring the folder name over the file
// name when the folder carries a year and the file does not.
func ParsePath(path string) *ParsedMovie {
	parsed := ParseFilename(filepath.Base(path))
	parsed.FilePath = path

	if parsed.Year == 0 {
		if dir := filepath.Base(filepath.Dir(path)); dir != "." && dir != string(filepath.Separator) {
			if fromDir := ParseFilename(dir); fromDir.Year > 0 {
				fromDir.FilePath = path
				return fromDir
			}
		}
	}
	return parsed
}

func plausibleYear(year int) bool {
	return year >= 1900 && year <= 2100
}

// cleanTitle normalizes separators to single spaces.
func cleanTitle(title string) string {
	title = cleanupPattern.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}
