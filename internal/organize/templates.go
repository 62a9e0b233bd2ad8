package organize

import (
	"regexp"
	"strconv"
	"strings"
)

// Tokens carries the values available to the folder name template.
type Tokens struct {
	Title  string
	Year   int
	Studio string
}

// tokenPattern matches template tokens like {title} or {year}
var tokenPattern = regexp.MustCompile(`\{([^}]+)\}`)

// FormatFolder renders a folder name template such as "{title} ({year})"
// and sanitizes the result for the filesystem.
func FormatFolder(template string, tokens Tokens) string {
	result := tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "{"), "}")
		return resolveToken(name, tokens)
	})
	return cleanFolderName(result)
}

func resolveToken(name string, tokens Tokens) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "title":
		return tokens.Title
	case "year":
		if tokens.Year > 0 {
			return strconv.Itoa(tokens.Year)
		}
		return ""
	case "studio":
		return tokens.Studio
	}
	return ""
}

var (
	multiSpacePattern = regexp.MustCompile(`\s+`)
	emptyParenPattern = regexp.MustCompile(`\s*\(\s*\)\s*`)
)

// cleanFolderName strips characters that are invalid on common
// filesystems and tidies whitespace left by empty tokens.
func cleanFolderName(name string) string {
	name = strings.ReplaceAll(name, ":", " -")

	invalidChars := []string{"<", ">", "\"", "/", "\\", "|", "?", "*"}
	for _, char := range invalidChars {
		name = strings.ReplaceAll(name, char, "")
	}

	name = emptyParenPattern.ReplaceAllString(name, " ")
	name = multiSpacePattern.ReplaceAllString(name, " ")
	name = strings.Trim(name, " .")

	return name
}
