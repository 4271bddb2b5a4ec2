// Package normalize turns a raw completion reply into decoded structured data.
//
// Replies are prose-shaped approximations of JSON. Clean applies a fixed,
// ordered list of string transforms and the result is decoded strictly; there
// is no repair beyond these steps.
package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

// Step is a single pure cleanup transform.
type Step func(string) string

// Steps is the cleanup sequence. Each step assumes the output of the previous
// one.
var Steps = []Step{
	StripCodeFences,
	StripLineBreaks,
	CollapseWhitespace,
	UnescapeQuotes,
	StripFormatLabel,
}

var (
	whitespaceRunRegex = regexp.MustCompile(`\s{2,}`)
	formatLabelRegex   = regexp.MustCompile(`^\s*[A-Za-z][A-Za-z0-9_-]*\s*([\[{])`)
)

// StripCodeFences removes every triple-backtick marker.
func StripCodeFences(s string) string {
	return strings.ReplaceAll(s, "```", "")
}

// StripLineBreaks removes carriage returns and newlines.
func StripLineBreaks(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// CollapseWhitespace replaces runs of two or more whitespace characters with a
// single space.
func CollapseWhitespace(s string) string {
	return whitespaceRunRegex.ReplaceAllString(s, " ")
}

// UnescapeQuotes turns over-escaped quotes back into plain quotes.
func UnescapeQuotes(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

// StripFormatLabel drops a leading format word such as "json" when it sits
// directly in front of the payload's opening bracket.
func StripFormatLabel(s string) string {
	return formatLabelRegex.ReplaceAllString(s, "$1")
}

// Clean runs every step in order.
func Clean(raw string) string {
	s := raw
	for _, step := range Steps {
		s = step(s)
	}
	return strings.TrimSpace(s)
}

// Normalize cleans raw and decodes it into generic JSON values
// (map[string]any, []any, string, float64, bool or nil).
func Normalize(raw string) (any, error) {
	return Decode[any](raw)
}

// Decode cleans raw and decodes it into T. Any decode failure is returned as
// a *models.MalformedReplyError carrying the cleaned text.
func Decode[T any](raw string) (T, error) {
	var out T
	cleaned := Clean(raw)
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		var zero T
		return zero, &models.MalformedReplyError{Cleaned: cleaned, Err: err}
	}
	return out, nil
}
