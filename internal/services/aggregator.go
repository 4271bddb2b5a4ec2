package services

import (
	"slices"
	"strings"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

// PageSeparator marks a page boundary in the aggregated text so OCR noise at
// the bottom of one page does not fuse with the top of the next.
const PageSeparator = "\n\n---\n\n"

// Aggregate joins recognised pages in page order. The input order does not
// matter and the input slice is not modified. Pages with no text are skipped,
// so an all-blank document aggregates to "".
func Aggregate(pages []models.PageText) string {
	sorted := slices.Clone(pages)
	slices.SortStableFunc(sorted, func(a, b models.PageText) int {
		return a.PageIndex - b.PageIndex
	})

	parts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if text := strings.TrimSpace(p.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, PageSeparator)
}
