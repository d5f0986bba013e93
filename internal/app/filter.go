package app

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"azal_reviews/internal/domain"
)

// Filter returns the reviews whose translation contains term, ignoring case.
// An empty term returns rs itself. The input slice is never modified.
func Filter(rs []domain.AnnotatedReview, term string) []domain.AnnotatedReview {
	if term == "" {
		return rs
	}
	// Casers keep state; one per call.
	lower := cases.Lower(language.Und)
	needle := lower.String(term)

	out := make([]domain.AnnotatedReview, 0, len(rs)/4)
	for _, r := range rs {
		if r.TranslatedReview == "" {
			continue
		}
		if strings.Contains(lower.String(r.TranslatedReview), needle) {
			out = append(out, r)
		}
	}
	return out
}
