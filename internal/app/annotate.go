package app

import "azal_reviews/internal/domain"

// Annotate attaches the detected language and the mock translation to every record.
func Annotate(rs []domain.ReviewRecord) []domain.AnnotatedReview {
	out := make([]domain.AnnotatedReview, len(rs))
	for i, r := range rs {
		lang := ClassifyLanguage(r.Country)
		out[i] = domain.AnnotatedReview{
			ReviewRecord:     r,
			DetectedLanguage: lang,
			TranslatedReview: Translate(r.Review, lang),
		}
	}
	return out
}
