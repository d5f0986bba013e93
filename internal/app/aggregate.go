package app

import (
	"math"
	"sort"

	"azal_reviews/internal/domain"
)

// Aggregate derives the dashboard statistics from the full annotated set.
// Language and country counts keep first-seen order before sorting, so equal
// counts stay in input order.
func Aggregate(rs []domain.AnnotatedReview) domain.Stats {
	st := domain.Stats{
		Total:     len(rs),
		Languages: []domain.LanguageStat{},
		Ratings:   []domain.RatingStat{},
		Countries: domain.CountryStats{},
	}
	if len(rs) == 0 {
		return st
	}

	langIdx := make(map[string]int, 16)
	ratingIdx := make(map[int]int, 6)
	sum := 0
	for _, r := range rs {
		if i, ok := langIdx[r.DetectedLanguage]; ok {
			st.Languages[i].Count++
		} else {
			langIdx[r.DetectedLanguage] = len(st.Languages)
			st.Languages = append(st.Languages, domain.LanguageStat{Language: r.DetectedLanguage, Count: 1})
		}

		if i, ok := ratingIdx[r.Rating]; ok {
			st.Ratings[i].Count++
		} else {
			ratingIdx[r.Rating] = len(st.Ratings)
			st.Ratings = append(st.Ratings, domain.RatingStat{Rating: r.Rating, Count: 1})
		}

		st.Countries[r.Country]++
		sum += r.Rating
	}

	sort.SliceStable(st.Languages, func(i, j int) bool { return st.Languages[i].Count > st.Languages[j].Count })
	sort.SliceStable(st.Ratings, func(i, j int) bool { return st.Ratings[i].Rating < st.Ratings[j].Rating })
	st.AverageRating = round1(float64(sum) / float64(len(rs)))
	return st
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Percent is count as a share of total, one decimal.
func Percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(count) * 100 / float64(total))
}
