package domain

import "time"

// ReviewRecord is one decoded spreadsheet row. Absent cells stay zero-valued;
// Rating 0 means the cell was missing or not a number.
type ReviewRecord struct {
	Date     time.Time `json:"date"`
	UserName string    `json:"userName"`
	Country  string    `json:"country"`
	Rating   int       `json:"rating"`
	Review   string    `json:"review"`

	// Only populated by the ingestor.
	SourceID string `json:"-"`
	Title    string `json:"-"`
}

// AnnotatedReview is a ReviewRecord plus the language label and the mock
// translation computed once at load time.
type AnnotatedReview struct {
	ReviewRecord
	DetectedLanguage string `json:"detectedLanguage"`
	TranslatedReview string `json:"translatedReview"`
}

type LanguageStat struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type RatingStat struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// CountryStats maps a country code to the number of reviews from it.
type CountryStats map[string]int

type Stats struct {
	Total         int            `json:"total"`
	AverageRating float64        `json:"averageRating"`
	Languages     []LanguageStat `json:"languages"`
	Ratings       []RatingStat   `json:"ratings"`
	Countries     CountryStats   `json:"countries"`
}
