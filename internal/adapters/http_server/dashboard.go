package httpserver

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"azal_reviews/internal/app"
	"azal_reviews/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

var ratingColors = map[int]string{
	1: "#FF6B6B",
	2: "#FFB26B",
	3: "#FFDB6B",
	4: "#B8DC8E",
	5: "#77DD77",
}

func ratingColor(r int) string {
	if c, ok := ratingColors[r]; ok {
		return c
	}
	return "#000"
}

type shareRow struct {
	Label   string
	Rating  int
	Count   int
	Percent float64
	Color   string
}

type reviewRow struct {
	Date     string
	User     string
	Country  string
	Language string
	Rating   int
	Color    string
	Text     string
}

type dashboardView struct {
	Loading   bool
	Empty     bool
	Query     string
	Total     int
	Countries int
	Average   float64
	Languages []shareRow
	Ratings   []shareRow
	Reviews   []reviewRow
	Shown     int
}

func buildView(st domain.Stats, page domain.ReviewsPage, q string) dashboardView {
	v := dashboardView{
		Query:     q,
		Total:     st.Total,
		Countries: len(st.Countries),
		Average:   st.AverageRating,
		Empty:     st.Total == 0,
		Shown:     len(page.Items),
	}
	for _, l := range st.Languages {
		v.Languages = append(v.Languages, shareRow{Label: l.Language, Count: l.Count, Percent: app.Percent(l.Count, st.Total)})
	}
	for _, r := range st.Ratings {
		v.Ratings = append(v.Ratings, shareRow{Count: r.Count, Percent: app.Percent(r.Count, st.Total), Color: ratingColor(r.Rating), Rating: r.Rating})
	}
	for _, r := range page.Items {
		row := reviewRow{
			User:     r.UserName,
			Country:  r.Country,
			Language: r.DetectedLanguage,
			Rating:   r.Rating,
			Color:    ratingColor(r.Rating),
			Text:     r.TranslatedReview,
		}
		if !r.Date.IsZero() {
			row.Date = r.Date.Local().Format("2006-01-02")
		}
		v.Reviews = append(v.Reviews, row)
	}
	return v
}

// clipTerm shortens q to at most n bytes without splitting a rune.
func clipTerm(q string, n int) string {
	if len(q) <= n {
		return q
	}
	for n > 0 && !utf8.RuneStart(q[n]) {
		n--
	}
	return q[:n]
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	q = clipTerm(q, maxTermLen)

	var view dashboardView
	st, err := h.Q.Stats(r.Context())
	switch {
	case errors.Is(err, domain.ErrNotLoaded):
		view = dashboardView{Loading: true, Query: q}
	case err != nil:
		// a failed load renders the empty state
		view = dashboardView{Empty: true, Query: q}
	default:
		page, err := h.Q.ListReviews(r.Context(), domain.ReviewsQuery{Term: q})
		if err != nil {
			log.Error().Err(err).Msg("list reviews for dashboard")
		}
		view = buildView(st, page, q)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "dashboard.html", view); err != nil {
		log.Error().Err(err).Msg("render dashboard")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not render dashboard")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if view.Loading {
		w.Header().Set("Refresh", "2")
	}
	_, _ = w.Write(buf.Bytes())
}
