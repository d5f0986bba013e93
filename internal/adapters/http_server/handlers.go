package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"azal_reviews/internal/app"
	"azal_reviews/internal/domain"
)

const maxTermLen = 200

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type statusResponse struct {
	State    string     `json:"state"`
	Source   string     `json:"source"`
	Reviews  int        `json:"reviews"`
	LoadedAt *time.Time `json:"loadedAt,omitempty"`
	Error    string     `json:"error,omitempty"`
}

type statsResponse struct {
	State string `json:"state"`
	domain.Stats
}

type reviewsResponse struct {
	State string `json:"state"`
	Query string `json:"q,omitempty"`
	domain.ReviewsPage
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.dashboard)
	s.mux.Get("/v1/status", h.status)
	s.mux.Get("/v1/stats", h.stats)
	s.mux.Get("/v1/reviews", h.listReviews)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeLoading(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	writeProblem(w, http.StatusServiceUnavailable, "Loading", "reviews are still loading")
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// writeJSON sends v with an ETag, answering 304 when the client already has it.
func writeJSON(w http.ResponseWriter, r *http.Request, state domain.LoadState, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not encode response")
		return
	}
	w.Header().Set("X-Load-State", state.String())
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func pending(st domain.LoadState) bool {
	return st == domain.NotLoaded || st == domain.Loading
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	st := h.Q.Status()
	resp := statusResponse{State: st.State.String(), Source: st.Source, Reviews: st.Reviews}
	if !st.LoadedAt.IsZero() {
		t := st.LoadedAt
		resp.LoadedAt = &t
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, r, st.State, resp)
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Q.Stats(r.Context())
	switch {
	case errors.Is(err, domain.ErrNotLoaded):
		writeLoading(w)
		return
	case err != nil && !errors.Is(err, domain.ErrLoadFailed):
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "stats unavailable")
		return
	}
	st := h.Q.Status().State
	writeJSON(w, r, st, statsResponse{State: st.String(), Stats: stats})
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if len(term) > maxTermLen {
		writeProblem(w, http.StatusBadRequest, "Invalid query", "q must be at most 200 bytes")
		return
	}

	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 1000 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 1000")
			return
		}
		limit = l
	}

	page, err := h.Q.ListReviews(r.Context(), domain.ReviewsQuery{Term: term, Limit: limit})
	switch {
	case errors.Is(err, domain.ErrNotLoaded):
		writeLoading(w)
		return
	case err != nil && !errors.Is(err, domain.ErrLoadFailed):
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "reviews unavailable")
		return
	}
	st := h.Q.Status().State
	writeJSON(w, r, st, reviewsResponse{State: st.String(), Query: term, ReviewsPage: page})
}
