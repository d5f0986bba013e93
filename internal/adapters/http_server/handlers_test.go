package httpserver_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	server "azal_reviews/internal/adapters/http_server"
	"azal_reviews/internal/app"
	"azal_reviews/internal/domain"
)

type fakeSnaps struct {
	state domain.LoadState
	snap  domain.Snapshot
}

func (f *fakeSnaps) Snapshot() (domain.Snapshot, error) {
	switch f.state {
	case domain.Loaded:
		return f.snap, nil
	case domain.LoadFailed:
		return domain.Snapshot{Reviews: []domain.AnnotatedReview{}, Stats: app.Aggregate(nil)},
			fmt.Errorf("%w: open workbook: no such file", domain.ErrLoadFailed)
	}
	return domain.Snapshot{Reviews: []domain.AnnotatedReview{}, Stats: app.Aggregate(nil)}, domain.ErrNotLoaded
}

func (f *fakeSnaps) Status() domain.Status {
	st := domain.Status{State: f.state, Source: "test.xlsx", Reviews: len(f.snap.Reviews)}
	if f.state == domain.LoadFailed {
		st.Err = domain.ErrLoadFailed
	}
	return st
}

func loaded() *fakeSnaps {
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	reviews := app.Annotate([]domain.ReviewRecord{
		{Date: day, UserName: "Ivan", Country: "ru", Rating: 5, Review: "Быстро реагирует ..Спасибо"},
		{Date: day, UserName: "Tom", Country: "gb", Rating: 1, Review: "bad app"},
		{Date: day, UserName: "Aysel", Country: "az", Rating: 3, Review: "normal"},
	})
	return &fakeSnaps{state: domain.Loaded, snap: domain.Snapshot{
		Reviews: reviews,
		Stats:   app.Aggregate(reviews),
		Digest:  "abc123",
	}}
}

func newTestServer(t *testing.T, snaps *fakeSnaps) *httptest.Server {
	t.Helper()
	srv := server.New(nil)
	srv.MountHandlers(&server.Handlers{Q: app.NewQueryService(snaps, nil, time.Minute)})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, target string, hdr map[string]string) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(b)
}

func TestStats_Loading503(t *testing.T) {
	ts := newTestServer(t, &fakeSnaps{state: domain.Loading})
	resp, body := get(t, ts.URL+"/v1/stats", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content-type = %q", ct)
	}
	if !strings.Contains(body, `"title":"Loading"`) {
		t.Fatalf("body = %s", body)
	}
}

func TestStats_Loaded(t *testing.T) {
	ts := newTestServer(t, loaded())
	resp, body := get(t, ts.URL+"/v1/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got struct {
		State         string                `json:"state"`
		Total         int                   `json:"total"`
		AverageRating float64               `json:"averageRating"`
		Languages     []domain.LanguageStat `json:"languages"`
		Ratings       []domain.RatingStat   `json:"ratings"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v (%s)", err, body)
	}
	if got.State != "loaded" || got.Total != 3 || got.AverageRating != 3.0 {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if len(got.Languages) != 3 || got.Languages[0].Language != "Russian" {
		t.Fatalf("languages: %+v", got.Languages)
	}
	if len(got.Ratings) != 3 || got.Ratings[0].Rating != 1 {
		t.Fatalf("ratings: %+v", got.Ratings)
	}
}

func TestStats_FailedIsEmpty(t *testing.T) {
	ts := newTestServer(t, &fakeSnaps{state: domain.LoadFailed})
	resp, body := get(t, ts.URL+"/v1/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"state":"load_failed"`) || !strings.Contains(body, `"total":0`) {
		t.Fatalf("body = %s", body)
	}
	if resp.Header.Get("X-Load-State") != "load_failed" {
		t.Fatalf("X-Load-State = %q", resp.Header.Get("X-Load-State"))
	}
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t, &fakeSnaps{state: domain.LoadFailed})
	_, body := get(t, ts.URL+"/v1/status", nil)
	if !strings.Contains(body, `"state":"load_failed"`) || !strings.Contains(body, `"error":`) {
		t.Fatalf("body = %s", body)
	}
}

func TestReviews_FilterAndETag(t *testing.T) {
	ts := newTestServer(t, loaded())

	resp, body := get(t, ts.URL+"/v1/reviews?q=THANK", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var page struct {
		Items []domain.AnnotatedReview `json:"items"`
		Total int                      `json:"total"`
	}
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Items) != 1 || page.Total != 3 || page.Items[0].TranslatedReview != "Responds quickly.. Thank you" {
		t.Fatalf("unexpected page: %+v", page)
	}

	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	resp2, _ := get(t, ts.URL+"/v1/reviews?q=THANK", map[string]string{"If-None-Match": etag})
	if resp2.StatusCode != http.StatusNotModified {
		t.Fatalf("want 304, got %d", resp2.StatusCode)
	}
}

func TestReviews_BadLimit(t *testing.T) {
	ts := newTestServer(t, loaded())
	resp, _ := get(t, ts.URL+"/v1/reviews?limit=0", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestDashboard_Loaded(t *testing.T) {
	ts := newTestServer(t, loaded())
	resp, body := get(t, ts.URL+"/?q=app", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		"Translated to English from 3 languages",
		"Total of 3 reviews from 3 countries",
		"3.0★",
		"Translated Reviews (1 of 3)",
		"33.3%",
		"#FF6B6B",
		"2024-03-01",
		`value="app"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestDashboard_LongTermKeepsRunesWhole(t *testing.T) {
	ts := newTestServer(t, loaded())
	term := "thank you" + strings.Repeat("я", 100) // 209 bytes
	resp, body := get(t, ts.URL+"/?q="+url.QueryEscape(term), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !utf8.ValidString(body) {
		t.Fatal("dashboard body is not valid UTF-8")
	}
	// 9 ASCII bytes + 95 two-byte runes fit in 200 bytes
	want := `value="thank you` + strings.Repeat("я", 95) + `"`
	if !strings.Contains(body, want) {
		t.Fatalf("clipped term not echoed whole")
	}
}

func TestDashboard_LoadingAndEmpty(t *testing.T) {
	ts := newTestServer(t, &fakeSnaps{state: domain.Loading})
	_, body := get(t, ts.URL+"/", nil)
	if !strings.Contains(body, "Loading review data...") {
		t.Fatalf("loading page: %s", body)
	}

	ts2 := newTestServer(t, &fakeSnaps{state: domain.LoadFailed})
	_, body = get(t, ts2.URL+"/", nil)
	if !strings.Contains(body, "No review data available. Please check that the file exists in the public folder.") {
		t.Fatalf("empty page: %s", body)
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, loaded())
	resp, _ := get(t, ts.URL+"/v1/stats", map[string]string{"Origin": "https://example.com"})
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}
