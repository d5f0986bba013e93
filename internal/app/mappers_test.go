package app_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"azal_reviews/internal/app"
	"azal_reviews/internal/domain"
)

func TestMapRows_AliasesAndLenientCells(t *testing.T) {
	rows := []map[string]string{
		{"Created_At": "2024-05-02T08:30:00Z", "Author": "Leyla", "Country_Code": "az", "Score": "4,0", "Text": "yaxşı"},
		{"Created_At": "yesterday", "Author": "", "Country_Code": "tr", "Score": "n/a", "Text": ""},
	}
	out, err := app.MapRows(rows, false)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	r := out[0]
	if r.UserName != "Leyla" || r.Country != "az" || r.Rating != 4 || r.Review != "yaxşı" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if !r.Date.Equal(time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("date = %v", r.Date)
	}
	if !out[1].Date.IsZero() || out[1].Rating != 0 {
		t.Fatalf("malformed cells should become zero values: %+v", out[1])
	}
}

func TestMapRows_MissingColumns(t *testing.T) {
	out, err := app.MapRows([]map[string]string{{"country": "gb"}}, false)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if out[0].Country != "gb" || out[0].Review != "" || out[0].Rating != 0 {
		t.Fatalf("unexpected record: %+v", out[0])
	}
}

func TestMapRows_Strict(t *testing.T) {
	good := map[string]string{"date": "2024-01-01", "userName": "a", "country": "gb", "rating": "5", "review": "ok"}
	if _, err := app.MapRows([]map[string]string{good}, true); err != nil {
		t.Fatalf("valid row rejected: %v", err)
	}

	bad := map[string]string{"date": "2024-01-01", "userName": "a", "country": "GBR", "rating": "0", "review": "ok"}
	_, err := app.MapRows([]map[string]string{good, bad}, true)
	if !errors.Is(err, domain.ErrInvalidRow) {
		t.Fatalf("expected ErrInvalidRow, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 3") || !strings.Contains(err.Error(), "country") || !strings.Contains(err.Error(), "rating") {
		t.Fatalf("error should name row and columns: %v", err)
	}
}

func TestSortNewestFirst(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	rs := []domain.ReviewRecord{{Date: d(1), UserName: "a"}, {Date: d(3), UserName: "b"}, {Date: d(2), UserName: "c"}}
	app.SortNewestFirst(rs)
	if rs[0].UserName != "b" || rs[1].UserName != "c" || rs[2].UserName != "a" {
		t.Fatalf("unexpected order: %+v", rs)
	}
}
