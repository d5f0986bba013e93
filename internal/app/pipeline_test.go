package app_test

import (
	"strings"
	"testing"

	"azal_reviews/internal/app"
	"azal_reviews/internal/domain"
)

func TestClassifyLanguage(t *testing.T) {
	known := map[string]string{
		"ru": "Russian", "by": "Russian", "kz": "Russian",
		"az": "Azerbaijani", "tr": "Turkish",
		"gb": "English", "us": "English", "in": "English", "pk": "English",
		"sa": "Arabic", "ae": "Arabic",
		"de": "German", "fr": "French", "it": "Italian",
		"cn": "Chinese", "cz": "Czech",
	}
	for code, want := range known {
		if got := app.ClassifyLanguage(code); got != want {
			t.Fatalf("ClassifyLanguage(%q) = %q, want %q", code, got, want)
		}
	}
	for _, code := range []string{"", "xx", "RU", "at", "qa", " ru"} {
		if got := app.ClassifyLanguage(code); got != app.UnknownLanguage {
			t.Fatalf("ClassifyLanguage(%q) = %q, want Unknown", code, got)
		}
	}
}

func TestTranslate(t *testing.T) {
	cases := []struct {
		name, text, lang, want string
	}{
		{"empty", "", "Russian", ""},
		{"empty english", "", "English", ""},
		{"english passthrough", "Привет bad app", "English", "Привет bad app"},
		{"dictionary", "Qiymetleriniz cox yüksekdir", "Azerbaijani", "Your prices are very high"},
		{"dictionary ignores language", "Быстро реагирует ..Спасибо", "Unknown", "Responds quickly.. Thank you"},
		{"russian first rule wins", "плохо, но хорошо", "Russian", "Good application, works as expected."},
		{"russian stem", "Не могу купить билет", "Russian", "Problems with ticket purchasing in the app."},
		{"azerbaijani order", "pis və problem", "Azerbaijani", "Bad app, doesn't work properly."},
		{"decomposed input matches rule", "çox yaxs\u0327ı", "Azerbaijani", "Good app, works well."},
		{"turkish", "Uygulama çok kötü", "Turkish", "Bad application, doesn't work properly."},
		{"rules are per language", "хорошо", "Turkish", "[Translated from Turkish]: хорошо"},
		{"fallback short", "normal", "Azerbaijani", "[Translated from Azerbaijani]: normal"},
		{"fallback unknown", "ok", "Unknown", "[Translated from Unknown]: ok"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := app.Translate(tc.text, tc.lang); got != tc.want {
				t.Fatalf("Translate(%q, %q) = %q, want %q", tc.text, tc.lang, got, tc.want)
			}
		})
	}
}

func TestTranslate_FallbackTruncatesAt60(t *testing.T) {
	exact := strings.Repeat("a", 60)
	if got := app.Translate(exact, "German"); got != "[Translated from German]: "+exact {
		t.Fatalf("60 chars must not be truncated: %q", got)
	}

	long := strings.Repeat("b", 60) + "tail"
	want := "[Translated from German]: " + strings.Repeat("b", 60) + "..."
	if got := app.Translate(long, "German"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// counted in characters, not bytes
	arabic := strings.Repeat("ب", 65)
	want = "[Translated from Arabic]: " + strings.Repeat("ب", 60) + "..."
	if got := app.Translate(arabic, "Arabic"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAggregate(t *testing.T) {
	rs := app.Annotate([]domain.ReviewRecord{
		{Country: "ru", Rating: 5, Review: "a"},
		{Country: "gb", Rating: 1, Review: "b"},
		{Country: "ru", Rating: 4, Review: "c"},
		{Country: "az", Rating: 5, Review: "d"},
		{Country: "zz", Rating: 0, Review: "e"},
		{Country: "by", Rating: 2, Review: "f"},
	})
	st := app.Aggregate(rs)

	if st.Total != 6 {
		t.Fatalf("total = %d", st.Total)
	}
	if st.Languages[0].Language != "Russian" || st.Languages[0].Count != 3 {
		t.Fatalf("top language = %+v", st.Languages[0])
	}
	// ties keep first-seen order: English, Azerbaijani, Unknown
	wantOrder := []string{"Russian", "English", "Azerbaijani", "Unknown"}
	for i, w := range wantOrder {
		if st.Languages[i].Language != w {
			t.Fatalf("languages[%d] = %q, want %q (%+v)", i, st.Languages[i].Language, w, st.Languages)
		}
	}

	sum := 0
	for _, l := range st.Languages {
		sum += l.Count
	}
	if sum != st.Total {
		t.Fatalf("language counts sum to %d", sum)
	}

	sum = 0
	for i, r := range st.Ratings {
		sum += r.Count
		if i > 0 && st.Ratings[i-1].Rating >= r.Rating {
			t.Fatalf("ratings not ascending: %+v", st.Ratings)
		}
	}
	if sum != st.Total {
		t.Fatalf("rating counts sum to %d", sum)
	}
	if st.Ratings[0].Rating != 0 {
		t.Fatalf("missing rating bucket should sort first: %+v", st.Ratings)
	}

	sum = 0
	for _, c := range st.Countries {
		sum += c
	}
	if sum != st.Total || st.Countries["ru"] != 2 {
		t.Fatalf("unexpected countries: %+v", st.Countries)
	}

	// (5+1+4+5+0+2)/6 = 2.83
	if st.AverageRating != 2.8 {
		t.Fatalf("avg = %v", st.AverageRating)
	}
}

func TestAggregate_Empty(t *testing.T) {
	st := app.Aggregate(nil)
	if st.Total != 0 || st.AverageRating != 0 || len(st.Languages) != 0 || len(st.Ratings) != 0 || len(st.Countries) != 0 {
		t.Fatalf("expected zero stats, got %+v", st)
	}
}

func TestPercent(t *testing.T) {
	if got := app.Percent(1, 3); got != 33.3 {
		t.Fatalf("Percent(1,3) = %v", got)
	}
	if got := app.Percent(2, 0); got != 0 {
		t.Fatalf("Percent(2,0) = %v", got)
	}
}

func TestFilter(t *testing.T) {
	rs := app.Annotate([]domain.ReviewRecord{
		{Country: "gb", Review: "Great app"},
		{Country: "gb", Review: ""},
		{Country: "us", Review: "Crashes on LOGIN"},
		{Country: "de", Review: "Schlecht"},
	})

	all := app.Filter(rs, "")
	if len(all) != len(rs) {
		t.Fatalf("empty term must return everything, got %d", len(all))
	}
	for i := range rs {
		if all[i].Review != rs[i].Review {
			t.Fatalf("order changed at %d", i)
		}
	}

	one := app.Filter(rs, "login")
	if len(one) != 1 || one[0].Review != "Crashes on LOGIN" {
		t.Fatalf("unexpected filter result: %+v", one)
	}

	// the German fallback text is what gets searched
	de := app.Filter(rs, "translated FROM german")
	if len(de) != 1 || de[0].Country != "de" {
		t.Fatalf("unexpected filter result: %+v", de)
	}

	if none := app.Filter(rs, "zzz"); len(none) != 0 {
		t.Fatalf("expected no matches, got %+v", none)
	}
	if rs[0].TranslatedReview != "Great app" {
		t.Fatalf("input mutated")
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	rs := app.Annotate([]domain.ReviewRecord{
		{Country: "ru", Rating: 5, Review: "Быстро реагирует ..Спасибо"},
		{Country: "gb", Rating: 1, Review: "bad app"},
		{Country: "az", Rating: 3, Review: "normal"},
	})

	wantLang := []string{"Russian", "English", "Azerbaijani"}
	wantText := []string{"Responds quickly.. Thank you", "bad app", "[Translated from Azerbaijani]: normal"}
	for i := range rs {
		if rs[i].DetectedLanguage != wantLang[i] {
			t.Fatalf("[%d] language = %q, want %q", i, rs[i].DetectedLanguage, wantLang[i])
		}
		if rs[i].TranslatedReview != wantText[i] {
			t.Fatalf("[%d] translation = %q, want %q", i, rs[i].TranslatedReview, wantText[i])
		}
	}

	st := app.Aggregate(rs)
	if st.AverageRating != 3.0 {
		t.Fatalf("avg = %v", st.AverageRating)
	}
	want := []domain.RatingStat{{Rating: 1, Count: 1}, {Rating: 3, Count: 1}, {Rating: 5, Count: 1}}
	if len(st.Ratings) != len(want) {
		t.Fatalf("ratings = %+v", st.Ratings)
	}
	for i := range want {
		if st.Ratings[i] != want[i] {
			t.Fatalf("ratings[%d] = %+v, want %+v", i, st.Ratings[i], want[i])
		}
	}
	if len(app.Filter(rs, "thank")) != 1 {
		t.Fatalf("expected a single match for 'thank'")
	}
}
