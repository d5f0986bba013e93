package app

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rs/zerolog/log"

	"azal_reviews/internal/domain"
)

/********** alias registry (single source of truth) **********/

// Header names seen in exports of the review sheet. Matching is case-insensitive.
var columnAliases = map[string][]string{
	"date":     {"date", "created_at", "updated", "review_date"},
	"userName": {"userName", "user_name", "user", "author", "reviewer"},
	"country":  {"country", "country_code", "storefront"},
	"rating":   {"rating", "score", "stars"},
	"review":   {"review", "text", "content", "body", "comment"},
}

// Columns is the order the workbook is written in.
var Columns = []string{"date", "userName", "review", "rating", "country"}

// resolveColumns picks, for each field, the first alias present in header.
func resolveColumns(header map[string]string) map[string]string {
	lower := make(map[string]string, len(header))
	for k := range header {
		lower[strings.ToLower(strings.TrimSpace(k))] = k
	}
	out := make(map[string]string, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, a := range aliases {
			if k, ok := lower[strings.ToLower(a)]; ok {
				out[field] = k
				break
			}
		}
	}
	return out
}

/********** validation **********/

// rowInput mirrors ReviewRecord with the rules enforced in strict mode.
type rowInput struct {
	Date     time.Time `json:"date" validate:"required"`
	UserName string    `json:"userName"`
	Country  string    `json:"country" validate:"required,len=2,lowercase"`
	Rating   int       `json:"rating" validate:"min=1,max=5"`
	Review   string    `json:"review"`
}

type rowValidator struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	rvOnce sync.Once
	rv     *rowValidator
)

func getRowValidator() *rowValidator {
	rvOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		// report spreadsheet column names, not Go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if tag := fld.Tag.Get("json"); tag != "" && tag != "-" {
				return tag
			}
			return fld.Name
		})
		if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
			// messages fall back to the raw validator text
			log.Warn().Str("component", "mapper").Err(err).Msg("register validation messages")
		}
		rv = &rowValidator{v: v, trans: trans}
	})
	return rv
}

// check returns a readable summary of every failed rule, or "" when the row is valid.
func (r *rowValidator) check(in rowInput) string {
	err := r.v.Struct(in)
	if err == nil {
		return ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(r.trans))
	}
	return strings.Join(msgs, "; ")
}

/********** row mapper **********/

// MapRows turns decoded sheet rows into review records. In lenient mode bad
// cells become zero values and the row is kept; strict mode fails on the
// first row that breaks a rule.
func MapRows(rows []map[string]string, strict bool) ([]domain.ReviewRecord, error) {
	out := make([]domain.ReviewRecord, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	cols := resolveColumns(rows[0])
	for _, f := range Columns {
		if _, ok := cols[f]; !ok {
			log.Warn().Str("component", "mapper").Str("column", f).Msg("column missing from sheet")
		}
	}

	val := getRowValidator()
	invalid := 0
	for i, row := range rows {
		rec := domain.ReviewRecord{
			Date:     parseDate(row[cols["date"]]),
			UserName: strings.TrimSpace(row[cols["userName"]]),
			Country:  strings.TrimSpace(row[cols["country"]]),
			Rating:   parseRating(row[cols["rating"]]),
			Review:   row[cols["review"]],
		}

		in := rowInput{Date: rec.Date, UserName: rec.UserName, Country: rec.Country, Rating: rec.Rating, Review: rec.Review}
		if msg := val.check(in); msg != "" {
			// sheet row number: header is row 1
			line := i + 2
			if strict {
				return nil, fmt.Errorf("%w: row %d: %s", domain.ErrInvalidRow, line, msg)
			}
			invalid++
			log.Debug().Str("component", "mapper").Int("row", line).Str("problem", msg).Msg("lenient row")
		}
		out = append(out, rec)
	}
	if invalid > 0 {
		log.Warn().Str("component", "mapper").Int("rows", invalid).Msg("rows with missing or malformed cells kept as-is")
	}
	return out, nil
}

/********** tiny helpers **********/

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01-02-06",
	"1/2/06 15:04",
	"1/2/2006",
}

// parseDate accepts Excel serial numbers (1900 system) and common text layouts.
// Unparseable input yields the zero time.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return excelSerial(f)
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

func excelSerial(f float64) time.Time {
	if f <= 0 {
		return time.Time{}
	}
	days := math.Floor(f)
	frac := f - days
	t := excelEpoch.AddDate(0, 0, int(days))
	return t.Add(time.Duration(math.Round(frac*86400)) * time.Second)
}

// parseRating reads "5", "5.0" or "5,0"; anything else is 0.
func parseRating(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}
