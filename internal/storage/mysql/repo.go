package mysql

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"azal_reviews/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valRating(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
func valTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// Repo archives scraped reviews. The dashboard never reads from it.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertReviews inserts rows keyed by (country, source_id) in one statement.
func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.ReviewRecord) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*7) // 7 params per row
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?)")
		args = append(args,
			rv.Country,
			sourceID(rv),
			valStr(rv.UserName),
			valRating(rv.Rating),
			valStr(rv.Title),
			valStr(rv.Review),
			valTime(rv.Date),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, country string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, country, status, reason)
	return err
}

func (r *Repo) CountByCountry(ctx context.Context) (domain.CountryStats, error) {
	rows, err := r.db.QueryContext(ctx, countByCountrySQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := domain.CountryStats{}
	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, err
		}
		out[c] = n
	}
	return out, rows.Err()
}

// sourceID prefers the feed id; otherwise a stable hash of the row content.
func sourceID(rv domain.ReviewRecord) string {
	if rv.SourceID != "" {
		return rv.SourceID
	}
	sig := strings.Join([]string{
		rv.Country, rv.UserName, rv.Title, rv.Review,
		strconv.Itoa(rv.Rating), rv.Date.UTC().Format(time.RFC3339),
	}, "|")
	sum := sha1.Sum([]byte(sig))
	return hex.EncodeToString(sum[:])
}
