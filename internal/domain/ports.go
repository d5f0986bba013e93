package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrNotLoaded  = errors.New("reviews not loaded")
	ErrLoadFailed = errors.New("reviews load failed")
	ErrInvalidRow = errors.New("invalid review row")
)

// RowSource yields the rows of the first sheet of a workbook as
// column-name -> cell maps, in sheet order.
type RowSource interface {
	ReadRows(ctx context.Context) (rows []map[string]string, digest string, err error)
}

// RowSink persists rows in the same column layout the dashboard reads.
type RowSink interface {
	WriteRows(ctx context.Context, rs []ReviewRecord) error
}

type ReviewArchive interface {
	UpsertReviews(ctx context.Context, rs []ReviewRecord) error
	LogMiss(ctx context.Context, country string, status int, reason string) error
	CountByCountry(ctx context.Context) (CountryStats, error)
}

type FeedClient interface {
	// GetReviews returns one page of customer reviews for the app in the given storefront.
	GetReviews(ctx context.Context, country string, page int) ([]ReviewRecord, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries
type ReviewsQuery struct {
	Term  string
	Limit int
}

type ReviewsPage struct {
	Items []AnnotatedReview `json:"items"`
	Total int               `json:"total"` // size of the unfiltered set
}
