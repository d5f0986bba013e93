package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"azal_reviews/internal/domain"
)

// IngestionService scrapes storefront reviews and produces the workbook the
// dashboard loads. The archive is optional.
type IngestionService struct {
	feed    domain.FeedClient
	sink    domain.RowSink
	archive domain.ReviewArchive
	runID   string
	log     zerolog.Logger

	mu   sync.Mutex
	rows []domain.ReviewRecord
}

func NewIngestionService(f domain.FeedClient, sink domain.RowSink, archive domain.ReviewArchive) *IngestionService {
	id := uuid.NewString()
	return &IngestionService{
		feed:    f,
		sink:    sink,
		archive: archive,
		runID:   id,
		log:     log.With().Str("component", "ingest").Str("run_id", id).Logger(),
	}
}

func (s *IngestionService) RunID() string { return s.runID }

// IngestCountry pulls up to pages pages for one storefront and buffers the
// rows. 404/401/403 are recorded as misses and end the country quietly.
// Any other error ends the country too, but the pages fetched before it are
// still archived and buffered; the error is returned alongside their count.
func (s *IngestionService) IngestCountry(ctx context.Context, country string, pages int) (int, error) {
	var (
		got     []domain.ReviewRecord
		feedErr error
	)
	for page := 1; page <= pages; page++ {
		rs, err := s.feed.GetReviews(ctx, country, page)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				s.logMiss(ctx, country, 404, fmt.Sprintf("page %d: not found", page))
			case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
				s.logMiss(ctx, country, 403, fmt.Sprintf("page %d: forbidden", page))
			default:
				feedErr = fmt.Errorf("ingest %s page %d: %w", country, page, err)
			}
			break
		}
		if len(rs) == 0 {
			break
		}
		for i := range rs {
			rs[i].Country = country
		}
		got = append(got, rs...)
	}

	if len(got) > 0 && s.archive != nil {
		if err := s.archive.UpsertReviews(ctx, got); err != nil {
			// do not swallow: the archive is the only durable copy besides the workbook
			feedErr = errors.Join(feedErr, fmt.Errorf("archive reviews for %s: %w", country, err))
		}
	}

	s.mu.Lock()
	s.rows = append(s.rows, got...)
	s.mu.Unlock()
	return len(got), feedErr
}

// Flush writes every buffered row, newest first, to the sink.
func (s *IngestionService) Flush(ctx context.Context) (int, error) {
	s.mu.Lock()
	rows := make([]domain.ReviewRecord, len(s.rows))
	copy(rows, s.rows)
	s.mu.Unlock()

	SortNewestFirst(rows)
	if err := s.sink.WriteRows(ctx, rows); err != nil {
		return 0, fmt.Errorf("write reviews: %w", err)
	}
	return len(rows), nil
}

func (s *IngestionService) logMiss(ctx context.Context, country string, status int, reason string) {
	s.log.Warn().Str("country", country).Int("status", status).Str("reason", reason).Msg("storefront miss")
	if s.archive != nil {
		if err := s.archive.LogMiss(ctx, country, status, reason); err != nil {
			s.log.Warn().Err(err).Str("country", country).Msg("record storefront miss")
		}
	}
}

// SortNewestFirst orders rows by date descending; ties keep their order.
func SortNewestFirst(rs []domain.ReviewRecord) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Date.After(rs[j].Date) })
}
