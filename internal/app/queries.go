package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"azal_reviews/internal/domain"
)

// SnapshotProvider is satisfied by *Loader.
type SnapshotProvider interface {
	Snapshot() (domain.Snapshot, error)
	Status() domain.Status
}

type QueryService struct {
	snaps    SnapshotProvider
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(p SnapshotProvider, c domain.Cache, ttl time.Duration) *QueryService {
	if c == nil {
		c = NopCache{}
	}
	return &QueryService{snaps: p, cache: c, cacheTTL: ttl}
}

func (s *QueryService) Status() domain.Status { return s.snaps.Status() }

// Stats returns the precomputed statistics. On a failed or pending load the
// stats are empty and the error says why.
func (s *QueryService) Stats(ctx context.Context) (domain.Stats, error) {
	snap, err := s.snaps.Snapshot()
	return snap.Stats, err
}

// ListReviews applies the search filter to the loaded reviews. Results for a
// non-empty term are cached per snapshot digest.
func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewsQuery) (domain.ReviewsPage, error) {
	snap, err := s.snaps.Snapshot()
	if err != nil {
		return domain.ReviewsPage{Items: []domain.AnnotatedReview{}}, err
	}

	if q.Term == "" {
		return limitPage(domain.ReviewsPage{Items: snap.Reviews, Total: len(snap.Reviews)}, q.Limit), nil
	}

	key := reviewsKey(snap.Digest, q)
	var out domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	page := limitPage(domain.ReviewsPage{Items: Filter(snap.Reviews, q.Term), Total: len(snap.Reviews)}, q.Limit)

	// copy so cached values never alias the snapshot
	copyPage := deepCopyReviewsPage(page)

	// optional size guard
	if b, _ := json.Marshal(copyPage); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, copyPage, int(s.cacheTTL.Seconds()))
	}
	return copyPage, nil
}

func reviewsKey(digest string, q domain.ReviewsQuery) string {
	sum := sha1.Sum([]byte(q.Term))
	return fmt.Sprintf("reviews:%s:%d:%s", digest, q.Limit, hex.EncodeToString(sum[:8]))
}

func limitPage(p domain.ReviewsPage, limit int) domain.ReviewsPage {
	if limit > 0 && len(p.Items) > limit {
		p.Items = p.Items[:limit]
	}
	return p
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	out := domain.ReviewsPage{Total: in.Total, Items: make([]domain.AnnotatedReview, len(in.Items))}
	copy(out.Items, in.Items)
	return out
}

// NopCache never stores anything; used when no redis is configured.
type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (NopCache) Set(ctx context.Context, key string, v any, ttlSec int) error { return nil }
func (NopCache) Del(ctx context.Context, key string) error { return nil }
