package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"azal_reviews/internal/domain"
)

// Loader runs the single review load and publishes the resulting snapshot.
// The lifecycle is NotLoaded -> Loading -> Loaded | LoadFailed; there is no
// retry and a failed load stays failed.
type Loader struct {
	src    domain.RowSource
	source string
	strict bool

	once sync.Once
	done chan struct{}

	mu    sync.RWMutex
	state domain.LoadState
	snap  domain.Snapshot
	err   error
}

func NewLoader(src domain.RowSource, source string, strict bool) *Loader {
	return &Loader{src: src, source: source, strict: strict, done: make(chan struct{})}
}

// Start kicks off the load in the background. Later calls do nothing.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		l.mu.Lock()
		l.state = domain.Loading
		l.mu.Unlock()
		go l.run(ctx)
	})
}

// Done is closed once the load has reached Loaded or LoadFailed.
func (l *Loader) Done() <-chan struct{} { return l.done }

// Wait blocks until the load finishes or ctx ends and returns the load error.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *Loader) run(ctx context.Context) {
	start := time.Now()
	lg := log.With().Str("component", "loader").Str("source", l.source).Logger()

	snap, err := l.load(ctx)

	l.mu.Lock()
	if err != nil {
		l.state = domain.LoadFailed
		l.err = fmt.Errorf("%w: %w", domain.ErrLoadFailed, err)
	} else {
		l.state = domain.Loaded
		l.snap = snap
	}
	l.mu.Unlock()
	close(l.done)

	if err != nil {
		lg.Error().Err(err).Dur("duration", time.Since(start)).Msg("review load failed")
		return
	}
	lg.Info().
		Int("reviews", snap.Stats.Total).
		Int("languages", len(snap.Stats.Languages)).
		Int("countries", len(snap.Stats.Countries)).
		Float64("avg_rating", snap.Stats.AverageRating).
		Dur("duration", time.Since(start)).
		Msg("reviews loaded")
}

func (l *Loader) load(ctx context.Context) (domain.Snapshot, error) {
	rows, digest, err := l.src.ReadRows(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	recs, err := MapRows(rows, l.strict)
	if err != nil {
		return domain.Snapshot{}, err
	}
	reviews := Annotate(recs)
	return domain.Snapshot{
		Reviews:  reviews,
		Stats:    Aggregate(reviews),
		Digest:   digest,
		Source:   l.source,
		LoadedAt: time.Now().UTC(),
	}, nil
}

// Snapshot returns the loaded data. Before the load completes it returns an
// empty snapshot with ErrNotLoaded; after a failure, an empty snapshot and
// the wrapped ErrLoadFailed.
func (l *Loader) Snapshot() (domain.Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch l.state {
	case domain.Loaded:
		return l.snap, nil
	case domain.LoadFailed:
		return emptySnapshot(l.source), l.err
	default:
		return emptySnapshot(l.source), domain.ErrNotLoaded
	}
}

func (l *Loader) Status() domain.Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.Status{
		State:    l.state,
		Err:      l.err,
		Source:   l.source,
		LoadedAt: l.snap.LoadedAt,
		Reviews:  len(l.snap.Reviews),
	}
}

func emptySnapshot(source string) domain.Snapshot {
	return domain.Snapshot{Reviews: []domain.AnnotatedReview{}, Stats: Aggregate(nil), Source: source}
}
