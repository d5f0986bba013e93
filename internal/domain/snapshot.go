package domain

import "time"

// LoadState is the lifecycle of the one-shot review load.
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load_failed"
	}
	return "unknown"
}

// Snapshot is the immutable result of a successful load.
type Snapshot struct {
	Reviews  []AnnotatedReview
	Stats    Stats
	Digest   string // sha1 of the source bytes
	Source   string
	LoadedAt time.Time
}

// Status reports where the loader is. Err is set only in LoadFailed.
type Status struct {
	State    LoadState
	Err      error
	Source   string
	LoadedAt time.Time
	Reviews  int
}
