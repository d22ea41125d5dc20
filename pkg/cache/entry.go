package cache

import (
	"context"
	"time"
)

// Status is the lifecycle state of a cache entry.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "uninitialized"
	}
}

// Fetcher performs the request behind a query. The context is owned by
// the store and is cancelled when the request is superseded or the store
// closes, never when a subscriber leaves.
type Fetcher func(ctx context.Context) (any, error)

// Query registers a cacheable read.
type Query struct {
	Key   Key
	Tags  []Tag
	Fetch Fetcher
}

// Snapshot is an immutable view of an entry at one point in time.
type Snapshot struct {
	Key    Key
	Status Status

	// Data is the last successful result. It survives refetches and errors.
	Data    any
	HasData bool

	// Err is the error of the last settled request, nil after a success.
	Err error

	// Fetching is true while a request for this entry is in flight.
	Fetching bool

	// Invalidated marks an unsubscribed entry that refetches on next use.
	Invalidated bool

	Generation uint64
	UpdatedAt  time.Time
}

// Settled reports whether the latest request has completed.
func (s Snapshot) Settled() bool {
	return !s.Fetching && (s.Status == StatusSuccess || s.Status == StatusError)
}

// State is the typed form of a Snapshot.
type State[T any] struct {
	Status   Status
	Data     T
	HasData  bool
	Err      error
	Fetching bool
}

// StateOf converts a snapshot to its typed state. Data of another type is
// reported as absent.
func StateOf[T any](snap Snapshot) State[T] {
	state := State[T]{
		Status:   snap.Status,
		Err:      snap.Err,
		Fetching: snap.Fetching,
	}
	if data, ok := snap.Data.(T); ok && snap.HasData {
		state.Data = data
		state.HasData = true
	}
	return state
}

// IsLoading is true while the first result is pending.
func (s State[T]) IsLoading() bool {
	return !s.HasData && (s.Status == StatusLoading || s.Status == StatusUninitialized)
}

// IsError is true when the latest request failed.
func (s State[T]) IsError() bool {
	return s.Status == StatusError
}

// entry is the per-key record. All fields are guarded by Store.mu.
type entry struct {
	key   Key
	id    string
	tags  []Tag
	fetch Fetcher

	status   Status
	previous Status // status before the in-flight request, restored on cancel
	data     any
	hasData  bool
	err      error

	generation  uint64
	fetching    bool
	invalidated bool
	updatedAt   time.Time

	cancel context.CancelFunc
	done   chan struct{} // closed when the in-flight request settles
	subs   map[uint64]*Subscription
	evict  *time.Timer
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Key:         e.key,
		Status:      e.status,
		Data:        e.data,
		HasData:     e.hasData,
		Err:         e.err,
		Fetching:    e.fetching,
		Invalidated: e.invalidated,
		Generation:  e.generation,
		UpdatedAt:   e.updatedAt,
	}
}

// finish releases waiters of the in-flight request.
func (e *entry) finish() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.done != nil {
		close(e.done)
		e.done = nil
	}
	e.fetching = false
}

func (e *entry) stopEviction() {
	if e.evict != nil {
		e.evict.Stop()
		e.evict = nil
	}
}

func sameTags(a, b []Tag) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
