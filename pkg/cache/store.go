package cache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultKeepUnused is how long an entry without subscribers is kept.
const DefaultKeepUnused = 60 * time.Second

var (
	// ErrClosed is returned after Store.Close.
	ErrClosed = errors.New("cache store closed")

	// ErrUnsubscribed is returned by operations on a released subscription.
	ErrUnsubscribed = errors.New("subscription released")

	// ErrNoFetcher is returned when a query carries no Fetcher.
	ErrNoFetcher = errors.New("query has no fetcher")
)

// Option configures a Store.
type Option func(*Store)

// WithKeepUnused sets the grace period before an unused entry is evicted.
// Zero evicts as soon as the last subscriber leaves, a negative value
// keeps entries forever.
func WithKeepUnused(d time.Duration) Option {
	return func(s *Store) { s.keepUnused = d }
}

// WithMaxAge refetches settled entries older than d on Subscribe.
// Zero disables age based refetching.
func WithMaxAge(d time.Duration) Option {
	return func(s *Store) { s.maxAge = d }
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the in-process query cache.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	index   *tagIndex
	nextSub uint64
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	keepUnused time.Duration
	maxAge     time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		entries:    make(map[string]*entry),
		index:      newTagIndex(),
		ctx:        ctx,
		cancel:     cancel,
		keepUnused: DefaultKeepUnused,
		now:        time.Now,
		logger:     log.With().Str("component", "query-cache").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers interest in q. A request is started when the entry
// has never loaded, failed, was invalidated or is older than MaxAge, and
// none is already in flight.
func (s *Store) Subscribe(q Query) (*Subscription, error) {
	if q.Fetch == nil {
		return nil, ErrNoFetcher
	}
	id := q.Key.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	e, ok := s.entries[id]
	if !ok {
		e = &entry{
			key:  q.Key,
			id:   id,
			tags: append([]Tag(nil), q.Tags...),
			subs: make(map[uint64]*Subscription),
		}
		s.entries[id] = e
		s.index.add(id, e.tags)
		Entries.Inc()
	} else if !sameTags(e.tags, q.Tags) {
		s.index.remove(id, e.tags)
		e.tags = append([]Tag(nil), q.Tags...)
		s.index.add(id, e.tags)
	}
	e.fetch = q.Fetch
	e.stopEviction()

	s.nextSub++
	sub := &Subscription{
		store:   s,
		entry:   e,
		id:      s.nextSub,
		updates: make(chan Snapshot, 1),
	}
	e.subs[sub.id] = sub

	switch {
	case e.fetching:
		DedupJoins.Inc()
		s.logger.Debug().Str("key", id).Uint64("generation", e.generation).Msg("Joined in-flight request")
		sub.push(e.snapshot())
	case s.needsFetch(e):
		CacheMisses.Inc()
		s.launch(e)
	default:
		CacheHits.Inc()
		s.logger.Debug().Str("key", id).Msg("Cache hit")
		sub.push(e.snapshot())
	}

	return sub, nil
}

// Fetch subscribes to q, waits for the entry to settle and releases the
// subscription.
func (s *Store) Fetch(ctx context.Context, q Query) (Snapshot, error) {
	sub, err := s.Subscribe(q)
	if err != nil {
		return Snapshot{}, err
	}
	defer sub.Unsubscribe()
	return sub.Wait(ctx)
}

// Peek returns the current snapshot of key without subscribing.
func (s *Store) Peek(key Key) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key.String()]
	if !ok {
		return Snapshot{Key: key}, false
	}
	return e.snapshot(), true
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Invalidate marks every entry matching tags as stale and returns their
// keys in deterministic order. Subscribed entries refetch immediately,
// the others on their next Subscribe.
func (s *Store) Invalidate(tags ...Tag) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || len(tags) == 0 {
		return nil
	}

	matched := make(map[string]struct{})
	for _, tag := range tags {
		Invalidations.WithLabelValues(tag.Type).Inc()
		for _, id := range s.index.match(tag) {
			matched[id] = struct{}{}
		}
	}

	ids := make([]string, 0, len(matched))
	for id := range matched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	keys := make([]Key, 0, len(ids))
	for _, id := range ids {
		e := s.entries[id]
		keys = append(keys, e.key)

		if len(e.subs) > 0 {
			s.logger.Debug().Str("key", id).Msg("Refetching invalidated entry")
			s.launch(e)
			continue
		}

		e.invalidated = true
		if e.fetching {
			// Drop the unobserved request; its response is stale.
			e.generation++
			e.status = e.previous
			e.finish()
			s.scheduleEviction(e)
		}
		s.logger.Debug().Str("key", id).Msg("Marked unused entry invalidated")
	}
	return keys
}

// Close cancels in-flight requests, releases every subscription and
// waits for fetch goroutines to return.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, e := range s.entries {
		e.stopEviction()
		e.finish()
		for _, sub := range e.subs {
			sub.release()
		}
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Store) needsFetch(e *entry) bool {
	switch {
	case e.status == StatusUninitialized, e.status == StatusError, e.invalidated:
		return true
	case s.maxAge > 0 && s.now().Sub(e.updatedAt) > s.maxAge:
		return true
	default:
		return false
	}
}

// launch starts a request for e, superseding any request in flight.
// Caller holds s.mu.
func (s *Store) launch(e *entry) {
	if e.cancel != nil {
		e.cancel()
	}
	if !e.fetching {
		e.previous = e.status
		e.done = make(chan struct{})
	}
	e.generation++
	e.status = StatusLoading
	e.fetching = true
	e.invalidated = false

	ctx, cancel := context.WithCancel(s.ctx)
	e.cancel = cancel
	gen := e.generation
	fetch := e.fetch

	s.logger.Debug().Str("key", e.id).Uint64("generation", gen).Msg("Starting request")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		data, err := fetch(ctx)
		s.settle(e, gen, data, err)
	}()

	s.notify(e)
}

// settle applies a response if its generation is still current.
func (s *Store) settle(e *entry, gen uint64, data any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.entries[e.id] != e || e.generation != gen || !e.fetching {
		StaleDiscards.Inc()
		s.logger.Debug().Str("key", e.id).Uint64("generation", gen).Msg("Discarding stale response")
		return
	}

	e.cancel = nil
	if err != nil {
		e.status = StatusError
		e.err = err
		s.logger.Debug().Err(err).Str("key", e.id).Uint64("generation", gen).Msg("Request failed")
	} else {
		e.status = StatusSuccess
		e.data = data
		e.hasData = true
		e.err = nil
	}
	e.updatedAt = s.now()
	e.finish()
	s.notify(e)

	if len(e.subs) == 0 {
		s.scheduleEviction(e)
	}
}

// notify pushes the current snapshot to every subscriber of e.
func (s *Store) notify(e *entry) {
	if len(e.subs) == 0 {
		return
	}
	snap := e.snapshot()
	for _, sub := range e.subs {
		sub.push(snap)
	}
}

// scheduleEviction arms the unused timer of e. Entries with a request in
// flight are rescheduled when it settles.
func (s *Store) scheduleEviction(e *entry) {
	e.stopEviction()
	if s.keepUnused < 0 || e.fetching || len(e.subs) > 0 {
		return
	}
	if s.keepUnused == 0 {
		s.evict(e)
		return
	}
	e.evict = time.AfterFunc(s.keepUnused, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || e.fetching || len(e.subs) > 0 {
			return
		}
		s.evict(e)
	})
}

// evict removes e from the store. Caller holds s.mu.
func (s *Store) evict(e *entry) {
	if s.entries[e.id] != e {
		return
	}
	delete(s.entries, e.id)
	s.index.remove(e.id, e.tags)
	e.evict = nil
	Entries.Dec()
	Evictions.Inc()
	s.logger.Debug().Str("key", e.id).Msg("Evicted unused entry")
}
