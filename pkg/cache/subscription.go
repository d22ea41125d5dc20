package cache

import "context"

// Subscription is one subscriber's handle on a cache entry.
type Subscription struct {
	store   *Store
	entry   *entry
	id      uint64
	updates chan Snapshot
	closed  bool // guarded by store.mu
}

// Key returns the key of the subscribed entry.
func (sub *Subscription) Key() Key {
	return sub.entry.key
}

// State returns the current snapshot of the entry.
func (sub *Subscription) State() Snapshot {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()
	return sub.entry.snapshot()
}

// Updates delivers snapshots on every state change. Only the latest
// undelivered snapshot is kept. The channel is closed on Unsubscribe.
func (sub *Subscription) Updates() <-chan Snapshot {
	return sub.updates
}

// Wait blocks until the entry has settled and returns its snapshot.
func (sub *Subscription) Wait(ctx context.Context) (Snapshot, error) {
	for {
		sub.store.mu.Lock()
		snap := sub.entry.snapshot()
		done := sub.entry.done
		closed, storeClosed := sub.closed, sub.store.closed
		sub.store.mu.Unlock()

		switch {
		case storeClosed:
			return snap, ErrClosed
		case snap.Settled():
			return snap, nil
		case closed:
			return snap, ErrUnsubscribed
		case done == nil:
			return snap, nil
		}

		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-done:
		}
	}
}

// Refetch forces a new request for the entry.
func (sub *Subscription) Refetch() error {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()

	switch {
	case sub.store.closed:
		return ErrClosed
	case sub.closed:
		return ErrUnsubscribed
	}
	sub.store.launch(sub.entry)
	return nil
}

// Unsubscribe releases the subscription. A shared request in flight
// keeps running for the remaining subscribers and the cache.
func (sub *Subscription) Unsubscribe() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.closed {
		return
	}
	sub.release()
	if !s.closed {
		s.scheduleEviction(sub.entry)
	}
}

// release detaches the subscription. Caller holds store.mu.
func (sub *Subscription) release() {
	if sub.closed {
		return
	}
	sub.closed = true
	delete(sub.entry.subs, sub.id)
	close(sub.updates)
}

// push replaces any undelivered snapshot with snap. Caller holds store.mu.
func (sub *Subscription) push(snap Snapshot) {
	if sub.closed {
		return
	}
	select {
	case <-sub.updates:
	default:
	}
	select {
	case sub.updates <- snap:
	default:
	}
}
