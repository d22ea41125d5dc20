// Package cache provides the client-side query cache of the storefront.
//
// Every read is registered as a Query: a deterministic Key, the tags the
// result provides, and a Fetcher. The Store keeps one entry per key and
// implements the following behavior:
//
// - One in-flight request per key, shared by all concurrent subscribers
// - Per-entry state machine (uninitialized, loading, success, error)
// - Tag based invalidation (mutations invalidate, queries provide)
// - Per-key generation counters so superseded responses are discarded
// - Lazy refetch of invalidated entries nobody is subscribed to
// - Eviction of unused entries after a grace period
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	store := cache.NewStore()
//	defer store.Close()
//
//	sub, err := store.Subscribe(cache.Query{
//		Key:   cache.Key{Endpoint: "getCart"},
//		Tags:  []cache.Tag{cache.TypeTag("Cart")},
//		Fetch: func(ctx context.Context) (any, error) { return fetchCart(ctx) },
//	})
//	if err != nil {
//		return err
//	}
//	defer sub.Unsubscribe()
//
//	snap, err := sub.Wait(ctx)
//	cart := cache.StateOf[*models.Cart](snap)
//
// # Invalidation
//
// A tag without ID matches every entry that provided any tag of that
// type, whatever its arguments. A tag with ID matches only entries that
// provided exactly that (type, id) pair.
//
//	store.Invalidate(cache.TypeTag("Cart"))          // every cart query
//	store.Invalidate(cache.IDTag("Product", 42))     // getProduct:id=42 only
//
// Subscribed entries refetch immediately. Unsubscribed entries are only
// marked invalidated and refetch on their next Subscribe.
//
// # Metrics
//
// The store exports Prometheus metrics:
//
//   - storefront_cache_hits_total - Subscribe served from a settled entry
//   - storefront_cache_misses_total - Subscribe that started a request
//   - storefront_cache_dedup_total - Subscribe that joined an in-flight request
//   - storefront_cache_stale_discards_total - responses of a superseded generation
//   - storefront_cache_invalidations_total{tag_type} - invalidated tags
//   - storefront_cache_evictions_total - entries dropped after the grace period
//   - storefront_cache_entries - current number of entries
package cache
