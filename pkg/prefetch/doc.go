// Package prefetch warms the query cache with bounded concurrency.
//
// A page that is about to subscribe to several queries (a product with its
// related products and reviews, or the next pages of a listing) can warm
// them in one call, so the later subscriptions are served from the cache.
// Concurrent warms of the same key still share one request through the
// cache's in-flight dedup.
//
// Example usage:
//
//	p := prefetch.New(sf.Cache(), prefetch.DefaultConfig())
//	results, err := p.Warm(ctx, prefetch.ProductPage(sf, 42)...)
//
// The prefetcher:
//   - Runs at most MaxConcurrency queries at once
//   - Waits for each query to settle, bounded by Timeout
//   - Records failures per query instead of aborting the batch
//   - Returns early only when ctx is cancelled
//
// Warmed entries stay cached for the store's keep-unused period. With a
// keep-unused period of zero, warming has no lasting effect.
package prefetch
