package prefetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/storefront-client/pkg/api"
	"github.com/Sternrassler/storefront-client/pkg/cache"
)

// Config holds prefetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of queries in flight
	MaxConcurrency int
	// Timeout bounds the wait for each query to settle
	Timeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
	}
}

// Result is the outcome of warming one query
type Result struct {
	Key    cache.Key
	Status cache.Status
	Err    error
}

// Prefetcher warms cache entries
type Prefetcher struct {
	store  *cache.Store
	config Config
	logger zerolog.Logger
}

// New creates a prefetcher for store
func New(store *cache.Store, config Config) *Prefetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Prefetcher{
		store:  store,
		config: config,
		logger: log.With().Str("component", "prefetch").Logger(),
	}
}

// SetLogger replaces the component logger
func (p *Prefetcher) SetLogger(logger zerolog.Logger) {
	p.logger = logger
}

// Warm fetches every query and waits for it to settle. Results are in
// the order of queries. Query failures are reported in the results; the
// returned error is non-nil only when ctx ends or the store is closed.
func (p *Prefetcher) Warm(ctx context.Context, queries ...cache.Query) ([]Result, error) {
	start := time.Now()
	defer func() { WarmDuration.Observe(time.Since(start).Seconds()) }()

	results := make([]Result, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.MaxConcurrency)

	for i, q := range queries {
		results[i].Key = q.Key
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(gctx, p.config.Timeout)
			defer cancel()

			snap, err := p.store.Fetch(qctx, q)
			switch {
			case errors.Is(err, cache.ErrClosed):
				return err
			case err != nil && gctx.Err() != nil:
				return gctx.Err()
			case err != nil:
				WarmedQueries.WithLabelValues("timeout").Inc()
				results[i].Status = cache.StatusLoading
				results[i].Err = fmt.Errorf("prefetch %s: %w", q.Key, err)
				return nil
			}

			results[i].Status = snap.Status
			results[i].Err = snap.Err
			if snap.Err != nil {
				WarmedQueries.WithLabelValues("error").Inc()
				p.logger.Debug().
					Str("key", q.Key.String()).
					Err(snap.Err).
					Msg("Prefetch query failed")
			} else {
				WarmedQueries.WithLabelValues("success").Inc()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Warn().
			Err(err).
			Int("queries", len(queries)).
			Msg("Prefetch aborted")
		return results, err
	}

	p.logger.Debug().
		Int("queries", len(queries)).
		Int("failed", countFailed(results)).
		Dur("duration", time.Since(start)).
		Msg("Prefetch complete")
	return results, nil
}

func countFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// ProductPage returns the queries the product page subscribes to.
func ProductPage(sf *api.Storefront, id int64) []cache.Query {
	c := sf.Client()
	return []cache.Query{
		api.Products.GetProduct.Query(c, id),
		api.Products.GetRelatedProducts.Query(c, id),
		api.Products.GetProductReviews.Query(c, id),
	}
}

// ListingPages returns the queries for pages first..last of a product
// listing filtered by params. The page parameter of params is replaced.
func ListingPages(sf *api.Storefront, params url.Values, first, last int) []cache.Query {
	c := sf.Client()
	queries := make([]cache.Query, 0, max(last-first+1, 0))
	for page := first; page <= last; page++ {
		pageParams := url.Values{}
		for k, v := range params {
			pageParams[k] = append([]string(nil), v...)
		}
		pageParams.Set("page", fmt.Sprint(page))
		queries = append(queries, api.Products.GetProducts.Query(c, pageParams))
	}
	return queries
}

// Checkout returns the queries the checkout page subscribes to.
func Checkout(sf *api.Storefront) []cache.Query {
	c := sf.Client()
	return []cache.Query{
		api.Cart.GetCart.Query(c, api.None{}),
		api.Orders.GetDeliveryTimes.Query(c, api.None{}),
		api.Addresses.GetAddresses.Query(c, api.None{}),
	}
}
