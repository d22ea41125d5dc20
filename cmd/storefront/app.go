package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/storefront-client/internal/config"
	"github.com/Sternrassler/storefront-client/pkg/api"
	"github.com/Sternrassler/storefront-client/pkg/cache"
	"github.com/Sternrassler/storefront-client/pkg/client"
	"github.com/Sternrassler/storefront-client/pkg/logging"
	"github.com/Sternrassler/storefront-client/pkg/prefetch"
	"github.com/Sternrassler/storefront-client/pkg/session"
	"github.com/Sternrassler/storefront-client/pkg/views"
)

// app wires the storefront stack for one command.
type app struct {
	sf         *api.Storefront
	store      *cache.Store
	prefetcher *prefetch.Prefetcher
	redis      *redis.Client
	out        io.Writer

	cart     *views.CartController
	wishlist *views.WishlistController
	checkout *views.CheckoutController
	auth     *views.AuthController
}

func newApp(ctx context.Context, cfg config.Config, out io.Writer) (*app, error) {
	a := &app{out: out}

	tokens, err := a.tokenStore(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(ctx, tokens, logging.NewLogger("session"))
	if err != nil {
		a.Close()
		return nil, err
	}

	clientCfg := client.DefaultConfig(sess)
	clientCfg.BaseURL = cfg.API.BaseURL
	clientCfg.UserAgent = cfg.API.UserAgent
	clientCfg.Tracing = cfg.API.Tracing
	c, err := client.New(clientCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}

	a.store = cache.NewStore(cfg.CacheOptions()...)
	a.sf = api.New(c, a.store)
	a.prefetcher = prefetch.New(a.store, cfg.Prefetcher())

	a.cart = views.NewCartController(a.sf)
	a.wishlist = views.NewWishlistController(a.sf)
	a.checkout = views.NewCheckoutController(a.sf)
	a.auth = views.NewAuthController(a.sf)
	return a, nil
}

// tokenStore picks Redis when configured, then the token file, then the
// default token file under the user config directory.
func (a *app) tokenStore(ctx context.Context, cfg config.SessionConfig) (session.Store, error) {
	if cfg.RedisURL != "" {
		opts, err := redisOptions(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = redis.NewClient(opts)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.redis.Close()
			a.redis = nil
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return session.NewRedisStore(a.redis, cfg.Key, session.WithTTL(cfg.TTL)), nil
	}

	path := cfg.TokenFile
	if path == "" {
		p, err := session.DefaultTokenPath()
		if err != nil {
			return session.NewMemoryStore(), nil
		}
		path = p
	}
	return session.NewFileStore(path), nil
}

// redisOptions accepts a redis:// URL or a bare host:port address.
func redisOptions(raw string) (*redis.Options, error) {
	if !strings.Contains(raw, "://") {
		return &redis.Options{Addr: raw}, nil
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}

// Close releases the cache and the Redis connection.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
