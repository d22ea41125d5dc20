package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/storefront-client/pkg/models"
)

// MemoryStore keeps tokens for the lifetime of the process.
type MemoryStore struct {
	mu     sync.Mutex
	tokens *models.TokenPair
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (models.TokenPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		return models.TokenPair{}, ErrNoTokens
	}
	return *m.tokens, nil
}

func (m *MemoryStore) Save(_ context.Context, tokens models.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = &tokens
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = nil
	return nil
}

// FileStore keeps tokens in a JSON file readable only by the owner.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultTokenPath is the token file under the user's config directory.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "storefront", "tokens.json"), nil
}

func (f *FileStore) Load(_ context.Context) (models.TokenPair, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.TokenPair{}, ErrNoTokens
	}
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("read token file: %w", err)
	}

	var tokens models.TokenPair
	if err := json.Unmarshal(data, &tokens); err != nil {
		return models.TokenPair{}, fmt.Errorf("decode token file: %w", err)
	}
	if tokens.Access == "" {
		return models.TokenPair{}, ErrNoTokens
	}
	return tokens, nil
}

func (f *FileStore) Save(_ context.Context, tokens models.TokenPair) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// DefaultRedisPrefix namespaces session keys in Redis.
const DefaultRedisPrefix = "storefront:session:"

// RedisStore keeps tokens in Redis so several frontends can share one
// login.
type RedisStore struct {
	client *redis.Client
	prefix string
	name   string
	ttl    time.Duration
}

// RedisOption customizes a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL expires stored tokens after ttl. Zero keeps them until logout.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix replaces DefaultRedisPrefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore stores the tokens of the named session.
func NewRedisStore(client *redis.Client, name string, opts ...RedisOption) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if name == "" {
		name = "default"
	}
	s := &RedisStore{
		client: client,
		prefix: DefaultRedisPrefix,
		name:   name,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the Redis key holding the tokens.
func (s *RedisStore) Key() string {
	return s.prefix + s.name
}

func (s *RedisStore) Load(ctx context.Context) (models.TokenPair, error) {
	data, err := s.client.Get(ctx, s.Key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.TokenPair{}, ErrNoTokens
	}
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("redis get: %w", err)
	}

	var tokens models.TokenPair
	if err := json.Unmarshal(data, &tokens); err != nil {
		return models.TokenPair{}, fmt.Errorf("decode tokens: %w", err)
	}
	return tokens, nil
}

func (s *RedisStore) Save(ctx context.Context, tokens models.TokenPair) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	if err := s.client.Set(ctx, s.Key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.Key()).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
