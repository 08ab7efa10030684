package persona

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL is how long an idle session keeps its persona.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore holds the active persona of each chat session.
type SessionStore interface {
	// Get returns the session's persona, or Default for an unknown session.
	Get(ctx context.Context, sessionID string) (Persona, error)
	Set(ctx context.Context, sessionID string, p Persona) error
	Close() error
}

// MemorySessionStore keeps personas in process memory with an idle TTL.
type MemorySessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

func (m *MemorySessionStore) Get(_ context.Context, sessionID string) (Persona, error) {
	v, found := m.cache.Get(sessionID)
	if !found {
		return Default, nil
	}
	p, ok := v.(Persona)
	if !ok || !p.Valid() {
		return Default, nil
	}
	// Touch so active sessions don't expire.
	m.cache.Set(sessionID, p, m.ttl)
	return p, nil
}

func (m *MemorySessionStore) Set(_ context.Context, sessionID string, p Persona) error {
	if !p.Valid() {
		return fmt.Errorf("unknown persona %q", p)
	}
	m.cache.Set(sessionID, p, m.ttl)
	return nil
}

func (m *MemorySessionStore) Close() error {
	m.cache.Flush()
	return nil
}

const redisKeyPrefix = "mindvault:persona:"

// RedisSessionStore keeps personas in Redis so they survive restarts and are
// shared between server instances.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore connects to the Redis server at redisURL
// (redis://[user:pass@]host:port/db) and checks the connection.
func NewRedisSessionStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisSessionStore, error) {
	if redisURL == "" {
		return nil, errors.New("redis url is required for the redis session backend")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}, nil
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// decodeRedisValue maps a stored value to a persona; junk reads as Default.
func decodeRedisValue(v string) Persona {
	p := Persona(v)
	if !p.Valid() {
		return Default
	}
	return p
}

func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (Persona, error) {
	v, err := r.client.GetEx(ctx, redisKey(sessionID), r.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return Default, nil
	}
	if err != nil {
		return Default, fmt.Errorf("get session persona: %w", err)
	}
	return decodeRedisValue(v), nil
}

func (r *RedisSessionStore) Set(ctx context.Context, sessionID string, p Persona) error {
	if !p.Valid() {
		return fmt.Errorf("unknown persona %q", p)
	}
	if err := r.client.Set(ctx, redisKey(sessionID), string(p), r.ttl).Err(); err != nil {
		return fmt.Errorf("set session persona: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}

// OpenSessionStore creates the session backend named by backend
// ("memory" or "redis").
func OpenSessionStore(ctx context.Context, backend, redisURL string, ttl time.Duration) (SessionStore, error) {
	switch backend {
	case "", "memory":
		return NewMemorySessionStore(ttl), nil
	case "redis":
		return NewRedisSessionStore(ctx, redisURL, ttl)
	default:
		return nil, fmt.Errorf("unknown session backend %q (use memory or redis)", backend)
	}
}
