// Package kv is a small string key-value store used for user preferences and the sheets cache.
package kv

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrMiss = errors.New("cache miss")

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

type KV interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A zero ttl keeps the key until it is deleted.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// ScanKeys lists the live keys starting with prefix. The prefix is matched literally.
	ScanKeys(ctx context.Context, prefix string) ([]string, error)
}

type RedisKV struct {
	c *redis.Client
}

func NewRedisKV(c *redis.Client) *RedisKV { return &RedisKV{c: c} }

// NewRedisClient creates a client for addr. The connection is established lazily.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, key).Err()
}

func (r *RedisKV) ScanKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		k, next, err := r.c.Scan(ctx, cursor, globEscaper.Replace(prefix)+"*", 200).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Ping checks the connection.
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

type entry struct {
	value   string
	expires time.Time
}

// sweepEvery is how often Set drops expired entries of a MemoryKV.
const sweepEvery = time.Minute

// MemoryKV is an in-process KV for single-instance deployments and tests.
// Expired entries are dropped when read and swept periodically on write.
type MemoryKV struct {
	mu        sync.RWMutex
	data      map[string]entry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]entry), now: time.Now}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrMiss
	}
	if m.expired(e) {
		m.mu.Lock()
		if cur, ok := m.data[key]; ok && m.expired(cur) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		return "", ErrMiss
	}
	return e.value, nil
}

func (m *MemoryKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	now := m.now()
	e := entry{value: value}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) >= sweepEvery {
		m.lastSweep = now
		for k, old := range m.data {
			if m.expired(old) {
				delete(m.data, k)
			}
		}
	}
	m.data[key] = e
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) ScanKeys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k, e := range m.data {
		if strings.HasPrefix(k, prefix) && !m.expired(e) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Len returns the number of entries held, expired ones not yet dropped included.
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryKV) expired(e entry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}
