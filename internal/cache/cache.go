// Package cache provides a read cache for documents. A single instance
// keeps entries in an in-process LRU; replicas sharing a memcached server
// use that server only, so an invalidation on one replica is seen by all.
package cache

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/karlseguin/ccache/v3"
)

// Remote is the shared tier. *memcache.Client satisfies it.
type Remote interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Delete(key string) error
}

// Config controls cache sizing and lifetime.
type Config struct {
	// Namespace prefixes every key, e.g. "place".
	Namespace string
	// Size is the maximum number of local entries.
	Size int64
	// TTL applies to whichever tier is in use.
	TTL time.Duration
}

// Cache stores JSON-serializable values of type T. Exactly one tier is
// active: local when remote is nil, remote otherwise.
type Cache[T any] struct {
	local     *ccache.Cache[T]
	remote    Remote
	namespace string
	ttl       time.Duration
	logger    *slog.Logger

	// mu makes Fill's check-then-set atomic against Set and Delete.
	mu sync.Mutex
}

// New creates a cache. remote may be nil to run with the local tier only.
func New[T any](cfg Config, remote Remote, logger *slog.Logger) *Cache[T] {
	size := cfg.Size
	if size <= 0 {
		size = 1000
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &Cache[T]{
		remote:    remote,
		namespace: cfg.Namespace,
		ttl:       ttl,
		logger:    logger,
	}
	if remote == nil {
		c.local = ccache.New(ccache.Configure[T]().MaxSize(size))
	}
	return c
}

// NewMemcached returns a memcached client for addr, or nil when addr is empty.
func NewMemcached(addr string) *memcache.Client {
	if addr == "" {
		return nil
	}
	client := memcache.New(addr)
	client.Timeout = 250 * time.Millisecond
	return client
}

func (c *Cache[T]) key(k string) string {
	if c.namespace == "" {
		return "staybook:" + k
	}
	return "staybook:" + c.namespace + ":" + k
}

// Get returns the cached value for k.
func (c *Cache[T]) Get(k string) (T, bool) {
	var zero T
	key := c.key(k)

	if c.local != nil {
		if item := c.local.Get(key); item != nil && !item.Expired() {
			return item.Value(), true
		}
		return zero, false
	}

	item, err := c.remote.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			c.warn("cache remote get failed", key, err)
		}
		return zero, false
	}

	var value T
	if err := json.Unmarshal(item.Value, &value); err != nil {
		c.warn("cache remote value corrupt", key, err)
		return zero, false
	}
	return value, true
}

// Set stores value, replacing any existing entry. Writers use Set so the
// cache holds what they just stored.
func (c *Cache[T]) Set(k string, value T) {
	key := c.key(k)

	if c.local != nil {
		c.mu.Lock()
		c.local.Set(key, value, c.ttl)
		c.mu.Unlock()
		return
	}

	item, ok := c.remoteItem(key, value)
	if !ok {
		return
	}
	if err := c.remote.Set(item); err != nil {
		c.warn("cache remote set failed", key, err)
	}
}

// Fill stores value only when k has no entry. Readers use Fill after a miss
// so a value read before a concurrent write never replaces the writer's.
func (c *Cache[T]) Fill(k string, value T) {
	key := c.key(k)

	if c.local != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if item := c.local.Get(key); item != nil && !item.Expired() {
			return
		}
		c.local.Set(key, value, c.ttl)
		return
	}

	item, ok := c.remoteItem(key, value)
	if !ok {
		return
	}
	if err := c.remote.Add(item); err != nil && !errors.Is(err, memcache.ErrNotStored) {
		c.warn("cache remote add failed", key, err)
	}
}

// Delete removes k.
func (c *Cache[T]) Delete(k string) {
	key := c.key(k)

	if c.local != nil {
		c.mu.Lock()
		c.local.Delete(key)
		c.mu.Unlock()
		return
	}

	if err := c.remote.Delete(key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		c.warn("cache remote delete failed", key, err)
	}
}

// ItemCount returns the number of local entries. It is zero when the
// remote tier is in use.
func (c *Cache[T]) ItemCount() int {
	if c.local == nil {
		return 0
	}
	return c.local.ItemCount()
}

// Shutdown stops the local tier's background worker.
func (c *Cache[T]) Shutdown() error {
	if c.local != nil {
		c.local.Stop()
	}
	return nil
}

func (c *Cache[T]) remoteItem(key string, value T) (*memcache.Item, bool) {
	data, err := json.Marshal(value)
	if err != nil {
		c.warn("cache marshal failed", key, err)
		return nil, false
	}
	return &memcache.Item{
		Key:        key,
		Value:      data,
		Expiration: int32(c.ttl / time.Second),
	}, true
}

func (c *Cache[T]) warn(msg, key string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, "key", key, "error", err)
	}
}
