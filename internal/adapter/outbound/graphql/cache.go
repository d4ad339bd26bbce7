package graphql

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/alexwatever/wept/internal/domain/apperror"
	"github.com/alexwatever/wept/internal/port/outbound"
)

const meterName = "github.com/alexwatever/wept/internal/adapter/outbound/graphql"

// lruEntry is a doubly-linked list node for the LRU cache.
type lruEntry struct {
	key     uint64
	data    json.RawMessage
	expires time.Time
	prev    *lruEntry
	next    *lruEntry
}

// CachingExecutor wraps a QueryExecutor with a bounded, expiring cache of
// decoded data objects keyed by (operation, variables). Concurrent identical
// queries are coalesced into one backend call; a canceled leader fails its
// followers too. Errors are never cached.
type CachingExecutor struct {
	next      outbound.QueryExecutor
	endpoints outbound.EndpointSource
	group     singleflight.Group
	ttl       time.Duration
	now       func() time.Time

	mu      sync.Mutex
	entries map[uint64]*lruEntry
	head    *lruEntry // most recently used
	tail    *lruEntry // least recently used
	maxSize int

	hits   metric.Int64Counter
	misses metric.Int64Counter
	shared metric.Int64Counter
}

// CacheOption configures a CachingExecutor.
type CacheOption func(*CachingExecutor)

// WithCacheEndpoint scopes cache entries to the endpoint src reports at
// query time, so entries from a previous backend are never served.
func WithCacheEndpoint(src outbound.EndpointSource) CacheOption {
	return func(c *CachingExecutor) {
		c.endpoints = src
	}
}

// NewCachingExecutor creates a cache in front of next. A ttl of zero or less
// disables storage but keeps request coalescing.
func NewCachingExecutor(next outbound.QueryExecutor, ttl time.Duration, maxSize int, opts ...CacheOption) *CachingExecutor {
	if maxSize <= 0 {
		maxSize = 256
	}
	meter := otel.Meter(meterName)
	hits, _ := meter.Int64Counter("wept.graphql.cache.hits",
		metric.WithDescription("Queries answered from the local cache"))
	misses, _ := meter.Int64Counter("wept.graphql.cache.misses",
		metric.WithDescription("Queries sent to the backend"))
	shared, _ := meter.Int64Counter("wept.graphql.cache.coalesced",
		metric.WithDescription("Queries that joined an in-flight identical request"))

	c := &CachingExecutor{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[uint64]*lruEntry, maxSize),
		maxSize: maxSize,
		hits:    hits,
		misses:  misses,
		shared:  shared,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExecuteQuery implements outbound.QueryExecutor.
func (c *CachingExecutor) ExecuteQuery(ctx context.Context, op outbound.Operation, vars map[string]any, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var endpoint string
	if c.endpoints != nil {
		endpoint = c.endpoints.Endpoint()
	}
	key := computeCacheKey(endpoint, op, vars)
	attrs := metric.WithAttributes(attribute.String("operation", op.Name))

	if data, ok := c.get(key); ok {
		c.hits.Add(ctx, 1, attrs)
		return decodeCached(op.Name, data, out)
	}

	v, err, shared := c.group.Do(strconv.FormatUint(key, 16), func() (any, error) {
		c.misses.Add(ctx, 1, attrs)
		var data json.RawMessage
		if err := c.next.ExecuteQuery(ctx, op, vars, &data); err != nil {
			return nil, err
		}
		c.put(key, data)
		return data, nil
	})
	if shared {
		c.shared.Add(ctx, 1, attrs)
	}
	if err != nil {
		return err
	}
	return decodeCached(op.Name, v.(json.RawMessage), out)
}

// Invalidate drops every cached entry.
func (c *CachingExecutor) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*lruEntry, c.maxSize)
	c.head = nil
	c.tail = nil
}

// Size returns the number of cached entries, expired ones included.
func (c *CachingExecutor) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func decodeCached(op string, data json.RawMessage, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: apperror.KindParse, Op: op, Message: "decode data", Err: err}
	}
	return nil
}

func (c *CachingExecutor) get(key uint64) (json.RawMessage, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		c.unlinkLocked(e)
		return nil, false
	}
	c.moveToHeadLocked(e)
	return e.data, true
}

func (c *CachingExecutor) put(key uint64, data json.RawMessage) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.data = data
		e.expires = expires
		c.moveToHeadLocked(e)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictTailLocked()
	}

	e := &lruEntry{key: key, data: data, expires: expires}
	c.entries[key] = e
	c.pushHeadLocked(e)
}

// moveToHeadLocked moves an existing entry to the head. Must be called with lock held.
func (c *CachingExecutor) moveToHeadLocked(e *lruEntry) {
	if c.head == e {
		return
	}
	c.unlinkLocked(e)
	c.pushHeadLocked(e)
}

// pushHeadLocked inserts an entry at the head. Must be called with lock held.
func (c *CachingExecutor) pushHeadLocked(e *lruEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

// unlinkLocked removes an entry from the linked list. Must be called with lock held.
func (c *CachingExecutor) unlinkLocked(e *lruEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

// evictTailLocked removes the least recently used entry. Must be called with lock held.
func (c *CachingExecutor) evictTailLocked() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlinkLocked(c.tail)
}

// computeCacheKey hashes the endpoint, the operation and its variables.
// Variables are JSON-encoded, which sorts map keys, so equal variable sets
// hash equally.
func computeCacheKey(endpoint string, op outbound.Operation, vars map[string]any) uint64 {
	h := xxhash.New()

	_, _ = h.WriteString(endpoint)
	_, _ = h.Write([]byte{0})

	_, _ = h.WriteString(op.Name)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(op.Query)
	_, _ = h.Write([]byte{0})

	if len(vars) > 0 {
		varsJSON, _ := json.Marshal(vars)
		_, _ = h.Write(varsJSON)
	}

	return h.Sum64()
}

var _ outbound.QueryExecutor = (*CachingExecutor)(nil)
