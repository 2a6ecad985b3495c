// Package cache is a tag-invalidated query cache. A query result is stored
// under a key together with the tags it provides; invalidating a tag evicts
// every result that provided it, so the next read fetches again.
package cache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"venuebook/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const maxHistory = 256

// Fetcher loads a query result and reports the tags it provides.
type Fetcher[T any] func(ctx context.Context) (T, []Tag, error)

// Hook observes local invalidations.
type Hook func(tags []Tag)

type Stats struct {
	Hits    uint64
	Misses  uint64
	Fetches uint64
}

type entry struct {
	value     any
	tags      []Tag
	fetchedAt time.Time
}

type invalidation struct {
	epoch uint64
	tags  []Tag
	all   bool
}

type Cache struct {
	log   *logger.Logger
	group singleflight.Group

	mu       sync.Mutex
	entries  map[string]*entry
	epoch    uint64
	history  []invalidation
	floor    uint64
	watchers map[string]map[int]chan struct{}
	nextID   int
	hooks    []Hook

	hits    atomic.Uint64
	misses  atomic.Uint64
	fetches atomic.Uint64
}

func New(log *logger.Logger) *Cache {
	return &Cache{
		log:      log.Component("cache"),
		entries:  make(map[string]*entry),
		watchers: make(map[string]map[int]chan struct{}),
	}
}

// Query returns the cached result for key or runs fetch. Concurrent callers
// for the same key share one fetch. A result whose tags are invalidated while
// it is being fetched is returned to the waiting callers but not cached.
//
// fetch runs detached from ctx cancellation so a caller that gives up does
// not fail the others sharing the flight.
func Query[T any](ctx context.Context, c *Cache, key string, fetch Fetcher[T]) (T, error) {
	var zero T

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if v, ok := e.value.(T); ok {
			c.mu.Unlock()
			c.hits.Add(1)
			return v, nil
		}
	}
	start := c.epoch
	c.mu.Unlock()
	c.misses.Add(1)

	flightKey := key + "@" + strconv.FormatUint(start, 10)
	flight := c.group.DoChan(flightKey, func() (any, error) {
		c.fetches.Add(1)
		v, tags, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(key, v, tags, start)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

func (c *Cache) store(key string, value any, tags []Tag, start uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.invalidatedSinceLocked(start, tags) {
		c.log.Debug("discarding result invalidated during fetch", "key", key)
		return
	}
	c.entries[key] = &entry{
		value:     value,
		tags:      append([]Tag(nil), tags...),
		fetchedAt: time.Now(),
	}
}

func (c *Cache) invalidatedSinceLocked(start uint64, tags []Tag) bool {
	if start == c.epoch {
		return false
	}
	if start < c.floor {
		return true
	}
	for _, inv := range c.history {
		if inv.epoch <= start {
			continue
		}
		if inv.all || matchesAny(inv.tags, tags) {
			return true
		}
	}
	return false
}

// Invalidate evicts every result that provided one of tags and then runs the
// registered hooks.
func (c *Cache) Invalidate(tags ...Tag) {
	if len(tags) == 0 {
		return
	}
	c.apply(tags, false)

	c.mu.Lock()
	hooks := append([]Hook(nil), c.hooks...)
	c.mu.Unlock()
	for _, h := range hooks {
		h(tags)
	}
}

// InvalidateFromRemote applies an invalidation that originated in another
// process. Hooks do not run, so it is never re-broadcast.
func (c *Cache) InvalidateFromRemote(tags ...Tag) {
	if len(tags) == 0 {
		return
	}
	c.apply(tags, false)
}

func (c *Cache) InvalidateType(types ...string) {
	tags := make([]Tag, len(types))
	for i, t := range types {
		tags[i] = TypeTag(t)
	}
	c.Invalidate(tags...)
}

// Reset evicts everything. Hooks do not run.
func (c *Cache) Reset() {
	c.apply(nil, true)
}

func (c *Cache) apply(tags []Tag, all bool) {
	c.mu.Lock()
	c.epoch++
	c.history = append(c.history, invalidation{epoch: c.epoch, tags: append([]Tag(nil), tags...), all: all})
	if len(c.history) > maxHistory {
		dropped := len(c.history) - maxHistory
		c.floor = c.history[dropped-1].epoch
		c.history = append([]invalidation(nil), c.history[dropped:]...)
	}

	var notify []chan struct{}
	evicted := 0
	for key, e := range c.entries {
		if !all && !matchesAny(tags, e.tags) {
			continue
		}
		delete(c.entries, key)
		evicted++
		for _, ch := range c.watchers[key] {
			notify = append(notify, ch)
		}
	}
	if all {
		for _, ws := range c.watchers {
			for _, ch := range ws {
				notify = append(notify, ch)
			}
		}
	}
	c.mu.Unlock()

	c.log.Debug("cache invalidated",
		"tags", tagStrings(tags),
		"all", all,
		"evicted", evicted,
	)

	for _, ch := range notify {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// OnInvalidate registers h to run after every local Invalidate.
func (c *Cache) OnInvalidate(h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
}

// Watch returns a channel that receives a value whenever the result cached
// under key is invalidated. Signals coalesce; the channel is never closed.
func (c *Cache) Watch(key string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	if c.watchers[key] == nil {
		c.watchers[key] = make(map[int]chan struct{})
	}
	c.watchers[key][id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.watchers[key], id)
		if len(c.watchers[key]) == 0 {
			delete(c.watchers, key)
		}
	}
}

// Cached reports whether a fresh result is stored under key.
func (c *Cache) Cached(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Fetches: c.fetches.Load(),
	}
}
