// Package cache implements the content-addressed result cache: a SHA-256 digest over task
// identity (and, optionally, dependency outputs) keys a cached TaskResult, served from a
// memory tier, a disk tier, or both. The cache sits strictly between the coordinator's
// driver and the agent substrate — a fault here must degrade to a miss, never break a run.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tailored-agentic-units/taskgraph/observability"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/config"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

// Strategy selects which tier(s) back the cache.
type Strategy string

const (
	StrategyNone   Strategy = "none"
	StrategyMemory Strategy = "memory"
	StrategyDisk   Strategy = "disk"
	StrategyHybrid Strategy = "hybrid"
)

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Hits          int
	Misses        int
	Evictions     int
	Invalidations int
	Size          int
}

// HitRate returns "hits/total" text, or "0/0" when nothing has been looked up.
func (s Stats) HitRate() string {
	total := s.Hits + s.Misses
	if total == 0 {
		return "0/0"
	}
	return intToStr(s.Hits) + "/" + intToStr(total)
}

func intToStr(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// Cache is the result cache. Zero value is not usable; construct with New.
//
// Two reverse indices resolve the source's broken invalidate() addressing (it attempted a
// substring match of a task id against opaque SHA-256 digests, which can never match):
//   - ownKeys[task_id]    -> cache keys whose entry IS that task's own cached result.
//   - dependentKeys[task_id] -> cache keys of entries that were computed WITH task_id as
//     one of their dependencies (recorded at Put time from the task definition, never by
//     re-hashing a synthetic stand-in task).
type Cache struct {
	strategy            Strategy
	ttl                 time.Duration
	includeDependencies bool

	mem  *memoryStore
	disk *diskStore

	mu            sync.Mutex
	stats         Stats
	ownKeys       map[string]map[string]struct{}
	dependentKeys map[string]map[string]struct{}
	keyOwner      map[string]string // cache key -> owning task id, for eviction cleanup
	observer      observability.Observer
}

// New builds a Cache from a CacheConfig. Strategy "none" produces a cache whose Get always
// misses and whose Put is a no-op, so callers never need to special-case disabled caching.
func New(cfg config.CacheConfig, observer observability.Observer) *Cache {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	c := &Cache{
		strategy:            Strategy(cfg.Strategy),
		ttl:                 time.Duration(cfg.TTLSeconds) * time.Second,
		includeDependencies: cfg.IncludeDependencies,
		ownKeys:             make(map[string]map[string]struct{}),
		dependentKeys:       make(map[string]map[string]struct{}),
		keyOwner:            make(map[string]string),
		observer:            observer,
	}
	if c.strategy == StrategyMemory || c.strategy == StrategyHybrid {
		c.mem = newMemoryStore(cfg.MaxSize, c.handleEviction)
	}
	if c.strategy == StrategyDisk || c.strategy == StrategyHybrid {
		c.disk = newDiskStore(cfg.CacheDir)
	}
	return c
}

func (c *Cache) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	c.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "cache",
		Data:      data,
	})
}

func (c *Cache) handleEviction(evicted Entry) {
	c.mu.Lock()
	c.stats.Evictions++
	c.unindexLocked(evicted)
	c.mu.Unlock()

	// The LRU callback fires synchronously from whatever goroutine triggered the eviction,
	// with no caller-supplied context available; context.Background() is the grounded choice.
	c.emit(context.Background(), EventCacheEvict, observability.LevelVerbose, map[string]any{"key": evicted.Key, "task_id": evicted.TaskID})
}

func addToIndex(index map[string]map[string]struct{}, id, key string) {
	if id == "" {
		return
	}
	set, ok := index[id]
	if !ok {
		set = make(map[string]struct{})
		index[id] = set
	}
	set[key] = struct{}{}
}

func removeFromIndex(index map[string]map[string]struct{}, id, key string) {
	if set, ok := index[id]; ok {
		delete(set, key)
		if len(set) == 0 {
			delete(index, id)
		}
	}
}

func (c *Cache) indexLocked(task model.TaskDefinition, key string) {
	addToIndex(c.ownKeys, task.ID, key)
	c.keyOwner[key] = task.ID
	for _, dep := range task.DependsOn {
		addToIndex(c.dependentKeys, dep, key)
	}
}

func (c *Cache) unindexLocked(e Entry) {
	removeFromIndex(c.ownKeys, e.TaskID, e.Key)
	delete(c.keyOwner, e.Key)
	for _, dep := range e.DependsOn {
		removeFromIndex(c.dependentKeys, dep, e.Key)
	}
}

// Get looks up the cached result for task given its dependency outputs (keyed by dependency
// task id). Disk failures are silent and counted as misses.
func (c *Cache) Get(ctx context.Context, task model.TaskDefinition, depOutputs map[string]string) (model.TaskResult, bool) {
	if c.strategy == "" || c.strategy == StrategyNone {
		return model.TaskResult{}, false
	}

	key := Generate(task, depOutputs, c.includeDependencies)
	now := time.Now()

	if c.mem != nil {
		if entry, ok := c.mem.get(key, c.ttl, now); ok {
			c.recordHit(ctx, key)
			return entryToResult(entry), true
		}
	}

	if c.disk != nil {
		entry, mtime, err := c.disk.load(key)
		if err == nil {
			if c.ttl > 0 && now.Sub(mtime) > c.ttl {
				_ = c.disk.remove(key)
			} else {
				if c.strategy == StrategyHybrid && c.mem != nil {
					c.mem.put(entry)
					c.mu.Lock()
					c.indexLocked(task, key)
					c.mu.Unlock()
				}
				c.recordHit(ctx, key)
				return entryToResult(entry), true
			}
		} else {
			c.emit(ctx, EventCacheIOError, observability.LevelWarning, map[string]any{"key": key, "error": err.Error()})
		}
	}

	c.recordMiss(ctx, key)
	return model.TaskResult{}, false
}

func entryToResult(e Entry) model.TaskResult {
	return model.TaskResult{
		TaskID:    e.TaskID,
		Status:    model.TaskCompleted,
		Output:    e.Output,
		AgentUsed: e.AgentUsed,
	}
}

func (c *Cache) recordHit(ctx context.Context, key string) {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	c.emit(ctx, EventCacheHit, observability.LevelVerbose, map[string]any{"key": key})
}

func (c *Cache) recordMiss(ctx context.Context, key string) {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	c.emit(ctx, EventCacheMiss, observability.LevelVerbose, map[string]any{"key": key})
}

// Put records a successful result. depOutputs is the same dependency-output map used for Get.
func (c *Cache) Put(ctx context.Context, task model.TaskDefinition, result model.TaskResult, depOutputs map[string]string) {
	if c.strategy == "" || c.strategy == StrategyNone {
		return
	}
	if !result.Succeeded() {
		return
	}

	key := Generate(task, depOutputs, c.includeDependencies)
	entry := Entry{
		Key:        key,
		TaskID:     task.ID,
		Output:     result.Output,
		AgentUsed:  result.AgentUsed,
		CreatedAt:  time.Now(),
		AccessedAt: time.Now(),
		DependsOn:  append([]string(nil), task.DependsOn...),
	}

	if c.mem != nil {
		c.mem.put(entry)
	}
	if c.disk != nil {
		if err := c.disk.save(entry); err != nil {
			c.emit(ctx, EventCacheIOError, observability.LevelWarning, map[string]any{"key": key, "error": err.Error()})
		}
	}

	c.mu.Lock()
	c.indexLocked(task, key)
	c.mu.Unlock()

	c.emit(ctx, EventCachePut, observability.LevelVerbose, map[string]any{"key": key, "task_id": task.ID})
}

// Invalidate removes every entry that is task_id's own cached result, in both tiers, and
// returns the count removed.
func (c *Cache) Invalidate(ctx context.Context, taskID string) int {
	n := c.removeIndexed(ctx, c.ownKeys, taskID)
	c.emit(ctx, EventCacheInvalidate, observability.LevelInfo, map[string]any{"task_id": taskID, "count": n, "kind": "own"})
	return n
}

// InvalidateDependents removes entries that were computed with task_id as one of their
// dependencies — the result would otherwise keep serving a value derived from output that
// may no longer match what Invalidate(task_id) recomputes.
func (c *Cache) InvalidateDependents(ctx context.Context, taskID string) int {
	n := c.removeIndexed(ctx, c.dependentKeys, taskID)
	c.emit(ctx, EventCacheInvalidate, observability.LevelInfo, map[string]any{"task_id": taskID, "count": n, "kind": "dependents"})
	return n
}

func (c *Cache) removeIndexed(ctx context.Context, index map[string]map[string]struct{}, id string) int {
	c.mu.Lock()
	keys := make([]string, 0, len(index[id]))
	for k := range index[id] {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	for _, k := range keys {
		entry, found := c.lookupEntry(k)

		if c.mem != nil {
			c.mem.remove(k)
		}
		if c.disk != nil {
			_ = c.disk.remove(k)
		}

		c.mu.Lock()
		if found {
			c.unindexLocked(entry)
		} else if owner, ok := c.keyOwner[k]; ok {
			// Entry already gone from both tiers (e.g. concurrent eviction); fall back to
			// clearing whatever bookkeeping still references it.
			removeFromIndex(c.ownKeys, owner, k)
			delete(c.keyOwner, k)
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.stats.Invalidations += len(keys)
	c.mu.Unlock()
	return len(keys)
}

// lookupEntry fetches an entry by key from whichever tier still holds it, without touching
// LRU recency or TTL bookkeeping — used only to recover its dependency list before eviction.
func (c *Cache) lookupEntry(key string) (Entry, bool) {
	if c.mem != nil {
		if e, ok := c.mem.peek(key); ok {
			return e, true
		}
	}
	if c.disk != nil {
		if e, _, err := c.disk.load(key); err == nil {
			return e, true
		}
	}
	return Entry{}, false
}

// Clear resets both tiers and every counter.
func (c *Cache) Clear(ctx context.Context) {
	if c.mem != nil {
		c.mem.clear()
	}
	if c.disk != nil {
		_ = c.disk.clear()
	}
	c.mu.Lock()
	c.stats = Stats{}
	c.ownKeys = make(map[string]map[string]struct{})
	c.dependentKeys = make(map[string]map[string]struct{})
	c.keyOwner = make(map[string]string)
	c.mu.Unlock()
}

// Snapshot returns the current statistics.
func (c *Cache) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	if c.mem != nil {
		s.Size = c.mem.len()
	}
	return s
}
