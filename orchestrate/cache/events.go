package cache

import "github.com/tailored-agentic-units/taskgraph/observability"

const (
	EventCacheHit         observability.EventType = "cache.hit"
	EventCacheMiss        observability.EventType = "cache.miss"
	EventCachePut         observability.EventType = "cache.put"
	EventCacheEvict       observability.EventType = "cache.evict"
	EventCacheInvalidate  observability.EventType = "cache.invalidate"
	EventCacheIOError     observability.EventType = "cache.io_error"
)
