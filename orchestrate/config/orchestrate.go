package config

// CacheConfig controls the result cache's storage strategy, lifetime, and eviction policy.
//
// Configuration fields:
//   - Strategy: "none" | "memory" | "disk" | "hybrid"
//   - TTLSeconds: entries older than this are treated as absent (0 = no expiry)
//   - MaxSize: memory tier LRU capacity
//   - CacheDir: disk tier directory (required for "disk"/"hybrid")
//   - IncludeDependencies: whether dependency outputs participate in the cache key
type CacheConfig struct {
	Strategy            string `json:"strategy"`
	TTLSeconds          int    `json:"ttl_seconds"`
	MaxSize             int    `json:"max_size"`
	CacheDir            string `json:"cache_dir"`
	IncludeDependencies bool   `json:"include_dependencies"`
}

// DefaultCacheConfig returns an in-memory cache with a 1000-entry LRU and no TTL.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Strategy:            "memory",
		TTLSeconds:          0,
		MaxSize:             1000,
		IncludeDependencies: true,
	}
}

func (c *CacheConfig) Merge(source *CacheConfig) {
	if source.Strategy != "" {
		c.Strategy = source.Strategy
	}
	if source.TTLSeconds > 0 {
		c.TTLSeconds = source.TTLSeconds
	}
	if source.MaxSize > 0 {
		c.MaxSize = source.MaxSize
	}
	if source.CacheDir != "" {
		c.CacheDir = source.CacheDir
	}
	c.IncludeDependencies = source.IncludeDependencies
}

// RouterConfig controls observability for the capability-based router. Routing tables
// themselves live in model.OrchestratorConfig; this config covers only cross-cutting
// concerns the router shares with every other subsystem.
type RouterConfig struct {
	Observer string `json:"observer"`
}

// DefaultRouterConfig returns the slog-backed observer default.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{Observer: "slog"}
}

func (c *RouterConfig) Merge(source *RouterConfig) {
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// CoordinatorConfig controls the top-level workflow driver: observability, default
// condition-predicate selection, whether caching is consulted at all, and mid-run
// checkpointing of workflow state.
type CoordinatorConfig struct {
	Observer            string           `json:"observer"`
	ConditionPredicate  string           `json:"condition_predicate"`
	EnableCache         bool             `json:"enable_cache"`
	AutoSelectStrategy  bool             `json:"auto_select_strategy"`
	Checkpoint          CheckpointConfig `json:"checkpoint"`
}

// DefaultCoordinatorConfig returns slog logging, the substring condition predicate,
// caching enabled, explicit (non-auto) strategy selection, and checkpointing disabled.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Observer:           "slog",
		ConditionPredicate: "substring",
		EnableCache:        true,
		AutoSelectStrategy: false,
		Checkpoint:         DefaultCheckpointConfig(),
	}
}

func (c *CoordinatorConfig) Merge(source *CoordinatorConfig) {
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.ConditionPredicate != "" {
		c.ConditionPredicate = source.ConditionPredicate
	}
	c.EnableCache = source.EnableCache
	c.AutoSelectStrategy = source.AutoSelectStrategy
	c.Checkpoint.Merge(&source.Checkpoint)
}

// MetricsConfig controls the optional Prometheus exporter for the metrics recorder.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace"`
}

// DefaultMetricsConfig returns the exporter disabled (zero overhead by default).
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enabled: false, Namespace: "taskgraph"}
}

func (c *MetricsConfig) Merge(source *MetricsConfig) {
	c.Enabled = source.Enabled
	if source.Namespace != "" {
		c.Namespace = source.Namespace
	}
}
