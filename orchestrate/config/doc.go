// Package config provides configuration structures for the orchestration components:
// the result cache, the capability router, the top-level coordinator, the Prometheus
// metrics exporter, and mid-run checkpointing.
//
// # Default Configuration
//
// Every config type ships a DefaultXConfig constructor with the documented defaults:
//
//	cfg := config.DefaultCoordinatorConfig()
//	// Observer: "slog"
//	// ConditionPredicate: "substring"
//	// EnableCache: true
//	// Checkpoint: disabled (Interval=0)
//
// # Design Principles
//
//   - Configuration only exists during initialization; it does not persist into
//     runtime components, which hold their own resolved fields.
//   - Validation happens at point of use (coordinator/router/cache packages).
//   - No circular dependencies with domain packages.
//
// # Configuration Merging
//
// All configuration types support a Merge pattern for layered configuration, where a
// loaded config overlays its fields onto a copy of the defaults:
//
//	cfg := config.DefaultCoordinatorConfig()
//	var loaded config.CoordinatorConfig
//	json.Unmarshal(data, &loaded)
//	cfg.Merge(&loaded)
//
// Merge semantics by field type:
//
//   - Strings: merge if source is non-empty
//   - Integers: merge if source is greater than zero
//   - Booleans: copied from source as they are, so a false in source overrides a true
//     default; CheckpointConfig.Preserve is the exception and merges only when true
//   - Nested configs: recursive merge
package config
