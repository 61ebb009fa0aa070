package cache

import (
	"context"
	"testing"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/config"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

func memCache(t *testing.T) *Cache {
	t.Helper()
	cfg := config.DefaultCacheConfig()
	return New(cfg, nil)
}

func TestCache_MissThenHit(t *testing.T) {
	c := memCache(t)
	ctx := context.Background()
	task := model.NewTaskDefinition("A", "do A")

	if _, ok := c.Get(ctx, task, nil); ok {
		t.Fatalf("expected miss on empty cache")
	}

	result := model.TaskResult{TaskID: "A", Status: model.TaskCompleted, Output: "result-a"}
	c.Put(ctx, task, result, nil)

	got, ok := c.Get(ctx, task, nil)
	if !ok {
		t.Fatalf("expected hit after put")
	}
	if got.Output != "result-a" {
		t.Errorf("Output = %q, want result-a", got.Output)
	}

	stats := c.Snapshot()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 miss", stats)
	}
}

func TestCache_KeyReorderingInvariant(t *testing.T) {
	task1 := model.NewTaskDefinition("A", "desc")
	task1.Parameters = map[string]any{"x": 1, "y": 2}
	task2 := model.NewTaskDefinition("A", "desc")
	task2.Parameters = map[string]any{"y": 2, "x": 1}

	k1 := Generate(task1, nil, true)
	k2 := Generate(task2, nil, true)
	if k1 != k2 {
		t.Errorf("keys differ for reordered parameters: %s != %s", k1, k2)
	}
}

func TestCache_DependencyOutputChangesKey(t *testing.T) {
	task := model.NewTaskDefinition("B", "desc")
	task.DependsOn = []string{"A"}

	k1 := Generate(task, map[string]string{"A": "old"}, true)
	k2 := Generate(task, map[string]string{"A": "new"}, true)
	if k1 == k2 {
		t.Errorf("expected different keys for different dependency outputs")
	}
}

func TestCache_ExcludeDependenciesWhenDisabled(t *testing.T) {
	task := model.NewTaskDefinition("B", "desc")
	task.DependsOn = []string{"A"}

	k1 := Generate(task, map[string]string{"A": "old"}, false)
	k2 := Generate(task, map[string]string{"A": "new"}, false)
	if k1 != k2 {
		t.Errorf("expected identical keys when include_dependencies is false, got %s != %s", k1, k2)
	}
}

func TestCache_InvalidateOwnEntry(t *testing.T) {
	c := memCache(t)
	ctx := context.Background()
	task := model.NewTaskDefinition("A", "desc")
	c.Put(ctx, task, model.TaskResult{TaskID: "A", Status: model.TaskCompleted, Output: "v1"}, nil)

	n := c.Invalidate(ctx, "A")
	if n != 1 {
		t.Fatalf("Invalidate() = %d, want 1", n)
	}
	if _, ok := c.Get(ctx, task, nil); ok {
		t.Errorf("expected miss after invalidation")
	}
}

func TestCache_InvalidateDependents(t *testing.T) {
	c := memCache(t)
	ctx := context.Background()

	a := model.NewTaskDefinition("A", "desc")
	b := model.NewTaskDefinition("B", "desc")
	b.DependsOn = []string{"A"}

	c.Put(ctx, a, model.TaskResult{TaskID: "A", Status: model.TaskCompleted, Output: "a-out"}, nil)
	c.Put(ctx, b, model.TaskResult{TaskID: "B", Status: model.TaskCompleted, Output: "b-out"}, map[string]string{"A": "a-out"})

	n := c.InvalidateDependents(ctx, "A")
	if n != 1 {
		t.Fatalf("InvalidateDependents() = %d, want 1 (only B depends on A)", n)
	}
	if _, ok := c.Get(ctx, b, map[string]string{"A": "a-out"}); ok {
		t.Errorf("expected B's entry invalidated")
	}
	if _, ok := c.Get(ctx, a, nil); !ok {
		t.Errorf("expected A's own entry to survive InvalidateDependents")
	}
}

func TestCache_RetriesAndFailuresNeverCached(t *testing.T) {
	c := memCache(t)
	ctx := context.Background()
	task := model.NewTaskDefinition("A", "desc")

	c.Put(ctx, task, model.TaskResult{TaskID: "A", Status: model.TaskFailed, Error: "boom"}, nil)
	if _, ok := c.Get(ctx, task, nil); ok {
		t.Errorf("expected failed result to never populate the cache")
	}
}

func TestCache_NoneStrategyAlwaysMisses(t *testing.T) {
	cfg := config.DefaultCacheConfig()
	cfg.Strategy = "none"
	c := New(cfg, nil)
	ctx := context.Background()
	task := model.NewTaskDefinition("A", "desc")

	c.Put(ctx, task, model.TaskResult{TaskID: "A", Status: model.TaskCompleted, Output: "x"}, nil)
	if _, ok := c.Get(ctx, task, nil); ok {
		t.Errorf("strategy none must never produce a hit")
	}
}

func TestCache_ClearResetsStatsAndEntries(t *testing.T) {
	c := memCache(t)
	ctx := context.Background()
	task := model.NewTaskDefinition("A", "desc")
	c.Put(ctx, task, model.TaskResult{TaskID: "A", Status: model.TaskCompleted, Output: "x"}, nil)
	c.Get(ctx, task, nil)

	c.Clear(ctx)

	stats := c.Snapshot()
	if stats.Hits != 0 || stats.Misses != 0 || stats.Size != 0 {
		t.Errorf("stats after clear = %+v, want all zero", stats)
	}
	if _, ok := c.Get(ctx, task, nil); ok {
		t.Errorf("expected miss after clear")
	}
}
