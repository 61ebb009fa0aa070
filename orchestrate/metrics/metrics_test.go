package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/tailored-agentic-units/taskgraph/observability"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/cache"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/taskstate"
)

func TestAnalyzeWorkflow_ComputesAggregates(t *testing.T) {
	start := time.Now().Add(-10 * time.Second)
	mid := start.Add(4 * time.Second)
	end := start.Add(10 * time.Second)

	state := model.WorkflowState{
		WorkflowID: "wf1",
		Status:     model.WorkflowPartial,
		StartedAt:  &start,
		CompletedAt: &end,
		TaskResults: map[string]model.TaskResult{
			"a": {TaskID: "a", Status: model.TaskCompleted, DurationSeconds: 4, StartedAt: &start, CompletedAt: &mid},
			"b": {TaskID: "b", Status: model.TaskFailed, DurationSeconds: 1, RetryCount: 2},
			"c": {TaskID: "c", Status: model.TaskSkipped},
		},
	}

	wm := AnalyzeWorkflow(state)
	if wm.TotalTasks != 3 {
		t.Errorf("TotalTasks = %d, want 3", wm.TotalTasks)
	}
	if wm.CompletedTasks != 1 || wm.FailedTasks != 1 || wm.SkippedTasks != 1 {
		t.Errorf("counts = %+v, want 1/1/1", wm)
	}
	if wm.TotalRetries != 2 {
		t.Errorf("TotalRetries = %d, want 2", wm.TotalRetries)
	}
	if wm.TotalDurationSeconds != 10 {
		t.Errorf("TotalDurationSeconds = %v, want 10", wm.TotalDurationSeconds)
	}
	wantSuccess := 100.0 / 3.0
	if diff := wm.SuccessRate - wantSuccess; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("SuccessRate = %v, want %v", wm.SuccessRate, wantSuccess)
	}
}

func TestAnalyzeWorkflow_EmptyStateIsZeroValueSafe(t *testing.T) {
	wm := AnalyzeWorkflow(model.WorkflowState{WorkflowID: "empty"})
	if wm.TotalTasks != 0 || wm.SuccessRate != 0 {
		t.Errorf("expected zero-value metrics for an empty state, got %+v", wm)
	}
}

func TestCollector_NilIsSafeObserver(t *testing.T) {
	var c *Collector
	c.OnEvent(context.Background(), observability.Event{Type: taskstate.EventTaskStart})
	if c.Registry() != nil {
		t.Errorf("expected nil registry from a nil collector")
	}
}

func TestCollector_DisabledReturnsNil(t *testing.T) {
	if NewCollector(false, "x") != nil {
		t.Errorf("expected NewCollector(false, ...) to return nil")
	}
}

func TestCollector_RecordsTaskAndCacheEvents(t *testing.T) {
	c := NewCollector(true, "test")
	ctx := context.Background()

	c.OnEvent(ctx, observability.Event{Type: taskstate.EventTaskStart})
	c.OnEvent(ctx, observability.Event{Type: taskstate.EventTaskComplete})
	c.OnEvent(ctx, observability.Event{Type: taskstate.EventTaskRetry})
	c.OnEvent(ctx, observability.Event{Type: cache.EventCacheHit})

	metricFamilies, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(metricFamilies) == 0 {
		t.Errorf("expected at least one registered metric family after recording events")
	}
}
