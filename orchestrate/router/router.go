// Package router implements capability-based task routing: given a task and the set of
// configured executors, choose which executor id should run it, and track how many tasks
// each executor currently has in flight.
package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tailored-agentic-units/taskgraph/observability"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

// FallbackAgentType is returned when no configured executor's capabilities are a superset
// of a task's required capabilities.
const FallbackAgentType = "general-purpose"

// Router maps tasks to executor ids and tracks per-executor load.
type Router struct {
	mu       sync.Mutex
	routings []model.AgentRouting
	load     map[string]int
	observer observability.Observer
}

// New builds a Router seeded with the given routing table. A nil observer defaults to a no-op.
func New(routings []model.AgentRouting, observer observability.Observer) *Router {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &Router{
		routings: append([]model.AgentRouting(nil), routings...),
		load:     make(map[string]int, len(routings)),
		observer: observer,
	}
}

func (r *Router) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	r.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "router",
		Data:      data,
	})
}

// Route chooses an executor id for a task.
//
//  1. If task.AgentType is set, return it verbatim.
//  2. Otherwise find configured executors whose capabilities are a superset of the task's
//     required capabilities ("suitable"). If none, return FallbackAgentType.
//  3. Partition suitable into available (load < max_concurrent_tasks) and saturated; fall
//     back to the full suitable set if none are available.
//  4. Sort by ascending load, then descending priority, then descending capability count.
//  5. Return the first entry's agent type.
func (r *Router) Route(ctx context.Context, task model.TaskDefinition) string {
	if task.AgentType != "" {
		return task.AgentType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var suitable []model.AgentRouting
	for _, routing := range r.routings {
		if routing.Capabilities.IsSupersetOf(task.RequiredCapabilities) {
			suitable = append(suitable, routing)
		}
	}
	if len(suitable) == 0 {
		r.emit(ctx, EventRoutingFallback, observability.LevelWarning, map[string]any{"task_id": task.ID})
		return FallbackAgentType
	}

	candidates := r.filterAvailable(suitable)
	if len(candidates) == 0 {
		candidates = suitable
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		li, lj := r.load[candidates[i].AgentType], r.load[candidates[j].AgentType]
		if li != lj {
			return li < lj
		}
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].Capabilities.Len() > candidates[j].Capabilities.Len()
	})

	chosen := candidates[0].AgentType
	r.emit(ctx, EventRoutingChoice, observability.LevelInfo, map[string]any{"task_id": task.ID, "agent_type": chosen})
	return chosen
}

func (r *Router) filterAvailable(suitable []model.AgentRouting) []model.AgentRouting {
	var available []model.AgentRouting
	for _, routing := range suitable {
		if r.load[routing.AgentType] < routing.MaxConcurrentTasks {
			available = append(available, routing)
		}
	}
	return available
}

// IncrementLoad records a new in-flight task for an executor id.
func (r *Router) IncrementLoad(agentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load[agentType]++
}

// DecrementLoad records a completed task for an executor id. Floored at zero.
func (r *Router) DecrementLoad(agentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.load[agentType] > 0 {
		r.load[agentType]--
	}
}

// LoadOf returns the current in-flight count for an executor id.
func (r *Router) LoadOf(agentType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load[agentType]
}

// LoadSummary returns a point-in-time copy of all tracked load counters.
func (r *Router) LoadSummary() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.load))
	for k, v := range r.load {
		out[k] = v
	}
	return out
}

// ResetLoad clears every load counter, for reuse of one Router across independent runs.
func (r *Router) ResetLoad() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load = make(map[string]int, len(r.routings))
}
