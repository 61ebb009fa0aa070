// Package taskstate holds the multi-task, dependency-aware workflow state store: the set
// of primitives every executor (sequential, parallel, DAG, conditional) drives a workflow
// through. All mutation is funneled through a single mutex so that concurrent task
// completions observe a consistent view; no primitive here blocks on anything but the lock.
package taskstate

import (
	"context"
	"sync"
	"time"

	"github.com/tailored-agentic-units/taskgraph/observability"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

// Store owns one workflow's mutable WorkflowState and is the sole place that state is
// transitioned. All reads handed out to callers are value copies. A single mutex guards
// every field and is never held during an agent invocation. Task-level transitions (start,
// complete, fail, retry, skip) emit their event while still holding it, so an observer must
// not call back into the Store; the workflow-level transitions emit after releasing it.
type Store struct {
	mu            sync.Mutex
	def           model.WorkflowDefinition
	state         model.WorkflowState
	predicateName string
	observer      observability.Observer

	pendingSet map[string]struct{}
	currentSet map[string]struct{}
}

// New builds a Store seeded from a workflow definition. A nil observer defaults to a no-op;
// an empty predicateName defaults to the registry's substring predicate.
func New(def model.WorkflowDefinition, observer observability.Observer, predicateName string) *Store {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	if predicateName == "" {
		predicateName = DefaultPredicateName
	}
	s := &Store{
		def:           def,
		state:         model.NewWorkflowState(def),
		predicateName: predicateName,
		observer:      observer,
		pendingSet:    make(map[string]struct{}, len(def.Tasks)),
		currentSet:    make(map[string]struct{}),
	}
	for _, t := range def.Tasks {
		s.pendingSet[t.ID] = struct{}{}
	}
	return s
}

func (s *Store) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "taskstate",
		Data:      data,
	})
}

// Snapshot returns a value copy of the current workflow state, safe for callers to read
// and retain without affecting the store.
func (s *Store) Snapshot() model.WorkflowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.WorkflowState {
	cp := s.state
	cp.PendingTasks = append([]string(nil), s.state.PendingTasks...)
	cp.CurrentTasks = append([]string(nil), s.state.CurrentTasks...)
	cp.CompletedTasks = append([]string(nil), s.state.CompletedTasks...)
	cp.FailedTasks = append([]string(nil), s.state.FailedTasks...)
	results := make(map[string]model.TaskResult, len(s.state.TaskResults))
	for k, v := range s.state.TaskResults {
		results[k] = v
	}
	cp.TaskResults = results
	return cp
}

// StartWorkflow transitions the workflow to running and stamps started_at.
func (s *Store) StartWorkflow(ctx context.Context) {
	s.mu.Lock()
	now := time.Now()
	s.state.Status = model.WorkflowRunning
	s.state.StartedAt = &now
	s.mu.Unlock()
	s.emit(ctx, EventWorkflowStart, observability.LevelInfo, map[string]any{"workflow_id": s.def.ID})
}

// CompleteWorkflow marks the workflow completed and stamps completed_at.
func (s *Store) CompleteWorkflow(ctx context.Context) {
	s.mu.Lock()
	now := time.Now()
	s.state.Status = model.WorkflowCompleted
	s.state.CompletedAt = &now
	s.mu.Unlock()
	s.emit(ctx, EventWorkflowComplete, observability.LevelInfo, map[string]any{"workflow_id": s.def.ID})
}

// FailWorkflow marks the workflow failed with the given error and stamps completed_at.
func (s *Store) FailWorkflow(ctx context.Context, err error) {
	s.FinishWorkflow(ctx, model.WorkflowFailed, err)
}

// FinishWorkflow stamps completed_at and transitions to any terminal status — used by
// CompleteWorkflow/FailWorkflow and by the coordinator for the "partial" outcome, where some
// but not all tasks succeeded.
func (s *Store) FinishWorkflow(ctx context.Context, status model.WorkflowStatus, err error) {
	s.mu.Lock()
	now := time.Now()
	s.state.Status = status
	s.state.CompletedAt = &now
	if err != nil {
		s.state.Error = err.Error()
	}
	msg := s.state.Error
	s.mu.Unlock()

	eventType := EventWorkflowComplete
	level := observability.LevelInfo
	if status != model.WorkflowCompleted {
		eventType = EventWorkflowFail
		level = observability.LevelError
	}
	s.emit(ctx, eventType, level, map[string]any{"workflow_id": s.def.ID, "status": string(status), "error": msg})
}

// ReadyTasks returns the definitions of tasks still pending whose dependencies are all
// completed. A task whose condition evaluates false is skipped in place and excluded.
func (s *Store) ReadyTasks(ctx context.Context) []model.TaskDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()

	predicate, err := GetPredicate(s.predicateName)
	if err != nil {
		predicate = substringPredicate
	}

	var ready []model.TaskDefinition
	for _, t := range s.def.Tasks {
		if _, pending := s.pendingSet[t.ID]; !pending {
			continue
		}
		if !s.dependenciesSatisfied(t) {
			continue
		}
		if t.Condition != "" && !predicate.Evaluate(s.snapshotLocked(), t.Condition) {
			s.skipTaskLocked(ctx, t.ID, "condition not met")
			continue
		}
		ready = append(ready, t)
	}
	return ready
}

func (s *Store) dependenciesSatisfied(t model.TaskDefinition) bool {
	for _, dep := range t.DependsOn {
		if _, done := s.findInSlice(s.state.CompletedTasks, dep); !done {
			return false
		}
	}
	return true
}

func (s *Store) findInSlice(haystack []string, needle string) (int, bool) {
	for i, v := range haystack {
		if v == needle {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) removeFromSlice(haystack []string, needle string) []string {
	idx, ok := s.findInSlice(haystack, needle)
	if !ok {
		return haystack
	}
	out := append(haystack[:idx:idx], haystack[idx+1:]...)
	return out
}

// StartTask moves a task from pending to current and opens its TaskResult.
func (s *Store) StartTask(ctx context.Context, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pendingSet, taskID)
	s.state.PendingTasks = s.removeFromSlice(s.state.PendingTasks, taskID)

	if _, already := s.currentSet[taskID]; !already {
		s.currentSet[taskID] = struct{}{}
		s.state.CurrentTasks = append(s.state.CurrentTasks, taskID)
	}

	now := time.Now()
	result, existed := s.state.TaskResults[taskID]
	if !existed {
		result = model.TaskResult{TaskID: taskID}
	}
	result.Status = model.TaskRunning
	result.StartedAt = &now
	s.state.TaskResults[taskID] = result

	s.emit(ctx, EventTaskStart, observability.LevelInfo, map[string]any{"task_id": taskID})
}

func (s *Store) leaveCurrent(taskID string) {
	delete(s.currentSet, taskID)
	s.state.CurrentTasks = s.removeFromSlice(s.state.CurrentTasks, taskID)
}

// CompleteTask moves a task from current to completed and fills its output.
func (s *Store) CompleteTask(ctx context.Context, taskID, output, agentUsed string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaveCurrent(taskID)
	s.state.CompletedTasks = append(s.state.CompletedTasks, taskID)

	now := time.Now()
	result := s.state.TaskResults[taskID]
	result.TaskID = taskID
	result.Status = model.TaskCompleted
	result.Output = output
	result.AgentUsed = agentUsed
	result.CompletedAt = &now
	result.StampDuration()
	s.state.TaskResults[taskID] = result

	s.emit(ctx, EventTaskComplete, observability.LevelInfo, map[string]any{"task_id": taskID})
}

// FailTask moves a task from current to failed and records the error.
func (s *Store) FailTask(ctx context.Context, taskID string, taskErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaveCurrent(taskID)
	s.state.FailedTasks = append(s.state.FailedTasks, taskID)

	now := time.Now()
	result := s.state.TaskResults[taskID]
	result.TaskID = taskID
	result.Status = model.TaskFailed
	if taskErr != nil {
		result.Error = taskErr.Error()
	}
	result.CompletedAt = &now
	result.StampDuration()
	s.state.TaskResults[taskID] = result

	s.emit(ctx, EventTaskFail, observability.LevelError, map[string]any{"task_id": taskID, "error": result.Error})
}

// RetryTask moves a task from failed back to pending, marking it retrying and
// incrementing its retry count.
func (s *Store) RetryTask(ctx context.Context, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.FailedTasks = s.removeFromSlice(s.state.FailedTasks, taskID)
	if _, already := s.pendingSet[taskID]; !already {
		s.pendingSet[taskID] = struct{}{}
		s.state.PendingTasks = append(s.state.PendingTasks, taskID)
	}

	result := s.state.TaskResults[taskID]
	result.TaskID = taskID
	result.Status = model.TaskRetrying
	result.RetryCount++
	s.state.TaskResults[taskID] = result

	s.emit(ctx, EventTaskRetry, observability.LevelWarning, map[string]any{"task_id": taskID, "retry_count": result.RetryCount})
}

// SkipTask removes a task from pending and writes a terminal skipped result.
func (s *Store) SkipTask(ctx context.Context, taskID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipTaskLocked(ctx, taskID, reason)
}

func (s *Store) skipTaskLocked(ctx context.Context, taskID, reason string) {
	delete(s.pendingSet, taskID)
	s.state.PendingTasks = s.removeFromSlice(s.state.PendingTasks, taskID)

	now := time.Now()
	result, existed := s.state.TaskResults[taskID]
	if !existed {
		result = model.TaskResult{TaskID: taskID, StartedAt: &now}
	}
	result.Status = model.TaskSkipped
	result.Error = reason
	result.CompletedAt = &now
	if result.StartedAt == nil {
		result.StartedAt = &now
	}
	s.state.TaskResults[taskID] = result

	s.emit(ctx, EventTaskSkip, observability.LevelWarning, map[string]any{"task_id": taskID, "reason": reason})
}

// IsComplete reports whether no task remains pending or in-flight.
func (s *Store) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pendingSet) == 0 && len(s.currentSet) == 0
}

// HasFailedTasks reports whether any task has a terminal failed result.
func (s *Store) HasFailedTasks() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.FailedTasks) > 0
}

// Progress computes the current progress summary.
func (s *Store) Progress() model.Progress {
	return s.Snapshot().Progress()
}

// FailAllRemaining marks every task not yet terminal as failed with err, used when a
// fatal, workflow-wide error (cycle, timeout, cancellation) short-circuits execution.
func (s *Store) FailAllRemaining(ctx context.Context, err error) {
	s.mu.Lock()
	var toFail []string
	for _, t := range s.def.Tasks {
		status := s.state.TaskResults[t.ID].Status
		if status.Terminal() {
			continue
		}
		toFail = append(toFail, t.ID)
		delete(s.pendingSet, t.ID)
		s.state.PendingTasks = s.removeFromSlice(s.state.PendingTasks, t.ID)
	}
	s.mu.Unlock()

	for _, id := range toFail {
		s.FailTask(ctx, id, err)
	}
}

// TopologicalSort returns the task ids of the workflow's static graph in a valid execution
// order via Kahn's algorithm. A cycle produces a *CycleError.
func (s *Store) TopologicalSort() ([]string, error) {
	graph := make(map[string][]string, len(s.def.Tasks))
	inDegree := make(map[string]int, len(s.def.Tasks))
	for _, t := range s.def.Tasks {
		graph[t.ID] = append([]string(nil), t.DependsOn...)
		if _, ok := inDegree[t.ID]; !ok {
			inDegree[t.ID] = 0
		}
		inDegree[t.ID] += len(t.DependsOn)
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sortStrings(queue)

	var result []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		var newlyZero []string
		for otherID, deps := range graph {
			for _, d := range deps {
				if d == id {
					inDegree[otherID]--
					if inDegree[otherID] == 0 {
						newlyZero = append(newlyZero, otherID)
					}
				}
			}
		}
		sortStrings(newlyZero)
		queue = append(queue, newlyZero...)
	}

	if len(result) != len(s.def.Tasks) {
		done := make(map[string]struct{}, len(result))
		for _, id := range result {
			done[id] = struct{}{}
		}
		var remaining []string
		for _, t := range s.def.Tasks {
			if _, ok := done[t.ID]; !ok {
				remaining = append(remaining, t.ID)
			}
		}
		return nil, &CycleError{WorkflowID: s.def.ID, Remaining: remaining}
	}
	return result, nil
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}

// DependencyChain returns the transitive dependency chain for a task in dependency-first
// order, including the task itself last.
func (s *Store) DependencyChain(taskID string) ([]string, error) {
	visited := make(map[string]struct{})
	var chain []string
	var traverse func(id string) error
	traverse = func(id string) error {
		if _, ok := visited[id]; ok {
			return nil
		}
		visited[id] = struct{}{}
		t, ok := s.def.TaskByID(id)
		if !ok {
			return &UnknownTaskError{WorkflowID: s.def.ID, TaskID: id}
		}
		for _, dep := range t.DependsOn {
			if err := traverse(dep); err != nil {
				return err
			}
		}
		chain = append(chain, id)
		return nil
	}
	if err := traverse(taskID); err != nil {
		return nil, err
	}
	return chain, nil
}

// Definition returns the workflow definition this store was built from.
func (s *Store) Definition() model.WorkflowDefinition {
	return s.def
}
