package coordinator

import (
	"context"
	"errors"

	"github.com/tailored-agentic-units/taskgraph/observability"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/cache"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/config"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/executors"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/router"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/taskstate"
)

// StrategySelector recommends an execution strategy for a workflow whose author left the
// choice to the coordinator. Satisfied by strategy.Recommend; kept as an injectable function
// type here so this package does not need to import the strategy package at all.
type StrategySelector func(model.WorkflowDefinition) model.ExecutionStrategy

// Coordinator is the single top-level entry point: given a workflow definition, it builds a
// state store, a router, a task driver, picks the executor matching the workflow's (or the
// selector's) strategy, runs it, and settles the workflow into its final status.
type Coordinator struct {
	Substrate        AgentSubstrate
	Observer         observability.Observer
	Routings         []model.AgentRouting
	Cache            *cache.Cache
	PredicateName    string
	AutoSelect       bool
	StrategySelector StrategySelector

	// CheckpointStore, when non-nil, receives a state snapshot every CheckpointInterval
	// terminal task transitions, letting a workflow be resumed (via taskstate.New plus a
	// caller-driven replay of the loaded state) after the coordinator process restarts
	// mid-run. A zero CheckpointInterval disables checkpointing even with a store set.
	CheckpointStore    taskstate.CheckpointStore
	CheckpointInterval int
	PreserveCheckpoint bool
}

// New builds a Coordinator from configuration. cacheCfg.Strategy == "none" yields a cache
// that always misses, so ExecuteWorkflow never needs to special-case caching being disabled.
func New(substrate AgentSubstrate, coordCfg config.CoordinatorConfig, cacheCfg config.CacheConfig, routings []model.AgentRouting, observer observability.Observer) *Coordinator {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	if len(routings) == 0 {
		routings = model.DefaultAgentRoutings()
	}

	var c *cache.Cache
	if coordCfg.EnableCache {
		c = cache.New(cacheCfg, observer)
	}

	coord := &Coordinator{
		Substrate:          substrate,
		Observer:           observer,
		Routings:           routings,
		Cache:              c,
		PredicateName:      coordCfg.ConditionPredicate,
		AutoSelect:         coordCfg.AutoSelectStrategy,
		CheckpointInterval: coordCfg.Checkpoint.Interval,
		PreserveCheckpoint: coordCfg.Checkpoint.Preserve,
	}
	if coordCfg.Checkpoint.Interval > 0 {
		if store, err := taskstate.GetCheckpointStore(coordCfg.Checkpoint.Store); err == nil {
			coord.CheckpointStore = store
		}
	}
	return coord
}

// ErrNoTasksCompleted is wrapped into the workflow's recorded error when every task in a
// workflow with at least one task fails and none complete.
var ErrNoTasksCompleted = errors.New("no task in the workflow completed successfully")

// ErrFailFast is wrapped into the workflow's recorded error when continue_on_failure is false
// and the workflow stops after a failure even though one or more tasks had already completed.
var ErrFailFast = errors.New("workflow stopped after a task failed and continue_on_failure was false")

// ExecuteWorkflow runs def to completion and returns the final state snapshot. progress, if non-nil,
// is invoked after every task-level state transition. The returned error is non-nil only for
// problems that prevent the workflow from starting at all (an invalid definition or a cycle
// in its dependency graph) — ordinary task failures are reflected in the returned state, not
// in the error.
func (c *Coordinator) ExecuteWorkflow(ctx context.Context, def model.WorkflowDefinition, progress executors.ProgressFunc) (model.WorkflowState, error) {
	if err := def.Validate(); err != nil {
		return model.WorkflowState{}, err
	}

	store := taskstate.New(def, c.Observer, c.PredicateName)
	if _, err := store.TopologicalSort(); err != nil {
		store.FailAllRemaining(ctx, err)
		store.FailWorkflow(ctx, err)
		return store.Snapshot(), err
	}

	strategy := def.ExecutionStrategy
	if c.AutoSelect && c.StrategySelector != nil {
		strategy = c.StrategySelector(def)
	}

	rtr := router.New(c.Routings, c.Observer)
	driver := &TaskDriver{Store: store, Router: rtr, Cache: c.Cache, Substrate: c.Substrate}

	runCtx := ctx
	var cancel context.CancelFunc
	if def.DefaultTimeoutSeconds > 0 {
		runCtx, cancel = context.WithTimeout(ctx, durationOf(def.DefaultTimeoutSeconds))
		defer cancel()
	}

	store.StartWorkflow(ctx)

	exec := executors.New(strategy, executors.Options{
		Store:             store,
		Driver:            driver,
		MaxWorkers:        def.MaxParallelTasks,
		ContinueOnFailure: def.ContinueOnFailure,
		PredicateName:     c.PredicateName,
		Progress:          c.wrapWithCheckpoint(progress),
	})
	exec.Run(runCtx, def)

	if runCtx.Err() != nil && ctx.Err() == nil {
		store.FailAllRemaining(ctx, runCtx.Err())
	}

	c.settle(ctx, store, def.ContinueOnFailure)
	c.finishCheckpoint(store)
	return store.Snapshot(), nil
}

// wrapWithCheckpoint returns a ProgressFunc that saves a checkpoint every CheckpointInterval
// terminal task transitions in addition to calling through to progress (which may be nil).
// A nil CheckpointStore or non-positive interval disables checkpointing, returning progress
// unchanged.
func (c *Coordinator) wrapWithCheckpoint(progress executors.ProgressFunc) executors.ProgressFunc {
	if c.CheckpointStore == nil || c.CheckpointInterval <= 0 {
		return progress
	}
	terminalCount := 0
	return func(state model.WorkflowState) {
		if progress != nil {
			progress(state)
		}
		terminalCount = len(state.CompletedTasks) + len(state.FailedTasks)
		if terminalCount%c.CheckpointInterval == 0 {
			_ = c.CheckpointStore.Save(state)
		}
	}
}

// finishCheckpoint removes the workflow's checkpoint once it reaches a terminal status,
// unless the caller asked to preserve it for inspection.
func (c *Coordinator) finishCheckpoint(store *taskstate.Store) {
	if c.CheckpointStore == nil || c.PreserveCheckpoint {
		return
	}
	_ = c.CheckpointStore.Delete(store.Definition().ID)
}

// settle decides the workflow's final status from the terminal task set: completed if
// nothing failed, partial if some tasks succeeded and some failed and the workflow allowed
// continuing past a failure, failed otherwise — including a continueOnFailure=false run that
// fails fast after one or more tasks already completed.
func (c *Coordinator) settle(ctx context.Context, store *taskstate.Store, continueOnFailure bool) {
	snap := store.Snapshot()
	switch {
	case !snap.HasFailedTasks():
		store.CompleteWorkflow(ctx)
	case continueOnFailure && len(snap.CompletedTasks) > 0:
		store.FinishWorkflow(ctx, model.WorkflowPartial, errors.New("one or more tasks failed"))
	case len(snap.CompletedTasks) > 0:
		store.FinishWorkflow(ctx, model.WorkflowFailed, ErrFailFast)
	default:
		store.FinishWorkflow(ctx, model.WorkflowFailed, ErrNoTasksCompleted)
	}
}
