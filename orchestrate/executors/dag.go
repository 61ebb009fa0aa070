package executors

import (
	"context"
	"errors"
	"sync"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/taskstate"
)

// ErrNoProgress is recorded against every task still pending when the DAG executor finds no
// ready task and no task in flight. That happens when the workflow passed validation with a
// cycle the caller didn't catch via Store.TopologicalSort, and also when ContinueOnFailure is
// set and a failed task leaves its dependents waiting on a dependency that never completes.
var ErrNoProgress = errors.New("no task is ready and none is running: workflow cannot make progress")

// DAG runs tasks as soon as their dependencies complete, up to MaxWorkers concurrently.
// Readiness is polled from the store after every task reaches a terminal state, so a task
// becomes eligible the instant its last dependency finishes rather than on a fixed tick.
// On a failure, every currently-ready task is skipped unless ContinueOnFailure is set, in
// which case independent branches keep running regardless of a sibling's failure.
type DAG struct {
	Store             *taskstate.Store
	Driver            Driver
	MaxWorkers        int
	ContinueOnFailure bool
	Progress          ProgressFunc
}

func (d *DAG) Run(ctx context.Context, def model.WorkflowDefinition) {
	workers := d.MaxWorkers
	if workers <= 0 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	done := make(chan struct{}, len(def.Tasks)+1)
	dispatched := make(map[string]struct{})
	var mu sync.Mutex
	var wg sync.WaitGroup

	dispatch := func(task model.TaskDefinition) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			runWithSafetyNet(ctx, d.Store, d.Driver, task)

			mu.Lock()
			notify(d.Progress, d.Store)
			mu.Unlock()
			done <- struct{}{}
		}()
	}

	for {
		if d.Store.IsComplete() {
			break
		}
		if ctx.Err() != nil {
			d.Store.FailAllRemaining(ctx, ctx.Err())
			notify(d.Progress, d.Store)
			break
		}

		if !d.ContinueOnFailure && d.Store.HasFailedTasks() {
			for _, task := range d.Store.ReadyTasks(ctx) {
				d.Store.SkipTask(ctx, task.ID, "previous task failed")
			}
			notify(d.Progress, d.Store)
			break
		}

		ready := d.Store.ReadyTasks(ctx)
		dispatchedThisRound := false

		mu.Lock()
		for _, task := range ready {
			if _, already := dispatched[task.ID]; already {
				continue
			}
			select {
			case sem <- struct{}{}:
				dispatched[task.ID] = struct{}{}
				dispatchedThisRound = true
				dispatch(task)
			default:
				// no free worker slot this round; the next completion will retrigger readiness
			}
		}
		mu.Unlock()

		if dispatchedThisRound {
			notify(d.Progress, d.Store)
		}

		if !dispatchedThisRound && len(ready) == 0 && !anyTaskInFlight(sem) {
			d.Store.FailAllRemaining(ctx, ErrNoProgress)
			notify(d.Progress, d.Store)
			break
		}

		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	wg.Wait()
}

// anyTaskInFlight reports whether the worker semaphore has at least one slot taken.
func anyTaskInFlight(sem chan struct{}) bool {
	return len(sem) > 0
}
