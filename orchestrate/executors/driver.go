// Package executors implements the four scheduling disciplines a workflow may run under:
// sequential, bounded parallel, dependency-aware DAG, and linear conditional. All four
// share one Driver, supplied by the coordinator, and differ only in when they call it.
package executors

import (
	"context"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/taskstate"
)

// Driver runs a single task to a terminal state, recording routing, retries, timeouts, and
// the outcome directly into the state store (start_task/complete_task/fail_task). Run
// returning an error indicates an unrecoverable fault in the driver itself, not a normal
// task failure — normal task failures are terminal store transitions, not Go errors.
//
// Implementations must be safe to call concurrently for different tasks.
type Driver interface {
	Run(ctx context.Context, task model.TaskDefinition) error
}

// runWithSafetyNet calls driver.Run and guarantees the task reaches a terminal status in
// the store even if the driver returns an error without having recorded one itself — the
// DAG executor's original source relies on exactly this net to preserve invariants under
// driver bugs.
func runWithSafetyNet(ctx context.Context, store *taskstate.Store, driver Driver, task model.TaskDefinition) {
	err := driver.Run(ctx, task)
	if err == nil {
		return
	}
	snap := store.Snapshot()
	if status := snap.TaskStatusOf(task.ID); !status.Terminal() {
		store.FailTask(ctx, task.ID, err)
	}
}

// ProgressFunc is invoked after each state transition with a value snapshot. Implementations
// must not mutate the snapshot or block; calls are not ordered across concurrent tasks.
type ProgressFunc func(model.WorkflowState)

func notify(progress ProgressFunc, store *taskstate.Store) {
	if progress == nil {
		return
	}
	progress(store.Snapshot())
}
