package executors

import (
	"context"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/taskstate"
)

// Sequential runs a workflow's tasks one at a time, in the order they appear in the
// definition. Dependencies are not consulted — task order IS the dependency order, by
// convention of whoever authored the workflow. On a failure, every remaining task is skipped
// unless continueOnFailure is set, in which case the run proceeds task by task regardless.
type Sequential struct {
	Store             *taskstate.Store
	Driver            Driver
	ContinueOnFailure bool
	Progress          ProgressFunc
}

func (s *Sequential) Run(ctx context.Context, def model.WorkflowDefinition) {
	for _, task := range def.Tasks {
		if ctx.Err() != nil {
			s.Store.SkipTask(ctx, task.ID, "workflow context cancelled")
			notify(s.Progress, s.Store)
			continue
		}

		if !s.ContinueOnFailure && s.Store.HasFailedTasks() {
			s.Store.SkipTask(ctx, task.ID, "previous task failed")
			notify(s.Progress, s.Store)
			continue
		}

		runWithSafetyNet(ctx, s.Store, s.Driver, task)
		notify(s.Progress, s.Store)
	}
}
