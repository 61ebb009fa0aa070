package executors

import (
	"context"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/taskstate"
)

// Conditional runs tasks strictly in definition order, as Sequential does, but a task whose
// Condition evaluates false against the results accumulated so far is skipped rather than
// halting the run — the cascade always reaches the last task, each one just may or may not
// actually execute. A task with a dependency that has not completed is skipped the same way.
// A failed task does not stop the cascade. PredicateName selects the evaluator from the
// taskstate predicate registry (falls back to its default when empty or unregistered).
type Conditional struct {
	Store         *taskstate.Store
	Driver        Driver
	PredicateName string
	Progress      ProgressFunc
}

func (c *Conditional) Run(ctx context.Context, def model.WorkflowDefinition) {
	predicate, err := taskstate.GetPredicate(c.PredicateName)
	if err != nil {
		predicate, _ = taskstate.GetPredicate(taskstate.DefaultPredicateName)
	}

	for _, task := range def.Tasks {
		if ctx.Err() != nil {
			c.Store.SkipTask(ctx, task.ID, "workflow context cancelled")
			notify(c.Progress, c.Store)
			continue
		}

		snap := c.Store.Snapshot()
		depsMet := true
		for _, dep := range task.DependsOn {
			if snap.TaskStatusOf(dep) != model.TaskCompleted {
				depsMet = false
			}
		}
		if !depsMet {
			c.Store.SkipTask(ctx, task.ID, "dependencies not satisfied")
			notify(c.Progress, c.Store)
			continue
		}

		if task.Condition != "" && !predicate.Evaluate(snap, task.Condition) {
			c.Store.SkipTask(ctx, task.ID, "condition not met")
			notify(c.Progress, c.Store)
			continue
		}

		runWithSafetyNet(ctx, c.Store, c.Driver, task)
		notify(c.Progress, c.Store)
	}
}
