package executors

import (
	"context"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/taskstate"
)

// Executor runs a workflow definition to completion against a state store, using a shared
// Driver to perform each individual task.
type Executor interface {
	Run(ctx context.Context, def model.WorkflowDefinition)
}

// Options bundles the inputs every concrete executor needs.
type Options struct {
	Store             *taskstate.Store
	Driver            Driver
	MaxWorkers        int
	ContinueOnFailure bool
	PredicateName     string
	Progress          ProgressFunc
}

// New builds the Executor matching an ExecutionStrategy. DAG is the fallback for any
// unrecognized strategy value, since it is the only discipline that is always correct
// regardless of whether the workflow's tasks are actually independent or chained.
func New(strategy model.ExecutionStrategy, opts Options) Executor {
	switch strategy {
	case model.StrategySequential:
		return &Sequential{Store: opts.Store, Driver: opts.Driver, ContinueOnFailure: opts.ContinueOnFailure, Progress: opts.Progress}
	case model.StrategyParallel:
		return &Parallel{Store: opts.Store, Driver: opts.Driver, MaxWorkers: opts.MaxWorkers, Progress: opts.Progress}
	case model.StrategyConditional:
		return &Conditional{Store: opts.Store, Driver: opts.Driver, PredicateName: opts.PredicateName, Progress: opts.Progress}
	default:
		return &DAG{Store: opts.Store, Driver: opts.Driver, MaxWorkers: opts.MaxWorkers, ContinueOnFailure: opts.ContinueOnFailure, Progress: opts.Progress}
	}
}
