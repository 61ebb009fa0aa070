package executors

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/taskstate"
)

// Parallel runs every task in the definition concurrently, bounded by maxWorkers, without
// consulting DependsOn at all — it is the caller's responsibility to only choose this
// discipline for workflows whose tasks are genuinely independent. Dependencies, if present,
// are ignored rather than enforced; use DAG when ordering matters.
type Parallel struct {
	Store      *taskstate.Store
	Driver     Driver
	MaxWorkers int
	Progress   ProgressFunc
}

func (p *Parallel) Run(ctx context.Context, def model.WorkflowDefinition) {
	workers := calculateWorkerCount(p.MaxWorkers, len(def.Tasks))
	if workers <= 0 {
		return
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex // guards Progress callback ordering only

	for _, task := range def.Tasks {
		task := task
		if ctx.Err() != nil {
			p.Store.SkipTask(ctx, task.ID, "workflow context cancelled")
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			runWithSafetyNet(ctx, p.Store, p.Driver, task)

			mu.Lock()
			notify(p.Progress, p.Store)
			mu.Unlock()
		}()
	}

	wg.Wait()
}

func calculateWorkerCount(requested, taskCount int) int {
	if taskCount == 0 {
		return 0
	}
	if requested <= 0 {
		requested = 1
	}
	if requested > taskCount {
		return taskCount
	}
	return requested
}
