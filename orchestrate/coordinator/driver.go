package coordinator

import (
	"context"
	"time"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/cache"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/router"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/taskstate"
)

// TaskDriver implements executors.Driver: it checks the cache (a hit completes the task
// without routing or touching agent load), routes a miss to an agent type, invokes the substrate with a retry/backoff loop bounded by the task's RetryConfig,
// and records every attempt's outcome directly in the store. Run always returns nil — task
// failure after retries exhausted is a FailTask call, not a Go error — the nil error keeps
// the executors' safety net from double-recording a failure already written here.
type TaskDriver struct {
	Store     *taskstate.Store
	Router    *router.Router
	Cache     *cache.Cache
	Substrate AgentSubstrate
}

func (d *TaskDriver) Run(ctx context.Context, task model.TaskDefinition) error {
	depOutputs := d.dependencyOutputs(task)

	if d.Cache != nil {
		if cached, ok := d.Cache.Get(ctx, task, depOutputs); ok {
			d.Store.StartTask(ctx, task.ID)
			d.Store.CompleteTask(ctx, task.ID, cached.Output, cached.AgentUsed)
			return nil
		}
	}

	agentType := task.AgentType
	if d.Router != nil {
		agentType = d.Router.Route(ctx, task)
		d.Router.IncrementLoad(agentType)
		defer d.Router.DecrementLoad(agentType)
	}
	if agentType == "" {
		agentType = router.FallbackAgentType
	}

	prompt := assemblePrompt(task, depOutputs)
	retry := task.Retry
	delay := retry.InitialDelay

	for attempt := 0; attempt <= retry.MaxRetries; attempt++ {
		d.Store.StartTask(ctx, task.ID)

		taskCtx := ctx
		var cancel context.CancelFunc
		if task.TimeoutSeconds > 0 {
			taskCtx, cancel = context.WithTimeout(ctx, durationOf(task.TimeoutSeconds))
		}
		output, err := d.Substrate.Run(taskCtx, agentType, prompt)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			d.Store.CompleteTask(ctx, task.ID, output.Content, agentType)
			if d.Cache != nil {
				result := d.Store.Snapshot().TaskResults[task.ID]
				d.Cache.Put(ctx, task, result, depOutputs)
			}
			return nil
		}

		d.Store.FailTask(ctx, task.ID, err)
		if attempt == retry.MaxRetries {
			return nil
		}

		select {
		case <-time.After(durationOf(delay)):
		case <-ctx.Done():
			return nil
		}
		delay *= retry.BackoffMultiplier
		if delay > retry.MaxDelay {
			delay = retry.MaxDelay
		}
		d.Store.RetryTask(ctx, task.ID)
	}
	return nil
}

// dependencyOutputs collects the output of every successfully completed dependency, keyed
// by dependency task id, for both the cache key and the prompt.
func (d *TaskDriver) dependencyOutputs(task model.TaskDefinition) map[string]string {
	if len(task.DependsOn) == 0 {
		return nil
	}
	snap := d.Store.Snapshot()
	out := make(map[string]string, len(task.DependsOn))
	for _, dep := range task.DependsOn {
		if r, ok := snap.TaskResults[dep]; ok && r.Succeeded() {
			out[dep] = r.Output
		}
	}
	return out
}

func durationOf(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
