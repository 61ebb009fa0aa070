package metrics

import "github.com/tailored-agentic-units/taskgraph/orchestrate/model"

// AnalyzeWorkflow computes a WorkflowMetrics summary from a workflow's final state. It reads
// only what the state already records — no hidden timers, no side channel — so it is safe to
// call on a state snapshot taken long after the run finished.
func AnalyzeWorkflow(state model.WorkflowState) WorkflowMetrics {
	wm := WorkflowMetrics{
		WorkflowID: state.WorkflowID,
		Status:     state.Status,
		TotalTasks: len(state.TaskResults),
	}

	var totalDuration float64
	wm.Tasks = make([]TaskMetrics, 0, len(state.TaskResults))
	for id, r := range state.TaskResults {
		tm := TaskMetrics{
			TaskID:          id,
			Status:          r.Status,
			DurationSeconds: r.DurationSeconds,
			RetryCount:      r.RetryCount,
			AgentUsed:       r.AgentUsed,
		}
		wm.Tasks = append(wm.Tasks, tm)
		wm.TotalRetries += r.RetryCount

		switch r.Status {
		case model.TaskCompleted:
			wm.CompletedTasks++
			totalDuration += r.DurationSeconds
		case model.TaskFailed:
			wm.FailedTasks++
		case model.TaskSkipped:
			wm.SkippedTasks++
		}
	}

	if state.StartedAt != nil && state.CompletedAt != nil {
		wm.TotalDurationSeconds = state.CompletedAt.Sub(*state.StartedAt).Seconds()
	}
	if wm.CompletedTasks > 0 {
		wm.AverageTaskDurationSeconds = totalDuration / float64(wm.CompletedTasks)
	}
	if wm.TotalTasks > 0 {
		wm.SuccessRate = float64(wm.CompletedTasks) / float64(wm.TotalTasks) * 100
	}
	return wm
}
