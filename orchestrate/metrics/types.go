// Package metrics derives aggregate run statistics from a finished workflow state and, when
// enabled, mirrors the same events the state store/router/cache already emit into Prometheus
// counters and gauges in real time.
package metrics

import "github.com/tailored-agentic-units/taskgraph/orchestrate/model"

// TaskMetrics is the per-task slice of a workflow's aggregate metrics.
type TaskMetrics struct {
	TaskID          string            `json:"task_id"`
	Status          model.TaskStatus  `json:"status"`
	DurationSeconds float64           `json:"duration_seconds"`
	RetryCount      int               `json:"retry_count"`
	AgentUsed       string            `json:"agent_used,omitempty"`
}

// WorkflowMetrics is the aggregate summary of one completed (or partially completed)
// workflow run, derived entirely from its final WorkflowState.
type WorkflowMetrics struct {
	WorkflowID                string        `json:"workflow_id"`
	Status                    model.WorkflowStatus `json:"status"`
	TotalTasks                int           `json:"total_tasks"`
	CompletedTasks            int           `json:"completed_tasks"`
	FailedTasks               int           `json:"failed_tasks"`
	SkippedTasks              int           `json:"skipped_tasks"`
	TotalRetries              int           `json:"total_retries"`
	TotalDurationSeconds      float64       `json:"total_duration_seconds"`
	AverageTaskDurationSeconds float64      `json:"average_task_duration_seconds"`
	SuccessRate               float64       `json:"success_rate"`
	Tasks                     []TaskMetrics `json:"tasks"`
}
