package model

import "time"

// TaskResult is the mutable record of a single task's execution.
type TaskResult struct {
	TaskID          string         `json:"task_id"`
	Status          TaskStatus     `json:"status"`
	Output          string         `json:"output,omitempty"`
	Error           string         `json:"error,omitempty"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	DurationSeconds float64        `json:"duration_seconds,omitempty"`
	RetryCount      int            `json:"retry_count"`
	AgentUsed       string         `json:"agent_used,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Succeeded reports whether the result reached a completed terminal state.
func (r TaskResult) Succeeded() bool {
	return r.Status == TaskCompleted
}

// Failed reports whether the result reached a failed terminal state.
func (r TaskResult) Failed() bool {
	return r.Status == TaskFailed
}

// StampDuration fills DurationSeconds from StartedAt/CompletedAt when both are set.
func (r *TaskResult) StampDuration() {
	if r.StartedAt != nil && r.CompletedAt != nil {
		r.DurationSeconds = r.CompletedAt.Sub(*r.StartedAt).Seconds()
	}
}
