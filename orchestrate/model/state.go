package model

import "time"

// WorkflowState is the mutable, disjoint-set bookkeeping for one workflow run. It is owned
// and transitioned exclusively by the taskstate store; this type is the value-copy snapshot
// handed to callbacks, the visualizer, and the metrics recorder.
type WorkflowState struct {
	WorkflowID    string                `json:"workflow_id"`
	Status        WorkflowStatus        `json:"status"`
	PendingTasks  []string              `json:"pending_tasks"`
	CurrentTasks  []string              `json:"current_tasks"`
	CompletedTasks []string             `json:"completed_tasks"`
	FailedTasks   []string              `json:"failed_tasks"`
	TaskResults   map[string]TaskResult `json:"task_results"`
	StartedAt     *time.Time            `json:"started_at,omitempty"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
	Error         string                `json:"error,omitempty"`
	Metadata      map[string]any        `json:"metadata,omitempty"`
}

// NewWorkflowState seeds a fresh state with every task pending, mirroring WorkflowDefinition
// at submission time.
func NewWorkflowState(def WorkflowDefinition) WorkflowState {
	pending := make([]string, len(def.Tasks))
	for i, t := range def.Tasks {
		pending[i] = t.ID
	}
	return WorkflowState{
		WorkflowID:   def.ID,
		Status:       WorkflowPending,
		PendingTasks: pending,
		TaskResults:  make(map[string]TaskResult),
		Metadata:     def.Metadata,
	}
}

// TaskStatusOf returns the status of a task, or TaskPending if it has no recorded result yet
// and is not present in any set (i.e. it has not been touched).
func (s WorkflowState) TaskStatusOf(taskID string) TaskStatus {
	if r, ok := s.TaskResults[taskID]; ok {
		return r.Status
	}
	return TaskPending
}

// TaskOutput returns the recorded output for a completed task, if any.
func (s WorkflowState) TaskOutput(taskID string) (string, bool) {
	r, ok := s.TaskResults[taskID]
	if !ok || !r.Succeeded() {
		return "", false
	}
	return r.Output, true
}

// IsComplete reports whether no task remains pending or in-flight.
func (s WorkflowState) IsComplete() bool {
	return len(s.PendingTasks) == 0 && len(s.CurrentTasks) == 0
}

// HasFailedTasks reports whether any task has a terminal failed result.
func (s WorkflowState) HasFailedTasks() bool {
	return len(s.FailedTasks) > 0
}

// Progress summarizes counts for callbacks and the visualizer.
type Progress struct {
	Total           int     `json:"total"`
	Completed       int     `json:"completed"`
	Failed          int     `json:"failed"`
	Running         int     `json:"running"`
	Pending         int     `json:"pending"`
	ProgressPercent float64 `json:"progress_percent"`
	Status          WorkflowStatus `json:"status"`
}

// Progress computes the Progress summary from the current set membership.
func (s WorkflowState) Progress() Progress {
	total := len(s.TaskResults)
	if total == 0 {
		total = len(s.PendingTasks) + len(s.CurrentTasks) + len(s.CompletedTasks) + len(s.FailedTasks)
	}
	completed := len(s.CompletedTasks)
	failed := len(s.FailedTasks)
	running := len(s.CurrentTasks)
	pending := len(s.PendingTasks)
	pct := 0.0
	if total > 0 {
		pct = float64(completed+failed) / float64(total) * 100
	}
	return Progress{
		Total:           total,
		Completed:       completed,
		Failed:          failed,
		Running:         running,
		Pending:         pending,
		ProgressPercent: pct,
		Status:          s.Status,
	}
}
