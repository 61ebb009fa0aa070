package model

import (
	"fmt"

	"github.com/google/uuid"
)

// RetryConfig controls a task's retry/backoff behavior in the coordinator's driver loop.
type RetryConfig struct {
	MaxRetries        int     `json:"max_retries"`
	InitialDelay      float64 `json:"initial_delay"`
	BackoffMultiplier float64 `json:"backoff_multiplier"`
	MaxDelay          float64 `json:"max_delay"`
}

// DefaultRetryConfig mirrors the defaults a submitted task gets when it does not set its own.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialDelay:      1.0,
		BackoffMultiplier: 2.0,
		MaxDelay:          60.0,
	}
}

// Validate enforces the field bounds from the task data model.
func (r RetryConfig) Validate() error {
	if r.MaxRetries < 0 {
		return fmt.Errorf("retry config: max_retries must be >= 0, got %d", r.MaxRetries)
	}
	if r.InitialDelay < 0.1 {
		return fmt.Errorf("retry config: initial_delay must be >= 0.1, got %f", r.InitialDelay)
	}
	if r.BackoffMultiplier < 1.0 {
		return fmt.Errorf("retry config: backoff_multiplier must be >= 1.0, got %f", r.BackoffMultiplier)
	}
	if r.MaxDelay < 1.0 {
		return fmt.Errorf("retry config: max_delay must be >= 1.0, got %f", r.MaxDelay)
	}
	return nil
}

// TaskDefinition is an immutable unit of work submitted as part of a workflow.
type TaskDefinition struct {
	ID                   string                 `json:"id"`
	Description          string                 `json:"description"`
	TaskType             string                 `json:"task_type,omitempty"`
	DependsOn            []string               `json:"depends_on,omitempty"`
	RequiredCapabilities CapabilitySet          `json:"required_capabilities,omitempty"`
	RequiredSkills       []string               `json:"required_skills,omitempty"`
	Priority             int                    `json:"priority"`
	TimeoutSeconds       float64                `json:"timeout_seconds,omitempty"`
	Retry                RetryConfig            `json:"retry_config"`
	Parameters           map[string]any         `json:"parameters,omitempty"`
	AgentType            string                 `json:"agent_type,omitempty"`
	Condition            string                 `json:"condition,omitempty"`
	ExpectedOutputType   string                 `json:"expected_output_type,omitempty"`
}

// NewTaskDefinition applies the documented defaults (priority 5, general capability,
// default retry config). It does not set DependsOn, and DependsOn is kept as assigned,
// duplicates included; DependsOnSet gives the deduplicated view. An empty id is assigned a
// fresh random one, so callers that don't need a stable, caller-chosen task id can omit it.
func NewTaskDefinition(id, description string) TaskDefinition {
	if id == "" {
		id = uuid.NewString()
	}
	return TaskDefinition{
		ID:                   id,
		Description:          description,
		Priority:             5,
		RequiredCapabilities: NewCapabilitySet(CapabilityGeneral),
		Retry:                DefaultRetryConfig(),
	}
}

// Validate checks the invariants the data model requires before a task enters a workflow.
func (t TaskDefinition) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task: id must not be empty")
	}
	if t.Priority < 1 || t.Priority > 10 {
		return fmt.Errorf("task %s: priority must be in [1,10], got %d", t.ID, t.Priority)
	}
	if len(t.RequiredCapabilities) == 0 {
		return fmt.Errorf("task %s: required_capabilities must not be empty", t.ID)
	}
	return t.Retry.Validate()
}

// DependsOnSet returns the task's dependency ids as a lookup set, deduplicated.
func (t TaskDefinition) DependsOnSet() map[string]struct{} {
	out := make(map[string]struct{}, len(t.DependsOn))
	for _, id := range t.DependsOn {
		out[id] = struct{}{}
	}
	return out
}
