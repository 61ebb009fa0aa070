package model

import (
	"fmt"

	"github.com/google/uuid"
)

// WorkflowDefinition is the static, ordered description of a workflow submitted for execution.
type WorkflowDefinition struct {
	ID                     string             `json:"id"`
	Name                   string             `json:"name"`
	Description            string             `json:"description,omitempty"`
	Tasks                  []TaskDefinition   `json:"tasks"`
	ExecutionStrategy      ExecutionStrategy  `json:"execution_strategy"`
	MaxParallelTasks       int                `json:"max_parallel_tasks"`
	DefaultTimeoutSeconds  float64            `json:"default_timeout_seconds,omitempty"`
	ContinueOnFailure      bool               `json:"continue_on_failure"`
	Metadata               map[string]any     `json:"metadata,omitempty"`
}

// NewWorkflowDefinition applies the documented default of max_parallel_tasks=5. An empty id
// is assigned a fresh random one, mirroring NewTaskDefinition.
func NewWorkflowDefinition(id, name string, tasks []TaskDefinition) WorkflowDefinition {
	if id == "" {
		id = uuid.NewString()
	}
	return WorkflowDefinition{
		ID:                id,
		Name:              name,
		Tasks:             tasks,
		ExecutionStrategy: StrategyDAG,
		MaxParallelTasks:  5,
	}
}

// Validate checks task-id uniqueness and that every depends_on id refers to a task present
// in the workflow.
func (w WorkflowDefinition) Validate() error {
	if w.MaxParallelTasks < 1 {
		return fmt.Errorf("workflow %s: max_parallel_tasks must be >= 1, got %d", w.ID, w.MaxParallelTasks)
	}
	ids := make(map[string]struct{}, len(w.Tasks))
	for _, t := range w.Tasks {
		if _, dup := ids[t.ID]; dup {
			return fmt.Errorf("workflow %s: duplicate task id %q", w.ID, t.ID)
		}
		ids[t.ID] = struct{}{}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("workflow %s: %w", w.ID, err)
		}
	}
	for _, t := range w.Tasks {
		for _, dep := range t.DependsOn {
			if _, ok := ids[dep]; !ok {
				return fmt.Errorf("workflow %s: task %s depends on unknown task %q", w.ID, t.ID, dep)
			}
		}
	}
	return nil
}

// TaskByID returns the task definition with the given id, if present.
func (w WorkflowDefinition) TaskByID(id string) (TaskDefinition, bool) {
	for _, t := range w.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return TaskDefinition{}, false
}

// AgentRouting configures one executor id known to the router: the capabilities it provides,
// its scheduling priority, and how many tasks it may run concurrently.
type AgentRouting struct {
	AgentType          string        `json:"agent_type"`
	Capabilities       CapabilitySet `json:"capabilities"`
	Priority           int           `json:"priority"`
	MaxConcurrentTasks int           `json:"max_concurrent_tasks"`
}

// DefaultAgentRoutings mirrors the seven hardcoded executor profiles a fresh router starts with.
func DefaultAgentRoutings() []AgentRouting {
	return []AgentRouting{
		{AgentType: "general-purpose", Capabilities: NewCapabilitySet(CapabilityGeneral), Priority: 5, MaxConcurrentTasks: 3},
		{AgentType: "code-analyzer", Capabilities: NewCapabilitySet(CapabilityCodeAnalysis, CapabilityDebugging, CapabilityGeneral), Priority: 7, MaxConcurrentTasks: 2},
		{AgentType: "code-generator", Capabilities: NewCapabilitySet(CapabilityCodeGeneration, CapabilityGeneral), Priority: 7, MaxConcurrentTasks: 2},
		{AgentType: "test-specialist", Capabilities: NewCapabilitySet(CapabilityTesting, CapabilityCodeAnalysis, CapabilityGeneral), Priority: 6, MaxConcurrentTasks: 2},
		{AgentType: "doc-writer", Capabilities: NewCapabilitySet(CapabilityDocumentation, CapabilityGeneral), Priority: 6, MaxConcurrentTasks: 2},
		{AgentType: "data-processor", Capabilities: NewCapabilitySet(CapabilityDataProcessing, CapabilityFileOperations, CapabilityGeneral), Priority: 6, MaxConcurrentTasks: 2},
		{AgentType: "researcher", Capabilities: NewCapabilitySet(CapabilityResearch, CapabilityGeneral), Priority: 5, MaxConcurrentTasks: 3},
	}
}

// OrchestratorConfig is process-lifetime configuration for an orchestrator, shared across
// every workflow it executes. The coordinator package does not read it: coordinator.New
// takes its routing table and settings as separate arguments.
type OrchestratorConfig struct {
	AgentRouting               []AgentRouting `json:"agent_routing"`
	EnableParallelExecution    bool           `json:"enable_parallel_execution"`
	DefaultRetryConfig         RetryConfig    `json:"default_retry_config"`
	MaxWorkflowDurationSeconds float64        `json:"max_workflow_duration_seconds,omitempty"`
	EnableTaskMonitoring       bool           `json:"enable_task_monitoring"`
}

// DefaultOrchestratorConfig returns the documented process-wide defaults.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		AgentRouting:            DefaultAgentRoutings(),
		EnableParallelExecution: true,
		DefaultRetryConfig:      DefaultRetryConfig(),
		EnableTaskMonitoring:    true,
	}
}

// Merge overlays non-zero fields of source onto a copy of cfg. The two booleans are copied
// from source unconditionally, so a false in source overrides a true in cfg.
func (cfg OrchestratorConfig) Merge(source OrchestratorConfig) OrchestratorConfig {
	merged := cfg
	if len(source.AgentRouting) > 0 {
		merged.AgentRouting = source.AgentRouting
	}
	if source.MaxWorkflowDurationSeconds > 0 {
		merged.MaxWorkflowDurationSeconds = source.MaxWorkflowDurationSeconds
	}
	merged.EnableParallelExecution = source.EnableParallelExecution
	merged.EnableTaskMonitoring = source.EnableTaskMonitoring
	if source.DefaultRetryConfig != (RetryConfig{}) {
		merged.DefaultRetryConfig = source.DefaultRetryConfig
	}
	return merged
}
