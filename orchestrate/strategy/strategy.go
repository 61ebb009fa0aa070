// Package strategy recommends which execution discipline a workflow should run under when
// its author leaves the choice to the coordinator, and explains that choice in prose.
package strategy

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

// Analysis captures the structural characteristics of a workflow's task graph that the
// recommendation decision is based on.
type Analysis struct {
	TaskCount            int
	HasDependencies      bool
	HasConditions        bool
	TotalDependencies    int
	AvgDependenciesPerTask float64
	IndependentTasks     int
	CanParallelize       bool
}

// AnalyzeWorkflow computes the structural Analysis of a workflow's tasks.
func AnalyzeWorkflow(def model.WorkflowDefinition) Analysis {
	a := Analysis{TaskCount: len(def.Tasks)}
	if a.TaskCount == 0 {
		return a
	}

	for _, t := range def.Tasks {
		if len(t.DependsOn) > 0 {
			a.HasDependencies = true
		} else {
			a.IndependentTasks++
		}
		if t.Condition != "" {
			a.HasConditions = true
		}
		a.TotalDependencies += len(t.DependsOn)
	}
	a.AvgDependenciesPerTask = float64(a.TotalDependencies) / float64(a.TaskCount)
	a.CanParallelize = a.IndependentTasks > 1 || (a.HasDependencies && a.IndependentTasks > 0)
	return a
}

// Recommend picks the execution strategy best suited to a workflow's structure:
//  1. Any task with a condition → Conditional (conditions require runtime evaluation).
//  2. No dependencies at all, more than one task → Parallel.
//  3. No dependencies, a single task → Sequential.
//  4. Any dependency present → DAG, for the most parallelism a dependency graph allows.
//  5. No tasks at all → Sequential, the simplest safe default.
func Recommend(def model.WorkflowDefinition) model.ExecutionStrategy {
	if len(def.Tasks) == 0 {
		return model.StrategySequential
	}

	a := AnalyzeWorkflow(def)
	switch {
	case a.HasConditions:
		return model.StrategyConditional
	case !a.HasDependencies && a.TaskCount > 1:
		return model.StrategyParallel
	case !a.HasDependencies:
		return model.StrategySequential
	case a.HasDependencies:
		return model.StrategyDAG
	default:
		return model.StrategySequential
	}
}

// AutoSelect returns the workflow's explicitly chosen strategy if the author set anything
// other than the zero-value default (DAG, per NewWorkflowDefinition), otherwise delegates to
// Recommend. DAG is both the default and a perfectly valid explicit choice, so this is a
// best-effort heuristic, not a hard distinction between "set" and "unset" — callers that need
// an unambiguous opt-in to auto-selection should gate on their own explicit flag instead (see
// CoordinatorConfig.AutoSelectStrategy).
func AutoSelect(def model.WorkflowDefinition) model.ExecutionStrategy {
	if def.ExecutionStrategy != model.StrategyDAG {
		return def.ExecutionStrategy
	}
	return Recommend(def)
}

// Explain produces a human-readable justification of Recommend's choice for a workflow.
func Explain(def model.WorkflowDefinition) string {
	a := AnalyzeWorkflow(def)
	recommended := Recommend(def)

	var b strings.Builder
	fmt.Fprintf(&b, "Workflow %q analysis:\n", def.Name)
	fmt.Fprintf(&b, "  - Tasks: %d\n", a.TaskCount)
	fmt.Fprintf(&b, "  - Independent tasks: %d\n", a.IndependentTasks)
	fmt.Fprintf(&b, "  - Has dependencies: %v\n", a.HasDependencies)
	fmt.Fprintf(&b, "  - Has conditions: %v\n", a.HasConditions)
	fmt.Fprintf(&b, "\nRecommended strategy: %s\n", recommended)

	switch recommended {
	case model.StrategyConditional:
		b.WriteString("  Reason: workflow contains conditional tasks that require runtime evaluation\n")
	case model.StrategyParallel:
		b.WriteString("  Reason: all tasks are independent and can run concurrently\n")
	case model.StrategyDAG:
		b.WriteString("  Reason: workflow has dependencies; DAG enables the most parallelism a dependency graph allows\n")
	default:
		b.WriteString("  Reason: simple workflow best suited for sequential execution\n")
	}
	return b.String()
}
