// Package visualize renders a workflow definition, optionally annotated with its current
// execution state, as a diagram in one of several output formats.
package visualize

import (
	"strings"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

// Format selects a visualize.Render output.
type Format string

const (
	FormatMermaid  Format = "mermaid"
	FormatGraphviz Format = "graphviz"
	FormatASCII    Format = "ascii"
	FormatJSON     Format = "json"
)

// Options controls what Render includes beyond the bare graph structure.
type Options struct {
	// State, if non-nil, annotates nodes with status coloring and (if IncludeMetrics) timing.
	State *model.WorkflowState
	IncludeMetrics bool
}

// Render produces a diagram of def in the requested format. An unrecognized format falls back
// to Mermaid, the default the original tool also defaults to.
func Render(def model.WorkflowDefinition, format Format, opts Options) string {
	switch format {
	case FormatGraphviz:
		return renderGraphviz(def, opts)
	case FormatASCII:
		return renderASCII(def, opts)
	case FormatJSON:
		return renderJSON(def, opts)
	default:
		return renderMermaid(def, opts)
	}
}

// statusOf resolves a task's display status from the optional state snapshot. A task untouched
// by the state (no recorded result) is reported as pending. Without a state the status is
// empty and the renderers draw the node unstyled.
func statusOf(def model.WorkflowDefinition, state *model.WorkflowState, taskID string) model.TaskStatus {
	if state == nil {
		return ""
	}
	if r, ok := state.TaskResults[taskID]; ok {
		return r.Status
	}
	return model.TaskPending
}

// sanitizeID replaces characters that break diagram node syntax.
func sanitizeID(id string) string {
	r := strings.NewReplacer("-", "_", ".", "_", " ", "_")
	return r.Replace(id)
}

// computeLevels groups tasks by dependency depth via repeated readiness passes. A graph with a
// cycle (which Validate would normally have already rejected) dumps whatever remains into one
// final level rather than looping forever.
func computeLevels(def model.WorkflowDefinition) [][]string {
	deps := make(map[string]map[string]struct{}, len(def.Tasks))
	for _, t := range def.Tasks {
		deps[t.ID] = make(map[string]struct{}, len(t.DependsOn))
		for _, d := range t.DependsOn {
			deps[t.ID][d] = struct{}{}
		}
	}

	assigned := make(map[string]struct{}, len(def.Tasks))
	var levels [][]string

	for len(assigned) < len(def.Tasks) {
		var current []string
		for _, t := range def.Tasks {
			if _, done := assigned[t.ID]; done {
				continue
			}
			if allSatisfied(deps[t.ID], assigned) {
				current = append(current, t.ID)
			}
		}

		if len(current) == 0 {
			var remaining []string
			for _, t := range def.Tasks {
				if _, done := assigned[t.ID]; !done {
					remaining = append(remaining, t.ID)
				}
			}
			levels = append(levels, remaining)
			break
		}

		sortStrings(current)
		levels = append(levels, current)
		for _, id := range current {
			assigned[id] = struct{}{}
		}
	}

	return levels
}

func allSatisfied(need map[string]struct{}, have map[string]struct{}) bool {
	for d := range need {
		if _, ok := have[d]; !ok {
			return false
		}
	}
	return true
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
