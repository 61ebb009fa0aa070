package visualize

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

func renderASCII(def model.WorkflowDefinition, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workflow: %s\n", def.Name)
	fmt.Fprintf(&b, "Strategy: %s\n", def.ExecutionStrategy)
	b.WriteString(strings.Repeat("=", 70))
	b.WriteString("\n\n")

	levels := computeLevels(def)
	for level, taskIDs := range levels {
		if level > 0 {
			b.WriteString("    \u2193\n")
		}
		fmt.Fprintf(&b, "Level %d:\n", level)

		for _, taskID := range taskIDs {
			task, _ := def.TaskByID(taskID)
			status := statusOf(def, opts.State, taskID)
			line := fmt.Sprintf("  %s %s", asciiSymbol(status), task.ID)

			if opts.IncludeMetrics && opts.State != nil {
				if r, ok := opts.State.TaskResults[taskID]; ok && r.DurationSeconds > 0 {
					line += fmt.Sprintf(" (%.1fs)", r.DurationSeconds)
				}
			}
			if len(task.DependsOn) > 0 {
				line += fmt.Sprintf(" [depends: %s]", strings.Join(task.DependsOn, ", "))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nLegend:\n")
	b.WriteString("  \u2713 Completed\n")
	b.WriteString("  \u2717 Failed\n")
	b.WriteString("  \u27f3 Running\n")
	b.WriteString("  \u25cb Pending\n")

	return b.String()
}

func asciiSymbol(status model.TaskStatus) string {
	switch status {
	case model.TaskCompleted:
		return "\u2713"
	case model.TaskFailed:
		return "\u2717"
	case model.TaskRunning:
		return "\u27f3"
	default:
		return "\u25cb"
	}
}
