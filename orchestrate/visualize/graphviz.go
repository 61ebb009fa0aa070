package visualize

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

func renderGraphviz(def model.WorkflowDefinition, opts Options) string {
	var b strings.Builder
	b.WriteString("digraph Workflow {\n    rankdir=TB;\n    node [shape=box, style=rounded];\n\n")

	for _, t := range def.Tasks {
		nodeID := sanitizeID(t.ID)
		label := t.ID
		if opts.IncludeMetrics && opts.State != nil {
			if r, ok := opts.State.TaskResults[t.ID]; ok && r.DurationSeconds > 0 {
				label = fmt.Sprintf("%s\\n%.1fs", t.ID, r.DurationSeconds)
			}
		}
		status := statusOf(def, opts.State, t.ID)
		color, fill := graphvizColors(status)
		fmt.Fprintf(&b, "    %s [label=\"%s\", color=\"%s\", fillcolor=\"%s\", style=\"filled,rounded\"];\n",
			nodeID, label, color, fill)
	}

	b.WriteString("\n")
	for _, t := range def.Tasks {
		nodeID := sanitizeID(t.ID)
		for _, dep := range t.DependsOn {
			fmt.Fprintf(&b, "    %s -> %s;\n", sanitizeID(dep), nodeID)
		}
	}

	b.WriteString("}")
	return b.String()
}

func graphvizColors(status model.TaskStatus) (color, fill string) {
	switch status {
	case model.TaskCompleted:
		return "darkgreen", "lightgreen"
	case model.TaskFailed:
		return "darkred", "lightpink"
	case model.TaskRunning:
		return "darkblue", "lightblue"
	case "":
		return "black", "white"
	default:
		return "goldenrod", "lightyellow"
	}
}
