package visualize

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

func renderMermaid(def model.WorkflowDefinition, opts Options) string {
	var b strings.Builder
	b.WriteString("```mermaid\ngraph TD\n")

	for _, t := range def.Tasks {
		nodeID := sanitizeID(t.ID)
		label := t.ID
		if opts.IncludeMetrics && opts.State != nil {
			if r, ok := opts.State.TaskResults[t.ID]; ok {
				label = fmt.Sprintf("%s<br/>%s", t.ID, durationLabel(r.DurationSeconds))
			}
		}
		status := statusOf(def, opts.State, t.ID)
		fmt.Fprintf(&b, "    %s[%s]%s\n", nodeID, label, mermaidStyle(status))
	}

	for _, t := range def.Tasks {
		nodeID := sanitizeID(t.ID)
		for _, dep := range t.DependsOn {
			fmt.Fprintf(&b, "    %s --> %s\n", sanitizeID(dep), nodeID)
		}
	}

	b.WriteString("\n")
	b.WriteString("    classDef completed fill:#90EE90,stroke:#006400,stroke-width:2px\n")
	b.WriteString("    classDef failed fill:#FFB6C1,stroke:#8B0000,stroke-width:2px\n")
	b.WriteString("    classDef running fill:#87CEEB,stroke:#00008B,stroke-width:2px\n")
	b.WriteString("    classDef pending fill:#F0E68C,stroke:#8B8B00,stroke-width:2px\n")
	b.WriteString("```")

	return b.String()
}

func mermaidStyle(status model.TaskStatus) string {
	switch status {
	case model.TaskCompleted:
		return ":::completed"
	case model.TaskFailed:
		return ":::failed"
	case model.TaskRunning:
		return ":::running"
	case "":
		return ""
	default:
		return ":::pending"
	}
}

func durationLabel(seconds float64) string {
	if seconds == 0 {
		return "?"
	}
	return fmt.Sprintf("%.1fs", seconds)
}
