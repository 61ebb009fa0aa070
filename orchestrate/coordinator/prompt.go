package coordinator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

// assemblePrompt builds the instruction text handed to the agent substrate: the task's own
// description, followed by the outputs of whichever dependencies it declared (in task-id
// order, for determinism), followed by its parameters, followed by its expected output type
// when one is set.
func assemblePrompt(task model.TaskDefinition, depOutputs map[string]string) string {
	var b strings.Builder
	b.WriteString(task.Description)

	if len(depOutputs) > 0 {
		b.WriteString("\n\nContext from completed dependencies:\n")
		for _, id := range sortedKeys(depOutputs) {
			fmt.Fprintf(&b, "- %s: %s\n", id, depOutputs[id])
		}
	}

	if len(task.Parameters) > 0 {
		b.WriteString("\nParameters:\n")
		keys := make([]string, 0, len(task.Parameters))
		for k := range task.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", k, task.Parameters[k])
		}
	}

	if task.ExpectedOutputType != "" {
		fmt.Fprintf(&b, "\nExpected output type: %s\n", task.ExpectedOutputType)
	}

	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
