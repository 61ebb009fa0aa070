package visualize

import (
	"encoding/json"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

type jsonNode struct {
	ID           string           `json:"id"`
	Description  string           `json:"description"`
	Capabilities []model.Capability `json:"capabilities"`
	Skills       []string         `json:"skills,omitempty"`
	Priority     int              `json:"priority"`
	Status       model.TaskStatus `json:"status,omitempty"`
	Metrics      *jsonMetrics     `json:"metrics,omitempty"`
	Error        string           `json:"error,omitempty"`
}

type jsonMetrics struct {
	DurationSeconds float64 `json:"duration_seconds"`
	RetryCount      int     `json:"retry_count"`
	AgentUsed       string  `json:"agent_used,omitempty"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type jsonWorkflow struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Strategy    model.ExecutionStrategy `json:"strategy"`
	Status      model.WorkflowStatus  `json:"status,omitempty"`
	StartedAt   string                `json:"started_at,omitempty"`
	CompletedAt string                `json:"completed_at,omitempty"`
}

type jsonDoc struct {
	Workflow jsonWorkflow `json:"workflow"`
	Nodes    []jsonNode   `json:"nodes"`
	Edges    []jsonEdge   `json:"edges"`
}

func renderJSON(def model.WorkflowDefinition, opts Options) string {
	doc := jsonDoc{
		Workflow: jsonWorkflow{ID: def.ID, Name: def.Name, Strategy: def.ExecutionStrategy},
	}

	for _, t := range def.Tasks {
		node := jsonNode{
			ID:           t.ID,
			Description:  t.Description,
			Capabilities: t.RequiredCapabilities.Slice(),
			Skills:       t.RequiredSkills,
			Priority:     t.Priority,
			Status:       statusOf(def, opts.State, t.ID),
		}

		if opts.IncludeMetrics && opts.State != nil {
			if r, ok := opts.State.TaskResults[t.ID]; ok {
				node.Metrics = &jsonMetrics{
					DurationSeconds: r.DurationSeconds,
					RetryCount:      r.RetryCount,
					AgentUsed:       r.AgentUsed,
				}
				node.Error = r.Error
			}
		}

		doc.Nodes = append(doc.Nodes, node)
		for _, dep := range t.DependsOn {
			doc.Edges = append(doc.Edges, jsonEdge{From: dep, To: t.ID})
		}
	}

	if opts.State != nil {
		doc.Workflow.Status = opts.State.Status
		if opts.State.StartedAt != nil {
			doc.Workflow.StartedAt = opts.State.StartedAt.Format("2006-01-02T15:04:05.999999999Z07:00")
		}
		if opts.State.CompletedAt != nil {
			doc.Workflow.CompletedAt = opts.State.CompletedAt.Format("2006-01-02T15:04:05.999999999Z07:00")
		}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
