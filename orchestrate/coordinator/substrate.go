// Package coordinator wires the state store, router, and cache together into the single
// entry point that runs a workflow to completion: TaskDriver executes one task at a time
// (routing, caching, retrying, prompting the agent substrate), and Coordinator drives the
// whole workflow through the executor matching its strategy.
package coordinator

import "context"

// AgentOutput is what an agent substrate returns for one task invocation.
type AgentOutput struct {
	Content  string
	Metadata map[string]any
}

// AgentSubstrate is the boundary to whatever actually executes a task — a local tool
// dispatcher, a remote agent API, a test double. agentType is the routed executor id; prompt
// is the assembled task instruction. A substrate implementation owns its own timeout and
// cancellation behavior with respect to ctx.
type AgentSubstrate interface {
	Run(ctx context.Context, agentType, prompt string) (AgentOutput, error)
}
