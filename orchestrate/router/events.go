package router

import "github.com/tailored-agentic-units/taskgraph/observability"

const (
	EventRoutingChoice   observability.EventType = "router.choice"
	EventRoutingFallback observability.EventType = "router.fallback"
)
