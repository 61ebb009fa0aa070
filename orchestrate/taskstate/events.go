package taskstate

import "github.com/tailored-agentic-units/taskgraph/observability"

const (
	EventWorkflowStart    observability.EventType = "taskstate.workflow.start"
	EventWorkflowComplete observability.EventType = "taskstate.workflow.complete"
	EventWorkflowFail     observability.EventType = "taskstate.workflow.fail"
	EventTaskStart        observability.EventType = "taskstate.task.start"
	EventTaskComplete     observability.EventType = "taskstate.task.complete"
	EventTaskFail         observability.EventType = "taskstate.task.fail"
	EventTaskRetry        observability.EventType = "taskstate.task.retry"
	EventTaskSkip         observability.EventType = "taskstate.task.skip"
	EventCycleDetected    observability.EventType = "taskstate.cycle.detected"
)
