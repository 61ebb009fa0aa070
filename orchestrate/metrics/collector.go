package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tailored-agentic-units/taskgraph/observability"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/cache"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/router"
	"github.com/tailored-agentic-units/taskgraph/orchestrate/taskstate"
)

// Collector implements observability.Observer, translating the events the state store,
// router, and cache already emit into Prometheus counters and gauges as they happen. A nil
// *Collector is a valid, zero-overhead Observer — every method checks for it first, mirroring
// how the rest of the pack's metrics types treat "disabled" as a nil receiver rather than a
// branch at every call site.
type Collector struct {
	registry *prometheus.Registry

	tasksTotal     *prometheus.CounterVec
	tasksRetried   prometheus.Counter
	tasksRunning   prometheus.Gauge
	workflowsTotal *prometheus.CounterVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	routingChoices *prometheus.CounterVec
	routingFallbacks prometheus.Counter
}

// NewCollector builds a Collector registered under namespace, or returns nil if disabled —
// callers pass the nil result straight into observability.NewMultiObserver without a branch.
func NewCollector(enabled bool, namespace string) *Collector {
	if !enabled {
		return nil
	}
	if namespace == "" {
		namespace = "taskgraph"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.tasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "task", Name: "events_total",
		Help: "Total number of task lifecycle events by type.",
	}, []string{"event"})
	c.tasksRetried = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "task", Name: "retries_total",
		Help: "Total number of task retry attempts.",
	})
	c.tasksRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "task", Name: "running",
		Help: "Number of tasks currently running.",
	})
	c.workflowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "workflow", Name: "events_total",
		Help: "Total number of workflow lifecycle events by type.",
	}, []string{"event"})
	c.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache", Name: "hits_total",
		Help: "Total number of cache hits.",
	})
	c.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache", Name: "misses_total",
		Help: "Total number of cache misses.",
	})
	c.cacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "cache", Name: "evictions_total",
		Help: "Total number of cache entries evicted.",
	})
	c.routingChoices = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "router", Name: "choices_total",
		Help: "Total number of routing decisions by chosen agent type.",
	}, []string{"agent_type"})
	c.routingFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "router", Name: "fallbacks_total",
		Help: "Total number of routing decisions that fell back to the default agent type.",
	})

	c.registry.MustRegister(
		c.tasksTotal, c.tasksRetried, c.tasksRunning, c.workflowsTotal,
		c.cacheHits, c.cacheMisses, c.cacheEvictions,
		c.routingChoices, c.routingFallbacks,
	)
	return c
}

// OnEvent implements observability.Observer.
func (c *Collector) OnEvent(ctx context.Context, event observability.Event) {
	if c == nil {
		return
	}
	switch event.Type {
	case taskstate.EventTaskStart:
		c.tasksTotal.WithLabelValues("start").Inc()
		c.tasksRunning.Inc()
	case taskstate.EventTaskComplete:
		c.tasksTotal.WithLabelValues("complete").Inc()
		c.tasksRunning.Dec()
	case taskstate.EventTaskFail:
		c.tasksTotal.WithLabelValues("fail").Inc()
		c.tasksRunning.Dec()
	case taskstate.EventTaskSkip:
		c.tasksTotal.WithLabelValues("skip").Inc()
	case taskstate.EventTaskRetry:
		c.tasksTotal.WithLabelValues("retry").Inc()
		c.tasksRetried.Inc()
	case taskstate.EventWorkflowStart:
		c.workflowsTotal.WithLabelValues("start").Inc()
	case taskstate.EventWorkflowComplete:
		c.workflowsTotal.WithLabelValues("complete").Inc()
	case taskstate.EventWorkflowFail:
		c.workflowsTotal.WithLabelValues("fail").Inc()
	case cache.EventCacheHit:
		c.cacheHits.Inc()
	case cache.EventCacheMiss:
		c.cacheMisses.Inc()
	case cache.EventCacheEvict:
		c.cacheEvictions.Inc()
	case router.EventRoutingChoice:
		if agentType, ok := event.Data["agent_type"].(string); ok {
			c.routingChoices.WithLabelValues(agentType).Inc()
		}
	case router.EventRoutingFallback:
		c.routingFallbacks.Inc()
	}
}

// Registry returns the Prometheus registry backing this collector, or nil if disabled.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}
