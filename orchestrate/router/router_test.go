package router

import (
	"context"
	"testing"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

func testRoutings() []model.AgentRouting {
	return model.DefaultAgentRoutings()
}

func TestRoute_ExplicitAgentType(t *testing.T) {
	r := New(testRoutings(), nil)
	task := model.NewTaskDefinition("t1", "do something")
	task.AgentType = "custom-executor"

	got := r.Route(context.Background(), task)
	if got != "custom-executor" {
		t.Errorf("Route() = %q, want explicit agent type", got)
	}
}

func TestRoute_FallbackWhenNoneSuitable(t *testing.T) {
	r := New(nil, nil)
	task := model.NewTaskDefinition("t1", "do something")
	task.RequiredCapabilities = model.NewCapabilitySet(model.CapabilityResearch)

	got := r.Route(context.Background(), task)
	if got != FallbackAgentType {
		t.Errorf("Route() = %q, want %q", got, FallbackAgentType)
	}
}

func TestRoute_PrefersHigherPriorityAndSpecificity(t *testing.T) {
	r := New(testRoutings(), nil)
	task := model.NewTaskDefinition("t1", "analyze code")
	task.RequiredCapabilities = model.NewCapabilitySet(model.CapabilityCodeAnalysis)

	got := r.Route(context.Background(), task)
	if got != "code-analyzer" {
		t.Errorf("Route() = %q, want code-analyzer", got)
	}
}

func TestRoute_PrefersLowerLoad(t *testing.T) {
	r := New([]model.AgentRouting{
		{AgentType: "a", Capabilities: model.NewCapabilitySet(model.CapabilityGeneral), Priority: 5, MaxConcurrentTasks: 5},
		{AgentType: "b", Capabilities: model.NewCapabilitySet(model.CapabilityGeneral), Priority: 5, MaxConcurrentTasks: 5},
	}, nil)
	r.IncrementLoad("a")
	r.IncrementLoad("a")

	task := model.NewTaskDefinition("t1", "anything")
	got := r.Route(context.Background(), task)
	if got != "b" {
		t.Errorf("Route() = %q, want b (lower load)", got)
	}
}

func TestRoute_FallsBackToSuitableWhenAllSaturated(t *testing.T) {
	r := New([]model.AgentRouting{
		{AgentType: "a", Capabilities: model.NewCapabilitySet(model.CapabilityGeneral), Priority: 5, MaxConcurrentTasks: 1},
	}, nil)
	r.IncrementLoad("a")

	task := model.NewTaskDefinition("t1", "anything")
	got := r.Route(context.Background(), task)
	if got != "a" {
		t.Errorf("Route() = %q, want a (only suitable, even saturated)", got)
	}
}

func TestLoad_NeverNegative(t *testing.T) {
	r := New(testRoutings(), nil)
	r.DecrementLoad("general-purpose")
	if got := r.LoadOf("general-purpose"); got != 0 {
		t.Errorf("LoadOf() = %d, want 0", got)
	}
}

func TestLoad_IncrementDecrementRoundTrip(t *testing.T) {
	r := New(testRoutings(), nil)
	r.IncrementLoad("general-purpose")
	r.IncrementLoad("general-purpose")
	r.DecrementLoad("general-purpose")
	if got := r.LoadOf("general-purpose"); got != 1 {
		t.Errorf("LoadOf() = %d, want 1", got)
	}
}

func TestResetLoad(t *testing.T) {
	r := New(testRoutings(), nil)
	r.IncrementLoad("general-purpose")
	r.ResetLoad()
	if got := r.LoadOf("general-purpose"); got != 0 {
		t.Errorf("LoadOf() after reset = %d, want 0", got)
	}
}
