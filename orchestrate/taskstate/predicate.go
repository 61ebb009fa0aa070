package taskstate

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

// Predicate evaluates a task's condition string against the workflow state and decides
// whether the task is ready to run.
//
// Implementations must be pure with respect to state: Evaluate is called with a value
// snapshot and must not retain or mutate it.
type Predicate interface {
	Evaluate(state model.WorkflowState, condition string) bool
}

// PredicateFunc adapts a plain function to the Predicate interface.
type PredicateFunc func(state model.WorkflowState, condition string) bool

func (f PredicateFunc) Evaluate(state model.WorkflowState, condition string) bool {
	return f(state, condition)
}

// substringPredicate is the default condition evaluator: a condition is satisfied if any
// completed task's id appears as a substring of the condition text. This is the naive
// heuristic carried over from the system this store's semantics were grounded on; richer
// evaluators can be registered under a different name without touching the executors.
var substringPredicate PredicateFunc = func(state model.WorkflowState, condition string) bool {
	for _, id := range state.CompletedTasks {
		if strings.Contains(condition, id) {
			return true
		}
	}
	return false
}

var (
	predicates = map[string]Predicate{
		"substring": substringPredicate,
	}
	predicateMu sync.RWMutex
)

// GetPredicate retrieves a named Predicate from the registry.
func GetPredicate(name string) (Predicate, error) {
	predicateMu.RLock()
	defer predicateMu.RUnlock()

	p, ok := predicates[name]
	if !ok {
		return nil, fmt.Errorf("unknown condition predicate: %s", name)
	}
	return p, nil
}

// RegisterPredicate adds a named Predicate to the global registry.
func RegisterPredicate(name string, p Predicate) {
	predicateMu.Lock()
	defer predicateMu.Unlock()

	predicates[name] = p
}

// DefaultPredicateName is the registry key resolved when a store is not configured
// with an explicit predicate name.
const DefaultPredicateName = "substring"
