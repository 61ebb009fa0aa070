package taskstate

import (
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

// CheckpointStore persists WorkflowState snapshots identified by workflow id, enabling a
// workflow to be resumed after a coordinator process restarts mid-run.
//
// Checkpoint lifecycle:
//  1. The coordinator saves a snapshot via Save every CheckpointInterval terminal task transitions.
//  2. When the workflow finishes, with any terminal status, the checkpoint is deleted unless
//     the caller opts to preserve it.
//  3. On an unplanned stop, the checkpoint remains available for Load.
//
// Implementations must be safe for concurrent use.
type CheckpointStore interface {
	// Save persists state, overwriting any existing checkpoint for the same workflow id.
	Save(state model.WorkflowState) error

	// Load retrieves the checkpoint for workflowID, or an error if none exists.
	Load(workflowID string) (model.WorkflowState, error)

	// Delete removes the checkpoint for workflowID. No error if it doesn't exist.
	Delete(workflowID string) error

	// List returns the workflow ids with a stored checkpoint.
	List() ([]string, error)
}

type memoryCheckpointStore struct {
	mu     sync.RWMutex
	states map[string]model.WorkflowState
}

// NewMemoryCheckpointStore returns a CheckpointStore backed by a process-local map.
// Checkpoints do not survive process restarts — suitable for tests and single-process
// deployments that only need to recover from a goroutine panic, not a full crash.
func NewMemoryCheckpointStore() CheckpointStore {
	return &memoryCheckpointStore{states: make(map[string]model.WorkflowState)}
}

func (m *memoryCheckpointStore) Save(state model.WorkflowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.WorkflowID] = state
	return nil
}

func (m *memoryCheckpointStore) Load(workflowID string) (model.WorkflowState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[workflowID]
	if !ok {
		return model.WorkflowState{}, fmt.Errorf("checkpoint not found: %s", workflowID)
	}
	return state, nil
}

func (m *memoryCheckpointStore) Delete(workflowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, workflowID)
	return nil
}

func (m *memoryCheckpointStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	return ids, nil
}

var (
	checkpointRegistryMu sync.RWMutex
	checkpointRegistry   = map[string]CheckpointStore{
		"memory": NewMemoryCheckpointStore(),
	}
)

// GetCheckpointStore resolves a CheckpointStore by name, for config-driven construction
// (CheckpointConfig.Store names an entry in this registry).
func GetCheckpointStore(name string) (CheckpointStore, error) {
	checkpointRegistryMu.RLock()
	defer checkpointRegistryMu.RUnlock()
	store, ok := checkpointRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown checkpoint store: %s", name)
	}
	return store, nil
}

// RegisterCheckpointStore adds a named CheckpointStore to the registry, e.g. a disk- or
// database-backed implementation supplied by the caller before constructing a Store.
func RegisterCheckpointStore(name string, store CheckpointStore) {
	checkpointRegistryMu.Lock()
	defer checkpointRegistryMu.Unlock()
	checkpointRegistry[name] = store
}
