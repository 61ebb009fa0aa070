package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/model"
)

// keyMaterial is the deterministic, key-sorted shape hashed to produce a cache key. Map
// values in Go's encoding/json are already emitted with sorted keys, so this struct alone
// is enough to guarantee reordering parameter keys never changes the digest.
type keyMaterial struct {
	TaskID               string         `json:"task_id"`
	Description          string         `json:"description"`
	Parameters           map[string]any `json:"parameters,omitempty"`
	RequiredCapabilities []string       `json:"required_capabilities"`
	RequiredSkills       []string       `json:"required_skills,omitempty"`
	Dependencies         map[string]string `json:"dependencies,omitempty"`
}

// Generate computes the SHA-256 cache key for a task given its dependency outputs.
//
// When includeDependencies is false, depOutputs is ignored entirely — dependency outputs
// must not leak into the key through any back door. When true, each entry in depOutputs
// contributes its task id and the string form of its own cached output.
func Generate(task model.TaskDefinition, depOutputs map[string]string, includeDependencies bool) string {
	caps := make([]string, 0, len(task.RequiredCapabilities))
	for _, c := range task.RequiredCapabilities.Slice() {
		caps = append(caps, string(c))
	}
	skills := append([]string(nil), task.RequiredSkills...)
	sort.Strings(skills)

	material := keyMaterial{
		TaskID:               task.ID,
		Description:          task.Description,
		Parameters:           task.Parameters,
		RequiredCapabilities: caps,
		RequiredSkills:       skills,
	}
	if includeDependencies && len(depOutputs) > 0 {
		material.Dependencies = depOutputs
	}

	// json.Marshal on a map[string]any sorts keys; combined with the struct's fixed field
	// order, this serialization is stable across calls and across parameter reordering.
	encoded, _ := json.Marshal(material)
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
