package config_test

import (
	"encoding/json"
	"testing"

	"github.com/tailored-agentic-units/taskgraph/orchestrate/config"
)

func TestCheckpointConfig_DefaultDisabled(t *testing.T) {
	cfg := config.DefaultCheckpointConfig()

	if cfg.Store != "memory" {
		t.Errorf("DefaultCheckpointConfig().Store = %v, want memory", cfg.Store)
	}
	if cfg.Interval != 0 {
		t.Errorf("DefaultCheckpointConfig().Interval = %v, want 0 (disabled)", cfg.Interval)
	}
	if cfg.Preserve {
		t.Errorf("DefaultCheckpointConfig().Preserve = true, want false")
	}
}

func TestCheckpointConfig_JSONUnmarshalFromString(t *testing.T) {
	tests := []struct {
		name         string
		jsonStr      string
		wantStore    string
		wantInterval int
		wantPreserve bool
	}{
		{
			name:         "interval enabled with preserve",
			jsonStr:      `{"store":"memory","interval":5,"preserve":true}`,
			wantStore:    "memory",
			wantInterval: 5,
			wantPreserve: true,
		},
		{
			name:         "disabled",
			jsonStr:      `{"store":"memory","interval":0,"preserve":false}`,
			wantStore:    "memory",
			wantInterval: 0,
			wantPreserve: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.CheckpointConfig
			if err := json.Unmarshal([]byte(tt.jsonStr), &cfg); err != nil {
				t.Fatalf("json.Unmarshal() error = %v", err)
			}
			if cfg.Store != tt.wantStore {
				t.Errorf("Store = %v, want %v", cfg.Store, tt.wantStore)
			}
			if cfg.Interval != tt.wantInterval {
				t.Errorf("Interval = %v, want %v", cfg.Interval, tt.wantInterval)
			}
			if cfg.Preserve != tt.wantPreserve {
				t.Errorf("Preserve = %v, want %v", cfg.Preserve, tt.wantPreserve)
			}
		})
	}
}

func TestCheckpointConfig_MergeOverlaysNonZeroFields(t *testing.T) {
	cfg := config.DefaultCheckpointConfig()
	cfg.Merge(&config.CheckpointConfig{Interval: 10, Preserve: true})

	if cfg.Store != "memory" {
		t.Errorf("Store = %v, want unchanged memory", cfg.Store)
	}
	if cfg.Interval != 10 {
		t.Errorf("Interval = %v, want 10", cfg.Interval)
	}
	if !cfg.Preserve {
		t.Errorf("Preserve = false, want true")
	}
}

func TestCoordinatorConfig_DefaultEmbedsDefaultCheckpoint(t *testing.T) {
	cfg := config.DefaultCoordinatorConfig()

	if cfg.Checkpoint != config.DefaultCheckpointConfig() {
		t.Errorf("CoordinatorConfig.Checkpoint = %+v, want DefaultCheckpointConfig()", cfg.Checkpoint)
	}
}
