package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfigFile(t, `{"frame_rate": 30, "screen_distance": 25.5}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.GetFrameRate(); got != 30 {
		t.Errorf("GetFrameRate() = %f, want 30", got)
	}
	if got := cfg.GetScreenDistance(); got != 25.5 {
		t.Errorf("GetScreenDistance() = %f, want 25.5", got)
	}

	// Omitted fields fall back to defaults.
	if got := cfg.GetDotsInterval(); got != 20 {
		t.Errorf("GetDotsInterval() = %d, want default 20", got)
	}
	if got := cfg.GetAngularUnits(); got != "rads" {
		t.Errorf("GetAngularUnits() = %q, want default rads", got)
	}
	if got := cfg.GetDBPath(); got != "loomstim.db" {
		t.Errorf("GetDBPath() = %q, want default", got)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	if _, err := Load("experiment.yaml"); err == nil {
		t.Error("expected error for non-JSON extension")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty config ok", `{}`, false},
		{"negative frame rate", `{"frame_rate": -1}`, true},
		{"zero screen distance", `{"screen_distance": 0}`, true},
		{"negative correction", `{"correction_factor": -0.5}`, true},
		{"bad angular units", `{"angular_units": "radians"}`, true},
		{"bad speed units", `{"speed_units": "mph"}`, true},
		{"good units", `{"angular_units": "degs", "speed_units": "mps"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
