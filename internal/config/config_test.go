package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Name != "vrbridge" {
		t.Errorf("Name = %q, want vrbridge", cfg.Name)
	}
	if cfg.PeriodMS != 10 {
		t.Errorf("PeriodMS = %d, want 10", cfg.PeriodMS)
	}
	if cfg.BaseFrame != "openVR_origin" {
		t.Errorf("BaseFrame = %q, want openVR_origin", cfg.BaseFrame)
	}
	if cfg.Origin != "seated" {
		t.Errorf("Origin = %q, want seated", cfg.Origin)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("Web.Port = %d, want 8080", cfg.Web.Port)
	}
	if cfg.Camera.Quality != 85 {
		t.Errorf("Camera.Quality = %d, want 85", cfg.Camera.Quality)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	data := []byte(`
name: lab-rig
periodMS: 20
origin: standing
web:
  port: 9090
sink:
  zmqEndpoint: "tcp://*:5556"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "lab-rig" {
		t.Errorf("Name = %q, want lab-rig", cfg.Name)
	}
	if cfg.PeriodMS != 20 {
		t.Errorf("PeriodMS = %d, want 20", cfg.PeriodMS)
	}
	if cfg.Origin != "standing" {
		t.Errorf("Origin = %q, want standing", cfg.Origin)
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("Web.Port = %d, want 9090", cfg.Web.Port)
	}
	if cfg.Sink.ZMQEndpoint != "tcp://*:5556" {
		t.Errorf("Sink.ZMQEndpoint = %q", cfg.Sink.ZMQEndpoint)
	}
	// Untouched fields keep their defaults
	if cfg.BaseFrame != DefaultBaseFrame {
		t.Errorf("BaseFrame = %q, want %q", cfg.BaseFrame, DefaultBaseFrame)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	if err := os.WriteFile(path, []byte("name: from-file\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("VRBRIDGE_NAME", "from-env")
	t.Setenv("VRBRIDGE_PERIOD_MS", "50")
	t.Setenv("VRBRIDGE_BASE_FRAME", "lab_origin")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("Name = %q, want from-env", cfg.Name)
	}
	if cfg.PeriodMS != 50 {
		t.Errorf("PeriodMS = %d, want 50", cfg.PeriodMS)
	}
	if cfg.BaseFrame != "lab_origin" {
		t.Errorf("BaseFrame = %q, want lab_origin", cfg.BaseFrame)
	}
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero period", "periodMS: 0\n"},
		{"port out of range", "web:\n  port: 70000\n"},
		{"bad remote URL", "sink:\n  remoteURL: \"not a url\"\n"},
		{"empty base frame", "baseFrame: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bridge.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should reject invalid configuration")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() should fail for a missing config file")
	}
}
