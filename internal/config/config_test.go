package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
x_axis:
  step_pin: 16
  dir_pin: 18
  max_steps: 1800
  endstop_pin: 11
y_axis:
  step_pin: 24
  dir_pin: 26
  max_steps: 2000
  endstop_pin: 13
z_axis:
  step_pin: 38
  dir_pin: 40
  max_steps: 3000
  endstop_pin: 15
  home_backoff_steps: 1000
r_axis:
  step_pin: 19
  dir_pin: 21
  steps_per_rev: 160
camera:
  type: fswebcam
scan:
  save_dir: /data/scans
defaults:
  beeper_pin: 35
  mock_gpio: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.XAxis.MaxSteps != 1800 || cfg.YAxis.MaxSteps != 2000 || cfg.ZAxis.MaxSteps != 3000 {
		t.Errorf("axis ranges = %d/%d/%d", cfg.XAxis.MaxSteps, cfg.YAxis.MaxSteps, cfg.ZAxis.MaxSteps)
	}
	if cfg.RAxis.StepsPerRev != 160 {
		t.Errorf("steps_per_rev = %d, want 160", cfg.RAxis.StepsPerRev)
	}
	if cfg.ZAxis.HomeBackoffSteps != 1000 {
		t.Errorf("z backoff = %d, want 1000", cfg.ZAxis.HomeBackoffSteps)
	}
	if !cfg.Defaults.MockGPIO {
		t.Error("mock_gpio not read")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Camera.Resolution != "640x480" || cfg.Camera.FileExt != ".jpg" {
		t.Errorf("camera defaults = %q %q", cfg.Camera.Resolution, cfg.Camera.FileExt)
	}
	if cfg.AttemptTimeout() != 10*time.Second {
		t.Errorf("attempt timeout = %v, want 10s", cfg.AttemptTimeout())
	}
	if cfg.ReconnectTimeout() != 30*time.Second {
		t.Errorf("reconnect timeout = %v, want 30s", cfg.ReconnectTimeout())
	}
	if cfg.SettleDelay() != 200*time.Millisecond {
		t.Errorf("settle = %v, want 200ms", cfg.SettleDelay())
	}
	if cfg.Defaults.CheckpointPath != "scandata.json" {
		t.Errorf("checkpoint path = %q", cfg.Defaults.CheckpointPath)
	}
	if cfg.RetiredCheckpointPath() != "scandata.json.old" {
		t.Errorf("retired path = %q", cfg.RetiredCheckpointPath())
	}
	if cfg.Defaults.HomeSafetyMargin != 200 || cfg.Defaults.HomeOvershootSteps != 300 {
		t.Errorf("homing defaults = %d/%d", cfg.Defaults.HomeSafetyMargin, cfg.Defaults.HomeOvershootSteps)
	}

	// Speed ladder defaults.
	if cfg.XAxis.TravelDelay() != 600*time.Microsecond {
		t.Errorf("x travel delay = %v, want 600us", cfg.XAxis.TravelDelay())
	}
	if cfg.ZAxis.HomeDelay() != 2*time.Millisecond {
		t.Errorf("z home delay = %v, want 2ms", cfg.ZAxis.HomeDelay())
	}

	// Grid step defaults; R defaults to a single rotation position.
	if cfg.Scan.XStep != 150 || cfg.Scan.YStep != 150 || cfg.Scan.ZStep != 1 {
		t.Errorf("scan steps = %d/%d/%d", cfg.Scan.XStep, cfg.Scan.YStep, cfg.Scan.ZStep)
	}
	if cfg.Scan.RStep != 160 {
		t.Errorf("r step = %d, want steps_per_rev", cfg.Scan.RStep)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "camera: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "missing camera type",
			mutate:  func(s string) string { return strings.Replace(s, "type: fswebcam", "", 1) },
			wantErr: "camera.type",
		},
		{
			name:    "zero y range",
			mutate:  func(s string) string { return strings.Replace(s, "max_steps: 2000", "max_steps: 0", 1) },
			wantErr: "y_axis.max_steps",
		},
		{
			name:    "missing steps per rev",
			mutate:  func(s string) string { return strings.Replace(s, "steps_per_rev: 160", "", 1) },
			wantErr: "steps_per_rev",
		},
		{
			name:    "endstop on rotation",
			mutate:  func(s string) string { return strings.Replace(s, "steps_per_rev: 160", "steps_per_rev: 160\n  endstop_pin: 7", 1) },
			wantErr: "r_axis",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.mutate(validYAML)))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Load = %v, want error mentioning %q", err, tc.wantErr)
			}
		})
	}
}
