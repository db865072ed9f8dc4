package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AxisConfig holds the hardware configuration for one motorized axis.
type AxisConfig struct {
	StepPin   int `yaml:"step_pin"`
	DirPin    int `yaml:"dir_pin"`
	EnablePin int `yaml:"enable_pin"` // A4988 ENABLE pin. 0 = not used. Active LOW.

	// MaxSteps bounds the absolute position for linear axes (X/Y/Z).
	// For the rotation axis, set StepsPerRev instead and leave MaxSteps at 0.
	MaxSteps    int `yaml:"max_steps"`
	StepsPerRev int `yaml:"steps_per_rev"`

	// EndstopPin is the limit-switch input pin used for homing.
	// 0 = no endstop (rotation has none; its zero is a software convention).
	EndstopPin int `yaml:"endstop_pin"`

	// HomeBackoffSteps moves the axis away from the switch after homing
	// confirms. Z needs this: its optical switch trips well above the true
	// mechanical bottom.
	HomeBackoffSteps int `yaml:"home_backoff_steps"`

	TravelDelayUs int `yaml:"travel_delay_us"` // inter-step delay for goTo moves
	HomeDelayUs   int `yaml:"home_delay_us"`   // inter-step delay while seeking home
}

// CameraConfig describes the capture service.
// Type selects a concrete implementation (e.g., "fswebcam").
type CameraConfig struct {
	Type              string `yaml:"type"`                // e.g., "fswebcam"
	Resolution        string `yaml:"resolution"`          // e.g., "640x480"
	FileExt           string `yaml:"file_ext"`            // e.g., ".jpg"
	AttemptTimeoutS   int    `yaml:"attempt_timeout_s"`   // bounded wait per capture attempt
	ReconnectTimeoutS int    `yaml:"reconnect_timeout_s"` // operator window to reseat the USB device
}

// ScanConfig holds the default scan volume, in absolute steps per axis.
type ScanConfig struct {
	SaveDir string `yaml:"save_dir"`

	XMin int `yaml:"x_min"`
	XMax int `yaml:"x_max"`
	YMin int `yaml:"y_min"`
	YMax int `yaml:"y_max"`
	ZMin int `yaml:"z_min"`
	ZMax int `yaml:"z_max"`
	RMin int `yaml:"r_min"`
	RMax int `yaml:"r_max"`

	XStep int `yaml:"x_step"`
	YStep int `yaml:"y_step"`
	ZStep int `yaml:"z_step"`
	RStep int `yaml:"r_step"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	SettleMs           int    `yaml:"settle_ms"`            // vibration settle pause before each capture
	DebugLevel         int    `yaml:"debug_level"`          // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO           bool   `yaml:"mock_gpio"`            // use mock GPIO (true=dev/test, false=real Raspberry Pi)
	CheckpointPath     string `yaml:"checkpoint_path"`      // durable scan checkpoint; presence at startup triggers resume
	BeeperPin          int    `yaml:"beeper_pin"`           // audible feedback pin. 0 = silent.
	HomeSafetyMargin   int    `yaml:"home_safety_margin"`   // extra seek iterations past max_steps before giving up
	HomeOvershootSteps int    `yaml:"home_overshoot_steps"` // retreat distance for the debounce-confirm pass
}

// Config aggregates all application configuration.
type Config struct {
	XAxis    AxisConfig     `yaml:"x_axis"`
	YAxis    AxisConfig     `yaml:"y_axis"`
	ZAxis    AxisConfig     `yaml:"z_axis"`
	RAxis    AxisConfig     `yaml:"r_axis"`
	Camera   CameraConfig   `yaml:"camera"`
	Scan     ScanConfig     `yaml:"scan"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Camera.Type == "" {
		return nil, fmt.Errorf("camera.type is required")
	}
	linear := []struct {
		name string
		cfg  *AxisConfig
	}{
		{"x_axis", &cfg.XAxis},
		{"y_axis", &cfg.YAxis},
		{"z_axis", &cfg.ZAxis},
	}
	for _, a := range linear {
		if a.cfg.MaxSteps <= 0 {
			return nil, fmt.Errorf("%s.max_steps must be > 0", a.name)
		}
	}
	if cfg.RAxis.StepsPerRev <= 0 {
		return nil, fmt.Errorf("r_axis.steps_per_rev must be > 0")
	}
	if cfg.RAxis.EndstopPin != 0 {
		return nil, fmt.Errorf("r_axis has no homing reference; endstop_pin must be 0")
	}

	// Speed defaults mirror the ladder the rig was tuned with:
	// X/Y travel 600us, Z travel 300us, R travel 2ms.
	applyDelayDefaults(&cfg.XAxis, 600, 600)
	applyDelayDefaults(&cfg.YAxis, 600, 600)
	applyDelayDefaults(&cfg.ZAxis, 300, 2000)
	applyDelayDefaults(&cfg.RAxis, 2000, 2000)

	if cfg.Camera.Resolution == "" {
		cfg.Camera.Resolution = "640x480"
	}
	if cfg.Camera.FileExt == "" {
		cfg.Camera.FileExt = ".jpg"
	}
	if cfg.Camera.AttemptTimeoutS <= 0 {
		cfg.Camera.AttemptTimeoutS = 10
	}
	if cfg.Camera.ReconnectTimeoutS <= 0 {
		cfg.Camera.ReconnectTimeoutS = 30
	}

	if cfg.Defaults.SettleMs <= 0 {
		cfg.Defaults.SettleMs = 200
	}
	if cfg.Defaults.CheckpointPath == "" {
		cfg.Defaults.CheckpointPath = "scandata.json"
	}
	if cfg.Defaults.HomeSafetyMargin <= 0 {
		cfg.Defaults.HomeSafetyMargin = 200
	}
	if cfg.Defaults.HomeOvershootSteps <= 0 {
		cfg.Defaults.HomeOvershootSteps = 300
	}

	if cfg.Scan.XStep <= 0 {
		cfg.Scan.XStep = 150
	}
	if cfg.Scan.YStep <= 0 {
		cfg.Scan.YStep = 150
	}
	if cfg.Scan.ZStep <= 0 {
		cfg.Scan.ZStep = 1
	}
	if cfg.Scan.RStep <= 0 {
		cfg.Scan.RStep = cfg.RAxis.StepsPerRev // single rotation position
	}

	return &cfg, nil
}

func applyDelayDefaults(a *AxisConfig, travelUs, homeUs int) {
	if a.TravelDelayUs <= 0 {
		a.TravelDelayUs = travelUs
	}
	if a.HomeDelayUs <= 0 {
		a.HomeDelayUs = homeUs
	}
}

// TravelDelay returns the inter-step delay for positioning moves.
func (a *AxisConfig) TravelDelay() time.Duration {
	return time.Duration(a.TravelDelayUs) * time.Microsecond
}

// HomeDelay returns the inter-step delay used while homing.
func (a *AxisConfig) HomeDelay() time.Duration {
	return time.Duration(a.HomeDelayUs) * time.Microsecond
}

// AttemptTimeout returns the bounded wait for one capture attempt.
func (c *Config) AttemptTimeout() time.Duration {
	return time.Duration(c.Camera.AttemptTimeoutS) * time.Second
}

// ReconnectTimeout returns the operator window between failed capture attempts.
func (c *Config) ReconnectTimeout() time.Duration {
	return time.Duration(c.Camera.ReconnectTimeoutS) * time.Second
}

// SettleDelay returns the pause after movement before capture.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Defaults.SettleMs) * time.Millisecond
}

// RetiredCheckpointPath is where a completed scan's checkpoint is renamed to.
// Renaming (never deleting) prevents a stale file from re-triggering resume.
func (c *Config) RetiredCheckpointPath() string {
	return c.Defaults.CheckpointPath + ".old"
}
