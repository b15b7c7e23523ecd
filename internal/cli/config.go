package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HostConfig configures the run loop. The engine itself takes no
// configuration beyond the rate; everything else here is host policy.
type HostConfig struct {
	// Rate is the logical rate in steps per second. <= 0 disables stepping.
	Rate float64 `yaml:"rate"`

	// FrameRate is the host polling cadence in frames per second. The rate
	// adapter converts this (possibly irregular) cadence into logical steps.
	FrameRate float64 `yaml:"frame_rate"`

	// Duration is how long to run, in seconds.
	Duration float64 `yaml:"duration"`

	// Patch names the demo patch to build.
	Patch string `yaml:"patch"`
}

// DefaultHostConfig returns the config used when no file or flags override it.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		Rate:      1000,
		FrameRate: 60,
		Duration:  2,
		Patch:     "demo",
	}
}

// LoadHostConfig reads a YAML host config, applying defaults for absent
// fields. Unknown fields are an error - a typoed key silently falling back
// to a default is miserable to debug.
func LoadHostConfig(path string) (HostConfig, error) {
	cfg := DefaultHostConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read host config: %w", err)
	}
	if err := unmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse host config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid host config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks host-level constraints. A non-positive rate is allowed (a
// disabled patch); a non-positive frame rate is not, because the run loop
// needs a cadence to poll at.
func (c HostConfig) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %g", c.FrameRate)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %g", c.Duration)
	}
	if c.Patch == "" {
		return fmt.Errorf("patch must be set")
	}
	return nil
}

func unmarshalStrict(data []byte, v interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}
