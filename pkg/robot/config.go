package robot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "shooterbot.json"

// DefaultSetpoint is the shooter velocity used until an operator sets one.
const DefaultSetpoint = -9.5

// DefaultInertia is the simulated flywheel moment of inertia in kg·m².
const DefaultInertia = 0.001

// Config holds the robot configuration
type Config struct {
	Bus       BusConfig        `json:"bus" yaml:"bus"`
	Hz        int              `json:"hz" yaml:"hz"`
	Simulate  bool             `json:"simulate" yaml:"simulate"`
	Actuators []ActuatorConfig `json:"actuators" yaml:"actuators"`
	Setpoints SetpointConfig   `json:"setpoints" yaml:"setpoints"`
	Inertia   map[Role]float64 `json:"inertia,omitempty" yaml:"inertia,omitempty"`
	Gains     *Configuration   `json:"gains,omitempty" yaml:"gains,omitempty"`
}

// BusConfig describes the motor controller bus.
type BusConfig struct {
	Name      string `json:"name" yaml:"name"`
	Port      string `json:"port,omitempty" yaml:"port,omitempty"`
	BaudRate  int    `json:"baud_rate,omitempty" yaml:"baud_rate,omitempty"`
	TimeoutMs int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`

	// MaxSpeed caps live velocity commands in rotations per second. Zero
	// uses the servo's rated top speed.
	MaxSpeed float64 `json:"max_speed,omitempty" yaml:"max_speed,omitempty"`
}

// ActuatorConfig wires one role to a device
type ActuatorConfig struct {
	Role     Role `json:"role" yaml:"role"`
	ID       int  `json:"id" yaml:"id"`
	Inverted bool `json:"inverted,omitempty" yaml:"inverted,omitempty"`
}

// SetpointConfig holds the initial shooter velocities
type SetpointConfig struct {
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// DefaultConfig returns the wiring of the competition robot.
func DefaultConfig() *Config {
	return &Config{
		Bus: BusConfig{
			Name:      "canivore",
			BaudRate:  1_000_000,
			TimeoutMs: 100,
		},
		Hz: 50,
		Actuators: []ActuatorConfig{
			{Role: ShooterTop, ID: 6, Inverted: true},
			{Role: ShooterBottom, ID: 5},
			{Role: IndexerLeft, ID: 7},
			{Role: IndexerRight, ID: 8},
			{Role: IntakeTop, ID: 9},
			{Role: IntakeBottom, ID: 10},
		},
		Setpoints: SetpointConfig{
			Top:    DefaultSetpoint,
			Bottom: DefaultSetpoint,
		},
	}
}

// GainConfiguration returns the configured gains, or the defaults.
func (c *Config) GainConfiguration() Configuration {
	if c.Gains != nil {
		return *c.Gains
	}
	return DefaultConfiguration()
}

// InertiaFor returns the simulated inertia for role.
func (c *Config) InertiaFor(role Role) float64 {
	if j, ok := c.Inertia[role]; ok && j > 0 {
		return j
	}
	return DefaultInertia
}

// Validate checks the actuator table and loop rate.
func (c *Config) Validate() error {
	if c.Hz <= 0 {
		return fmt.Errorf("hz must be positive, got %d", c.Hz)
	}
	if c.Bus.MaxSpeed < 0 {
		return fmt.Errorf("bus max_speed must not be negative, got %v", c.Bus.MaxSpeed)
	}
	roles := make(map[Role]bool, len(c.Actuators))
	ids := make(map[int]Role, len(c.Actuators))
	for _, a := range c.Actuators {
		if !a.Role.Valid() {
			return fmt.Errorf("unknown role %q", a.Role)
		}
		if roles[a.Role] {
			return fmt.Errorf("duplicate role %s", a.Role)
		}
		if other, ok := ids[a.ID]; ok {
			return fmt.Errorf("device id %d used by %s and %s", a.ID, other, a.Role)
		}
		roles[a.Role] = true
		ids[a.ID] = a.Role
	}
	for _, role := range AllRoles() {
		if !roles[role] {
			return fmt.Errorf("missing actuator for %s", role)
		}
	}
	if c.Gains != nil {
		if err := c.Gains.Validate(); err != nil {
			return fmt.Errorf("gains: %w", err)
		}
	}
	return nil
}

// LoadConfigFrom loads configuration from a specific file. Files ending in
// .yaml or .yml are parsed as YAML, anything else as JSON. Missing fields
// keep their defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	// Decode the actuator table into an empty slice so entries from the
	// file never inherit fields from the default wiring.
	wiring := cfg.Actuators
	cfg.Actuators = nil
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Actuators) == 0 {
		cfg.Actuators = wiring
	}
	return cfg, nil
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
