package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gwillem/shooterbot/pkg/control"
	"github.com/gwillem/shooterbot/pkg/hw"
	"github.com/gwillem/shooterbot/pkg/robot"
	"github.com/gwillem/shooterbot/pkg/telemetry"
	"github.com/gwillem/shooterbot/pkg/teleop"
)

// loadConfig reads the configuration file, falling back to the built-in
// robot wiring when the file does not exist.
func loadConfig() (*robot.Config, bool, error) {
	cfg, err := robot.LoadConfigFrom(opts.Config)
	if errors.Is(err, fs.ErrNotExist) {
		return robot.DefaultConfig(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// buildController picks the hardware for the run mode and builds the
// robot on it.
func buildController(cfg *robot.Config, in control.Input, table *telemetry.Table) (*teleop.Controller, error) {
	var hardware teleop.Hardware
	if cfg.Simulate {
		hardware = teleop.NewSimHardware()
	} else {
		bus, err := hw.Open(cfg.Bus, cfg.Hz)
		if err != nil {
			return nil, err
		}
		hardware = teleop.NewLiveHardware(bus)
	}

	r, err := teleop.NewRobot(cfg, hardware, in, table)
	if err != nil {
		hardware.Close()
		return nil, fmt.Errorf("build robot: %w", err)
	}
	return teleop.NewController(r, cfg.Hz), nil
}
