// Package control turns operator input into per-actuator requests and
// issues them to the robot's actuators.
package control

import (
	"errors"
	"math"
)

// Deadband is the stick range around zero that reads as exactly zero.
const Deadband = 0.1

// ErrNoDevice is returned by an Input with no operator device attached.
var ErrNoDevice = errors.New("no operator device connected")

// Snapshot is the operator input sampled once per cycle.
type Snapshot struct {
	LeftY       float64 // left stick vertical axis, deadband applied
	LeftBumper  bool
	RightBumper bool
	A           bool
	B           bool
}

// Input is an operator input device.
type Input interface {
	Snapshot() (Snapshot, error)
}

// ApplyDeadband returns 0 for |v| <= Deadband and v otherwise.
func ApplyDeadband(v float64) float64 {
	if math.IsNaN(v) || math.Abs(v) <= Deadband {
		return 0
	}
	return v
}

// Read samples in and filters the stick axis. A missing device or a failed
// read yields the zero snapshot, which selects brake for every group.
func Read(in Input) Snapshot {
	if in == nil {
		return Snapshot{}
	}
	s, err := in.Snapshot()
	if err != nil {
		return Snapshot{}
	}
	s.LeftY = ApplyDeadband(s.LeftY)
	return s
}
