package teleop

import (
	"github.com/gwillem/shooterbot/pkg/hw"
	"github.com/gwillem/shooterbot/pkg/robot"
	"github.com/gwillem/shooterbot/pkg/sim"
)

// Hardware supplies the motor controllers for one run mode. It is chosen
// once at startup.
type Hardware interface {
	Motor(id int) robot.Motor
	// Physics returns the simulation to step each cycle, or nil when the
	// motors are real.
	Physics() *sim.PhysicsSim
	Close() error
}

// LiveHardware drives motors on a servo bus.
type LiveHardware struct {
	bus *hw.Bus
}

// NewLiveHardware returns hardware backed by bus.
func NewLiveHardware(bus *hw.Bus) *LiveHardware {
	return &LiveHardware{bus: bus}
}

func (h *LiveHardware) Motor(id int) robot.Motor { return h.bus.Motor(id) }
func (h *LiveHardware) Physics() *sim.PhysicsSim { return nil }
func (h *LiveHardware) Close() error             { return h.bus.Close() }

// SimHardware creates simulated motor controllers.
type SimHardware struct {
	physics *sim.PhysicsSim
	motors  map[int]*sim.Motor
}

// NewSimHardware returns hardware with an empty physics simulation.
func NewSimHardware() *SimHardware {
	return &SimHardware{
		physics: sim.NewPhysicsSim(),
		motors:  make(map[int]*sim.Motor),
	}
}

func (h *SimHardware) Motor(id int) robot.Motor {
	return h.SimMotor(id)
}

// SimMotor returns the simulated controller for id, creating it on first
// use.
func (h *SimHardware) SimMotor(id int) *sim.Motor {
	m, ok := h.motors[id]
	if !ok {
		m = sim.NewMotor(id)
		h.motors[id] = m
	}
	return m
}

func (h *SimHardware) Physics() *sim.PhysicsSim { return h.physics }
func (h *SimHardware) Close() error             { return nil }
