package control

import (
	"context"

	"github.com/gwillem/shooterbot/pkg/robot"
)

// Gain slots used by each closed loop.
const (
	VoltageSlot = 0
	TorqueSlot  = 1
)

// Command converts a request into the motor controller command.
func Command(req robot.Request) robot.Command {
	switch req.Mode {
	case robot.VoltageVelocity, robot.IntakeForward, robot.IntakeReverse:
		return robot.VelocityCommand(VoltageSlot, req.Velocity, 0)
	case robot.TorqueVelocity:
		return robot.VelocityCommand(TorqueSlot, req.Velocity, req.FeedForward)
	default:
		return robot.NeutralOut
	}
}

// Dispatcher issues requests to the actuators in a registry.
type Dispatcher struct {
	registry *robot.Registry
}

// NewDispatcher returns a dispatcher for reg.
func NewDispatcher(reg *robot.Registry) *Dispatcher {
	return &Dispatcher{registry: reg}
}

// Dispatch sends one command to every actuator. Actuators without a
// request are braked. Rejected commands are not retried; the next cycle
// sends a fresh one. The number of rejected commands is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, reqs Requests) int {
	rejected := 0
	for _, a := range d.registry.All() {
		req, ok := reqs[a.Role()]
		if !ok {
			req = robot.Request{Mode: robot.Brake}
		}
		if status := a.SetControl(ctx, Command(req)); !status.IsOK() {
			rejected++
		}
	}
	return rejected
}
