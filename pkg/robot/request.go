package robot

import "context"

// Mode is the control law requested for one actuator in one cycle.
type Mode int

const (
	Brake Mode = iota
	VoltageVelocity
	TorqueVelocity
	IntakeForward
	IntakeReverse
	IntakeBrake
)

func (m Mode) String() string {
	switch m {
	case Brake:
		return "brake"
	case VoltageVelocity:
		return "voltage_velocity"
	case TorqueVelocity:
		return "torque_velocity"
	case IntakeForward:
		return "intake_forward"
	case IntakeReverse:
		return "intake_reverse"
	case IntakeBrake:
		return "intake_brake"
	default:
		return "unknown"
	}
}

// Neutral reports whether the mode commands zero output.
func (m Mode) Neutral() bool {
	return m == Brake || m == IntakeBrake
}

// Request is a single-cycle command for one actuator.
type Request struct {
	Mode     Mode
	Velocity float64 // rotations per second

	// FeedForward is added to the torque loop output, in amps.
	FeedForward float64
}

// Command is what a motor controller executes: either neutral output or a
// closed-loop velocity on a gain slot.
type Command struct {
	Neutral     bool
	Slot        int
	Velocity    float64
	FeedForward float64
}

// NeutralOut is the command that disables motor output.
var NeutralOut = Command{Neutral: true}

// VelocityCommand returns a closed-loop velocity command on slot.
func VelocityCommand(slot int, velocity, feedForward float64) Command {
	return Command{Slot: slot, Velocity: velocity, FeedForward: feedForward}
}

// Motor is the command surface of a single motor controller. Live hardware
// and the physics simulation both implement it.
type Motor interface {
	ApplyConfig(ctx context.Context, cfg Configuration) StatusCode
	SetControl(ctx context.Context, cmd Command) StatusCode
	Velocity(ctx context.Context) float64
	Position(ctx context.Context) float64
}
