package teleop

import (
	"context"
	"errors"
	"fmt"

	"github.com/gwillem/shooterbot/pkg/control"
	"github.com/gwillem/shooterbot/pkg/robot"
	"github.com/gwillem/shooterbot/pkg/sim"
	"github.com/gwillem/shooterbot/pkg/telemetry"
)

// Phase is the match phase the robot is running in.
type Phase int

const (
	Disabled Phase = iota
	Autonomous
	Teleop
	Test
)

func (p Phase) String() string {
	switch p {
	case Disabled:
		return "disabled"
	case Autonomous:
		return "autonomous"
	case Teleop:
		return "teleop"
	case Test:
		return "test"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Robot wires the actuators, operator input and telemetry together and
// implements the per-phase lifecycle hooks. All hooks run on the control
// loop goroutine.
type Robot struct {
	config     *robot.Config
	hardware   Hardware
	registry   *robot.Registry
	input      control.Input
	table      *telemetry.Table
	dispatcher *control.Dispatcher
	publisher  *telemetry.Publisher
	mechanism  *telemetry.Mechanism
	period     float64

	logf func(format string, args ...any)

	requests control.Requests
	rejected int
}

// NewRobot builds the robot described by cfg on hardware.
func NewRobot(cfg *robot.Config, hardware Hardware, in control.Input, table *telemetry.Table) (*Robot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	actuators := make([]*robot.Actuator, 0, len(cfg.Actuators))
	for _, ac := range cfg.Actuators {
		actuators = append(actuators, robot.NewActuator(ac.ID, ac.Role, ac.Inverted, hardware.Motor(ac.ID)))
	}
	reg, err := robot.NewRegistry(actuators...)
	if err != nil {
		return nil, err
	}

	return &Robot{
		config:     cfg,
		hardware:   hardware,
		registry:   reg,
		input:      in,
		table:      table,
		dispatcher: control.NewDispatcher(reg),
		publisher:  telemetry.NewPublisher(table, reg),
		mechanism:  telemetry.NewMechanism(table),
		period:     1 / float64(cfg.Hz),
		logf:       func(string, ...any) {},
	}, nil
}

// Registry returns the robot's actuators.
func (r *Robot) Registry() *robot.Registry { return r.registry }

// Simulated reports whether the robot runs against the physics simulation.
func (r *Robot) Simulated() bool { return r.hardware.Physics() != nil }

// Requests returns the requests dispatched in the last teleop cycle.
func (r *Robot) Requests() control.Requests { return r.requests }

// Rejected returns how many commands were rejected in the last cycle.
func (r *Robot) Rejected() int { return r.rejected }

// Setpoints returns the shooter velocities currently set by the operator.
func (r *Robot) Setpoints() control.Setpoints {
	return control.Setpoints{
		Top:    r.table.Number(telemetry.ShooterTopSetpoint, robot.DefaultSetpoint),
		Bottom: r.table.Number(telemetry.ShooterBottomSetpoint, robot.DefaultSetpoint),
	}
}

// RobotInit publishes the setpoint entries and configures every actuator.
// Configuration failures are logged and the robot carries on.
func (r *Robot) RobotInit(ctx context.Context) {
	r.table.SetDefault(telemetry.ShooterTopSetpoint, r.config.Setpoints.Top)
	r.table.SetDefault(telemetry.ShooterBottomSetpoint, r.config.Setpoints.Bottom)

	err := r.registry.Configure(ctx, r.config.GainConfiguration())
	for _, e := range unjoin(err) {
		var failure *robot.ConfigFailure
		if errors.As(e, &failure) {
			r.logf("Could not apply configs to %s, error code: %s", failure.Role, failure.Status)
		} else {
			r.logf("Could not apply configs: %v", e)
		}
	}
}

// SimulationInit registers every simulated motor with the physics
// simulation.
func (r *Robot) SimulationInit() {
	physics := r.hardware.Physics()
	if physics == nil {
		return
	}
	for _, a := range r.registry.All() {
		m, ok := a.Motor().(*sim.Motor)
		if !ok {
			continue
		}
		if err := physics.Add(m, r.config.InertiaFor(a.Role())); err != nil {
			r.logf("Simulation: %v", err)
		}
	}
}

// RobotPeriodic runs every cycle regardless of phase.
func (r *Robot) RobotPeriodic(ctx context.Context) {
	if top, ok := r.registry.Get(robot.ShooterTop); ok {
		r.mechanism.Update(top.Position(ctx), top.Velocity(ctx))
	}
}

// TeleopPeriodic reads the operator, selects a mode per group and
// commands every actuator.
func (r *Robot) TeleopPeriodic(ctx context.Context) {
	in := control.Read(r.input)
	r.requests = control.Select(in, r.Setpoints())
	r.rejected = r.dispatcher.Dispatch(ctx, r.requests)
}

// DisabledPeriodic keeps every actuator in neutral.
func (r *Robot) DisabledPeriodic(ctx context.Context) {
	r.requests = nil
	r.registry.Brake(ctx)
}

// AutonomousPeriodic has no routine; the actuators stay in the neutral
// output Enter left them in.
func (r *Robot) AutonomousPeriodic(ctx context.Context) {}

// TestPeriodic is empty like AutonomousPeriodic.
func (r *Robot) TestPeriodic(ctx context.Context) {}

// SimulationPeriodic advances the physics by one cycle.
func (r *Robot) SimulationPeriodic() {
	if physics := r.hardware.Physics(); physics != nil {
		physics.Run(r.period)
	}
}

// Enter runs when the phase changes. Leaving teleop for any other phase
// puts the actuators in neutral.
func (r *Robot) Enter(ctx context.Context, p Phase) {
	if p != Teleop {
		r.requests = nil
		r.registry.Brake(ctx)
	}
}

// Cycle runs one loop iteration for phase p: the phase hook, the physics
// step, telemetry and the robot-wide hook, in that order. The simulation
// steps after dispatch so measured state reflects this cycle's commands.
func (r *Robot) Cycle(ctx context.Context, p Phase) {
	switch p {
	case Teleop:
		r.TeleopPeriodic(ctx)
	case Autonomous:
		r.AutonomousPeriodic(ctx)
	case Test:
		r.TestPeriodic(ctx)
	default:
		r.DisabledPeriodic(ctx)
	}

	r.SimulationPeriodic()

	if p == Teleop {
		r.publisher.Publish(ctx)
	}
	r.RobotPeriodic(ctx)
}

// Close releases the hardware.
func (r *Robot) Close() error {
	return r.hardware.Close()
}

func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
