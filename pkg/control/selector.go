package control

import "github.com/gwillem/shooterbot/pkg/robot"

// Intake and indexer velocities in rotations per second.
const (
	intakeInIndexer     = 5.0
	intakeInRoller      = 45.0
	feedOutIndexer      = 3.0
	feedOutRoller       = 45.0
	feedShooterVelocity = -3.0
)

// Friction compensation added to the torque loop, in amps.
const frictionTorque = 1.0

// Setpoints are the operator-tunable shooter velocities.
type Setpoints struct {
	Top    float64
	Bottom float64
}

// Requests maps each actuator role to its request for one cycle.
type Requests map[robot.Role]robot.Request

// Select computes this cycle's requests from scratch. Nothing is carried
// over from earlier cycles.
func Select(in Snapshot, sp Setpoints) Requests {
	reqs := make(Requests, len(robot.AllRoles()))
	for role, req := range selectShooter(in, sp) {
		reqs[role] = req
	}
	for role, req := range selectIntake(in) {
		reqs[role] = req
	}

	// Feeding out of the intake needs the shooter spinning backwards, so B
	// overrides whatever the bumpers chose. A has no such coupling.
	if feeding(in) {
		for _, role := range robot.ShooterRoles() {
			reqs[role] = robot.Request{Mode: robot.VoltageVelocity, Velocity: feedShooterVelocity}
		}
	}
	return reqs
}

func selectShooter(in Snapshot, sp Setpoints) Requests {
	switch {
	case in.LeftBumper:
		return Requests{
			robot.ShooterTop:    {Mode: robot.VoltageVelocity, Velocity: sp.Top},
			robot.ShooterBottom: {Mode: robot.VoltageVelocity, Velocity: sp.Bottom},
		}
	case in.RightBumper:
		ff := -frictionTorque
		if in.LeftY > 0 {
			ff = frictionTorque
		}
		return Requests{
			robot.ShooterTop:    {Mode: robot.TorqueVelocity, Velocity: sp.Top, FeedForward: ff},
			robot.ShooterBottom: {Mode: robot.TorqueVelocity, Velocity: sp.Bottom, FeedForward: ff},
		}
	default:
		return Requests{
			robot.ShooterTop:    {Mode: robot.Brake},
			robot.ShooterBottom: {Mode: robot.Brake},
		}
	}
}

func selectIntake(in Snapshot) Requests {
	switch {
	case in.A:
		return Requests{
			robot.IndexerLeft:  {Mode: robot.IntakeForward, Velocity: -intakeInIndexer},
			robot.IndexerRight: {Mode: robot.IntakeForward, Velocity: intakeInIndexer},
			robot.IntakeTop:    {Mode: robot.IntakeForward, Velocity: -intakeInRoller},
			robot.IntakeBottom: {Mode: robot.IntakeForward, Velocity: -intakeInRoller},
		}
	case in.B:
		return Requests{
			robot.IntakeTop:    {Mode: robot.IntakeReverse, Velocity: feedOutRoller},
			robot.IntakeBottom: {Mode: robot.IntakeReverse, Velocity: feedOutRoller},
			robot.IndexerLeft:  {Mode: robot.IntakeReverse, Velocity: feedOutIndexer},
			robot.IndexerRight: {Mode: robot.IntakeReverse, Velocity: -feedOutIndexer},
		}
	default:
		reqs := make(Requests, 4)
		for _, role := range robot.IntakeRoles() {
			reqs[role] = robot.Request{Mode: robot.IntakeBrake}
		}
		return reqs
	}
}

// feeding reports whether the intake group runs the feed-out pattern.
func feeding(in Snapshot) bool {
	return !in.A && in.B
}
