package telemetry

import (
	"context"
	"math"

	"github.com/gwillem/shooterbot/pkg/robot"
)

// Keys published by the robot.
const (
	ShooterTopVel    = "shooterTopVel"
	ShooterBottomVel = "shooterBottomVel"

	MechanismAngle    = "Mechanism/angle"
	MechanismVelocity = "Mechanism/velocity"

	// Operator-set shooter velocities, read every cycle.
	ShooterTopSetpoint    = "Shooter/ShooterTop"
	ShooterBottomSetpoint = "Shooter/ShooterBottom"
)

// Publisher reads measured shooter velocities and publishes them.
type Publisher struct {
	sink     Sink
	registry *robot.Registry
}

// NewPublisher returns a publisher writing to sink.
func NewPublisher(sink Sink, reg *robot.Registry) *Publisher {
	return &Publisher{sink: sink, registry: reg}
}

// Publish sends the current shooter velocities.
func (p *Publisher) Publish(ctx context.Context) {
	if a, ok := p.registry.Get(robot.ShooterTop); ok {
		p.sink.Publish(ShooterTopVel, a.Velocity(ctx))
	}
	if a, ok := p.registry.Get(robot.ShooterBottom); ok {
		p.sink.Publish(ShooterBottomVel, a.Velocity(ctx))
	}
}

// Mechanism is a dashboard view of one rotating mechanism.
type Mechanism struct {
	sink Sink
}

// NewMechanism returns a mechanism view publishing to sink.
func NewMechanism(sink Sink) *Mechanism {
	return &Mechanism{sink: sink}
}

// Update publishes the wheel angle in degrees [0, 360) for position in
// rotations, and the velocity in rotations per second.
func (m *Mechanism) Update(position, velocity float64) {
	angle := math.Mod(position, 1) * 360
	if angle < 0 {
		angle += 360
	}
	m.sink.Publish(MechanismAngle, angle)
	m.sink.Publish(MechanismVelocity, velocity)
}
