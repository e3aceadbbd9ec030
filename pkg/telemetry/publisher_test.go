package telemetry

import (
	"context"
	"math"
	"testing"

	"github.com/gwillem/shooterbot/pkg/robot"
)

// fixedMotor reports a constant velocity and position.
type fixedMotor struct {
	velocity float64
	position float64
}

func (m fixedMotor) ApplyConfig(ctx context.Context, cfg robot.Configuration) robot.StatusCode {
	return robot.StatusOK
}

func (m fixedMotor) SetControl(ctx context.Context, cmd robot.Command) robot.StatusCode {
	return robot.StatusOK
}

func (m fixedMotor) Velocity(ctx context.Context) float64 { return m.velocity }
func (m fixedMotor) Position(ctx context.Context) float64 { return m.position }

// recordingSink keeps every published value in order.
type recordingSink struct {
	updates []Update
}

func (s *recordingSink) Publish(key string, value float64) {
	s.updates = append(s.updates, Update{Key: key, Value: value})
}

func TestPublisher_Publish(t *testing.T) {
	reg, err := robot.NewRegistry(
		robot.NewActuator(6, robot.ShooterTop, true, fixedMotor{velocity: 9.5}),
		robot.NewActuator(5, robot.ShooterBottom, false, fixedMotor{velocity: -9}),
		robot.NewActuator(9, robot.IntakeTop, false, fixedMotor{velocity: 45}),
	)
	if err != nil {
		t.Fatal(err)
	}
	sink := &recordingSink{}

	NewPublisher(sink, reg).Publish(context.Background())

	// The top wheel is inverted, so it reads in the mechanism frame.
	want := []Update{
		{ShooterTopVel, -9.5},
		{ShooterBottomVel, -9},
	}
	if len(sink.updates) != len(want) {
		t.Fatalf("published %+v, want %+v", sink.updates, want)
	}
	for i, w := range want {
		if sink.updates[i] != w {
			t.Errorf("update %d = %+v, want %+v", i, sink.updates[i], w)
		}
	}
}

func TestPublisher_MissingShooter(t *testing.T) {
	reg, err := robot.NewRegistry(robot.NewActuator(5, robot.ShooterBottom, false, fixedMotor{velocity: 1}))
	if err != nil {
		t.Fatal(err)
	}
	tbl := NewTable()

	NewPublisher(tbl, reg).Publish(context.Background())

	if _, ok := tbl.Lookup(ShooterTopVel); ok {
		t.Error("published velocity for missing actuator")
	}
	if got := tbl.Number(ShooterBottomVel, 0); got != 1 {
		t.Errorf("%s = %v, want 1", ShooterBottomVel, got)
	}
}

func TestMechanism_Update(t *testing.T) {
	tests := []struct {
		position float64
		angle    float64
	}{
		{0, 0},
		{0.25, 90},
		{1.5, 180},
		{-0.25, 270},
		{-1, 0},
		{10.75, 270},
	}

	for _, tt := range tests {
		tbl := NewTable()
		NewMechanism(tbl).Update(tt.position, -9.5)

		angle := tbl.Number(MechanismAngle, math.NaN())
		if math.Abs(angle-tt.angle) > 1e-9 {
			t.Errorf("position %v: angle = %v, want %v", tt.position, angle, tt.angle)
		}
		if angle < 0 || angle >= 360 {
			t.Errorf("position %v: angle %v out of range", tt.position, angle)
		}
		if got := tbl.Number(MechanismVelocity, 0); got != -9.5 {
			t.Errorf("velocity = %v, want -9.5", got)
		}
	}
}
