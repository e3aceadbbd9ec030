package robot

import (
	"context"
	"errors"
	"fmt"
)

// Actuator is one motor-driven mechanism on the robot.
type Actuator struct {
	id       int
	role     Role
	inverted bool
	motor    Motor

	applied    Configuration
	configured bool
}

// NewActuator wraps motor as the actuator for role.
func NewActuator(id int, role Role, inverted bool, motor Motor) *Actuator {
	return &Actuator{
		id:       id,
		role:     role,
		inverted: inverted,
		motor:    motor,
	}
}

// ID returns the motor controller device ID.
func (a *Actuator) ID() int { return a.id }

// Role returns the mechanism this actuator drives.
func (a *Actuator) Role() Role { return a.role }

// Inverted reports whether output and sensor signs are flipped.
func (a *Actuator) Inverted() bool { return a.inverted }

// Motor returns the underlying motor controller.
func (a *Actuator) Motor() Motor { return a.motor }

// Applied returns the configuration last pushed successfully.
func (a *Actuator) Applied() (Configuration, bool) {
	return a.applied, a.configured
}

func (a *Actuator) sign() float64 {
	if a.inverted {
		return -1
	}
	return 1
}

// SetControl issues cmd, expressed in the mechanism frame.
func (a *Actuator) SetControl(ctx context.Context, cmd Command) StatusCode {
	if !cmd.Neutral {
		cmd.Velocity *= a.sign()
		cmd.FeedForward *= a.sign()
	}
	return a.motor.SetControl(ctx, cmd)
}

// Velocity returns the measured velocity in rotations per second.
func (a *Actuator) Velocity(ctx context.Context) float64 {
	return a.sign() * a.motor.Velocity(ctx)
}

// Position returns the measured position in rotations.
func (a *Actuator) Position(ctx context.Context) float64 {
	return a.sign() * a.motor.Position(ctx)
}

// Registry holds the robot's actuators keyed by role.
type Registry struct {
	byRole map[Role]*Actuator
}

// NewRegistry builds a registry. Roles and device IDs must be unique.
func NewRegistry(actuators ...*Actuator) (*Registry, error) {
	r := &Registry{byRole: make(map[Role]*Actuator, len(actuators))}
	ids := make(map[int]Role, len(actuators))
	for _, a := range actuators {
		if !a.role.Valid() {
			return nil, fmt.Errorf("unknown role %q", a.role)
		}
		if _, dup := r.byRole[a.role]; dup {
			return nil, fmt.Errorf("duplicate role %s", a.role)
		}
		if other, dup := ids[a.id]; dup {
			return nil, fmt.Errorf("device id %d used by %s and %s", a.id, other, a.role)
		}
		r.byRole[a.role] = a
		ids[a.id] = a.role
	}
	return r, nil
}

// Get returns the actuator for role.
func (r *Registry) Get(role Role) (*Actuator, bool) {
	a, ok := r.byRole[role]
	return a, ok
}

// All returns the registered actuators in dispatch order.
func (r *Registry) All() []*Actuator {
	out := make([]*Actuator, 0, len(r.byRole))
	for _, role := range AllRoles() {
		if a, ok := r.byRole[role]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Configure applies cfg to every actuator. Each actuator is attempted
// regardless of earlier failures; the failures are returned joined.
func (r *Registry) Configure(ctx context.Context, cfg Configuration) error {
	var errs []error
	for _, a := range r.All() {
		if err := ApplyConfig(ctx, a, cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Brake commands neutral output on every actuator.
func (r *Registry) Brake(ctx context.Context) {
	for _, a := range r.All() {
		a.SetControl(ctx, NeutralOut)
	}
}
