package robot

import (
	"context"
	"errors"
	"testing"
)

func TestActuator_Inversion(t *testing.T) {
	tests := []struct {
		name     string
		inverted bool
		cmd      Command
		want     Command
	}{
		{"plain velocity", false, VelocityCommand(0, -9.5, 0), VelocityCommand(0, -9.5, 0)},
		{"inverted velocity", true, VelocityCommand(0, -9.5, 0), VelocityCommand(0, 9.5, 0)},
		{"inverted torque", true, VelocityCommand(1, 45, 1), VelocityCommand(1, -45, -1)},
		{"inverted neutral", true, NeutralOut, NeutralOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &stubMotor{velocity: 3, position: 1.5}
			a := NewActuator(6, ShooterTop, tt.inverted, m)

			a.SetControl(context.Background(), tt.cmd)
			if len(m.commands) != 1 || m.commands[0] != tt.want {
				t.Errorf("motor got %+v, want %+v", m.commands, tt.want)
			}

			sign := 1.0
			if tt.inverted {
				sign = -1
			}
			if got := a.Velocity(context.Background()); got != 3*sign {
				t.Errorf("Velocity() = %v, want %v", got, 3*sign)
			}
			if got := a.Position(context.Background()); got != 1.5*sign {
				t.Errorf("Position() = %v, want %v", got, 1.5*sign)
			}
		})
	}
}

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name      string
		actuators []*Actuator
		wantErr   bool
	}{
		{
			name: "unique",
			actuators: []*Actuator{
				NewActuator(6, ShooterTop, true, &stubMotor{}),
				NewActuator(5, ShooterBottom, false, &stubMotor{}),
			},
		},
		{
			name: "duplicate role",
			actuators: []*Actuator{
				NewActuator(6, ShooterTop, true, &stubMotor{}),
				NewActuator(5, ShooterTop, false, &stubMotor{}),
			},
			wantErr: true,
		},
		{
			name: "duplicate id",
			actuators: []*Actuator{
				NewActuator(6, ShooterTop, true, &stubMotor{}),
				NewActuator(6, ShooterBottom, false, &stubMotor{}),
			},
			wantErr: true,
		},
		{
			name:      "unknown role",
			actuators: []*Actuator{NewActuator(1, Role("turret"), false, &stubMotor{})},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.actuators...)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRegistry() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func newTestRegistry(t *testing.T) (*Registry, map[Role]*stubMotor) {
	t.Helper()
	motors := make(map[Role]*stubMotor)
	var actuators []*Actuator
	for _, ac := range DefaultConfig().Actuators {
		m := &stubMotor{}
		motors[ac.Role] = m
		actuators = append(actuators, NewActuator(ac.ID, ac.Role, ac.Inverted, m))
	}
	reg, err := NewRegistry(actuators...)
	if err != nil {
		t.Fatal(err)
	}
	return reg, motors
}

func TestRegistry_AllInDispatchOrder(t *testing.T) {
	reg, _ := newTestRegistry(t)

	all := reg.All()
	roles := AllRoles()
	if len(all) != len(roles) {
		t.Fatalf("All() returned %d actuators, want %d", len(all), len(roles))
	}
	for i, a := range all {
		if a.Role() != roles[i] {
			t.Errorf("All()[%d] = %s, want %s", i, a.Role(), roles[i])
		}
	}

	top, ok := reg.Get(ShooterTop)
	if !ok || top.ID() != 6 || !top.Inverted() {
		t.Errorf("Get(ShooterTop) = %+v, %v", top, ok)
	}
}

func TestRegistry_ConfigureContinuesAfterFailure(t *testing.T) {
	reg, motors := newTestRegistry(t)
	motors[ShooterTop].statuses = []StatusCode{StatusTxTimeout}
	motors[IntakeTop].statuses = []StatusCode{StatusInvalidParamValue}

	err := reg.Configure(context.Background(), DefaultConfiguration())
	if err == nil {
		t.Fatal("expected error")
	}

	var failed []Role
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var failure *ConfigFailure
		if !errors.As(e, &failure) {
			t.Fatalf("unexpected error %v", e)
		}
		failed = append(failed, failure.Role)
	}
	if len(failed) != 2 || failed[0] != ShooterTop || failed[1] != IntakeTop {
		t.Errorf("failed roles = %v, want [shooter_top intake_top]", failed)
	}

	for role, m := range motors {
		want := 1
		if role == ShooterTop || role == IntakeTop {
			want = ConfigAttempts
		}
		if m.applies != want {
			t.Errorf("%s: applies = %d, want %d", role, m.applies, want)
		}
	}
}

func TestRegistry_Brake(t *testing.T) {
	reg, motors := newTestRegistry(t)

	reg.Brake(context.Background())

	for role, m := range motors {
		if len(m.commands) != 1 || m.commands[0] != NeutralOut {
			t.Errorf("%s: commands = %+v, want one neutral", role, m.commands)
		}
	}
}

func TestRole_Groups(t *testing.T) {
	seen := make(map[Role]bool)
	for _, r := range append(ShooterRoles(), IntakeRoles()...) {
		if seen[r] {
			t.Errorf("role %s in both groups", r)
		}
		seen[r] = true
		if !r.Valid() {
			t.Errorf("role %s not valid", r)
		}
	}
	if len(seen) != len(AllRoles()) {
		t.Errorf("groups cover %d roles, want %d", len(seen), len(AllRoles()))
	}
	if Role("").Valid() {
		t.Error("empty role should be invalid")
	}
}
