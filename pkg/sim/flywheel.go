package sim

import "math"

// DCMotor is a brushed-equivalent motor model derived from its datasheet
// stall and free-speed figures.
type DCMotor struct {
	NominalVoltage float64 // V
	StallTorque    float64 // N·m
	StallCurrent   float64 // A
	FreeSpeed      float64 // rad/s
}

// Falcon500 returns the model of the Falcon 500 motor.
func Falcon500() DCMotor {
	return DCMotor{
		NominalVoltage: 12,
		StallTorque:    4.69,
		StallCurrent:   257,
		FreeSpeed:      6380.0 / 60 * 2 * math.Pi,
	}
}

// Resistance returns the winding resistance in ohms.
func (m DCMotor) Resistance() float64 { return m.NominalVoltage / m.StallCurrent }

// Kt returns the torque constant in N·m/A.
func (m DCMotor) Kt() float64 { return m.StallTorque / m.StallCurrent }

// Kv returns the velocity constant in rad/s per volt.
func (m DCMotor) Kv() float64 { return m.FreeSpeed / m.NominalVoltage }

// Current returns the winding current for a terminal voltage at speed omega
// (rad/s).
func (m DCMotor) Current(voltage, omega float64) float64 {
	return (voltage - omega/m.Kv()) / m.Resistance()
}

// Drive selects how the flywheel control input is interpreted.
type Drive float64

const (
	DriveCoast   Drive = 0 // no current
	DriveVoltage Drive = 1 // input is terminal voltage
	DriveCurrent Drive = 2 // input is winding current
)

// Flywheel is a motor spinning a rotating mass.
//
// State: [position (rot), velocity (rot/s)]. Control: [drive, value].
type Flywheel struct {
	Motor   DCMotor
	Inertia float64 // kg·m²
	Damping float64 // viscous friction, N·m·s/rad
}

// NewFlywheel returns a Falcon 500 driving inertia.
func NewFlywheel(inertia float64) *Flywheel {
	return &Flywheel{
		Motor:   Falcon500(),
		Inertia: inertia,
		Damping: 1e-4,
	}
}

// Derivative returns [velocity, acceleration] for state x. u is
// [drive, value]; a missing or coast drive produces no motor torque.
func (f *Flywheel) Derivative(x State, u Control, t float64) State {
	vel := x[1]
	omega := vel * 2 * math.Pi

	current := 0.0
	if len(u) >= 2 {
		switch Drive(u[0]) {
		case DriveVoltage:
			v := math.Max(-f.Motor.NominalVoltage, math.Min(f.Motor.NominalVoltage, u[1]))
			current = f.Motor.Current(v, omega)
		case DriveCurrent:
			current = u[1]
		}
	}

	torque := f.Motor.Kt()*current - f.Damping*omega
	alpha := torque / f.Inertia

	return State{vel, alpha / (2 * math.Pi)}
}
