// Package sim simulates motor controllers driving flywheels so the robot
// can run without hardware.
package sim

// State is a plant's state vector. A Flywheel uses [position, velocity] in
// rotations and rotations per second.
type State []float64

// Control is a plant's input vector. A Flywheel uses [drive, value].
type Control []float64

// Dynamics is a plant that returns dx/dt at state x under input u.
type Dynamics interface {
	Derivative(x State, u Control, t float64) State
}

// rk4Stages holds the time offset and weight of each Runge-Kutta stage.
var rk4Stages = [4]struct{ c, w float64 }{{0, 1}, {0.5, 2}, {0.5, 2}, {1, 1}}

// RK4 integrates Dynamics with the classic fourth-order Runge-Kutta method.
// Stage buffers are reused between steps, so an RK4 belongs to one motor.
type RK4 struct {
	k   [4]State
	tmp State
}

// NewRK4 returns an integrator. Buffers are sized on the first Step.
func NewRK4() *RK4 {
	return &RK4{}
}

// Step advances x by dt with u held constant and returns the new state.
// x is left untouched.
func (r *RK4) Step(dyn Dynamics, x State, u Control, t, dt float64) State {
	n := len(x)
	if len(r.tmp) != n {
		for i := range r.k {
			r.k[i] = make(State, n)
		}
		r.tmp = make(State, n)
	}

	next := make(State, n)
	copy(next, x)
	for i, s := range rk4Stages {
		in := x
		if i > 0 {
			for j := range x {
				r.tmp[j] = x[j] + s.c*dt*r.k[i-1][j]
			}
			in = r.tmp
		}
		copy(r.k[i], dyn.Derivative(in, u, t+s.c*dt))
		for j := range next {
			next[j] += s.w * dt / 6 * r.k[i][j]
		}
	}
	return next
}
