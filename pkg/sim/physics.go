package sim

import "fmt"

// maxSubstep matches the 1 kHz closed loop of a real motor controller.
const maxSubstep = 0.001

// PhysicsSim holds the simulated motors whose shafts are advanced each
// cycle.
type PhysicsSim struct {
	motors  []*Motor
	elapsed float64
}

// NewPhysicsSim returns an empty simulation.
func NewPhysicsSim() *PhysicsSim {
	return &PhysicsSim{}
}

// Add registers m with a flywheel of the given moment of inertia (kg·m²).
func (p *PhysicsSim) Add(m *Motor, inertia float64) error {
	if inertia <= 0 {
		return fmt.Errorf("motor %d: inertia must be positive, got %v", m.id, inertia)
	}
	for _, existing := range p.motors {
		if existing == m {
			return fmt.Errorf("motor %d already registered", m.id)
		}
	}
	m.plant = NewFlywheel(inertia)
	p.motors = append(p.motors, m)
	return nil
}

// Run advances every registered motor by dt seconds.
func (p *PhysicsSim) Run(dt float64) {
	for _, m := range p.motors {
		m.step(dt)
	}
	p.elapsed += dt
}

// Len returns the number of registered motors.
func (p *PhysicsSim) Len() int { return len(p.motors) }

// Elapsed returns the simulated time in seconds.
func (p *PhysicsSim) Elapsed() float64 { return p.elapsed }
