package sim

import (
	"context"
	"math"

	"github.com/gwillem/shooterbot/pkg/robot"
)

// Motor is a simulated motor controller. It runs the closed loop of the
// commanded gain slot against a Flywheel plant once registered with a
// PhysicsSim; until then its shaft does not move.
type Motor struct {
	id    int
	plant *Flywheel
	integ *RK4
	x     State
	t     float64

	cfg robot.Configuration
	cmd robot.Command

	// closed-loop state for the active slot
	integral float64
	prevErr  float64
	primed   bool
	output   float64

	configFaults int
	applies      int
}

// NewMotor returns an unregistered simulated motor controller.
func NewMotor(id int) *Motor {
	return &Motor{
		id:    id,
		integ: NewRK4(),
		x:     State{0, 0},
		cmd:   robot.NeutralOut,
	}
}

// ID returns the simulated device ID.
func (m *Motor) ID() int { return m.id }

// FailConfigs makes the next n ApplyConfig calls time out.
func (m *Motor) FailConfigs(n int) { m.configFaults = n }

// ConfigApplies returns how many times ApplyConfig was called.
func (m *Motor) ConfigApplies() int { return m.applies }

// Output returns the last closed-loop output in volts or amps.
func (m *Motor) Output() float64 { return m.output }

// Command returns the command currently being executed.
func (m *Motor) Command() robot.Command { return m.cmd }

func (m *Motor) ApplyConfig(ctx context.Context, cfg robot.Configuration) robot.StatusCode {
	m.applies++
	if m.configFaults > 0 {
		m.configFaults--
		return robot.StatusTxTimeout
	}
	if err := cfg.Validate(); err != nil {
		return robot.StatusInvalidParamValue
	}
	m.cfg = cfg
	return robot.StatusOK
}

func (m *Motor) SetControl(ctx context.Context, cmd robot.Command) robot.StatusCode {
	if !cmd.Neutral {
		if _, ok := m.cfg.Slot(cmd.Slot); !ok {
			return robot.StatusInvalidParamValue
		}
	}
	if cmd.Neutral != m.cmd.Neutral || cmd.Slot != m.cmd.Slot {
		m.resetLoop()
	}
	m.cmd = cmd
	return robot.StatusOK
}

func (m *Motor) Velocity(ctx context.Context) float64 { return m.x[1] }

func (m *Motor) Position(ctx context.Context) float64 { return m.x[0] }

func (m *Motor) resetLoop() {
	m.integral = 0
	m.prevErr = 0
	m.primed = false
}

// control runs one closed-loop update of h seconds and returns the plant
// input.
func (m *Motor) control(h float64) Control {
	if m.cmd.Neutral {
		m.output = 0
		return Control{float64(DriveCoast), 0}
	}

	gains, _ := m.cfg.Slot(m.cmd.Slot)
	err := m.cmd.Velocity - m.x[1]
	deriv := 0.0
	if m.primed && h > 0 {
		deriv = (err - m.prevErr) / h
	}
	m.prevErr = err
	m.primed = true

	out := gains.KP*err + gains.KI*(m.integral+err*h) + gains.KD*deriv
	if gains.Domain == robot.OutputVoltage {
		out += gains.KV * m.cmd.Velocity
	} else {
		out += m.cmd.FeedForward
	}

	clamped := gains.Clamp(out)
	// Integrate only while unsaturated so the loop does not wind up.
	if clamped == out {
		m.integral += err * h
	}
	m.output = clamped

	if gains.Domain == robot.OutputVoltage {
		return Control{float64(DriveVoltage), clamped}
	}
	return Control{float64(DriveCurrent), clamped}
}

// step advances the controller and plant by dt seconds in substeps of at
// most maxSubstep.
func (m *Motor) step(dt float64) {
	if m.plant == nil || dt <= 0 {
		return
	}
	n := int(math.Ceil(dt / maxSubstep))
	h := dt / float64(n)
	for i := 0; i < n; i++ {
		u := m.control(h)
		m.x = m.integ.Step(m.plant, m.x, u, m.t, h)
		m.t += h
	}
}
