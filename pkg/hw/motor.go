// Package hw drives live motors on a Feetech STS servo bus.
//
// The servos run in position mode, so a closed-loop velocity request is
// carried out by advancing the goal position every cycle. Gain slots are
// not programmable on these servos; the applied configuration only bounds
// the commanded velocity.
package hw

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/gwillem/shooterbot/pkg/robot"
)

// TicksPerRev is the encoder resolution of an STS servo.
const TicksPerRev = 4096

// DefaultMaxSpeed is the top speed of an STS3215 in rotations per second
// (3400 ticks/s).
const DefaultMaxSpeed = 3400.0 / TicksPerRev

// servoGroup is the part of *feetech.ServoGroup a Motor drives.
type servoGroup interface {
	Positions(ctx context.Context) (feetech.PositionMap, error)
	SetPositions(ctx context.Context, positions feetech.PositionMap) error
	EnableAll(ctx context.Context) error
	DisableAll(ctx context.Context) error
}

// Bus is an open servo bus shared by several motors.
type Bus struct {
	bus      *feetech.Bus
	period   time.Duration
	maxSpeed float64
}

// Open opens the serial bus described by cfg. hz is the control loop rate
// used to turn velocities into per-cycle position steps.
func Open(cfg robot.BusConfig, hz int) (*Bus, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("bus %q: no serial port configured", cfg.Name)
	}
	if hz <= 0 {
		return nil, fmt.Errorf("hz must be positive, got %d", hz)
	}
	baud := cfg.BaudRate
	if baud == 0 {
		baud = 1_000_000
	}
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 100 * time.Millisecond
	}
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: baud,
		Protocol: feetech.ProtocolSTS,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	maxSpeed := cfg.MaxSpeed
	if maxSpeed <= 0 {
		maxSpeed = DefaultMaxSpeed
	}

	return &Bus{
		bus:      bus,
		period:   time.Second / time.Duration(hz),
		maxSpeed: maxSpeed,
	}, nil
}

// Close closes the bus connection.
func (b *Bus) Close() error {
	return b.bus.Close()
}

// Motor returns the motor with the given servo ID.
func (b *Bus) Motor(id int) *Motor {
	return newMotor(feetech.NewServoGroupByIDs(b.bus, id), id, b.period.Seconds(), b.maxSpeed)
}

func newMotor(group servoGroup, id int, period, maxSpeed float64) *Motor {
	return &Motor{
		group:    group,
		id:       id,
		period:   period,
		maxSpeed: maxSpeed,
		now:      time.Now,
	}
}

// Motor is a robot.Motor backed by one servo.
type Motor struct {
	group    servoGroup
	id       int
	period   float64
	maxSpeed float64
	now      func() time.Time

	cfg        robot.Configuration
	configured bool
	enabled    bool

	// Goal position in ticks while a velocity command is active.
	goal     float64
	tracking bool

	// Unwrapped position estimate.
	sampled  bool
	lastRaw  int
	lastAt   time.Time
	turns    float64
	velocity float64
}

// ApplyConfig checks the servo answers, validates cfg and enables torque.
func (m *Motor) ApplyConfig(ctx context.Context, cfg robot.Configuration) robot.StatusCode {
	if err := cfg.Validate(); err != nil {
		return robot.StatusInvalidParamValue
	}
	if _, err := m.read(ctx); err != nil {
		return robot.StatusTxTimeout
	}
	if err := m.group.EnableAll(ctx); err != nil {
		return robot.StatusTxTimeout
	}
	m.enabled = true
	m.cfg = cfg
	m.configured = true
	return robot.StatusOK
}

// SetControl executes cmd. Neutral output releases torque so the mechanism
// coasts.
func (m *Motor) SetControl(ctx context.Context, cmd robot.Command) robot.StatusCode {
	if cmd.Neutral {
		m.tracking = false
		if !m.enabled {
			return robot.StatusOK
		}
		if err := m.group.DisableAll(ctx); err != nil {
			return robot.StatusTxTimeout
		}
		m.enabled = false
		return robot.StatusOK
	}

	if !m.configured {
		return robot.StatusNotInitialized
	}
	if !m.enabled {
		if err := m.group.EnableAll(ctx); err != nil {
			return robot.StatusTxTimeout
		}
		m.enabled = true
	}
	if !m.tracking {
		raw, err := m.read(ctx)
		if err != nil {
			return robot.StatusTxTimeout
		}
		m.goal = float64(raw)
		m.tracking = true
	}

	v := clampVelocity(cmd.Velocity, m.limit())
	m.goal = wrapTicks(m.goal + v*m.period*TicksPerRev)

	goals := feetech.PositionMap{m.id: int(math.Round(m.goal)) % TicksPerRev}
	if err := m.group.SetPositions(ctx, goals); err != nil {
		return robot.StatusTxTimeout
	}
	return robot.StatusOK
}

// Velocity returns the measured velocity in rotations per second.
func (m *Motor) Velocity(ctx context.Context) float64 {
	m.sample(ctx)
	return m.velocity
}

// Position returns the unwrapped position in rotations.
func (m *Motor) Position(ctx context.Context) float64 {
	m.sample(ctx)
	return m.turns
}

func (m *Motor) read(ctx context.Context) (int, error) {
	positions, err := m.group.Positions(ctx)
	if err != nil {
		return 0, fmt.Errorf("read position %d: %w", m.id, err)
	}
	raw, ok := positions[m.id]
	if !ok {
		return 0, fmt.Errorf("read position %d: no reply", m.id)
	}
	return raw, nil
}

// sample refreshes the position estimate at most once per half cycle.
func (m *Motor) sample(ctx context.Context) {
	now := m.now()
	if m.sampled && now.Sub(m.lastAt).Seconds() < m.period/2 {
		return
	}
	raw, err := m.read(ctx)
	if err != nil {
		// Keep the last estimate; telemetry goes stale rather than wrong.
		return
	}
	if m.sampled {
		delta := float64(unwrapDelta(raw - m.lastRaw))
		m.turns += delta / TicksPerRev
		dt := now.Sub(m.lastAt).Seconds()
		switch {
		case dt*m.maxSpeed >= 0.5:
			// Half a turn or more may have passed; the direction is unknown.
			m.velocity = 0
		case dt > 0:
			m.velocity = delta / TicksPerRev / dt
		}
	} else {
		m.turns = float64(raw) / TicksPerRev
	}
	m.lastRaw = raw
	m.lastAt = now
	m.sampled = true
}

// limit returns the fastest velocity the motor can follow in rotations per
// second. It is the lowest of the servo's top speed, the free speed at the
// voltage slot's peak output and the speed that moves the goal just under
// half a turn per cycle. Beyond that the servo takes the short way round
// and runs backwards.
func (m *Motor) limit() float64 {
	limit := m.maxSpeed
	if m.cfg.Slot0.KV > 0 {
		limit = math.Min(limit, m.cfg.Slot0.PeakForward/m.cfg.Slot0.KV)
	}
	if m.period > 0 {
		limit = math.Min(limit, float64(maxStep)/TicksPerRev/m.period)
	}
	return limit
}

// maxStep is the largest goal advance per cycle in ticks.
const maxStep = TicksPerRev/2 - 1

func clampVelocity(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

// unwrapDelta maps a raw tick difference into (-TicksPerRev/2, TicksPerRev/2].
func unwrapDelta(d int) int {
	d %= TicksPerRev
	if d > TicksPerRev/2 {
		d -= TicksPerRev
	} else if d <= -TicksPerRev/2 {
		d += TicksPerRev
	}
	return d
}

func wrapTicks(t float64) float64 {
	t = math.Mod(t, TicksPerRev)
	if t < 0 {
		t += TicksPerRev
	}
	return t
}
