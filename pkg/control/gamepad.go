package control

import (
	"math"
	"sync"
)

// Button is a gamepad button used by the robot.
type Button int

const (
	LeftBumper Button = iota
	RightBumper
	ButtonA
	ButtonB
)

func (b Button) String() string {
	switch b {
	case LeftBumper:
		return "LB"
	case RightBumper:
		return "RB"
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	default:
		return "?"
	}
}

// Gamepad is an operator device whose state is set by another goroutine,
// such as a keyboard handler. It is safe for concurrent use.
type Gamepad struct {
	mu        sync.RWMutex
	connected bool
	leftY     float64
	held      [4]bool
}

// NewGamepad returns a connected gamepad with nothing pressed.
func NewGamepad() *Gamepad {
	return &Gamepad{connected: true}
}

// Set presses or releases b.
func (g *Gamepad) Set(b Button, pressed bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b >= 0 && int(b) < len(g.held) {
		g.held[b] = pressed
	}
}

// Toggle flips b and returns its new state.
func (g *Gamepad) Toggle(b Button) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b < 0 || int(b) >= len(g.held) {
		return false
	}
	g.held[b] = !g.held[b]
	return g.held[b]
}

// Held reports whether b is pressed.
func (g *Gamepad) Held(b Button) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if b < 0 || int(b) >= len(g.held) {
		return false
	}
	return g.held[b]
}

// Nudge moves the left stick by delta, clamped to [-1, 1].
func (g *Gamepad) Nudge(delta float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leftY = math.Max(-1, math.Min(1, g.leftY+delta))
	return g.leftY
}

// Center returns the left stick to rest.
func (g *Gamepad) Center() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leftY = 0
}

// ReleaseAll releases every button and centers the stick.
func (g *Gamepad) ReleaseAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = [4]bool{}
	g.leftY = 0
}

// SetConnected simulates plugging or unplugging the device.
func (g *Gamepad) SetConnected(connected bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = connected
}

// Snapshot returns the raw state. The stick is not filtered here.
func (g *Gamepad) Snapshot() (Snapshot, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.connected {
		return Snapshot{}, ErrNoDevice
	}
	return Snapshot{
		LeftY:       g.leftY,
		LeftBumper:  g.held[LeftBumper],
		RightBumper: g.held[RightBumper],
		A:           g.held[ButtonA],
		B:           g.held[ButtonB],
	}, nil
}
