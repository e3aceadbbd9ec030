// Package teleop runs the robot's fixed-rate control loop and its match
// phases.
package teleop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gwillem/shooterbot/pkg/control"
	"github.com/gwillem/shooterbot/pkg/robot"
)

// State represents the robot after one cycle.
type State struct {
	Phase      Phase
	Modes      map[robot.Role]robot.Mode
	Velocities map[robot.Role]float64
	Setpoints  control.Setpoints
	Rejected   int
	Timestamp  time.Time

	// SimTime is the simulated time in seconds, zero on live hardware.
	SimTime float64
}

// Controller manages the control loop.
type Controller struct {
	robot *Robot
	hz    int

	mu      sync.RWMutex
	running bool
	phase   Phase
	entered Phase
	started bool
	done    chan struct{}
	stateCh chan State
	logCh   chan string
}

// NewController creates a controller running r at hz cycles per second.
func NewController(r *Robot, hz int) *Controller {
	if hz <= 0 {
		hz = 50
	}

	c := &Controller{
		robot:   r,
		hz:      hz,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}
	r.logf = c.log
	return c
}

// Close waits for a running control loop to stop and releases the hardware.
// Cancel the context passed to Start before calling Close.
func (c *Controller) Close() error {
	c.Wait()

	if err := c.robot.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Wait blocks until the loop started by Start has returned, including its
// final brake. It returns at once if the loop never ran.
func (c *Controller) Wait() {
	c.mu.RLock()
	done := c.done
	c.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// States returns a channel that receives state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the control frequency.
func (c *Controller) Hz() int {
	return c.hz
}

// Robot returns the robot being controlled.
func (c *Controller) Robot() *Robot {
	return c.robot
}

// SetPhase requests a phase change, applied at the start of the next cycle.
func (c *Controller) SetPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// Phase returns the requested phase.
func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Init runs the one-time startup hooks.
func (c *Controller) Init(ctx context.Context) {
	c.robot.RobotInit(ctx)
	if c.robot.Simulated() {
		c.robot.SimulationInit()
		c.log("Simulation: %d motors registered", c.robot.hardware.Physics().Len())
	}
}

// Start runs Init and then the control loop until ctx is cancelled.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()
	defer close(done)

	c.Init(ctx)
	c.log("Control loop started at %d Hz", c.hz)

	// Control loop
	ticker := time.NewTicker(time.Second / time.Duration(c.hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case <-ticker.C:
			c.Step(ctx)
		}
	}
}

// Step runs a single cycle in the requested phase.
func (c *Controller) Step(ctx context.Context) {
	phase := c.Phase()
	if !c.started || phase != c.entered {
		if phase != c.entered {
			c.log("Phase: %s -> %s", c.entered, phase)
		}
		c.robot.Enter(ctx, phase)
		c.entered = phase
		c.started = true
	}

	c.robot.Cycle(ctx, phase)
	c.sendState(c.state(ctx, phase))
}

func (c *Controller) state(ctx context.Context, phase Phase) State {
	s := State{
		Phase:      phase,
		Modes:      make(map[robot.Role]robot.Mode),
		Velocities: make(map[robot.Role]float64),
		Setpoints:  c.robot.Setpoints(),
		Rejected:   c.robot.Rejected(),
		Timestamp:  time.Now(),
	}
	if physics := c.robot.hardware.Physics(); physics != nil {
		s.SimTime = physics.Elapsed()
	}
	reqs := c.robot.Requests()
	for _, a := range c.robot.Registry().All() {
		s.Velocities[a.Role()] = a.Velocity(ctx)
		mode := robot.Brake
		if req, ok := reqs[a.Role()]; ok {
			mode = req.Mode
		}
		s.Modes[a.Role()] = mode
	}
	return s
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	c.robot.Enter(context.Background(), Disabled)
	c.log("Control loop stopped")
}
