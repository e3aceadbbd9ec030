package hw

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/gwillem/shooterbot/pkg/robot"
)

func TestUnwrapDelta(t *testing.T) {
	tests := []struct {
		d        int
		expected int
	}{
		{0, 0},
		{100, 100},
		{-100, -100},
		{4000, -96},  // wrapped forward past zero
		{-4000, 96},  // wrapped backward past zero
		{2048, 2048}, // half a turn stays positive
		{-2048, 2048},
		{4096, 0},
	}

	for _, tt := range tests {
		if got := unwrapDelta(tt.d); got != tt.expected {
			t.Errorf("unwrapDelta(%d) = %d, want %d", tt.d, got, tt.expected)
		}
	}
}

func TestWrapTicks(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0, 0},
		{4095, 4095},
		{4096, 0},
		{4200, 104},
		{-1, 4095},
		{-4200, 3992},
	}

	for _, tt := range tests {
		if got := wrapTicks(tt.in); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("wrapTicks(%v) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}

func TestClampVelocity(t *testing.T) {
	tests := []struct {
		v, limit float64
		expected float64
	}{
		{10, 66, 10},
		{200, 66, 66},
		{-200, 66, -66},
		{-0.5, 0.8, -0.5},
	}

	for _, tt := range tests {
		if got := clampVelocity(tt.v, tt.limit); got != tt.expected {
			t.Errorf("clampVelocity(%v, %v) = %v, want %v", tt.v, tt.limit, got, tt.expected)
		}
	}
}

func TestMotor_Limit(t *testing.T) {
	halfTurn := float64(maxStep) / TicksPerRev

	tests := []struct {
		name     string
		hz       float64
		maxSpeed float64
		expected float64
	}{
		{"servo top speed", 50, DefaultMaxSpeed, DefaultMaxSpeed},
		{"peak voltage", 200, 1000, 8 / 0.12},
		{"half turn at 50 Hz", 50, 50, halfTurn * 50},
		{"half turn at 1 Hz", 1, DefaultMaxSpeed, halfTurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMotor(newMockGroup(1, 0), 1, 1/tt.hz, tt.maxSpeed)
			m.cfg = robot.DefaultConfiguration()
			if got := m.limit(); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("limit() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMotor_KeepsDirectionAtIntakeSpeed(t *testing.T) {
	for _, maxSpeed := range []float64{DefaultMaxSpeed, 1000} {
		for _, v := range []float64{45, -45, 9.5, -9.5} {
			group := newMockGroup(3, 100)
			m := configured(t, group, 3, maxSpeed)

			for i := 0; i < 5; i++ {
				if code := m.SetControl(context.Background(), robot.Command{Velocity: v}); code != robot.StatusOK {
					t.Fatalf("SetControl: %v", code)
				}
			}

			prev := 100
			for i, goal := range group.goals {
				step := unwrapDelta(goal - prev)
				if step == 0 || (step > 0) != (v > 0) {
					t.Fatalf("maxSpeed %v, %v rps: cycle %d moves %d ticks", maxSpeed, v, i, step)
				}
				if math.Abs(float64(step)) > maxSpeed*0.02*TicksPerRev+1 {
					t.Errorf("maxSpeed %v, %v rps: cycle %d moves %d ticks, faster than the servo", maxSpeed, v, i, step)
				}
				prev = goal
			}
		}
	}
}

func TestMotor_RejectsUntilConfigured(t *testing.T) {
	group := newMockGroup(6, 0)
	m := newMotor(group, 6, 0.02, DefaultMaxSpeed)
	ctx := context.Background()

	if code := m.SetControl(ctx, robot.Command{Velocity: 0.5}); code != robot.StatusNotInitialized {
		t.Errorf("SetControl before ApplyConfig = %v, want %v", code, robot.StatusNotInitialized)
	}
	if len(group.goals) != 0 {
		t.Errorf("unconfigured motor sent goals %v", group.goals)
	}

	// Neutral is always accepted.
	if code := m.SetControl(ctx, robot.Command{Neutral: true}); code != robot.StatusOK {
		t.Errorf("neutral before ApplyConfig = %v, want OK", code)
	}

	if code := m.ApplyConfig(ctx, robot.DefaultConfiguration()); code != robot.StatusOK {
		t.Fatalf("ApplyConfig = %v", code)
	}
	if !group.enabled {
		t.Error("ApplyConfig should enable torque")
	}
	if code := m.SetControl(ctx, robot.Command{Velocity: 0.5}); code != robot.StatusOK {
		t.Errorf("SetControl after ApplyConfig = %v, want OK", code)
	}
}

func TestMotor_ApplyConfigFailures(t *testing.T) {
	bad := robot.DefaultConfiguration()
	bad.Slot0.KP = -1

	tests := []struct {
		name     string
		setup    func(g *mockGroup)
		cfg      robot.Configuration
		expected robot.StatusCode
	}{
		{"invalid gains", func(g *mockGroup) {}, bad, robot.StatusInvalidParamValue},
		{"no answer", func(g *mockGroup) { g.readErr = errors.New("timeout") }, robot.DefaultConfiguration(), robot.StatusTxTimeout},
		{"missing reply", func(g *mockGroup) { g.silent = true }, robot.DefaultConfiguration(), robot.StatusTxTimeout},
		{"enable fails", func(g *mockGroup) { g.writeErr = errors.New("timeout") }, robot.DefaultConfiguration(), robot.StatusTxTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := newMockGroup(6, 0)
			tt.setup(group)
			m := newMotor(group, 6, 0.02, DefaultMaxSpeed)

			if code := m.ApplyConfig(context.Background(), tt.cfg); code != tt.expected {
				t.Errorf("ApplyConfig = %v, want %v", code, tt.expected)
			}
			if code := m.SetControl(context.Background(), robot.Command{Velocity: 0.5}); code != robot.StatusNotInitialized {
				t.Errorf("SetControl after failed ApplyConfig = %v, want %v", code, robot.StatusNotInitialized)
			}
		})
	}
}

func TestMotor_NeutralReleasesTorque(t *testing.T) {
	group := newMockGroup(7, 100)
	m := configured(t, group, 7, DefaultMaxSpeed)
	ctx := context.Background()

	m.SetControl(ctx, robot.Command{Velocity: 0.5})
	m.SetControl(ctx, robot.Command{Neutral: true})
	m.SetControl(ctx, robot.Command{Neutral: true})

	if group.enabled {
		t.Error("neutral should release torque")
	}
	if group.disables != 1 {
		t.Errorf("DisableAll called %d times, want 1", group.disables)
	}

	// The wheel coasted; tracking restarts from where it stopped.
	group.pos = 3000
	enables := group.enables
	if code := m.SetControl(ctx, robot.Command{Velocity: 0.5}); code != robot.StatusOK {
		t.Fatalf("SetControl = %v", code)
	}
	if group.enables != enables+1 {
		t.Error("velocity command after neutral should enable torque")
	}
	if got := group.goals[len(group.goals)-1]; got != 3041 {
		t.Errorf("goal after restart = %d, want 3041", got)
	}
}

func TestMotor_GoalTracking(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		v        float64
		expected []int
	}{
		{"forward", 100, 0.5, []int{141, 182, 223}},
		{"backward through zero", 10, -0.5, []int{4065, 4024, 3983}},
		{"forward through zero", 4090, 0.5, []int{35, 76, 117}},
		{"stopped", 500, 0, []int{500, 500, 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := newMockGroup(8, tt.start)
			m := configured(t, group, 8, DefaultMaxSpeed)

			for range tt.expected {
				m.SetControl(context.Background(), robot.Command{Velocity: tt.v})
			}
			if len(group.goals) != len(tt.expected) {
				t.Fatalf("goals = %v, want %v", group.goals, tt.expected)
			}
			for i := range tt.expected {
				if group.goals[i] != tt.expected[i] {
					t.Errorf("goals = %v, want %v", group.goals, tt.expected)
					break
				}
			}
		})
	}
}

func TestMotor_SetControlWriteFailure(t *testing.T) {
	group := newMockGroup(9, 0)
	m := configured(t, group, 9, DefaultMaxSpeed)
	group.writeErr = errors.New("timeout")

	if code := m.SetControl(context.Background(), robot.Command{Velocity: 0.5}); code != robot.StatusTxTimeout {
		t.Errorf("SetControl = %v, want %v", code, robot.StatusTxTimeout)
	}
}

func TestMotor_Sample(t *testing.T) {
	group := newMockGroup(10, 4000)
	m := newMotor(group, 10, 0.02, DefaultMaxSpeed)
	now := time.Unix(0, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if got := m.Position(ctx); math.Abs(got-4000.0/TicksPerRev) > 1e-9 {
		t.Errorf("first Position = %v, want %v", got, 4000.0/TicksPerRev)
	}

	// 146 ticks forward across the wrap in one cycle.
	now = now.Add(20 * time.Millisecond)
	group.pos = 50
	wantVel := 146.0 / TicksPerRev / 0.02
	if got := m.Velocity(ctx); math.Abs(got-wantVel) > 1e-9 {
		t.Errorf("Velocity = %v, want %v", got, wantVel)
	}
	if got := m.Position(ctx); math.Abs(got-4146.0/TicksPerRev) > 1e-9 {
		t.Errorf("Position = %v, want %v", got, 4146.0/TicksPerRev)
	}

	// Within half a cycle the estimate is reused.
	reads := group.reads
	now = now.Add(5 * time.Millisecond)
	m.Velocity(ctx)
	if group.reads != reads {
		t.Errorf("sampled again after 5ms")
	}

	// A read error keeps the last estimate.
	now = now.Add(20 * time.Millisecond)
	group.readErr = errors.New("timeout")
	if got := m.Velocity(ctx); math.Abs(got-wantVel) > 1e-9 {
		t.Errorf("Velocity after read error = %v, want %v", got, wantVel)
	}
	group.readErr = nil

	// After a long gap the turn count is ambiguous, so no velocity is reported.
	now = now.Add(2 * time.Second)
	group.pos = 100
	if got := m.Velocity(ctx); got != 0 {
		t.Errorf("Velocity after 2s gap = %v, want 0", got)
	}
}

// configured returns a motor on group with the default gains applied.
func configured(t *testing.T, group *mockGroup, id int, maxSpeed float64) *Motor {
	t.Helper()
	m := newMotor(group, id, 0.02, maxSpeed)
	if code := m.ApplyConfig(context.Background(), robot.DefaultConfiguration()); code != robot.StatusOK {
		t.Fatalf("ApplyConfig = %v", code)
	}
	return m
}

// mockGroup implements servoGroup for one servo. Goals written to it are
// recorded and the servo is treated as reaching them at once.
type mockGroup struct {
	id       int
	pos      int
	silent   bool
	readErr  error
	writeErr error

	enabled  bool
	enables  int
	disables int
	reads    int
	goals    []int
}

func newMockGroup(id, pos int) *mockGroup {
	return &mockGroup{id: id, pos: pos}
}

func (g *mockGroup) Positions(ctx context.Context) (feetech.PositionMap, error) {
	g.reads++
	if g.readErr != nil {
		return nil, g.readErr
	}
	if g.silent {
		return feetech.PositionMap{}, nil
	}
	return feetech.PositionMap{g.id: g.pos}, nil
}

func (g *mockGroup) SetPositions(ctx context.Context, positions feetech.PositionMap) error {
	if g.writeErr != nil {
		return g.writeErr
	}
	goal := positions[g.id]
	g.goals = append(g.goals, goal)
	g.pos = goal
	return nil
}

func (g *mockGroup) EnableAll(ctx context.Context) error {
	if g.writeErr != nil {
		return g.writeErr
	}
	g.enabled = true
	g.enables++
	return nil
}

func (g *mockGroup) DisableAll(ctx context.Context) error {
	if g.writeErr != nil {
		return g.writeErr
	}
	g.enabled = false
	g.disables++
	return nil
}

func TestCovers(t *testing.T) {
	cfg := robot.DefaultConfig()

	if !Covers([]int{5, 6, 7, 8, 9, 10, 11}, cfg) {
		t.Error("Covers should accept a superset of the configured IDs")
	}
	if Covers([]int{5, 6, 7, 8, 9}, cfg) {
		t.Error("Covers should reject a missing intake_bottom")
	}
}
