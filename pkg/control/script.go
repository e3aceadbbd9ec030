package control

import (
	"fmt"
	"strings"
	"time"
)

// ScriptStep holds an input for a number of cycles.
type ScriptStep struct {
	Cycles int
	Input  Snapshot
}

// Script replays a fixed input timeline, one snapshot per cycle. Once the
// timeline is exhausted it reports ErrNoDevice.
type Script struct {
	steps []ScriptStep
	cycle int
}

// NewScript returns a script playing steps in order.
func NewScript(steps ...ScriptStep) *Script {
	return &Script{steps: steps}
}

// Cycles returns the total length of the timeline.
func (s *Script) Cycles() int {
	n := 0
	for _, st := range s.steps {
		n += st.Cycles
	}
	return n
}

// Snapshot returns the input for the current cycle and advances.
func (s *Script) Snapshot() (Snapshot, error) {
	c := s.cycle
	s.cycle++
	for _, st := range s.steps {
		if c < st.Cycles {
			return st.Input, nil
		}
		c -= st.Cycles
	}
	return Snapshot{}, ErrNoDevice
}

// ParseScript parses a comma separated timeline such as
// "lb:2s,idle:500ms,rb+y+:1s,b:1s" at the given loop rate. Inputs within a
// step are joined with '+': lb, rb, a, b, y+ (stick up to +1), y- (stick to
// -1) and idle.
func ParseScript(timeline string, hz int) (*Script, error) {
	if hz <= 0 {
		return nil, fmt.Errorf("hz must be positive, got %d", hz)
	}
	var steps []ScriptStep
	for _, part := range strings.Split(timeline, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		names, dur, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("step %q: missing duration", part)
		}
		d, err := time.ParseDuration(dur)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", part, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("step %q: duration must be positive", part)
		}
		in, err := parseInputs(names)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", part, err)
		}
		cycles := int(d.Seconds()*float64(hz) + 0.5)
		if cycles == 0 {
			cycles = 1
		}
		steps = append(steps, ScriptStep{Cycles: cycles, Input: in})
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("empty script")
	}
	return NewScript(steps...), nil
}

func parseInputs(names string) (Snapshot, error) {
	var in Snapshot
	// "y+" contains the separator, so split on '+' only between names.
	for _, name := range splitInputs(names) {
		switch strings.ToLower(name) {
		case "lb":
			in.LeftBumper = true
		case "rb":
			in.RightBumper = true
		case "a":
			in.A = true
		case "b":
			in.B = true
		case "y+":
			in.LeftY = 1
		case "y-":
			in.LeftY = -1
		case "idle", "":
		default:
			return Snapshot{}, fmt.Errorf("unknown input %q", name)
		}
	}
	return in, nil
}

func splitInputs(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '+' {
			continue
		}
		// a '+' right after 'y' is part of the stick name
		if i > start && (s[i-1] == 'y' || s[i-1] == 'Y') && i-start == 1 {
			continue
		}
		out = append(out, s[start:i])
		start = i + 1
	}
	return append(out, s[start:])
}
