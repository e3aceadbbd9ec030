package robot

import "fmt"

// OutputDomain is the physical quantity a closed loop drives.
type OutputDomain int

const (
	OutputVoltage OutputDomain = iota
	OutputTorqueCurrent
)

func (d OutputDomain) String() string {
	switch d {
	case OutputVoltage:
		return "voltage"
	case OutputTorqueCurrent:
		return "torque_current"
	default:
		return fmt.Sprintf("OutputDomain(%d)", int(d))
	}
}

// GainProfile holds the tuning of one closed-loop velocity slot.
type GainProfile struct {
	Slot   int          `json:"slot" yaml:"slot"`
	Domain OutputDomain `json:"domain" yaml:"domain"`
	KP     float64      `json:"kp" yaml:"kp"`
	KI     float64      `json:"ki" yaml:"ki"`
	KD     float64      `json:"kd" yaml:"kd"`
	KV     float64      `json:"kv" yaml:"kv"`

	// Output bounds in volts or amps depending on Domain.
	PeakForward float64 `json:"peak_forward" yaml:"peak_forward"`
	PeakReverse float64 `json:"peak_reverse" yaml:"peak_reverse"`
}

// VoltageVelocitySlot returns the slot 0 gains for voltage-based velocity
// control.
func VoltageVelocitySlot() GainProfile {
	return GainProfile{
		Slot:   0,
		Domain: OutputVoltage,
		KP:     0.11,   // volts per rps of error
		KI:     0.5,    // volts per rotation of accumulated error
		KD:     0.0001, // volts per rps/s
		KV:     0.12,   // 500 rpm/V motor: 1/8.33 volts per rps
		// Peak output of 8 volts
		PeakForward: 8,
		PeakReverse: -8,
	}
}

// TorqueVelocitySlot returns the slot 1 gains for torque-current velocity
// control. Torque accelerates the rotor by itself so no kV is needed.
func TorqueVelocitySlot() GainProfile {
	return GainProfile{
		Slot:   1,
		Domain: OutputTorqueCurrent,
		KP:     5,     // amps per rps of error
		KI:     0.1,   // amps per rotation of accumulated error
		KD:     0.001, // amps per rps/s
		// Peak output of 40 amps
		PeakForward: 40,
		PeakReverse: -40,
	}
}

// Validate returns an error if the profile cannot be programmed into a
// motor controller.
func (g GainProfile) Validate() error {
	if g.KP < 0 || g.KI < 0 || g.KD < 0 || g.KV < 0 {
		return fmt.Errorf("slot %d: negative gain", g.Slot)
	}
	if g.PeakForward <= 0 || g.PeakReverse >= 0 {
		return fmt.Errorf("slot %d: peak output must straddle zero (got %v, %v)", g.Slot, g.PeakReverse, g.PeakForward)
	}
	return nil
}

// Clamp bounds out to the profile's peak output.
func (g GainProfile) Clamp(out float64) float64 {
	if out > g.PeakForward {
		return g.PeakForward
	}
	if out < g.PeakReverse {
		return g.PeakReverse
	}
	return out
}

// Configuration is the complete set of slots pushed to a motor controller
// in one apply call.
type Configuration struct {
	Slot0 GainProfile `json:"slot0" yaml:"slot0"`
	Slot1 GainProfile `json:"slot1" yaml:"slot1"`
}

// DefaultConfiguration returns the configuration shared by every actuator.
func DefaultConfiguration() Configuration {
	return Configuration{
		Slot0: VoltageVelocitySlot(),
		Slot1: TorqueVelocitySlot(),
	}
}

// Slot returns the profile for the given slot index.
func (c Configuration) Slot(i int) (GainProfile, bool) {
	switch i {
	case 0:
		return c.Slot0, true
	case 1:
		return c.Slot1, true
	default:
		return GainProfile{}, false
	}
}

// Validate checks both slots.
func (c Configuration) Validate() error {
	if err := c.Slot0.Validate(); err != nil {
		return err
	}
	return c.Slot1.Validate()
}
