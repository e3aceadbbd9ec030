package robot

import "context"

// ConfigAttempts is how many times a configuration push is tried before
// giving up.
const ConfigAttempts = 5

// ApplyConfig pushes cfg to the actuator, retrying immediately on failure.
// It returns a *ConfigFailure carrying the last status if every attempt
// fails. The failure is not fatal: the actuator keeps whatever gains it had.
func ApplyConfig(ctx context.Context, a *Actuator, cfg Configuration) error {
	status := StatusNotInitialized
	attempts := 0
	for attempts < ConfigAttempts {
		attempts++
		status = a.motor.ApplyConfig(ctx, cfg)
		if status.IsOK() {
			break
		}
	}
	if !status.IsOK() {
		return &ConfigFailure{
			Role:     a.role,
			ID:       a.id,
			Status:   status,
			Attempts: attempts,
		}
	}

	a.applied = cfg
	a.configured = true
	return nil
}
