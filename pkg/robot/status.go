package robot

import "fmt"

// StatusCode is the result of a motor controller call.
type StatusCode int

const (
	StatusOK StatusCode = iota
	StatusNotInitialized
	StatusTxTimeout
	StatusInvalidParamValue
)

// IsOK reports whether the call succeeded.
func (s StatusCode) IsOK() bool {
	return s == StatusOK
}

func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotInitialized:
		return "StatusCodeNotInitialized"
	case StatusTxTimeout:
		return "TxTimeout"
	case StatusInvalidParamValue:
		return "InvalidParamValue"
	default:
		return fmt.Sprintf("StatusCode(%d)", int(s))
	}
}

// ConfigFailure is returned when a configuration could not be applied to an
// actuator within the allowed attempts.
type ConfigFailure struct {
	Role     Role
	ID       int
	Status   StatusCode
	Attempts int
}

func (e *ConfigFailure) Error() string {
	return fmt.Sprintf("configure %s (id %d): %s after %d attempts", e.Role, e.ID, e.Status, e.Attempts)
}
