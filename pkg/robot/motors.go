// Package robot provides the actuator registry, gain configuration and the
// motor transport abstraction for the shooter robot.
package robot

// Role identifies the mechanism a motor drives.
type Role string

// Actuator roles on the robot.
const (
	ShooterTop    Role = "shooter_top"
	ShooterBottom Role = "shooter_bottom"
	IndexerLeft   Role = "indexer_left"
	IndexerRight  Role = "indexer_right"
	IntakeTop     Role = "intake_top"
	IntakeBottom  Role = "intake_bottom"
)

// AllRoles returns all roles in dispatch order.
func AllRoles() []Role {
	return []Role{
		ShooterTop,
		ShooterBottom,
		IndexerLeft,
		IndexerRight,
		IntakeTop,
		IntakeBottom,
	}
}

// ShooterRoles returns the roles of the shooter group.
func ShooterRoles() []Role {
	return []Role{ShooterTop, ShooterBottom}
}

// IntakeRoles returns the roles of the intake/indexer group.
func IntakeRoles() []Role {
	return []Role{IndexerLeft, IndexerRight, IntakeTop, IntakeBottom}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}
