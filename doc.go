// Package shooterbot runs the shooter and intake of a competition robot.
//
// An operator gamepad is sampled every control cycle, a mode is selected
// for the shooter group and the intake group, and the resulting velocity
// or neutral commands are sent to six motors. The same loop runs against
// the real motor bus or against a flywheel physics simulation.
//
// # Installation
//
//	go install github.com/gwillem/shooterbot/cmd/shooterbot@latest
//
// # Usage
//
// Find the motor bus and write a configuration file:
//
//	shooterbot setup
//
// Run the robot with a live dashboard, driving the gamepad from the keyboard:
//
//	shooterbot run
//	shooterbot run --simulate
//
// Replay a scripted input timeline against the simulation and plot the
// shooter wheel speeds:
//
//	shooterbot simulate --script "lb:2s,idle:1s,rb+y+:2s,b:1s"
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/shooterbot: CLI with run, simulate, setup and ports commands
//   - pkg/robot: Actuators, gain profiles, configuration and config retry
//   - pkg/control: Operator input, mode selection and command dispatch
//   - pkg/hw: Motor bus backend
//   - pkg/sim: Flywheel physics and simulated motor controllers
//   - pkg/telemetry: Key/value table and published robot state
//   - pkg/teleop: Robot lifecycle and the fixed-rate control loop
package shooterbot
