package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/shooterbot/pkg/robot"
)

type Options struct {
	Config string `short:"c" long:"config" description:"Configuration file (.json or .yaml)"`

	Run      RunCommand      `command:"run" description:"Run the robot with a live dashboard and keyboard gamepad"`
	Simulate SimulateCommand `command:"simulate" alias:"sim" description:"Run a scripted input timeline against the physics simulation"`
	Setup    SetupCommand    `command:"setup" description:"Find the motor bus and write a configuration file"`
	Ports    PortsCommand    `command:"ports" description:"List serial ports and the servo IDs answering on them"`
}

var opts = Options{Config: robot.DefaultConfigFile}
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "shooterbot - shooter and intake control loop for the competition robot"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
