package main

import (
	"context"
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"

	"github.com/gwillem/shooterbot/pkg/control"
	"github.com/gwillem/shooterbot/pkg/robot"
	"github.com/gwillem/shooterbot/pkg/telemetry"
	"github.com/gwillem/shooterbot/pkg/teleop"
)

type SimulateCommand struct {
	Script string `short:"s" long:"script" description:"Input timeline, e.g. lb:2s,idle:1s (inputs: lb rb a b y+ y- idle)" default:"lb:2s,idle:1s,rb+y+:2s,b:1s"`
	Hz     int    `long:"hz" description:"Control loop frequency (overrides config)"`
	Tail   int    `long:"tail" description:"Extra cycles with no operator input to run after the script" default:"25"`
}

func (c *SimulateCommand) Execute(args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", opts.Config, err)
		os.Exit(1)
	}
	cfg.Simulate = true
	if c.Hz > 0 {
		cfg.Hz = c.Hz
	}

	script, err := control.ParseScript(c.Script, cfg.Hz)
	if err != nil {
		return fmt.Errorf("parse script: %w", err)
	}

	ctrl, err := buildController(cfg, script, telemetry.NewTable())
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx := context.Background()
	ctrl.Init(ctx)
	ctrl.SetPhase(teleop.Teleop)

	cycles := script.Cycles() + c.Tail
	if cycles <= 0 {
		return fmt.Errorf("nothing to simulate")
	}
	top := make([]float64, 0, cycles)
	bottom := make([]float64, 0, cycles)
	modes := make(map[robot.Mode]int)
	rejected := 0
	simTime := 0.0

	for i := 0; i < cycles; i++ {
		ctrl.Step(ctx)
		s := <-ctrl.States()
		simTime = s.SimTime
		top = append(top, s.Velocities[robot.ShooterTop])
		bottom = append(bottom, s.Velocities[robot.ShooterBottom])
		modes[s.Modes[robot.ShooterTop]]++
		rejected += s.Rejected
		printLogs(ctrl)
	}

	fmt.Println(headerStyle.Render("Shooter simulation"))
	fmt.Printf("%d cycles at %d Hz (%.2fs simulated), script %q\n\n", cycles, cfg.Hz, simTime, c.Script)

	for _, series := range []struct {
		name string
		data []float64
	}{
		{telemetry.ShooterTopVel, top},
		{telemetry.ShooterBottomVel, bottom},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.name+" (rotations/s)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Println(subHeaderStyle.Render("Shooter mode cycles"))
	for _, m := range []robot.Mode{robot.VoltageVelocity, robot.TorqueVelocity, robot.Brake} {
		fmt.Printf("  %-16s %d\n", m, modes[m])
	}
	fmt.Printf("  final velocity   top %.2f  bottom %.2f\n", top[len(top)-1], bottom[len(bottom)-1])
	if rejected > 0 {
		fmt.Println(missingStyle.Render(fmt.Sprintf("  %d commands rejected", rejected)))
	}

	return nil
}

func printLogs(ctrl *teleop.Controller) {
	for {
		select {
		case msg := <-ctrl.Logs():
			fmt.Println(dimStyle.Render(msg))
		default:
			return
		}
	}
}
