package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/shooterbot/pkg/hw"
	"github.com/gwillem/shooterbot/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	missingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const simulateChoice = "simulate"

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Shooterbot Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━"))
	fmt.Println()

	cfg, found, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", opts.Config, err)
		os.Exit(1)
	}
	if found {
		fmt.Printf("Updating existing %s\n\n", opts.Config)
	}

	// Step 1: Find the motor bus
	fmt.Println(subHeaderStyle.Render("━━━ Motor bus ━━━"))
	fmt.Println()
	ids := chooseBus(cfg)

	// Step 2: Shooter setpoints
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Shooter setpoints ━━━"))
	fmt.Println()
	askSetpoints(cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(renderWiring(cfg, ids))
	fmt.Println()

	if err := cfg.SaveTo(opts.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start the robot with: " + headerStyle.Render("shooterbot run"))

	return nil
}

// chooseBus scans for the robot's motors and lets the user pick a port or
// the simulation. It returns the IDs seen on the chosen port.
func chooseBus(cfg *robot.Config) []int {
	minID, maxID := idRange(cfg)
	fmt.Printf("Scanning serial ports for motors %d-%d...\n", minID, maxID)

	buses := hw.Scan(minID, maxID)
	var options []huh.Option[string]
	for _, b := range buses {
		label := fmt.Sprintf("%s (ids %s)", b.Port, joinInts(b.IDs))
		if hw.Covers(b.IDs, cfg) {
			label += " - all motors present"
			fmt.Printf("  Found robot on %s\n", b.Port)
		}
		options = append(options, huh.NewOption(label, b.Port))
	}
	if len(buses) == 0 {
		fmt.Println("No motors found. Make sure the bus is connected and powered on.")
	}
	options = append(options, huh.NewOption("No hardware, use the physics simulation", simulateChoice))

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which bus drives the shooter and intake?").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	if choice == simulateChoice {
		cfg.Simulate = true
		return nil
	}
	cfg.Simulate = false
	cfg.Bus.Port = choice
	for _, b := range buses {
		if b.Port == choice {
			return b.IDs
		}
	}
	return nil
}

func askSetpoints(cfg *robot.Config) {
	top := strconv.FormatFloat(cfg.Setpoints.Top, 'f', -1, 64)
	bottom := strconv.FormatFloat(cfg.Setpoints.Bottom, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Top wheel velocity (rotations/s)").
				Value(&top).
				Validate(validateFloat),
			huh.NewInput().
				Title("Bottom wheel velocity (rotations/s)").
				Value(&bottom).
				Validate(validateFloat),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	cfg.Setpoints.Top, _ = strconv.ParseFloat(strings.TrimSpace(top), 64)
	cfg.Setpoints.Bottom, _ = strconv.ParseFloat(strings.TrimSpace(bottom), 64)
}

func validateFloat(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return errors.New("enter a number")
	}
	return nil
}

func idRange(cfg *robot.Config) (lo, hi int) {
	for i, a := range cfg.Actuators {
		if i == 0 || a.ID < lo {
			lo = a.ID
		}
		if i == 0 || a.ID > hi {
			hi = a.ID
		}
	}
	return lo, hi
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// renderWiring shows the actuator table, marking devices seen on the bus.
func renderWiring(cfg *robot.Config, ids []int) string {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableRoleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(cfg.Actuators))
	present := make([]bool, 0, len(cfg.Actuators))
	for _, a := range cfg.Actuators {
		status := "simulated"
		if !cfg.Simulate {
			status = "missing"
			if seen[a.ID] {
				status = "found"
			}
		}
		present = append(present, cfg.Simulate || seen[a.ID])
		inverted := ""
		if a.Inverted {
			inverted = "yes"
		}
		rows = append(rows, []string{string(a.Role), strconv.Itoa(a.ID), inverted, status})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Actuator", "ID", "Inverted", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableRoleStyle
			case 3:
				if row >= 0 && row < len(present) && present[row] {
					return successStyle.Padding(0, 1)
				}
				return missingStyle.Padding(0, 1)
			default:
				return tableCellStyle
			}
		})

	return t.Render()
}
