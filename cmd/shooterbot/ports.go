package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/shooterbot/pkg/hw"
	"github.com/gwillem/shooterbot/pkg/robot"
)

type PortsCommand struct {
	MinID int `long:"min-id" description:"Lowest servo ID to probe" default:"1"`
	MaxID int `long:"max-id" description:"Highest servo ID to probe" default:"12"`
}

func (c *PortsCommand) Execute(args []string) error {
	ports, err := hw.Ports()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
		os.Exit(1)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}

	cfg, _, err := loadConfig()
	if err != nil {
		cfg = robot.DefaultConfig()
	}

	fmt.Printf("Probing %d port(s) for servo IDs %d-%d...\n\n", len(ports), c.MinID, c.MaxID)

	rows := make([][]string, 0, len(ports))
	robots := make([]bool, 0, len(ports))
	for _, port := range ports {
		ids, err := hw.ScanPort(port, c.MinID, c.MaxID)
		switch {
		case err != nil:
			rows = append(rows, []string{port, "", dimStyle.Render(err.Error())})
			robots = append(robots, false)
		case len(ids) == 0:
			rows = append(rows, []string{port, "", "no servos"})
			robots = append(robots, false)
		default:
			note := ""
			covers := hw.Covers(ids, cfg)
			if covers {
				note = "shooter and intake motors present"
			}
			rows = append(rows, []string{port, joinInts(ids), note})
			robots = append(robots, covers)
		}
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableRobotStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "Servo IDs", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if row >= 0 && row < len(robots) && robots[row] {
				return tableRobotStyle
			}
			return tableCellStyle
		})

	fmt.Println(t.Render())
	return nil
}
