package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/shooterbot/pkg/control"
	"github.com/gwillem/shooterbot/pkg/robot"
	"github.com/gwillem/shooterbot/pkg/telemetry"
	"github.com/gwillem/shooterbot/pkg/teleop"
)

type RunCommand struct {
	Hz       int  `long:"hz" description:"Control loop frequency (overrides config)"`
	Simulate bool `long:"simulate" description:"Run against the physics simulation instead of the motor bus"`
	Teleop   bool `long:"teleop" description:"Start enabled in teleop instead of disabled"`
}

const (
	headerHeight = 2  // title + blank line
	legendHeight = 2  // legend row + blank
	footerHeight = 21 // actuator table, help and log box
	maxLogs      = 5  // number of log messages to show
	borderSize   = 2  // chart border

	setpointStep = 0.5
	stickStep    = 0.25
)

// Series colors
var seriesColors = map[string]string{
	telemetry.ShooterTopVel:    "196", // red
	telemetry.ShooterBottomVel: "51",  // cyan
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	heldStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	phaseStyles = map[teleop.Phase]lipgloss.Style{
		teleop.Disabled:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		teleop.Autonomous: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		teleop.Teleop:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		teleop.Test:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
	}
)

type runModel struct {
	ctrl     *teleop.Controller
	pad      *control.Gamepad
	table    *telemetry.Table
	updates  <-chan telemetry.Update
	chart    *streamlinechart.Model
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	state    teleop.State
	quitting bool
}

func (m *runModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the controller
type stateMsg teleop.State
type logMsg string
type updateMsg telemetry.Update

func waitForState(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

func waitForUpdate(updates <-chan telemetry.Update) tea.Cmd {
	return func() tea.Msg {
		return updateMsg(<-updates)
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *runModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 12 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 8 {
		height = 8
	}
	return width, height
}

func (m *runModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialRunModel(ctrl *teleop.Controller, pad *control.Gamepad, tbl *telemetry.Table) runModel {
	// Free speed at the 8 V peak is about 66 rps.
	chart := streamlinechart.New(80, 12,
		streamlinechart.WithYRange(-70, 70),
	)

	for name, color := range seriesColors {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}

	return runModel{
		ctrl:    ctrl,
		pad:     pad,
		table:   tbl,
		updates: tbl.Subscribe(64),
		chart:   &chart,
	}
}

func (m runModel) Init() tea.Cmd {
	// Start listening for state, log and telemetry updates
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
		waitForUpdate(m.updates),
	)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case stateMsg:
		m.state = teleop.State(msg)
		m.chart.DrawAll()
		return m, waitForState(m.ctrl)

	case updateMsg:
		if _, ok := seriesColors[msg.Key]; ok {
			m.chart.PushDataSet(msg.Key, msg.Value)
		}
		return m, waitForUpdate(m.updates)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m runModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	// phases
	case "e":
		m.ctrl.SetPhase(teleop.Teleop)
	case " ":
		m.ctrl.SetPhase(teleop.Disabled)
	case "o":
		m.ctrl.SetPhase(teleop.Autonomous)
	case "t":
		m.ctrl.SetPhase(teleop.Test)

	// gamepad; terminals report no key release, so buttons toggle
	case "l":
		m.pad.Toggle(control.LeftBumper)
	case "r":
		m.pad.Toggle(control.RightBumper)
	case "a":
		m.pad.Toggle(control.ButtonA)
	case "b":
		m.pad.Toggle(control.ButtonB)
	case "up":
		m.pad.Nudge(stickStep)
	case "down":
		m.pad.Nudge(-stickStep)
	case "0":
		m.pad.Center()
	case "c":
		m.pad.ReleaseAll()
	case "x":
		_, err := m.pad.Snapshot()
		m.pad.SetConnected(err != nil)

	// setpoints
	case "[", "]":
		m.adjustSetpoint(telemetry.ShooterTopSetpoint, key == "]")
	case "{", "}":
		m.adjustSetpoint(telemetry.ShooterBottomSetpoint, key == "}")
	}
	return m, nil
}

func (m runModel) adjustSetpoint(key string, up bool) {
	v := m.table.Number(key, robot.DefaultSetpoint)
	if up {
		v += setpointStep
	} else {
		v -= setpointStep
	}
	m.table.Publish(key, v)
}

func (m runModel) View() string {
	if m.quitting {
		return "Robot stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("shooterbot"))
	sb.WriteString(fmt.Sprintf(" - %d Hz  ", m.ctrl.Hz()))
	phase := m.ctrl.Phase()
	sb.WriteString(phaseStyles[phase].Render(strings.ToUpper(phase.String())))
	if m.ctrl.Robot().Simulated() {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [simulation t=%.1fs]", m.state.SimTime)))
	}
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	sb.WriteString(m.renderActuators())
	sb.WriteString("\n")
	sb.WriteString(m.renderGamepad())
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("e teleop · space disable · o auto · t test · l/r bumpers · a/b buttons · ↑/↓/0 stick · c release · x unplug · [ ] { } setpoints · q quit"))
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20)).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("No messages")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (m runModel) renderActuators() string {
	rows := make([][]string, 0, len(robot.AllRoles()))
	for _, role := range robot.AllRoles() {
		rows = append(rows, []string{
			string(role),
			m.state.Modes[role].String(),
			fmt.Sprintf("%7.2f", m.state.Velocities[role]),
		})
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(statusStyle).
		Headers("Actuator", "Mode", "rps").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 1 && row >= 0 && row < len(rows) && !isNeutral(rows[row][1]) {
				return activeStyle
			}
			return cellStyle
		})

	var side strings.Builder
	side.WriteString(fmt.Sprintf("Rejected commands %d\n\n", m.state.Rejected))
	for _, key := range m.table.Keys() {
		v, _ := m.table.Lookup(key)
		side.WriteString(fmt.Sprintf("%-22s %8.2f\n", key, v))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, t.Render(), "  ", side.String())
}

func isNeutral(mode string) bool {
	return mode == robot.Brake.String() || mode == robot.IntakeBrake.String()
}

func (m runModel) renderGamepad() string {
	in, err := m.pad.Snapshot()
	if err != nil {
		return statusStyle.Render("Gamepad: disconnected")
	}

	var items []string
	for _, b := range []control.Button{control.LeftBumper, control.RightBumper, control.ButtonA, control.ButtonB} {
		if m.pad.Held(b) {
			items = append(items, heldStyle.Render(b.String()))
		} else {
			items = append(items, statusStyle.Render(b.String()))
		}
	}
	items = append(items, fmt.Sprintf("stick %+.2f", in.LeftY))
	return "Gamepad: " + strings.Join(items, "  ")
}

func renderLegend() string {
	var items []string
	for _, name := range []string{telemetry.ShooterTopVel, telemetry.ShooterBottomVel} {
		color := seriesColors[name]
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
		item := colorStyle.Render("━━") + " " + name
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func (c *RunCommand) Execute(args []string) error {
	cfg, found, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", opts.Config, err)
		os.Exit(1)
	}
	if !found {
		fmt.Printf("No %s found, using built-in robot wiring\n", opts.Config)
	} else {
		fmt.Printf("Loaded configuration from %s\n", opts.Config)
	}
	if c.Hz > 0 {
		cfg.Hz = c.Hz
	}
	if c.Simulate {
		cfg.Simulate = true
	}
	if !cfg.Simulate && cfg.Bus.Port == "" {
		fmt.Fprintln(os.Stderr, "No motor bus port configured. Run 'shooterbot setup' or pass --simulate.")
		os.Exit(1)
	}

	pad := control.NewGamepad()
	tbl := telemetry.NewTable()

	ctrl, err := buildController(cfg, pad, tbl)
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	if c.Teleop {
		ctrl.SetPhase(teleop.Teleop)
	}

	// Start controller in background
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := ctrl.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Controller error: %v", err)
		}
	}()

	// Run TUI
	p := tea.NewProgram(initialRunModel(ctrl, pad, tbl), tea.WithAltScreen())
	_, runErr := p.Run()

	// Stop the loop and let it brake before the bus goes away.
	cancel()
	if err := ctrl.Close(); err != nil {
		log.Printf("Error closing hardware: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Error running program: %v", runErr)
	}

	return nil
}
