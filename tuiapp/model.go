package tuiapp

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gen2brain/beeep"

	"github.com/askja/dronecheck/internal"
)

const (
	// nudgeStep is the coordinate delta per arrow key press, roughly 55 m
	// of latitude. Nudging stands in for dragging a map marker.
	nudgeStep = 0.0005
	// nudgeStepLarge is the shift-arrow delta, roughly 550 m of latitude.
	nudgeStepLarge = 0.005
)

// Model implements the bubbletea.Model interface, which requires three methods:
// - Init() Cmd
// - Update(Msg) (Model, Cmd)
// - View() string
// This forms the base for the TUI app.
type model struct {
	width     int
	height    int
	baseStyle lipgloss.Style
	theme     Theme
	appName   string

	state    uiState
	input    textinput.Model
	inputErr string

	engine *internal.Engine
	fence  *internal.Geofence
	logger *slog.Logger

	lat       float64
	lon       float64
	hasPoint  bool
	checking  bool
	stage     internal.RunStage
	advisory  *internal.Advisory
	fenceNote string
}

// Init schedules the cursor blink and, when a launch coordinate was given on
// the command line, the first classification run.
func (m *model) Init() tea.Cmd {
	if m.hasPoint {
		return tea.Batch(textinput.Blink, m.setPoint(m.lat, m.lon))
	}

	return textinput.Blink
}

// Update takes a tea.Msg as input and uses a type switch to handle different
// types of messages.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn // required by interface
	switch thisMsg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = thisMsg.Height
		m.width = thisMsg.Width

	case tea.KeyMsg:
		return m.updateKey(thisMsg)

	case CheckingMsg:
		// Stale tokens are dropped so a superseded run can't repaint the
		// status line.
		if thisMsg.Token == m.engine.CurrentToken() {
			m.checking = true
			m.stage = thisMsg.Stage
		}

		return m, nil

	case AdvisoryMsg:
		if thisMsg.Lat != m.lat || thisMsg.Lon != m.lon {
			return m, nil
		}
		advisory := thisMsg.Advisory
		m.advisory = &advisory
		m.checking = false
		if advisory.Level == internal.LevelRed {
			if err := beeep.Notify(m.appName, advisory.Title+": "+advisory.Detail, ""); err != nil {
				m.logger.Error("notification failed", slog.Any("error", err))
			}
		}

		return m, nil

	case SupersededMsg:
		return m, nil
	}

	return m, nil
}

func (m *model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) { //nolint:ireturn // required by interface
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	// Toggles between typing a coordinate and nudging the pin.
	case "esc":
		if m.state == stateEntering {
			m.state = stateNudging
			m.input.Blur()
		} else {
			m.state = stateEntering
			m.input.Focus()
		}

		return m, nil

	case "enter":
		if m.state == stateEntering {
			return m, m.submit()
		}

		return m, nil
	}

	if m.state == stateEntering {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "e":
		m.engine.SetExpertMode(!m.engine.ExpertMode())
		if m.hasPoint {
			return m, m.setPoint(m.lat, m.lon)
		}

		return m, nil
	case "up", "k":
		return m, m.nudge(nudgeStep, 0)
	case "down", "j":
		return m, m.nudge(-nudgeStep, 0)
	case "left", "h":
		return m, m.nudge(0, -nudgeStep)
	case "right", "l":
		return m, m.nudge(0, nudgeStep)
	case "shift+up", "K":
		return m, m.nudge(nudgeStepLarge, 0)
	case "shift+down", "J":
		return m, m.nudge(-nudgeStepLarge, 0)
	case "shift+left", "H":
		return m, m.nudge(0, -nudgeStepLarge)
	case "shift+right", "L":
		return m, m.nudge(0, nudgeStepLarge)
	}

	return m, nil
}

// submit validates the manual entry synchronously; out-of-range input never
// reaches the engine.
func (m *model) submit() tea.Cmd {
	lat, lon, err := internal.ParseLatLon(m.input.Value())
	if err != nil {
		m.inputErr = err.Error()

		return nil
	}
	m.inputErr = ""

	return m.setPoint(lat, lon)
}

func (m *model) nudge(deltaLat, deltaLon float64) tea.Cmd {
	if !m.hasPoint {
		return nil
	}

	return m.setPoint(m.lat+deltaLat, m.lon+deltaLon)
}

// setPoint clamps the coordinate into the operating area and starts a new
// classification run. The engine cancels whatever run was still in flight.
func (m *model) setPoint(lat, lon float64) tea.Cmd {
	clampedLat, clampedLon, wasInside := m.fence.Clamp(lat, lon)
	if wasInside {
		m.fenceNote = ""
	} else {
		m.fenceNote = "Outside the operating area; pin clamped to the boundary."
		if m.fence.AllowNotice() {
			if err := beeep.Notify(m.appName, m.fenceNote, ""); err != nil {
				m.logger.Error("notification failed", slog.Any("error", err))
			}
		}
	}

	m.lat = clampedLat
	m.lon = clampedLon
	m.hasPoint = true
	m.checking = true
	m.stage = internal.StageDirectQuery
	m.advisory = nil

	return classifyCmd(m.engine, m.lat, m.lon)
}

func (m *model) View() string {
	column := m.baseStyle.Width(m.width).Padding(1, 0, 0, 0).Render

	return m.baseStyle.
		Width(m.width).
		Height(m.height).
		Render(
			lipgloss.JoinVertical(lipgloss.Left,
				column(m.viewHeader()),
				column(m.viewAdvisory()),
				column(m.viewInput()),
				column(m.viewHelp()),
			),
		)
}

func (m *model) viewHeader() string {
	header := m.baseStyle.Bold(true).Render(m.appName + " — Iceland drone zone advisory")

	mode := "airport policy active"
	if m.engine.ExpertMode() {
		mode = "expert mode (airport policy off)"
	}

	position := "no pin set"
	if m.hasPoint {
		position = fmt.Sprintf("pin at %.5f, %.5f", m.lat, m.lon)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.baseStyle.Foreground(m.theme.Secondary).Render(position+" · "+mode),
	)
}

func (m *model) viewAdvisory() string {
	if m.checking {
		return m.baseStyle.Foreground(m.theme.Secondary).
			Render(fmt.Sprintf("checking… (%s)", m.stage))
	}

	if m.advisory == nil {
		return m.baseStyle.Foreground(m.theme.Secondary).
			Render("Enter a coordinate to get an advisory.")
	}

	advisory := *m.advisory
	badge := m.levelStyle(advisory.Level).Bold(true).
		Render(" " + advisory.Level.String() + " ")

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Left, badge, " ", m.baseStyle.Bold(true).Render(advisory.Title)),
		advisory.Detail,
	}
	if advisory.ZoneName != "" {
		lines = append(lines, "Zone: "+advisory.ZoneName)
	}
	lines = append(lines, "Confidence: "+string(advisory.Confidence))
	if advisory.Note != "" {
		lines = append(lines, m.baseStyle.Foreground(m.theme.Secondary).Render(advisory.Note))
	}

	panel := m.baseStyle.
		Border(lipgloss.NormalBorder()).
		BorderForeground(m.levelColor(advisory.Level)).
		Padding(0, 1)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *model) viewInput() string {
	lines := []string{m.input.View()}
	if m.inputErr != "" {
		lines = append(lines, m.levelStyle(internal.LevelYellow).Render(m.inputErr))
	}
	if m.fenceNote != "" {
		lines = append(lines, m.baseStyle.Foreground(m.theme.Secondary).Render(m.fenceNote))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *model) viewHelp() string {
	help := "enter: check · esc: toggle nudge/type · arrows: drag pin (shift: faster) · e: expert mode · q: quit"

	return m.baseStyle.Foreground(m.theme.Border).Render(help)
}

func (m *model) levelColor(level internal.AdvisoryLevel) lipgloss.AdaptiveColor {
	switch level {
	case internal.LevelRed:
		return m.theme.Red
	case internal.LevelYellow:
		return m.theme.Yellow
	case internal.LevelInfo:
		return m.theme.Info
	default:
		return m.theme.Green
	}
}

func (m *model) levelStyle(level internal.AdvisoryLevel) lipgloss.Style {
	return m.baseStyle.Foreground(m.levelColor(level))
}
