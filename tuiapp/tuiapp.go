// Package tuiapp provides the interactive TUI which takes a coordinate,
// classifies it against the live zone services and renders the advisory.
// Layout idea:
// +-------------------------------------------------+
// | dronecheck - Iceland drone zone advisory        |
// | pin at 64.14660, -21.94260 · airport policy on  |
// |  _______________________________                |
// | | YELLOW  Protected area        |               |
// | | This point lies inside a ...  |               |
// | | Confidence: high              |               |
// |  -------------------------------                |
// | lat,lon> 64.1466, -21.9426                      |
// | enter: check · esc: nudge · e: expert · q: quit |
// +-------------------------------------------------+
// .
package tuiapp

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/askja/dronecheck/internal"
)

type Theme struct {
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Green     lipgloss.AdaptiveColor
	Yellow    lipgloss.AdaptiveColor
	Info      lipgloss.AdaptiveColor
	Red       lipgloss.AdaptiveColor
}

var Color = Theme{ //nolint:gochecknoglobals // palette constant
	Primary:   lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"},
	Secondary: lipgloss.AdaptiveColor{Light: "#969B86", Dark: "#696969"},
	Highlight: lipgloss.AdaptiveColor{Light: "#8b2def", Dark: "#8b2def"},
	Border:    lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"},
	Green:     lipgloss.AdaptiveColor{Light: "#1F9D55", Dark: "#00FF00"},
	Yellow:    lipgloss.AdaptiveColor{Light: "#B7950B", Dark: "#FFD700"},
	Info:      lipgloss.AdaptiveColor{Light: "#1B6CA8", Dark: "#61AFEF"},
	Red:       lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF0000"},
}

func Run(appName string, options internal.Options) {
	// The TUI owns stdout, so logs go to a rotating file.
	logger := internal.NewLogger(appName, options.LogLevel, true)

	client := internal.NewZoneClient(options.Aviation, options.Protected, logger)
	engine := internal.NewEngine(client, internal.IcelandAirports(), logger)
	engine.SetExpertMode(options.Expert)
	engine.SetPerimeterRadius(options.PerimeterRadius)

	input := textinput.New()
	input.Prompt = "lat,lon> "
	input.Placeholder = "64.1466, -21.9426"
	input.CharLimit = 40
	input.Focus()

	m := model{
		baseStyle: lipgloss.NewStyle(),
		theme:     Color,
		appName:   appName,
		state:     stateEntering,
		input:     input,
		engine:    engine,
		fence:     internal.NewGeofence(),
		logger:    logger,
		lat:       options.Lat,
		lon:       options.Lon,
		hasPoint:  options.HasPoint,
	}

	p := tea.NewProgram(&m, tea.WithAltScreen())

	// Transient "checking…" notices flow through the program's message
	// queue; the model drops the ones whose token has gone stale.
	engine.Progress = func(token uint64, stage internal.RunStage) {
		p.Send(CheckingMsg{Token: token, Stage: stage})
	}

	if _, err := p.Run(); err != nil {
		logger.Error("error running program", slog.Any("error", err))
		os.Exit(1)
	}
}
