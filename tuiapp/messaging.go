package tuiapp

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askja/dronecheck/internal"
)

// AdvisoryMsg carries the winning run's advisory together with the
// coordinate it was computed for. The model drops it if the pin has moved on.
type AdvisoryMsg struct {
	Advisory internal.Advisory
	Lat      float64
	Lon      float64
}

// SupersededMsg signals a run that lost to a newer one; the model ignores it
// so the UI never flickers back to a stale state.
type SupersededMsg struct{}

// CheckingMsg is the transient progress notice of an in-flight run. The
// model drops it once its token is no longer current.
type CheckingMsg struct {
	Token uint64
	Stage internal.RunStage
}

func classifyCmd(engine *internal.Engine, lat, lon float64) tea.Cmd {
	return func() tea.Msg {
		advisory, err := engine.Classify(context.Background(), lat, lon)
		if err != nil {
			return SupersededMsg{}
		}

		return AdvisoryMsg{Advisory: advisory, Lat: lat, Lon: lon}
	}
}
