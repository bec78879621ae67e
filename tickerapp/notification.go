package tickerapp

import (
	"fmt"
	"log" //nolint:depguard // plain console output, not diagnostics

	"github.com/charmbracelet/lipgloss"
	"github.com/gen2brain/beeep"

	"github.com/askja/dronecheck/internal"
)

// Advisory level colors for the console line.
var levelStyles = map[internal.AdvisoryLevel]lipgloss.Style{ //nolint:gochecknoglobals // palette constant
	internal.LevelRed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	internal.LevelYellow: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	internal.LevelInfo:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	internal.LevelGreen:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
}

type notify struct {
	appName string
	Stdout  log.Logger
}

// EmitAdvisory writes one console line per advisory and raises a desktop
// notification for RED, mirroring how a pilot would want to be interrupted.
func (n *notify) EmitAdvisory(lat, lon float64, advisory internal.Advisory) {
	badge := levelStyles[advisory.Level].Render(advisory.Level.String())

	line := fmt.Sprintf("%.5f,%.5f  %s  %s — %s (confidence %s)",
		lat, lon, badge, advisory.Title, advisory.Detail, advisory.Confidence)
	if advisory.ZoneName != "" {
		line += fmt.Sprintf(" [%s]", advisory.ZoneName)
	}
	if advisory.Note != "" {
		line += " · " + advisory.Note
	}
	n.Stdout.Println(line)

	if advisory.Level == internal.LevelRed {
		if err := beeep.Notify(n.appName, advisory.Title+": "+advisory.Detail, ""); err != nil {
			n.Stdout.Printf("notification failed: %v", err)
		}
	}
}

// OutsideArea reports a clamped fix. The geofence throttles the desktop
// notification; the console line always prints.
func (n *notify) OutsideArea(fence *internal.Geofence, clampedLat, clampedLon float64) {
	n.Stdout.Printf("fix outside the operating area, clamped to %.5f,%.5f", clampedLat, clampedLon)

	if fence.AllowNotice() {
		if err := beeep.Notify(n.appName, "Fix outside the operating area; clamped to the boundary.", ""); err != nil {
			n.Stdout.Printf("notification failed: %v", err)
		}
	}
}
