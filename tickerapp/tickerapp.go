// Package tickerapp launches the line-oriented application which classifies
// a single coordinate given on the command line, or a stream of "lat,lon"
// fixes read from stdin, and writes advisories to stdout so they can be
// piped into other programs.
// This is in contrast to the TUI app, which works more like htop.
package tickerapp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/askja/dronecheck/internal"
)

func Run(appName string, options internal.Options) {
	logger := internal.NewLogger(appName, options.LogLevel, false)

	stdout := io.Writer(os.Stdout)
	notify := newNotify(appName, &stdout)

	client := internal.NewZoneClient(options.Aviation, options.Protected, logger)
	engine := internal.NewEngine(client, internal.IcelandAirports(), logger)
	engine.SetExpertMode(options.Expert)
	engine.SetPerimeterRadius(options.PerimeterRadius)

	fence := internal.NewGeofence()

	// One-shot mode: classify the launch coordinate and exit.
	if options.HasPoint {
		classifyFix(engine, fence, notify, logger, options.Lat, options.Lon)

		return
	}

	fmt.Printf("%s reading lat,lon fixes from stdin\n", appName)

	// Use a channel to gracefully stop the program if needed.
	fixes := make(chan internal.Coordinates)
	go readFixes(os.Stdin, fixes, notify)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case fix, ok := <-fixes:
			if !ok {
				logger.Info("input closed, stopping")

				return
			}
			classifyFix(engine, fence, notify, logger, fix.Lat, fix.Lon)
		case <-sigc:
			logger.Info("shutdown signal received, stopping")

			return
		}
	}
}

// readFixes parses GPS-style "lat,lon" lines. Malformed lines are reported
// on the spot and skipped; they never reach the engine.
func readFixes(reader io.Reader, fixes chan<- internal.Coordinates, notify *notify) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		lat, lon, err := internal.ParseLatLon(line)
		if err != nil {
			notify.Stdout.Printf("invalid fix %q: %v", line, err)

			continue
		}

		fixes <- internal.Coordinates{Lat: lat, Lon: lon}
	}
	close(fixes)
}

func classifyFix(engine *internal.Engine, fence *internal.Geofence, notify *notify,
	logger *slog.Logger, lat, lon float64,
) {
	clampedLat, clampedLon, wasInside := fence.Clamp(lat, lon)
	if !wasInside {
		notify.OutsideArea(fence, clampedLat, clampedLon)
	}

	advisory, err := engine.Classify(context.Background(), clampedLat, clampedLon)
	if err != nil {
		// Superseded runs can't happen on this sequential path, but a
		// lost run is still not worth printing.
		logger.Debug("run produced no advisory", slog.Any("error", err))

		return
	}

	notify.EmitAdvisory(clampedLat, clampedLon, advisory)
}

// newNotify is separated from Run so tests can aim the console at a buffer.
func newNotify(appName string, consoleOut *io.Writer) *notify {
	return &notify{
		appName: appName,
		Stdout:  *log.New(*consoleOut, "", 0),
	}
}
