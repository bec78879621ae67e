package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrSuperseded is returned by classification runs that lost to a newer run.
// Such runs must not be rendered; this is not a failure.
var ErrSuperseded = errors.New("classification run superseded")

// RunStage identifies a transient progress event. The UI shows it as a
// "checking…" notice and must drop events whose token is no longer current.
type RunStage string

const (
	StageDirectQuery RunStage = "direct query"
	StagePerimeter   RunStage = "perimeter scan"
)

// Engine is the zone-classification session object. It owns the run token
// counter, the cancellation handle of the in-flight run, the airport policy
// table and the expert-mode flag. Only Classify advances the token; at most
// one run per engine ever commits a result.
type Engine struct {
	checker         pointChecker
	airports        []Airport
	perimeterRadius float64
	logger          *slog.Logger

	// Progress, when set, receives transient stage notifications for the
	// given run token.
	Progress func(token uint64, stage RunStage)

	mu     sync.Mutex
	expert bool
	token  uint64
	cancel context.CancelFunc
}

func NewEngine(checker pointChecker, airports []Airport, logger *slog.Logger) *Engine {
	return &Engine{
		checker:         checker,
		airports:        airports,
		perimeterRadius: DefaultPerimeterRadius,
		logger:          logger,
	}
}

// SetPerimeterRadius overrides the default 500 m boundary-scan radius.
func (e *Engine) SetPerimeterRadius(meters float64) {
	if meters > 0 {
		e.perimeterRadius = meters
	}
}

// SetExpertMode toggles the pilot override that disables the airport
// proximity pre-check. It never upgrades risk; it only removes a
// conservative floor.
func (e *Engine) SetExpertMode(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expert = on
}

func (e *Engine) ExpertMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.expert
}

// CurrentToken returns the token of the newest run.
func (e *Engine) CurrentToken() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.token
}

// beginRun cancels any still-in-flight run and hands out the next token.
// Single-flight discipline: only the newest request set is allowed to
// complete meaningfully.
func (e *Engine) beginRun(parent context.Context) (context.Context, context.CancelFunc, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
	e.token++
	ctx, cancel := context.WithCancel(parent)
	e.cancel = cancel

	return ctx, cancel, e.token
}

func (e *Engine) isCurrent(token uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return token == e.token
}

func (e *Engine) progress(token uint64, stage RunStage) {
	if e.Progress != nil {
		e.Progress(token, stage)
	}
}

// Classify runs the full decision procedure for one coordinate and returns
// exactly one advisory, or ErrSuperseded when a newer run started while this
// one was waiting on the network. Staleness is re-checked after every
// network join, since responses may arrive in any order.
func (e *Engine) Classify(parent context.Context, lat, lon float64) (Advisory, error) {
	ctx, cancel, token := e.beginRun(parent)
	defer cancel()

	expert := e.ExpertMode()
	e.logger.Debug("classification run started",
		slog.Uint64("token", token),
		slog.Float64("lat", lat),
		slog.Float64("lon", lon),
		slog.Bool("expert", expert))

	// The airport policy is a known, static danger zone: it pre-empts
	// every network query unless the pilot disabled it with expert mode.
	airport, airportDist, nearAirport := NearestAirportWithin(e.airports, lat, lon, AirportPolicyRadiusMeters)
	if nearAirport && !expert {
		return e.emit(token, Advisory{
			Level: LevelRed,
			Title: "Airport proximity",
			Detail: fmt.Sprintf("%.0f m from %s (%s); the %.0f m airport proximity policy applies.",
				airportDist, airport.Name, airport.Code, AirportPolicyRadiusMeters),
			Confidence: ConfidenceHigh,
		}), nil
	}

	e.progress(token, StageDirectQuery)
	direct, err := e.checker.Check(ctx, lat, lon)
	if err != nil {
		return Advisory{}, ErrSuperseded
	}
	if !e.isCurrent(token) {
		return Advisory{}, ErrSuperseded
	}

	aviationErred := direct.AviationErr != ""
	protectedErred := direct.ProtectedErr != ""
	confidence := deriveConfidence(aviationErred, protectedErred)
	note := unreachableNote(aviationErred, protectedErred)

	switch {
	case direct.Aviation.Level == AviationHit:
		return e.emit(token, Advisory{
			Level:      LevelRed,
			Title:      "Aviation zone",
			Detail:     "A rule-relevant aviation feature covers this point. Do not fly here.",
			ZoneName:   direct.Aviation.ZoneName,
			Confidence: confidence,
			Note:       note,
		}), nil
	case direct.Protected.Hit:
		return e.emit(token, Advisory{
			Level:      LevelYellow,
			Title:      "Protected area",
			Detail:     "This point lies inside a protected nature area. Local drone rules likely apply.",
			ZoneName:   direct.Protected.ZoneName,
			Confidence: confidence,
			Note:       note,
		}), nil
	case direct.Aviation.Level == AviationContext:
		return e.emit(token, Advisory{
			Level:      LevelInfo,
			Title:      "Aviation context",
			Detail:     "The aviation service returned informational content without a discrete feature. Check current NOTAMs before flying.",
			ZoneName:   direct.Aviation.ZoneName,
			Confidence: confidence,
			Note:       note,
		}), nil
	}

	// The center is clear; scan the perimeter for nearby boundaries a
	// conservative pilot should be warned about.
	e.progress(token, StagePerimeter)
	summary, scanErr := ScanPerimeter(ctx, e.checker, Coordinates{Lat: lat, Lon: lon}, e.perimeterRadius)
	if scanErr != nil {
		return Advisory{}, ErrSuperseded
	}
	if !e.isCurrent(token) {
		return Advisory{}, ErrSuperseded
	}

	aviationErred = aviationErred || summary.AviationErrors
	protectedErred = protectedErred || summary.ProtectedErrors
	confidence = deriveConfidence(aviationErred, protectedErred)
	note = unreachableNote(aviationErred, protectedErred)

	switch {
	case summary.NearAviation || summary.NearProtected:
		return e.emit(token, Advisory{
			Level:      LevelYellow,
			Title:      "Boundary proximity",
			Detail:     boundaryDetail(summary, e.perimeterRadius),
			Confidence: confidence,
			Note:       note,
		}), nil
	case direct.hadError() || summary.hadErrors():
		// Never report a false GREEN on degraded data.
		return e.emit(token, Advisory{
			Level:      LevelYellow,
			Title:      "Cannot confirm clear",
			Detail:     "No zone was found, but not all sources could be reached. Try again.",
			Confidence: confidence,
			Note:       note,
		}), nil
	case expert && nearAirport:
		return e.emit(token, Advisory{
			Level: LevelInfo,
			Title: "Airport nearby",
			Detail: fmt.Sprintf("No zone found, but %s (%s) is %.0f m away. The airport proximity policy is suppressed in expert mode.",
				airport.Name, airport.Code, airportDist),
			Confidence: confidence,
		}), nil
	default:
		return e.emit(token, Advisory{
			Level:      LevelGreen,
			Title:      "No zone found",
			Detail:     "Neither service reports a restriction at this point or on its perimeter.",
			Confidence: confidence,
		}), nil
	}
}

func boundaryDetail(summary PerimeterSummary, radiusMeters float64) string {
	switch {
	case summary.NearAviation && summary.NearProtected:
		return fmt.Sprintf("Aviation and protected-area boundaries lie within %.0f m of this point.", radiusMeters)
	case summary.NearAviation:
		return fmt.Sprintf("An aviation zone boundary lies within %.0f m of this point.", radiusMeters)
	default:
		return fmt.Sprintf("A protected-area boundary lies within %.0f m of this point.", radiusMeters)
	}
}

func (e *Engine) emit(token uint64, advisory Advisory) Advisory {
	e.logger.Debug("classification run finished",
		slog.Uint64("token", token),
		slog.String("level", advisory.Level.String()),
		slog.String("title", advisory.Title),
		slog.String("confidence", string(advisory.Confidence)))

	return advisory
}
