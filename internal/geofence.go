package internal

import (
	"sync"
	"time"
)

// Operating rectangle of the Iceland deployment in decimal degrees.
const (
	GeofenceLatMin float64 = 63.0
	GeofenceLatMax float64 = 67.6
	GeofenceLonMin float64 = -25.5
	GeofenceLonMax float64 = -12.0

	// noticeInterval throttles "outside the operating area" notices so
	// rapid pin dragging doesn't produce a notification storm.
	noticeInterval = 1200 * time.Millisecond
)

// Geofence enforces the hard operating boundary. Points outside are clamped
// to the nearest boundary point, one axis at a time, never rejected.
type Geofence struct {
	LatMin, LatMax float64
	LonMin, LonMax float64

	mu         sync.Mutex
	lastNotice time.Time
	now        func() time.Time
}

// NewGeofence returns a guard for the Iceland operating rectangle.
func NewGeofence() *Geofence {
	return &Geofence{
		LatMin: GeofenceLatMin,
		LatMax: GeofenceLatMax,
		LonMin: GeofenceLonMin,
		LonMax: GeofenceLonMax,
		now:    time.Now,
	}
}

// Contains reports whether the point lies inside the operating rectangle.
func (g *Geofence) Contains(lat, lon float64) bool {
	return lat >= g.LatMin && lat <= g.LatMax && lon >= g.LonMin && lon <= g.LonMax
}

// Clamp moves an outside point onto the nearest boundary. Inside points pass
// through unchanged; a second clamp of a clamped point is a no-op.
func (g *Geofence) Clamp(lat, lon float64) (float64, float64, bool) {
	wasInside := true

	if lat < g.LatMin {
		lat = g.LatMin
		wasInside = false
	} else if lat > g.LatMax {
		lat = g.LatMax
		wasInside = false
	}

	if lon < g.LonMin {
		lon = g.LonMin
		wasInside = false
	} else if lon > g.LonMax {
		lon = g.LonMax
		wasInside = false
	}

	return lat, lon, wasInside
}

// AllowNotice reports whether an out-of-bounds notice may be shown now and,
// if so, consumes the notice slot. At most one notice per 1.2 s gets through.
func (g *Geofence) AllowNotice() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.lastNotice) < noticeInterval {
		return false
	}
	g.lastNotice = now

	return true
}
