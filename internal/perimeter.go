package internal

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	// perimeterPoints is the number of ring samples around the center.
	perimeterPoints = 8
	// DefaultPerimeterRadius is the ring radius in meters.
	DefaultPerimeterRadius float64 = 500
)

// pointChecker runs the combined two-service check at one coordinate. It is
// satisfied by *ZoneClient and by test stubs.
type pointChecker interface {
	Check(ctx context.Context, lat, lon float64) (CombinedCheck, error)
}

// PerimeterSummary aggregates the ring checks around a center point into a
// boundary-proximity signal. Per-service error flags feed the confidence
// derivation.
type PerimeterSummary struct {
	NearAviation    bool
	NearProtected   bool
	AviationErrors  bool
	ProtectedErrors bool
}

func (s PerimeterSummary) hadErrors() bool {
	return s.AviationErrors || s.ProtectedErrors
}

// ScanPerimeter probes a ring of points concurrently and aggregates the
// results. A failure at one point degrades the summary, it does not abort
// the other probes; only cancellation stops the scan.
func ScanPerimeter(ctx context.Context, checker pointChecker, center Coordinates, radiusMeters float64) (PerimeterSummary, error) {
	points := RingPoints(center.Lat, center.Lon, radiusMeters, perimeterPoints)
	checks := make([]CombinedCheck, len(points))

	var group errgroup.Group
	for i, point := range points {
		group.Go(func() error {
			check, err := checker.Check(ctx, point.Lat, point.Lon)
			if err != nil {
				return err
			}
			checks[i] = check

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return PerimeterSummary{}, err
	}

	var summary PerimeterSummary
	for _, check := range checks {
		if check.Aviation.Level == AviationHit {
			summary.NearAviation = true
		}
		if check.Protected.Hit {
			summary.NearProtected = true
		}
		if check.AviationErr != "" {
			summary.AviationErrors = true
		}
		if check.ProtectedErr != "" {
			summary.ProtectedErrors = true
		}
	}

	return summary, nil
}
