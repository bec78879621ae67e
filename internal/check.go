package internal

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// CombinedCheck aggregates both service outcomes for one coordinate. A
// failed fetch is recorded as a per-service error string; it degrades the
// advisory's confidence instead of failing the check.
type CombinedCheck struct {
	Aviation     AviationResult
	AviationErr  string
	Protected    ProtectedAreaResult
	ProtectedErr string
}

func (cc CombinedCheck) hadError() bool {
	return cc.AviationErr != "" || cc.ProtectedErr != ""
}

// Check queries both services concurrently at one point. Only cancellation
// makes Check itself fail; genuine upstream failures are captured in the
// returned value.
func (c *ZoneClient) Check(ctx context.Context, lat, lon float64) (CombinedCheck, error) {
	var combined CombinedCheck

	var group errgroup.Group
	group.Go(func() error {
		result, err := c.QueryAviation(ctx, lat, lon)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			combined.AviationErr = err.Error()

			return nil
		}
		combined.Aviation = result

		return nil
	})
	group.Go(func() error {
		result, err := c.QueryProtected(ctx, lat, lon)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			combined.ProtectedErr = err.Error()

			return nil
		}
		combined.Protected = result

		return nil
	})

	if err := group.Wait(); err != nil {
		return CombinedCheck{}, err
	}

	return combined, nil
}
