package internal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Default Iceland deployment endpoints. Both are OGC WMS servers answering
// GetFeatureInfo; they can be overridden on the command line.
const (
	DefaultAviationURL    = "https://gis.isavia.is/geoserver/wms"
	DefaultAviationLayer  = "drone:airspace_restrictions"
	DefaultProtectedURL   = "https://gis.ust.is/geoserver/wms"
	DefaultProtectedLayer = "fridlyst:fridlyst_svaedi"
)

// Options carries the launch configuration shared by the ticker and TUI apps.
type Options struct {
	Lat      float64
	Lon      float64
	HasPoint bool

	Expert          bool
	PerimeterRadius float64
	LogLevel        string

	Aviation  WMSService
	Protected WMSService
}

var (
	ErrLatLonFormat = errors.New("expected \"lat,lon\" in decimal degrees")
	ErrLatRange     = errors.New("latitude must be between -90 and 90")
	ErrLonRange     = errors.New("longitude must be between -180 and 180")
)

// ParseLatLon parses a manual "lat,lon" entry and rejects out-of-range
// values synchronously, before anything touches the network.
func ParseLatLon(input string) (float64, float64, error) {
	parts := strings.Split(strings.TrimSpace(input), ",")
	if len(parts) != 2 {
		return 0, 0, ErrLatLonFormat
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if latErr != nil {
		return 0, 0, fmt.Errorf("parseLatLon: %w", ErrLatLonFormat)
	}
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if lonErr != nil {
		return 0, 0, fmt.Errorf("parseLatLon: %w", ErrLatLonFormat)
	}

	if lat < -90 || lat > 90 {
		return 0, 0, ErrLatRange
	}
	if lon < -180 || lon > 180 {
		return 0, 0, ErrLonRange
	}

	return lat, lon, nil
}
