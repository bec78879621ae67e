package internal

import "math"

// Inspired by https://github.com/LucaTheHacker/go-haversine

const (
	// earthRadiusMeters is the mean Earth radius used for great-circle distances.
	earthRadiusMeters float64 = 6371000
	// mercatorRadiusMeters is the WGS84 equatorial radius used by the
	// spherical Web Mercator projection (EPSG:3857). Feature-info query
	// boxes must be expressed in the same projection as the map tiles.
	mercatorRadiusMeters float64 = 6378137
	// metersPerDegreeLat is the flat-earth latitude scaling, valid for
	// offsets of a few hundred meters.
	metersPerDegreeLat float64 = 111320
)

// Coordinates is a geographic point in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

// HaversineMeters calculates the great-circle distance between two points
// in meters using the haversine formula.
func HaversineMeters(from, to Coordinates) float64 {
	fromLat := degreesToRadians(from.Lat)
	toLat := degreesToRadians(to.Lat)
	deltaLat := degreesToRadians(to.Lat - from.Lat)
	deltaLon := degreesToRadians(to.Lon - from.Lon)

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(fromLat)*
			math.Cos(toLat)*
			math.Pow(math.Sin(deltaLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return c * earthRadiusMeters
}

// ToWebMercator projects a geographic point into spherical Web Mercator
// (EPSG:3857) meters.
func ToWebMercator(lat, lon float64) (x, y float64) {
	x = mercatorRadiusMeters * degreesToRadians(lon)
	y = mercatorRadiusMeters * math.Log(math.Tan(math.Pi/4+degreesToRadians(lat)/2))

	return x, y
}

// BoundingBoxAround returns a square box of 2*halfSizeMeters side length in
// Web Mercator meters, centered on the given point.
func BoundingBoxAround(lat, lon, halfSizeMeters float64) (minX, minY, maxX, maxY float64) {
	x, y := ToWebMercator(lat, lon)

	return x - halfSizeMeters, y - halfSizeMeters, x + halfSizeMeters, y + halfSizeMeters
}

// OffsetMeters moves a point by the given east and north distances using a
// local flat-earth approximation. Only valid for small offsets, up to a few
// hundred meters.
func OffsetMeters(lat, lon, eastMeters, northMeters float64) (float64, float64) {
	newLat := lat + northMeters/metersPerDegreeLat
	newLon := lon + eastMeters/(metersPerDegreeLat*math.Cos(degreesToRadians(lat)))

	return newLat, newLon
}

// RingPoints returns count points evenly spaced by angle on a circle of
// radiusMeters around the center, starting due north and going clockwise.
func RingPoints(lat, lon, radiusMeters float64, count int) []Coordinates {
	points := make([]Coordinates, 0, count)
	for i := range count {
		angle := 2 * math.Pi * float64(i) / float64(count)
		east := radiusMeters * math.Sin(angle)
		north := radiusMeters * math.Cos(angle)
		pointLat, pointLon := OffsetMeters(lat, lon, east, north)
		points = append(points, Coordinates{Lat: pointLat, Lon: pointLon})
	}

	return points
}
