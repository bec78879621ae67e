package internal

import "math"

// AirportPolicyRadiusMeters is the fixed proximity radius of the static
// airport policy. Inside it the advisory is RED before any network query,
// unless the pilot enabled expert mode.
const AirportPolicyRadiusMeters float64 = 5000

// Airport is one entry of the static proximity-policy table.
type Airport struct {
	Code string
	Name string
	Lat  float64
	Lon  float64
}

// IcelandAirports returns the airports of the Iceland deployment. Positions
// are aerodrome reference points in decimal degrees.
func IcelandAirports() []Airport {
	return []Airport{
		{Code: "BIKF", Name: "Keflavík", Lat: 63.9850, Lon: -22.6056},
		{Code: "BIRK", Name: "Reykjavík", Lat: 64.1300, Lon: -21.9406},
		{Code: "BIAR", Name: "Akureyri", Lat: 65.6600, Lon: -18.0727},
		{Code: "BIEG", Name: "Egilsstaðir", Lat: 65.2833, Lon: -14.4014},
		{Code: "BIVM", Name: "Vestmannaeyjar", Lat: 63.4243, Lon: -20.2789},
		{Code: "BIIS", Name: "Ísafjörður", Lat: 66.0581, Lon: -23.1353},
		{Code: "BIHU", Name: "Húsavík", Lat: 65.9523, Lon: -17.4260},
		{Code: "BIHN", Name: "Höfn", Lat: 64.2956, Lon: -15.2272},
		{Code: "BIGR", Name: "Grímsey", Lat: 66.5458, Lon: -18.0173},
		{Code: "BIVO", Name: "Vopnafjörður", Lat: 65.7206, Lon: -14.8506},
	}
}

// NearestAirportWithin returns the closest listed airport within
// radiusMeters of the point, with its distance in meters.
func NearestAirportWithin(airports []Airport, lat, lon, radiusMeters float64) (Airport, float64, bool) {
	var nearest Airport
	nearestDist := math.MaxFloat64
	found := false

	point := Coordinates{Lat: lat, Lon: lon}
	for _, airport := range airports {
		dist := HaversineMeters(point, Coordinates{Lat: airport.Lat, Lon: airport.Lon})
		if dist <= radiusMeters && dist < nearestDist {
			nearest = airport
			nearestDist = dist
			found = true
		}
	}

	if !found {
		return Airport{}, 0, false
	}

	return nearest, nearestDist, true
}
