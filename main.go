// Package main provides the drone zone advisory application
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/askja/dronecheck/internal"
	"github.com/askja/dronecheck/tickerapp"
	"github.com/askja/dronecheck/tuiapp"
)

const (
	// thisAppName is the name of this application as shown on notifications.
	thisAppName = "dronecheck"
)

func main() {
	var argIsUseTicker bool
	var argLatLon []float64
	var argExpert bool
	var argRadius float64
	var argLogLevel string
	var argAviationURL, argAviationLayer string
	var argProtectedURL, argProtectedLayer string

	setupCommandLineFlags(
		&argIsUseTicker, &argLatLon, &argExpert, &argRadius, &argLogLevel,
		&argAviationURL, &argAviationLayer, &argProtectedURL, &argProtectedLayer)

	// Parse all arguments provided to the program on launch.
	pflag.Parse()

	options := internal.Options{
		Expert:          argExpert,
		PerimeterRadius: argRadius,
		LogLevel:        argLogLevel,
		Aviation:        internal.WMSService{BaseURL: argAviationURL, Layer: argAviationLayer},
		Protected:       internal.WMSService{BaseURL: argProtectedURL, Layer: argProtectedLayer},
	}

	if len(argLatLon) > 0 {
		if len(argLatLon) != 2 {
			fmt.Fprintln(os.Stderr, "--latlon wants exactly two values: lat,lon")
			os.Exit(2)
		}
		if _, _, err := internal.ParseLatLon(fmt.Sprintf("%v,%v", argLatLon[0], argLatLon[1])); err != nil {
			fmt.Fprintf(os.Stderr, "--latlon: %v\n", err)
			os.Exit(2)
		}
		options.Lat = argLatLon[0]
		options.Lon = argLatLon[1]
		options.HasPoint = true
	}

	if argIsUseTicker {
		tickerapp.Run(thisAppName, options)
	} else {
		tuiapp.Run(thisAppName, options)
	}
}

func setupCommandLineFlags(
	argIsUseTicker *bool, argLatLon *[]float64, argExpert *bool, argRadius *float64,
	argLogLevel *string, argAviationURL, argAviationLayer, argProtectedURL, argProtectedLayer *string,
) {
	// Whether to launch the ticker or TUI app.
	pflag.BoolVarP(
		argIsUseTicker,
		"ticker",
		"t",
		false,
		"print advisories on the command line without TUI")
	pflag.Lookup("ticker").NoOptDefVal = "true"

	// Coordinate to check, provided as lat,lon.
	pflag.Float64SliceVarP(
		argLatLon,
		"latlon",
		"l",
		nil,
		"coordinate to check, as lat,lon in decimal degrees")

	// Expert mode disables the airport proximity pre-check. It relies
	// solely on live zone-service data and never upgrades risk.
	pflag.BoolVarP(
		argExpert,
		"expert",
		"e",
		false,
		"disable the conservative airport proximity policy")
	pflag.Lookup("expert").NoOptDefVal = "true"

	pflag.Float64Var(
		argRadius,
		"radius",
		internal.DefaultPerimeterRadius,
		"perimeter scan radius in meters")

	pflag.StringVar(
		argLogLevel,
		"log-level",
		"info",
		"log level: debug, info, warn or error")

	pflag.StringVar(
		argAviationURL,
		"aviation-url",
		internal.DefaultAviationURL,
		"WMS endpoint of the aviation zone service")
	pflag.StringVar(
		argAviationLayer,
		"aviation-layer",
		internal.DefaultAviationLayer,
		"queryable layer of the aviation zone service")
	pflag.StringVar(
		argProtectedURL,
		"protected-url",
		internal.DefaultProtectedURL,
		"WMS endpoint of the protected-area service")
	pflag.StringVar(
		argProtectedLayer,
		"protected-layer",
		internal.DefaultProtectedLayer,
		"queryable layer of the protected-area service")
}
