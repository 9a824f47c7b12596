package usecases

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/geomeasure/internal/core/domain"
)

// kmPerMile is the display conversion factor: 1.6, not 1.609344.
const kmPerMile = 1.6

// Format renders a measurement result for display using prefs. Units are
// taken from prefs as passed, so callers must read the current toggles at
// the moment of formatting.
//
// Values are rounded to two decimals before unit conversion. Mileage is
// rounded again after dividing by 1.6; radians are shown unrounded.
func Format(result domain.MeasurementResult, prefs domain.UnitPreference) string {
	switch result.Kind {
	case domain.ResultLength:
		azimuth := toFixed(result.BearingDeg, 2)
		if prefs.Distance == domain.Miles {
			miles := roundTo(result.DistanceKm, 2) / kmPerMile
			return fmt.Sprintf("Length: %s Miles\nAzimuth: %s°", toFixed(miles, 2), azimuth)
		}
		return fmt.Sprintf("Length: %s km\nAzimuth: %s°", toFixed(result.DistanceKm, 2), azimuth)

	case domain.ResultAngle:
		if prefs.Angle == domain.Radians {
			rad := roundTo(result.AngleDeg, 2) * (math.Pi / 180)
			return fmt.Sprintf("The angle is: %s Rad", strconv.FormatFloat(rad, 'f', -1, 64))
		}
		return fmt.Sprintf("The angle is: %s°", toFixed(result.AngleDeg, 2))
	}
	return ""
}

// toFixed formats v with the given number of decimals, rounding exact binary
// ties away from zero (strconv rounds them to even).
func toFixed(v float64, digits int) string {
	s := strconv.FormatFloat(v, 'f', digits, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s
	}

	exact := strconv.FormatFloat(math.Abs(v), 'f', digits+30, 64)
	dot := strings.IndexByte(exact, '.')
	tail := exact[dot+1+digits:]
	if tail[0] != '5' || strings.Trim(tail[1:], "0") != "" {
		return s
	}

	// Exact tie: bump the last digit away from zero.
	step := math.Pow(10, -float64(digits))
	up := math.Abs(v) + step/2
	s = strconv.FormatFloat(up, 'f', digits, 64)
	if v < 0 {
		s = "-" + s
	}
	return s
}

// roundTo mirrors Number(v.toFixed(digits)).
func roundTo(v float64, digits int) float64 {
	f, err := strconv.ParseFloat(toFixed(v, digits), 64)
	if err != nil {
		return v
	}
	return f
}
