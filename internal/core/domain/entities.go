package domain

import (
	"strings"
	"time"
)

// MeasurementMode selects what a drawn segment is used for.
type MeasurementMode string

const (
	ModeLength MeasurementMode = "length"
	ModeAngle  MeasurementMode = "angle"
)

// ParseMode converts a wire value into a MeasurementMode.
func ParseMode(s string) (MeasurementMode, error) {
	switch MeasurementMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLength:
		return ModeLength, nil
	case ModeAngle:
		return ModeAngle, nil
	}
	return "", unknown(ErrUnknownMode, s)
}

// DistanceUnit is the display unit for lengths.
type DistanceUnit string

const (
	Kilometers DistanceUnit = "km"
	Miles      DistanceUnit = "mi"
)

// AngleUnit is the display unit for angles.
type AngleUnit string

const (
	Degrees AngleUnit = "deg"
	Radians AngleUnit = "rad"
)

// ParseDistanceUnit accepts "km"/"kilometers" and "mi"/"miles".
func ParseDistanceUnit(s string) (DistanceUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "km", "kilometers":
		return Kilometers, nil
	case "mi", "mile", "miles":
		return Miles, nil
	}
	return "", unknown(ErrUnknownUnit, s)
}

// ParseAngleUnit accepts "deg"/"degrees" and "rad"/"radians".
func ParseAngleUnit(s string) (AngleUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deg", "degrees":
		return Degrees, nil
	case "rad", "radians":
		return Radians, nil
	}
	return "", unknown(ErrUnknownUnit, s)
}

// UnitPreference holds the two independent display toggles.
type UnitPreference struct {
	Distance DistanceUnit `json:"distance"`
	Angle    AngleUnit    `json:"angle"`
}

// DefaultUnitPreference is kilometers and degrees.
func DefaultUnitPreference() UnitPreference {
	return UnitPreference{Distance: Kilometers, Angle: Degrees}
}

// With returns p with the given toggles applied. An empty string keeps the
// current value; an unparseable one is an ErrUnknownUnit and p is returned
// unchanged.
func (p UnitPreference) With(distance, angle string) (UnitPreference, error) {
	out := p
	if distance != "" {
		d, err := ParseDistanceUnit(distance)
		if err != nil {
			return p, err
		}
		out.Distance = d
	}
	if angle != "" {
		a, err := ParseAngleUnit(angle)
		if err != nil {
			return p, err
		}
		out.Angle = a
	}
	return out, nil
}

// ResultKind tags a MeasurementResult.
type ResultKind string

const (
	ResultLength ResultKind = "length"
	ResultAngle  ResultKind = "angle"
)

// MeasurementResult is the raw numeric outcome of one measurement.
// Only the fields matching Kind are meaningful.
type MeasurementResult struct {
	Kind       ResultKind `json:"kind"`
	DistanceKm float64    `json:"distance_km"`
	BearingDeg float64    `json:"bearing_deg"`
	AngleDeg   float64    `json:"angle_deg"`
}

// LengthResult builds a length measurement.
func LengthResult(distanceKm, bearingDeg float64) MeasurementResult {
	return MeasurementResult{Kind: ResultLength, DistanceKm: distanceKm, BearingDeg: bearingDeg}
}

// AngleResult builds an angle measurement.
func AngleResult(angleDeg float64) MeasurementResult {
	return MeasurementResult{Kind: ResultAngle, AngleDeg: angleDeg}
}

// AppState is the explicit UI state that the session and the presenter read:
// the active mode and the unit toggles.
type AppState struct {
	Mode  MeasurementMode `json:"mode"`
	Units UnitPreference  `json:"units"`
}

// MeasurementEvent is broadcast after a result has been displayed.
type MeasurementEvent struct {
	SessionID string            `json:"session_id"`
	Mode      MeasurementMode   `json:"mode"`
	Units     UnitPreference    `json:"units"`
	Result    MeasurementResult `json:"result"`
	Message   string            `json:"message"`
	Time      time.Time         `json:"time"`
}
