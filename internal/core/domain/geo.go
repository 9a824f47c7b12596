package domain

import "fmt"

// GeoPoint represents a geographic coordinate (WGS 84) in degrees.
// Longitude is normalized to [-180, 180] and latitude to [-90, 90].
// Values are produced by reprojecting a ProjectedPoint, never built by hand.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// ProjectedPoint is a planar Web Mercator (EPSG:3857) coordinate in meters,
// as emitted by the map's drawing surface.
type ProjectedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is one user-drawn two-point line. It is a value type and is never
// mutated after construction.
type Segment struct {
	Start ProjectedPoint `json:"start"`
	End   ProjectedPoint `json:"end"`
}

// NewSegment builds a Segment from raw [x, y] coordinate pairs.
// Exactly two coordinates are required.
func NewSegment(coords [][]float64) (Segment, error) {
	if len(coords) != 2 {
		return Segment{}, fmt.Errorf("%w: got %d coordinates, want 2", ErrMalformedSegment, len(coords))
	}
	pts := make([]ProjectedPoint, 2)
	for i, c := range coords {
		if len(c) < 2 {
			return Segment{}, fmt.Errorf("%w: coordinate %d has %d components", ErrMalformedSegment, i, len(c))
		}
		pts[i] = ProjectedPoint{X: c[0], Y: c[1]}
	}
	return Segment{Start: pts[0], End: pts[1]}, nil
}

// Coordinates returns the segment as [[x, y], [x, y]], the shape the drawing
// surface uses on the wire.
func (s Segment) Coordinates() [][]float64 {
	return [][]float64{
		{s.Start.X, s.Start.Y},
		{s.End.X, s.End.Y},
	}
}
