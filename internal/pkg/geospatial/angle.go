package geospatial

import "github.com/samirrijal/geomeasure/internal/core/domain"

// AngleBetween returns the angle in degrees, in [0, 360), swept clockwise at
// the vertex seg1.End from the ray towards seg1.Start to the ray towards
// seg2.End.
//
// The vertex is taken by position: seg2.Start is ignored and is not checked
// against seg1.End. Use SharesVertex when that matters.
func AngleBetween(seg1, seg2 domain.Segment) float64 {
	first := ToGeographic(seg1.Start)
	vertex := ToGeographic(seg1.End)
	last := ToGeographic(seg2.End)

	bearingA := InitialBearing(vertex, first)
	bearingB := InitialBearing(vertex, last)

	angle := bearingB - bearingA
	if angle < 0 {
		angle += 360
	}
	// -1e-14 + 360 rounds to exactly 360.
	if angle >= 360 {
		angle = 0
	}
	return angle
}

// SharesVertex reports whether seg2 starts within toleranceMeters (planar,
// projected units) of where seg1 ends.
func SharesVertex(seg1, seg2 domain.Segment, toleranceMeters float64) bool {
	dx := seg1.End.X - seg2.Start.X
	dy := seg1.End.Y - seg2.Start.Y
	return dx*dx+dy*dy <= toleranceMeters*toleranceMeters
}
