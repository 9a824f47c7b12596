package geospatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/samirrijal/geomeasure/internal/core/domain"
)

// ToGeographic reprojects a Web Mercator point to WGS 84 longitude/latitude.
// Longitudes outside [-180, 180] (a line drawn across a wrapped world copy)
// are folded back into range. NaN or infinite input is not handled.
func ToGeographic(p domain.ProjectedPoint) domain.GeoPoint {
	g := project.Mercator.ToWGS84(orb.Point{p.X, p.Y})

	lon := g.Lon()
	if lon < -180 || lon > 180 {
		lon = modulo(lon+180, 360) - 180
	}
	return domain.GeoPoint{Lon: lon, Lat: g.Lat()}
}

// ToProjected is the forward Web Mercator projection of a geographic point.
func ToProjected(g domain.GeoPoint) domain.ProjectedPoint {
	p := project.WGS84.ToMercator(orb.Point{g.Lon, g.Lat})
	return domain.ProjectedPoint{X: p.X(), Y: p.Y()}
}

// LineToSegment converts a drawn orb.LineString into a Segment. Only
// two-point lines are accepted.
func LineToSegment(ls orb.LineString) (domain.Segment, error) {
	coords := make([][]float64, len(ls))
	for i, p := range ls {
		coords[i] = []float64{p.X(), p.Y()}
	}
	return domain.NewSegment(coords)
}

// modulo is the floored remainder, always in [0, b) for positive b.
func modulo(a, b float64) float64 {
	r := math.Mod(a, b)
	if r < 0 {
		r += b
	}
	return r
}
