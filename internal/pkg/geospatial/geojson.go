package geospatial

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/geomeasure/internal/core/domain"
)

// FeatureToSegment decodes a drawn line serialized as GeoJSON in EPSG:3857.
// Both a Feature wrapping a LineString and a bare LineString geometry are
// accepted.
func FeatureToSegment(data []byte) (domain.Segment, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return domain.Segment{}, fmt.Errorf("%w: %v", domain.ErrMalformedSegment, err)
	}

	var geom orb.Geometry
	switch head.Type {
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return domain.Segment{}, fmt.Errorf("%w: %v", domain.ErrMalformedSegment, err)
		}
		geom = f.Geometry
	case "":
		return domain.Segment{}, fmt.Errorf("%w: missing GeoJSON type", domain.ErrMalformedSegment)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return domain.Segment{}, fmt.Errorf("%w: %v", domain.ErrMalformedSegment, err)
		}
		geom = g.Geometry()
	}

	ls, ok := geom.(orb.LineString)
	if !ok {
		return domain.Segment{}, fmt.Errorf("%w: geometry is %s, want LineString", domain.ErrMalformedSegment, geometryType(geom))
	}
	return LineToSegment(ls)
}

// SegmentFeature wraps seg as a GeoJSON LineString feature.
func SegmentFeature(seg domain.Segment) *geojson.Feature {
	return geojson.NewFeature(orb.LineString{
		{seg.Start.X, seg.Start.Y},
		{seg.End.X, seg.End.Y},
	})
}

// IsGeoJSON reports whether raw holds a JSON object rather than null.
func IsGeoJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "empty"
	}
	return g.GeoJSONType()
}
