package usecases

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/pkg/geospatial"
	"github.com/samirrijal/geomeasure/internal/pkg/metrics"
	"github.com/samirrijal/geomeasure/internal/pkg/telemetry"
)

var tracer = otel.Tracer("github.com/samirrijal/geomeasure/internal/core/usecases")

// MeasureService computes single measurements without any session state.
type MeasureService struct {
	strictVertex    bool
	vertexTolerance float64
}

// NewMeasureService creates a new MeasureService. When strictVertex is set,
// angle measurements are rejected unless the second segment starts within
// vertexTolerance meters (projected) of the end of the first.
func NewMeasureService(strictVertex bool, vertexTolerance float64) *MeasureService {
	return &MeasureService{strictVertex: strictVertex, vertexTolerance: vertexTolerance}
}

// Length measures the great-circle length and initial bearing of seg.
func (s *MeasureService) Length(ctx context.Context, seg domain.Segment) domain.MeasurementResult {
	_, span := tracer.Start(ctx, telemetry.SpanMeasureLength)
	defer span.End()

	start := geospatial.ToGeographic(seg.Start)
	end := geospatial.ToGeographic(seg.End)
	res := domain.LengthResult(
		geospatial.SegmentLength(start, end),
		geospatial.InitialBearing(start, end),
	)

	span.SetAttributes(
		attribute.Float64(telemetry.AttrDistanceKm, res.DistanceKm),
		attribute.Float64(telemetry.AttrBearingDeg, res.BearingDeg),
	)
	metrics.MeasurementsTotal.WithLabelValues(string(domain.ResultLength)).Inc()
	return res
}

// Angle measures the angle at seg1.End between seg1 and seg2.
func (s *MeasureService) Angle(ctx context.Context, seg1, seg2 domain.Segment) (domain.MeasurementResult, error) {
	_, span := tracer.Start(ctx, telemetry.SpanMeasureAngle)
	defer span.End()

	if s.strictVertex && !geospatial.SharesVertex(seg1, seg2, s.vertexTolerance) {
		metrics.SegmentsRejected.WithLabelValues("vertex_mismatch").Inc()
		err := fmt.Errorf("%w: first ends at (%.2f, %.2f), second starts at (%.2f, %.2f)",
			domain.ErrVertexMismatch, seg1.End.X, seg1.End.Y, seg2.Start.X, seg2.Start.Y)
		span.RecordError(err)
		return domain.MeasurementResult{}, err
	}

	res := domain.AngleResult(geospatial.AngleBetween(seg1, seg2))
	span.SetAttributes(attribute.Float64(telemetry.AttrAngleDeg, res.AngleDeg))
	metrics.MeasurementsTotal.WithLabelValues(string(domain.ResultAngle)).Inc()
	return res, nil
}
