package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/core/usecases"
)

func TestMeasureService_Length(t *testing.T) {
	svc := usecases.NewMeasureService(false, 0)

	res := svc.Length(context.Background(), equatorDegree)
	if res.Kind != domain.ResultLength {
		t.Fatalf("expected length kind, got %s", res.Kind)
	}
	if math.Abs(res.DistanceKm-111.19) > 0.01 {
		t.Errorf("expected ~111.19 km, got %f", res.DistanceKm)
	}
	if math.Abs(res.BearingDeg-90) > 1e-6 {
		t.Errorf("expected bearing 90, got %f", res.BearingDeg)
	}
}

func TestMeasureService_AngleIgnoresVertexByDefault(t *testing.T) {
	svc := usecases.NewMeasureService(false, 0)

	// The second segment starts far from the first one's end; only its end
	// point is used.
	detached := seg(40, 40, 3, 0)
	res, err := svc.Angle(context.Background(), northArm, detached)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.AngleDeg-90) > 1e-6 {
		t.Errorf("expected 90, got %f", res.AngleDeg)
	}
}

func TestMeasureService_AngleStrict(t *testing.T) {
	svc := usecases.NewMeasureService(true, 0.5)

	_, err := svc.Angle(context.Background(), northArm, seg(40, 40, 3, 0))
	if !errors.Is(err, domain.ErrVertexMismatch) {
		t.Fatalf("expected ErrVertexMismatch, got %v", err)
	}

	res, err := svc.Angle(context.Background(), northArm, eastArm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != domain.ResultAngle {
		t.Errorf("expected angle kind, got %s", res.Kind)
	}
}

func TestMeasureService_AngleRange(t *testing.T) {
	svc := usecases.NewMeasureService(false, 0)
	ctx := context.Background()

	// East arm first, then north: the clockwise sweep from east to north.
	first := seg(3, 0, 2, 0)
	second := seg(2, 0, 2, 1)
	res, err := svc.Angle(ctx, first, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.AngleDeg-270) > 1e-6 {
		t.Errorf("expected 270, got %f", res.AngleDeg)
	}
	if res.AngleDeg < 0 || res.AngleDeg >= 360 {
		t.Errorf("angle %f out of range", res.AngleDeg)
	}
}
