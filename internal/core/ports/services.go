package ports

import (
	"context"

	"github.com/samirrijal/geomeasure/internal/core/domain"
)

// DrawInteraction is the map's line-drawing tool. Detach followed by Attach
// must leave exactly one interaction registered, bound to the given mode.
type DrawInteraction interface {
	Attach(ctx context.Context, mode domain.MeasurementMode) error
	Detach(ctx context.Context) error
}

// ResultSink shows a formatted measurement to the user. It is called exactly
// once per completed measurement.
type ResultSink interface {
	Display(ctx context.Context, message string, result domain.MeasurementResult) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishMeasurement(ctx context.Context, event *domain.MeasurementEvent) error
}

// CacheService provides key/value storage with expiry.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
