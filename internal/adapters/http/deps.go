package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geomeasure/internal/adapters/valkey"
	"github.com/samirrijal/geomeasure/internal/core/ports"
	"github.com/samirrijal/geomeasure/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Measure       *usecases.MeasureService
	Preferences   *usecases.PreferenceService
	Publisher     ports.EventPublisher // optional; nil disables result fan-out
	NATS          *nats.Conn           // raw connection for the /ws/feed relay
	Cache         *valkey.Cache
	SubjectPrefix string // measurement events are published under <prefix>.<kind>
}
