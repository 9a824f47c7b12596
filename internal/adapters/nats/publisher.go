package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/pkg/metrics"
)

// StreamName is the JetStream stream holding published measurements.
const StreamName = "MEASUREMENTS"

// DefaultPublishTimeout bounds the wait for a JetStream ack when the caller's
// context has no earlier deadline.
const DefaultPublishTimeout = 2 * time.Second

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	prefix  string
	timeout time.Duration
}

// NewPublisher connects to NATS, enables JetStream and makes sure the
// measurement stream covering "<prefix>.>" exists.
func NewPublisher(url, prefix string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := StreamConfig(prefix)
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js, prefix: prefix, timeout: DefaultPublishTimeout}, nil
}

// StreamConfig describes the measurement stream for subjects under prefix.
func StreamConfig(prefix string) *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{prefix + ".>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
}

// Subject returns the subject a result of the given kind is published on.
func Subject(prefix string, kind domain.ResultKind) string {
	return prefix + "." + string(kind)
}

// PublishMeasurement publishes a displayed result on "<prefix>.<kind>". It
// returns once the stream acks or the publish timeout elapses, whichever
// comes first, so an unreachable server cannot stall a drawing session.
func (p *Publisher) PublishMeasurement(ctx context.Context, event *domain.MeasurementEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	kind := string(event.Result.Kind)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if _, err := p.js.Publish(Subject(p.prefix, event.Result.Kind), data, nats.Context(ctx)); err != nil {
		metrics.EventsPublished.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("publish %s measurement: %w", kind, err)
	}
	metrics.EventsPublished.WithLabelValues(kind, "ok").Inc()
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
