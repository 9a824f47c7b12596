package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geomeasure/internal/core/domain"
)

// Subscriber consumes published measurements from JetStream.
type Subscriber struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	prefix string
	subs   []*nats.Subscription
}

// NewSubscriber connects to NATS for consuming "<prefix>.>" measurements.
func NewSubscriber(url, prefix string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, prefix: prefix}, nil
}

// SubscribeMeasurements delivers new measurement events to handler. An empty
// kind receives both lengths and angles. Events the handler rejects are
// redelivered up to three times.
func (s *Subscriber) SubscribeMeasurements(ctx context.Context, kind domain.ResultKind, handler func(ctx context.Context, e *domain.MeasurementEvent) error) error {
	subject := s.prefix + ".>"
	if kind != "" {
		subject = Subject(s.prefix, kind)
	}

	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		var e domain.MeasurementEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			// Unreadable payloads will never succeed.
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &e); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
