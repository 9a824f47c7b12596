package natsadapter_test

import (
	"testing"

	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/geomeasure/internal/adapters/nats"
	"github.com/samirrijal/geomeasure/internal/core/domain"
)

func TestSubject(t *testing.T) {
	if got := natsadapter.Subject("measurements", domain.ResultLength); got != "measurements.length" {
		t.Errorf("got %q", got)
	}
	if got := natsadapter.Subject("team.a", domain.ResultAngle); got != "team.a.angle" {
		t.Errorf("got %q", got)
	}
}

func TestStreamConfig(t *testing.T) {
	cfg := natsadapter.StreamConfig("measurements")

	if cfg.Name != natsadapter.StreamName {
		t.Errorf("expected stream %s, got %s", natsadapter.StreamName, cfg.Name)
	}
	if len(cfg.Subjects) != 1 || cfg.Subjects[0] != "measurements.>" {
		t.Errorf("unexpected subjects %v", cfg.Subjects)
	}
	// Several observers may read the same results.
	if cfg.Retention != nats.LimitsPolicy {
		t.Errorf("expected limits retention, got %v", cfg.Retention)
	}
}
