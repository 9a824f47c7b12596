package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/geomeasure/internal/adapters/nats"
	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/core/ports"
	"github.com/samirrijal/geomeasure/internal/core/usecases"
	"github.com/samirrijal/geomeasure/internal/pkg/config"
	"github.com/samirrijal/geomeasure/internal/pkg/logging"
)

const usage = `usage: measure <command>

  draw             read drawn segments as JSON lines from stdin and print results
  follow [kind]    print results published by other sessions (kind: length|angle)`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load("geomeasure-measure")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.SetupWriter(os.Stderr, cfg.Log.Level, "text")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "draw":
		err = draw(ctx, cfg)
	case "follow":
		var kind domain.ResultKind
		if len(os.Args) > 2 {
			mode, perr := domain.ParseMode(os.Args[2])
			if perr != nil {
				log.Fatal(perr)
			}
			kind = domain.ResultKind(mode)
		}
		err = follow(ctx, cfg, kind)
	default:
		log.Fatalf("unknown command: %s\n%s", os.Args[1], usage)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func draw(ctx context.Context, cfg *config.Config) error {
	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			slog.Warn("nats unavailable, results will not be published", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	term := &terminal{out: os.Stdout, status: os.Stderr}
	state := &domain.AppState{Mode: domain.ModeAngle, Units: cfg.Measure.DefaultUnits()}
	session := usecases.NewMeasurementSession(
		"cli-"+fmt.Sprint(os.Getpid()),
		state,
		usecases.NewMeasureService(cfg.Measure.StrictVertex, cfg.Measure.VertexTolerance),
		term, term, publisher,
	)
	if err := session.Start(ctx); err != nil {
		return err
	}
	return drawLoop(ctx, os.Stdin, session, os.Stderr)
}

func follow(ctx context.Context, cfg *config.Config, kind domain.ResultKind) error {
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
	if err != nil {
		return err
	}
	defer sub.Close()

	err = sub.SubscribeMeasurements(ctx, kind, func(_ context.Context, e *domain.MeasurementEvent) error {
		_, err := fmt.Printf("[%s %s] %s\n\n", e.Time.Format("15:04:05"), e.SessionID, e.Message)
		return err
	})
	if err != nil {
		return err
	}

	slog.Info("following measurements", "prefix", cfg.NATS.SubjectPrefix, "kind", kind)
	<-ctx.Done()
	return nil
}
