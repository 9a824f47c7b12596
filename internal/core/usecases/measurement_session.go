package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/core/ports"
	"github.com/samirrijal/geomeasure/internal/pkg/metrics"
	"github.com/samirrijal/geomeasure/internal/pkg/telemetry"
)

// maxBuffered is the number of segments an angle measurement consumes.
const maxBuffered = 2

// MeasurementSession routes drawn segments to a length or angle measurement
// depending on the active mode, and hands each formatted result to the
// display sink.
//
// Switching mode always empties the segment buffer, even when one angle
// segment is already drawn; that segment is lost and the user must draw
// both again.
//
// A session is owned by one drawing surface and is not safe for concurrent use.
type MeasurementSession struct {
	id          string
	state       *domain.AppState
	buffer      []domain.Segment
	measure     *MeasureService
	interaction ports.DrawInteraction
	display     ports.ResultSink
	publisher   ports.EventPublisher
	logger      *slog.Logger
}

// NewMeasurementSession creates a session over state. A nil state starts in
// angle mode with default units. interaction and publisher may be nil.
func NewMeasurementSession(
	id string,
	state *domain.AppState,
	measure *MeasureService,
	interaction ports.DrawInteraction,
	display ports.ResultSink,
	publisher ports.EventPublisher,
) *MeasurementSession {
	if state == nil {
		state = &domain.AppState{}
	}
	if state.Mode == "" {
		state.Mode = domain.ModeAngle
	}
	if state.Units.Distance == "" {
		state.Units.Distance = domain.Kilometers
	}
	if state.Units.Angle == "" {
		state.Units.Angle = domain.Degrees
	}
	if measure == nil {
		measure = NewMeasureService(false, 0)
	}
	return &MeasurementSession{
		id:          id,
		state:       state,
		buffer:      make([]domain.Segment, 0, maxBuffered),
		measure:     measure,
		interaction: interaction,
		display:     display,
		publisher:   publisher,
		logger:      slog.Default().With("session_id", id),
	}
}

// ID returns the session identifier.
func (s *MeasurementSession) ID() string { return s.id }

// Mode returns the active measurement mode.
func (s *MeasurementSession) Mode() domain.MeasurementMode { return s.state.Mode }

// Units returns the current unit toggles.
func (s *MeasurementSession) Units() domain.UnitPreference { return s.state.Units }

// BufferLen returns how many angle segments are waiting for a partner.
func (s *MeasurementSession) BufferLen() int { return len(s.buffer) }

// Start registers the draw interaction for the current mode.
func (s *MeasurementSession) Start(ctx context.Context) error {
	return s.rebind(ctx)
}

// SelectLength switches to length mode and discards buffered segments.
func (s *MeasurementSession) SelectLength(ctx context.Context) error {
	return s.selectMode(ctx, domain.ModeLength)
}

// SelectAngle switches to angle mode with an empty buffer.
func (s *MeasurementSession) SelectAngle(ctx context.Context) error {
	return s.selectMode(ctx, domain.ModeAngle)
}

// SelectMode switches to mode; see SelectLength and SelectAngle.
func (s *MeasurementSession) SelectMode(ctx context.Context, mode domain.MeasurementMode) error {
	switch mode {
	case domain.ModeLength, domain.ModeAngle:
		return s.selectMode(ctx, mode)
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
}

func (s *MeasurementSession) selectMode(ctx context.Context, mode domain.MeasurementMode) error {
	if dropped := len(s.buffer); dropped > 0 {
		s.logger.Debug("mode switch discards buffered segments", "dropped", dropped, "mode", mode)
	}
	s.state.Mode = mode
	s.buffer = s.buffer[:0]
	return s.rebind(ctx)
}

// rebind tears down the draw interaction and attaches a fresh one bound to
// the current mode.
func (s *MeasurementSession) rebind(ctx context.Context) error {
	if s.interaction == nil {
		return nil
	}
	if err := s.interaction.Detach(ctx); err != nil {
		return fmt.Errorf("detach draw interaction: %w", err)
	}
	if err := s.interaction.Attach(ctx, s.state.Mode); err != nil {
		return fmt.Errorf("attach draw interaction: %w", err)
	}
	return nil
}

// SetDistanceUnit changes the distance toggle. The buffer is untouched.
func (s *MeasurementSession) SetDistanceUnit(u domain.DistanceUnit) {
	s.state.Units.Distance = u
}

// SetAngleUnit changes the angle toggle. The buffer is untouched.
func (s *MeasurementSession) SetAngleUnit(u domain.AngleUnit) {
	s.state.Units.Angle = u
}

// SetUnits replaces both toggles.
func (s *MeasurementSession) SetUnits(prefs domain.UnitPreference) {
	s.state.Units = prefs
}

// OnSegmentDrawn feeds one completed segment into the state machine. It
// returns the result when the segment completed a measurement and nil when
// an angle measurement is still waiting for its second segment.
//
// A completed result does not rebind the draw interaction. The interaction
// only carries the mode, and mode and units are read from state on every
// call, so the attached interaction stays valid until the mode changes.
func (s *MeasurementSession) OnSegmentDrawn(ctx context.Context, seg domain.Segment) (*domain.MeasurementResult, error) {
	ctx, span := tracer.Start(ctx, telemetry.SpanSegmentDrawn)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrSessionID, s.id),
		attribute.String(telemetry.AttrMode, string(s.state.Mode)),
	)

	var res domain.MeasurementResult

	switch s.state.Mode {
	case domain.ModeLength:
		metrics.SegmentsAccepted.WithLabelValues(string(domain.ModeLength)).Inc()
		res = s.measure.Length(ctx, seg)

	case domain.ModeAngle:
		metrics.SegmentsAccepted.WithLabelValues(string(domain.ModeAngle)).Inc()
		s.buffer = append(s.buffer, seg)
		span.SetAttributes(attribute.Int(telemetry.AttrBufferLen, len(s.buffer)))
		if len(s.buffer) < maxBuffered {
			return nil, nil
		}
		first, second := s.buffer[0], s.buffer[1]
		s.buffer = s.buffer[:0]

		var err error
		res, err = s.measure.Angle(ctx, first, second)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMode, s.state.Mode)
	}

	// Units are read now, not when the segment was drawn.
	units := s.state.Units
	msg := Format(res, units)

	if s.display != nil {
		if err := s.display.Display(ctx, msg, res); err != nil {
			return &res, fmt.Errorf("display result: %w", err)
		}
	}

	if s.publisher != nil {
		event := &domain.MeasurementEvent{
			SessionID: s.id,
			Mode:      s.state.Mode,
			Units:     units,
			Result:    res,
			Message:   msg,
			Time:      time.Now(),
		}
		if err := s.publisher.PublishMeasurement(ctx, event); err != nil {
			s.logger.Warn("publish measurement", "error", err)
		}
	}

	return &res, nil
}
