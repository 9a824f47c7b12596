package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/core/usecases"
	"github.com/samirrijal/geomeasure/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// wsMessage is sent by the drawing surface.
//
//	{"action":"segment","coordinates":[[x,y],[x,y]]}
//	{"action":"segment","feature":{"type":"Feature","geometry":{"type":"LineString",...}}}
//	{"action":"mode","mode":"length"}
//	{"action":"units","distance":"mi","angle":"rad"}
//	{"action":"state"}
type wsMessage struct {
	Action string `json:"action"`
	segmentInput
	Mode     string `json:"mode,omitempty"`
	Distance string `json:"distance,omitempty"`
	Angle    string `json:"angle,omitempty"`
}

type interactionFrame struct {
	Type   string                 `json:"type"` // "interaction"
	Action string                 `json:"action"`
	Mode   domain.MeasurementMode `json:"mode,omitempty"`
}

type resultFrame struct {
	Type    string                   `json:"type"` // "result"
	Message string                   `json:"message"`
	Result  domain.MeasurementResult `json:"result"`
}

type pendingFrame struct {
	Type     string `json:"type"` // "pending"
	Buffered int    `json:"buffered"`
}

type stateFrame struct {
	Type      string                 `json:"type"` // "state"
	SessionID string                 `json:"session_id"`
	Mode      domain.MeasurementMode `json:"mode"`
	Units     domain.UnitPreference  `json:"units"`
	Buffered  int                    `json:"buffered"`
}

type errorFrame struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wsSurface is the drawing surface on the other end of a websocket. It
// receives interaction changes and displayed results as JSON frames.
type wsSurface struct {
	write func(v interface{}) error
}

func (s *wsSurface) Attach(_ context.Context, mode domain.MeasurementMode) error {
	return s.write(interactionFrame{Type: "interaction", Action: "attach", Mode: mode})
}

func (s *wsSurface) Detach(_ context.Context) error {
	return s.write(interactionFrame{Type: "interaction", Action: "detach"})
}

func (s *wsSurface) Display(_ context.Context, message string, result domain.MeasurementResult) error {
	return s.write(resultFrame{Type: "result", Message: message, Result: result})
}

// SessionHandler returns a handler that runs one measurement session per
// WebSocket connection. The optional "client" query parameter selects the
// stored unit toggles; "mode" selects the starting mode (angle by default).
func SessionHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sessionID := uuid.NewString()
		client := c.Query("client")
		logger := slog.Default().With("session_id", sessionID, "remote", c.RemoteAddr().String())
		ctx = ContextWithLogger(ctx, logger)

		var mu sync.Mutex

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeError := func(err error) {
			_ = writeJSON(errorFrame{Type: "error", Code: errorCode(err), Message: err.Error()})
		}

		state := &domain.AppState{
			Mode:  domain.ModeAngle,
			Units: deps.Preferences.Load(ctx, client),
		}
		if m := c.Query("mode"); m != "" {
			mode, err := domain.ParseMode(m)
			if err != nil {
				writeError(err)
				return
			}
			state.Mode = mode
		}

		surface := &wsSurface{write: writeJSON}
		session := usecases.NewMeasurementSession(sessionID, state, deps.Measure, surface, surface, deps.Publisher)

		metrics.ActiveSessions.Inc()
		defer metrics.ActiveSessions.Dec()
		logger.Info("measurement session started", "client_id", client, "mode", state.Mode)

		sendState := func() {
			_ = writeJSON(stateFrame{
				Type:      "state",
				SessionID: session.ID(),
				Mode:      session.Mode(),
				Units:     session.Units(),
				Buffered:  session.BufferLen(),
			})
		}

		sendState()
		if err := session.Start(ctx); err != nil {
			logger.Warn("attach draw interaction", "error", err)
			return
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()
		defer close(done)

		// Messages are handled one at a time; the session is not shared.
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(errorFrame{Type: "error", Code: "bad_request", Message: "invalid JSON"})
				continue
			}

			switch m.Action {
			case "segment":
				seg, err := m.segment()
				if err != nil {
					metrics.SegmentsRejected.WithLabelValues("malformed").Inc()
					writeError(err)
					continue
				}
				res, err := session.OnSegmentDrawn(ctx, seg)
				if err != nil {
					writeError(err)
					continue
				}
				if res == nil {
					_ = writeJSON(pendingFrame{Type: "pending", Buffered: session.BufferLen()})
				}

			case "mode":
				mode, err := domain.ParseMode(m.Mode)
				if err == nil {
					err = session.SelectMode(ctx, mode)
				}
				if err != nil {
					writeError(err)
					continue
				}
				sendState()

			case "units":
				prefs, err := session.Units().With(m.Distance, m.Angle)
				if err != nil {
					writeError(err)
					continue
				}
				session.SetUnits(prefs)
				if err := deps.Preferences.Save(ctx, client, prefs); err != nil {
					logger.Warn("save preferences", "error", err)
				}
				sendState()

			case "state":
				sendState()

			default:
				_ = writeJSON(errorFrame{Type: "error", Code: "bad_request", Message: "unknown action: " + m.Action})
			}
		}

		logger.Info("measurement session closed")
	}
}

// FeedHandler returns a handler that relays published measurement events
// from NATS to observers. An optional "kind" query parameter (length or
// angle) narrows the feed.
func FeedHandler(nc *nats.Conn, subjectPrefix string) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()

		if nc == nil {
			_ = c.WriteJSON(errorFrame{Type: "error", Code: "unavailable", Message: "event feed is not configured"})
			return
		}

		subject := subjectPrefix + ".>"
		if kind := c.Query("kind"); kind != "" {
			mode, err := domain.ParseMode(kind)
			if err != nil {
				_ = c.WriteJSON(errorFrame{Type: "error", Code: "bad_request", Message: err.Error()})
				return
			}
			subject = subjectPrefix + "." + string(mode)
		}

		var mu sync.Mutex
		sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
			mu.Lock()
			defer mu.Unlock()
			_ = c.WriteMessage(websocket.TextMessage, msg.Data)
		})
		if err != nil {
			slog.Warn("feed subscribe failed", "subject", subject, "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		slog.Info("feed client connected", "remote", remoteAddr, "subject", subject)

		// Observers do not send anything meaningful; reading detects close.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		slog.Info("feed client disconnected", "remote", remoteAddr)
	}
}
