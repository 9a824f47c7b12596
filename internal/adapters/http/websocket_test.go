package http_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/fasthttp/websocket"

	handler "github.com/samirrijal/geomeasure/internal/adapters/http"
	"github.com/samirrijal/geomeasure/internal/core/domain"
)

// ---- WebSocket helpers ----

// wsFrame is the union of every frame the server sends.
type wsFrame struct {
	Type      string                   `json:"type"`
	Action    string                   `json:"action"`
	Mode      string                   `json:"mode"`
	Message   string                   `json:"message"`
	Result    domain.MeasurementResult `json:"result"`
	Buffered  int                      `json:"buffered"`
	SessionID string                   `json:"session_id"`
	Units     domain.UnitPreference    `json:"units"`
	Code      string                   `json:"code"`
}

// startServer serves the routes on a loopback port and returns its ws:// base URL.
func startServer(t *testing.T, deps *handler.Dependencies) string {
	t.Helper()
	app := setupApp(deps)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "ws://" + ln.Addr().String()
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f wsFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func expectFrame(t *testing.T, conn *websocket.Conn, typ string) wsFrame {
	t.Helper()
	f := readFrame(t, conn)
	if f.Type != typ {
		t.Fatalf("expected %s frame, got %+v", typ, f)
	}
	return f
}

// expectBind reads the detach/attach pair sent whenever the interaction is rebound.
func expectBind(t *testing.T, conn *websocket.Conn, mode string) {
	t.Helper()
	if f := expectFrame(t, conn, "interaction"); f.Action != "detach" {
		t.Fatalf("expected detach, got %+v", f)
	}
	if f := expectFrame(t, conn, "interaction"); f.Action != "attach" || f.Mode != mode {
		t.Fatalf("expected attach:%s, got %+v", mode, f)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg interface{}) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func drawSegment(t *testing.T, conn *websocket.Conn, c [][]float64) {
	t.Helper()
	send(t, conn, map[string]interface{}{"action": "segment", "coordinates": c})
}

// ---- Session ----

func TestSession_AnglePairThenModeSwitch(t *testing.T) {
	conn := dial(t, startServer(t, makeDeps())+"/ws")

	state := expectFrame(t, conn, "state")
	if state.Mode != "angle" || state.Buffered != 0 || state.SessionID == "" {
		t.Fatalf("unexpected initial state %+v", state)
	}
	if state.Units != domain.DefaultUnitPreference() {
		t.Errorf("expected default units, got %+v", state.Units)
	}
	expectBind(t, conn, "angle")

	drawSegment(t, conn, coords(2, 1, 2, 0))
	if f := expectFrame(t, conn, "pending"); f.Buffered != 1 {
		t.Errorf("expected 1 buffered segment, got %d", f.Buffered)
	}

	drawSegment(t, conn, coords(2, 0, 3, 0))
	res := expectFrame(t, conn, "result")
	if res.Message != "The angle is: 90.00°" {
		t.Errorf("unexpected message %q", res.Message)
	}
	if res.Result.Kind != domain.ResultAngle {
		t.Errorf("expected angle result, got %s", res.Result.Kind)
	}

	// Half a pair, then a mode switch: the buffered segment is dropped.
	drawSegment(t, conn, coords(2, 1, 2, 0))
	expectFrame(t, conn, "pending")
	send(t, conn, map[string]string{"action": "mode", "mode": "length"})
	expectBind(t, conn, "length")
	state = expectFrame(t, conn, "state")
	if state.Mode != "length" || state.Buffered != 0 {
		t.Errorf("expected length mode with empty buffer, got %+v", state)
	}
}

func TestSession_UnitsActionAppliesToNextResult(t *testing.T) {
	deps := makeDeps()
	conn := dial(t, startServer(t, deps)+"/ws?mode=length&client=map-3")

	if state := expectFrame(t, conn, "state"); state.Mode != "length" {
		t.Fatalf("expected length mode from query, got %+v", state)
	}
	expectBind(t, conn, "length")

	send(t, conn, map[string]string{"action": "units", "distance": "mi"})
	state := expectFrame(t, conn, "state")
	if state.Units.Distance != domain.Miles || state.Units.Angle != domain.Degrees {
		t.Fatalf("expected mi/deg, got %+v", state.Units)
	}

	drawSegment(t, conn, coords(0, 0, 1, 0))
	if f := expectFrame(t, conn, "result"); f.Message != "Length: 69.49 Miles\nAzimuth: 90.00°" {
		t.Errorf("unexpected message %q", f.Message)
	}

	// The toggle was stored for the client.
	if got := deps.Preferences.Load(context.Background(), "map-3"); got.Distance != domain.Miles {
		t.Errorf("expected stored miles toggle, got %+v", got)
	}
}

func TestSession_StoredUnitsOnConnect(t *testing.T) {
	deps := makeDeps()
	prefs := domain.UnitPreference{Distance: domain.Miles, Angle: domain.Radians}
	if err := deps.Preferences.Save(context.Background(), "map-4", prefs); err != nil {
		t.Fatalf("save: %v", err)
	}

	conn := dial(t, startServer(t, deps)+"/ws?client=map-4")
	if state := expectFrame(t, conn, "state"); state.Units != prefs {
		t.Errorf("expected stored units %+v, got %+v", prefs, state.Units)
	}
}

func TestSession_BadMessagesBecomeErrorFrames(t *testing.T) {
	conn := dial(t, startServer(t, makeDeps())+"/ws")
	expectFrame(t, conn, "state")
	expectBind(t, conn, "angle")

	tests := []struct {
		name string
		msg  interface{}
	}{
		{"one point", map[string]interface{}{"action": "segment", "coordinates": coords(0, 0)}},
		{"unknown mode", map[string]string{"action": "mode", "mode": "area"}},
		{"unknown unit", map[string]string{"action": "units", "angle": "gradians"}},
		{"unknown action", map[string]string{"action": "erase"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msg)
			if f := expectFrame(t, conn, "error"); f.Code != "bad_request" {
				t.Errorf("expected bad_request, got %+v", f)
			}
		})
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := expectFrame(t, conn, "error"); f.Message != "invalid JSON" {
		t.Errorf("unexpected error frame %+v", f)
	}

	// Errors leave the session usable and the buffer untouched.
	send(t, conn, map[string]string{"action": "state"})
	if state := expectFrame(t, conn, "state"); state.Buffered != 0 || state.Mode != "angle" {
		t.Errorf("unexpected state after errors %+v", state)
	}
}

func TestSession_UnknownModeQueryClosesSession(t *testing.T) {
	conn := dial(t, startServer(t, makeDeps())+"/ws?mode=area")

	if f := expectFrame(t, conn, "error"); f.Code != "bad_request" {
		t.Errorf("expected bad_request, got %+v", f)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the server to close the connection")
	}
}

// ---- Feed ----

func TestFeed_WithoutNATS(t *testing.T) {
	conn := dial(t, startServer(t, makeDeps())+"/ws/feed")

	if f := expectFrame(t, conn, "error"); f.Code != "unavailable" {
		t.Errorf("expected unavailable, got %+v", f)
	}
}
