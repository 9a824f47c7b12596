package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/core/usecases"
)

func newTerminalSession(mode domain.MeasurementMode) (*usecases.MeasurementSession, *bytes.Buffer, *bytes.Buffer) {
	var out, status bytes.Buffer
	term := &terminal{out: &out, status: &status}
	s := usecases.NewMeasurementSession("t", &domain.AppState{Mode: mode}, nil, term, term, nil)
	return s, &out, &status
}

func TestDrawLoop_Length(t *testing.T) {
	s, out, _ := newTerminalSession(domain.ModeLength)

	in := strings.NewReader(`{"action":"segment","lonlat":[[0,0],[1,0]]}` + "\n")
	require.NoError(t, drawLoop(context.Background(), in, s, &bytes.Buffer{}))

	assert.Equal(t, "Length: 111.19 km\nAzimuth: 90.00°\n\n", out.String())
}

func TestDrawLoop_AngleWithToggles(t *testing.T) {
	s, out, status := newTerminalSession(domain.ModeAngle)

	in := strings.NewReader(strings.Join([]string{
		`# right angle at (2, 0)`,
		`{"action":"segment","lonlat":[[2,1],[2,0]]}`,
		`{"action":"units","angle":"rad"}`,
		`{"action":"segment","lonlat":[[2,0],[3,0]]}`,
	}, "\n"))
	require.NoError(t, drawLoop(context.Background(), in, s, status))

	assert.True(t, strings.HasPrefix(out.String(), "The angle is: 1.57"), out.String())
	assert.Contains(t, out.String(), " Rad\n")
	assert.Contains(t, status.String(), "segment 1 of 2 recorded")
	assert.Contains(t, status.String(), "units: km, rad")
}

func TestDrawLoop_ModeSwitchDropsBuffer(t *testing.T) {
	s, out, status := newTerminalSession(domain.ModeAngle)

	in := strings.NewReader(strings.Join([]string{
		`{"action":"segment","lonlat":[[2,1],[2,0]]}`,
		`{"action":"mode","mode":"length"}`,
		`{"action":"mode","mode":"angle"}`,
		`{"action":"segment","lonlat":[[2,0],[3,0]]}`,
	}, "\n"))
	require.NoError(t, drawLoop(context.Background(), in, s, status))

	assert.Empty(t, out.String())
	assert.Equal(t, 1, s.BufferLen())
	assert.Contains(t, status.String(), "drawing: length mode")
	assert.Contains(t, status.String(), "drawing: angle mode")
}

func TestDrawLoop_ReportsBadLines(t *testing.T) {
	s, out, status := newTerminalSession(domain.ModeLength)

	in := strings.NewReader(strings.Join([]string{
		`not json`,
		`{"action":"segment","coordinates":[[0,0]]}`,
		`{"action":"erase"}`,
		`{"action":"units","distance":"furlong"}`,
		`{"action":"segment","feature":{"type":"LineString","coordinates":[[0,0],[111319.49,0]]}}`,
	}, "\n"))
	require.NoError(t, drawLoop(context.Background(), in, s, status))

	assert.Equal(t, 4, strings.Count(status.String(), "error:"))
	assert.Contains(t, status.String(), "malformed segment")
	assert.Contains(t, status.String(), "unknown action: erase")
	assert.Contains(t, out.String(), "Length: 111.19 km")
}
