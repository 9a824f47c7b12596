package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/core/usecases"
	"github.com/samirrijal/geomeasure/internal/pkg/geospatial"
)

// command is one line of input, in the same shape the WebSocket accepts:
//
//	{"action":"segment","coordinates":[[x,y],[x,y]]}
//	{"action":"segment","lonlat":[[lon,lat],[lon,lat]]}
//	{"action":"mode","mode":"length"}
//	{"action":"units","distance":"mi","angle":"rad"}
type command struct {
	Action      string          `json:"action"`
	Coordinates [][]float64     `json:"coordinates,omitempty"`
	LonLat      [][]float64     `json:"lonlat,omitempty"`
	Feature     json.RawMessage `json:"feature,omitempty"`
	Mode        string          `json:"mode,omitempty"`
	Distance    string          `json:"distance,omitempty"`
	Angle       string          `json:"angle,omitempty"`
}

// segment decodes the drawn line. lonlat input is projected first, which
// lets a terminal user type geographic points.
func (c command) segment() (domain.Segment, error) {
	switch {
	case geospatial.IsGeoJSON(c.Feature):
		return geospatial.FeatureToSegment(c.Feature)
	case c.LonLat != nil:
		coords := make([][]float64, len(c.LonLat))
		for i, ll := range c.LonLat {
			if len(ll) < 2 {
				return domain.Segment{}, fmt.Errorf("%w: coordinate %d has %d components", domain.ErrMalformedSegment, i, len(ll))
			}
			p := geospatial.ToProjected(domain.GeoPoint{Lon: ll[0], Lat: ll[1]})
			coords[i] = []float64{p.X, p.Y}
		}
		return domain.NewSegment(coords)
	}
	return domain.NewSegment(c.Coordinates)
}

// terminal is a drawing surface whose display is a text stream. Results go
// to out; interaction changes and errors go to status.
type terminal struct {
	out    io.Writer
	status io.Writer
}

func (t *terminal) Attach(_ context.Context, mode domain.MeasurementMode) error {
	_, err := fmt.Fprintf(t.status, "drawing: %s mode\n", mode)
	return err
}

func (t *terminal) Detach(_ context.Context) error { return nil }

func (t *terminal) Display(_ context.Context, message string, _ domain.MeasurementResult) error {
	_, err := fmt.Fprintf(t.out, "%s\n\n", message)
	return err
}

// drawLoop feeds commands from in to session until in is exhausted or ctx
// is cancelled. Bad lines are reported on status and skipped.
func drawLoop(ctx context.Context, in io.Reader, session *usecases.MeasurementSession, status io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var cmd command
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			fmt.Fprintf(status, "error: invalid JSON: %v\n", err)
			continue
		}
		if err := apply(ctx, session, cmd, status); err != nil {
			fmt.Fprintf(status, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func apply(ctx context.Context, session *usecases.MeasurementSession, cmd command, status io.Writer) error {
	switch cmd.Action {
	case "segment":
		seg, err := cmd.segment()
		if err != nil {
			return err
		}
		res, err := session.OnSegmentDrawn(ctx, seg)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Fprintf(status, "segment %d of 2 recorded, draw the next one\n", session.BufferLen())
		}
		return nil

	case "mode":
		mode, err := domain.ParseMode(cmd.Mode)
		if err != nil {
			return err
		}
		return session.SelectMode(ctx, mode)

	case "units":
		units, err := session.Units().With(cmd.Distance, cmd.Angle)
		if err != nil {
			return err
		}
		session.SetUnits(units)
		fmt.Fprintf(status, "units: %s, %s\n", units.Distance, units.Angle)
		return nil
	}
	return errors.New("unknown action: " + cmd.Action)
}
