package http

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/core/usecases"
	"github.com/samirrijal/geomeasure/internal/pkg/geospatial"
)

// segmentInput is a drawn segment on the wire: either raw EPSG:3857
// coordinates or a GeoJSON LineString feature. The feature wins when both
// are present.
type segmentInput struct {
	Coordinates [][]float64     `json:"coordinates,omitempty"`
	Feature     json.RawMessage `json:"feature,omitempty"`
}

func (in segmentInput) segment() (domain.Segment, error) {
	if geospatial.IsGeoJSON(in.Feature) {
		return geospatial.FeatureToSegment(in.Feature)
	}
	return domain.NewSegment(in.Coordinates)
}

// unitsInput overrides one or both unit toggles. Empty fields keep the
// current value.
type unitsInput struct {
	Distance string `json:"distance,omitempty"`
	Angle    string `json:"angle,omitempty"`
}

func (u unitsInput) apply(base domain.UnitPreference) (domain.UnitPreference, error) {
	return base.With(u.Distance, u.Angle)
}

type lengthRequest struct {
	segmentInput
	Units unitsInput `json:"units"`
}

type angleRequest struct {
	First  segmentInput `json:"first"`
	Second segmentInput `json:"second"`
	Units  unitsInput   `json:"units"`
}

type formatRequest struct {
	Result domain.MeasurementResult `json:"result"`
	Units  unitsInput               `json:"units"`
}

// MeasurementResponse is returned by the measurement endpoints.
type MeasurementResponse struct {
	Result  domain.MeasurementResult `json:"result"`
	Units   domain.UnitPreference    `json:"units"`
	Message string                   `json:"message"`
}

// clientID identifies the map whose stored unit toggles apply to a request.
func clientID(c *fiber.Ctx) string {
	if id := c.Get("X-Client-ID"); id != "" {
		return id
	}
	return c.Query("client")
}

// requestUnits resolves the stored toggles for the caller and applies the
// request's overrides on top.
func requestUnits(c *fiber.Ctx, deps *Dependencies, in unitsInput) (domain.UnitPreference, error) {
	base := deps.Preferences.Load(c.UserContext(), clientID(c))
	return in.apply(base)
}

// MeasureLengthHandler measures one segment.
func MeasureLengthHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req lengthRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		seg, err := req.segment()
		if err != nil {
			return errFromDomain(c, err)
		}
		units, err := requestUnits(c, deps, req.Units)
		if err != nil {
			return errFromDomain(c, err)
		}

		res := deps.Measure.Length(c.UserContext(), seg)
		return c.JSON(MeasurementResponse{
			Result:  res,
			Units:   units,
			Message: usecases.Format(res, units),
		})
	}
}

// MeasureAngleHandler measures the angle between two segments at the end of
// the first.
func MeasureAngleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req angleRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		first, err := req.First.segment()
		if err != nil {
			return errFromDomain(c, fmt.Errorf("first: %w", err))
		}
		second, err := req.Second.segment()
		if err != nil {
			return errFromDomain(c, fmt.Errorf("second: %w", err))
		}
		units, err := requestUnits(c, deps, req.Units)
		if err != nil {
			return errFromDomain(c, err)
		}

		res, err := deps.Measure.Angle(c.UserContext(), first, second)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(MeasurementResponse{
			Result:  res,
			Units:   units,
			Message: usecases.Format(res, units),
		})
	}
}

// FormatHandler renders an already computed result with the given units.
func FormatHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req formatRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		switch req.Result.Kind {
		case domain.ResultLength, domain.ResultAngle:
		default:
			return errBadRequest(c, fmt.Sprintf("unknown result kind %q", req.Result.Kind))
		}

		units, err := requestUnits(c, deps, req.Units)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(MeasurementResponse{
			Result:  req.Result,
			Units:   units,
			Message: usecases.Format(req.Result, units),
		})
	}
}

// GetPreferencesHandler returns the stored unit toggles for a client.
func GetPreferencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Preferences.Load(c.UserContext(), c.Params("client")))
	}
}

// PutPreferencesHandler updates one or both unit toggles for a client.
func PutPreferencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in unitsInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		ctx := c.UserContext()
		client := c.Params("client")
		prefs, err := in.apply(deps.Preferences.Load(ctx, client))
		if err != nil {
			return errFromDomain(c, err)
		}
		if err := deps.Preferences.Save(ctx, client, prefs); err != nil {
			LoggerFromCtx(ctx).Error("save preferences", "client_id", client, "error", err)
			return errInternal(c, "could not store preferences")
		}
		return c.JSON(prefs)
	}
}

// DeletePreferencesHandler resets a client to the default toggles.
func DeletePreferencesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		client := c.Params("client")
		if err := deps.Preferences.Forget(ctx, client); err != nil {
			LoggerFromCtx(ctx).Error("forget preferences", "client_id", client, "error", err)
			return errInternal(c, "could not reset preferences")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
