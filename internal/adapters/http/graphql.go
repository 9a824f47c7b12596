package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geomeasure/internal/core/domain"
	"github.com/samirrijal/geomeasure/internal/core/usecases"
)

// measurementView is the GraphQL shape of a formatted measurement.
type measurementView struct {
	Kind       string  `json:"kind"`
	DistanceKm float64 `json:"distance_km"`
	BearingDeg float64 `json:"bearing_deg"`
	AngleDeg   float64 `json:"angle_deg"`
	Message    string  `json:"message"`
}

func newMeasurementView(res domain.MeasurementResult, units domain.UnitPreference) measurementView {
	return measurementView{
		Kind:       string(res.Kind),
		DistanceKm: res.DistanceKm,
		BearingDeg: res.BearingDeg,
		AngleDeg:   res.AngleDeg,
		Message:    usecases.Format(res, units),
	}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	measurementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Measurement",
		Fields: graphql.Fields{
			"kind":        &graphql.Field{Type: graphql.String},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"bearing_deg": &graphql.Field{Type: graphql.Float},
			"angle_deg":   &graphql.Field{Type: graphql.Float},
			"message":     &graphql.Field{Type: graphql.String},
		},
	})

	preferenceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "UnitPreference",
		Fields: graphql.Fields{
			"distance": &graphql.Field{Type: graphql.String},
			"angle":    &graphql.Field{Type: graphql.String},
		},
	})

	coordsArg := func(desc string) *graphql.ArgumentConfig {
		return &graphql.ArgumentConfig{
			Type:        graphql.NewNonNull(graphql.NewList(graphql.NewList(graphql.Float))),
			Description: desc,
		}
	}
	unitArgs := graphql.FieldConfigArgument{
		"distanceUnit": &graphql.ArgumentConfig{Type: graphql.String},
		"angleUnit":    &graphql.ArgumentConfig{Type: graphql.String},
		"client":       &graphql.ArgumentConfig{Type: graphql.String},
	}
	withUnits := func(args graphql.FieldConfigArgument) graphql.FieldConfigArgument {
		for k, v := range unitArgs {
			args[k] = v
		}
		return args
	}

	// resolveUnits reads the client's stored toggles and applies the
	// per-query overrides.
	resolveUnits := func(p graphql.ResolveParams) (domain.UnitPreference, error) {
		client, _ := p.Args["client"].(string)
		in := unitsInput{}
		in.Distance, _ = p.Args["distanceUnit"].(string)
		in.Angle, _ = p.Args["angleUnit"].(string)
		return in.apply(deps.Preferences.Load(p.Context, client))
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"length": &graphql.Field{
				Type:        measurementType,
				Description: "Great-circle length and initial bearing of a drawn segment",
				Args: withUnits(graphql.FieldConfigArgument{
					"coordinates": coordsArg("Two [x, y] EPSG:3857 points"),
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					seg, err := segmentArg(p.Args["coordinates"])
					if err != nil {
						return nil, err
					}
					units, err := resolveUnits(p)
					if err != nil {
						return nil, err
					}
					return newMeasurementView(deps.Measure.Length(p.Context, seg), units), nil
				},
			},
			"angle": &graphql.Field{
				Type:        measurementType,
				Description: "Angle at the end of the first segment, swept clockwise to the end of the second",
				Args: withUnits(graphql.FieldConfigArgument{
					"first":  coordsArg("First segment, ending at the vertex"),
					"second": coordsArg("Second segment, leaving the vertex"),
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					first, err := segmentArg(p.Args["first"])
					if err != nil {
						return nil, fmt.Errorf("first: %w", err)
					}
					second, err := segmentArg(p.Args["second"])
					if err != nil {
						return nil, fmt.Errorf("second: %w", err)
					}
					units, err := resolveUnits(p)
					if err != nil {
						return nil, err
					}
					res, err := deps.Measure.Angle(p.Context, first, second)
					if err != nil {
						return nil, err
					}
					return newMeasurementView(res, units), nil
				},
			},
			"format": &graphql.Field{
				Type:        graphql.String,
				Description: "Render a measurement with the given units",
				Args: withUnits(graphql.FieldConfigArgument{
					"kind":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"distanceKm": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"bearingDeg": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"angleDeg":   &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					kind := domain.ResultKind(p.Args["kind"].(string))
					var res domain.MeasurementResult
					switch kind {
					case domain.ResultLength:
						res = domain.LengthResult(p.Args["distanceKm"].(float64), p.Args["bearingDeg"].(float64))
					case domain.ResultAngle:
						res = domain.AngleResult(p.Args["angleDeg"].(float64))
					default:
						return nil, fmt.Errorf("unknown result kind %q", kind)
					}
					units, err := resolveUnits(p)
					if err != nil {
						return nil, err
					}
					return usecases.Format(res, units), nil
				},
			},
			"preferences": &graphql.Field{
				Type:        preferenceType,
				Description: "Stored unit toggles for a client",
				Args: graphql.FieldConfigArgument{
					"client": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Preferences.Load(p.Context, p.Args["client"].(string)), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// segmentArg converts a [[Float]] argument into a Segment.
func segmentArg(v interface{}) (domain.Segment, error) {
	outer, _ := v.([]interface{})
	coords := make([][]float64, 0, len(outer))
	for _, o := range outer {
		inner, _ := o.([]interface{})
		pt := make([]float64, 0, len(inner))
		for _, n := range inner {
			f, ok := n.(float64)
			if !ok {
				return domain.Segment{}, fmt.Errorf("%w: non-numeric coordinate", domain.ErrMalformedSegment)
			}
			pt = append(pt, f)
		}
		coords = append(coords, pt)
	}
	return domain.NewSegment(coords)
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
