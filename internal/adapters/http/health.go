package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint; set at build time with -ldflags.
var Version = "dev"

var errNotConfigured = errors.New("not configured")

// HealthHandler returns a basic liveness check along with the unit toggles
// new sessions start with.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"uptime":   time.Since(startedAt).String(),
			"version":  Version,
			"defaults": deps.Preferences.Defaults(),
		})
	}
}

// readinessCheck tests one optional backend. It returns errNotConfigured
// when the backend is not in use.
type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

func readinessChecks(deps *Dependencies) []readinessCheck {
	return []readinessCheck{
		{"nats", func(context.Context) error {
			if deps.NATS == nil {
				return errNotConfigured
			}
			if !deps.NATS.IsConnected() {
				return errors.New("disconnected")
			}
			return nil
		}},
		{"cache", func(ctx context.Context) error {
			if deps.Cache == nil {
				return errNotConfigured
			}
			return deps.Cache.Ping(ctx)
		}},
	}
}

// ReadyHandler checks the result feed and the preference store. Both are
// optional: an unconfigured backend is reported but does not fail
// readiness, a configured one that is down does.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	backends := readinessChecks(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string, len(backends))
		code := fiber.StatusOK
		for _, p := range backends {
			switch err := p.check(ctx); {
			case err == nil:
				checks[p.name] = "ok"
			case errors.Is(err, errNotConfigured):
				checks[p.name] = err.Error()
			default:
				checks[p.name] = "error: " + err.Error()
				code = fiber.StatusServiceUnavailable
			}
		}

		status := "ready"
		if code != fiber.StatusOK {
			status = "not ready"
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
