package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cacheRule maps a path prefix to a default Cache-Control value.
type cacheRule struct {
	prefix string
	value  string
}

// cacheRules are checked in order; the first matching prefix wins.
var cacheRules = []cacheRule{
	{"/v1/health", "public, max-age=10"},
	{"/v1/ready", "no-cache"},
	{"/v1/preferences/", "private, no-cache"}, // revalidate with ETag
	{"/metrics", "no-cache"},
	{"/docs", "public, max-age=3600"},
}

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds defaults only if the handler did not set one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		for _, r := range cacheRules {
			if strings.HasPrefix(path, r.prefix) {
				c.Set(fiber.HeaderCacheControl, r.value)
				break
			}
		}
		return err
	}
}
