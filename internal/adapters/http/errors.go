package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geomeasure/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, unprocessable, internal_error, ...
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errUnprocessable returns a 422 error.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, "unprocessable", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFromDomain maps domain sentinel errors to HTTP responses.
func errFromDomain(c *fiber.Ctx, err error) error {
	switch errorCode(err) {
	case "bad_request":
		return errBadRequest(c, err.Error())
	case "unprocessable":
		return errUnprocessable(c, err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("unhandled error", "error", err)
	return errInternal(c, "internal error")
}

// errorCode returns the APIError code for err; used for websocket error frames.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedSegment),
		errors.Is(err, domain.ErrUnknownUnit),
		errors.Is(err, domain.ErrUnknownMode):
		return "bad_request"
	case errors.Is(err, domain.ErrVertexMismatch):
		return "unprocessable"
	}
	return "internal_error"
}
