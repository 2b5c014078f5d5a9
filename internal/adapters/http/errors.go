package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
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
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnauthorized returns a 401 error.
func errUnauthorized(c *fiber.Ctx, msg string) error {
	return newError(c, 401, "unauthorized", msg)
}

// errUnprocessable returns a 422 error with a specific code.
func errUnprocessable(c *fiber.Ctx, code, msg string) error {
	return newError(c, 422, code, msg)
}

var badRequestErrors = []error{
	domain.ErrInvalidShapeType,
	domain.ErrMissingCenterPoint,
	domain.ErrAmbiguousCenterPoint,
	domain.ErrInsufficientPolygonVertices,
	domain.ErrInvalidCoordinates,
	domain.ErrInvalidRadius,
	domain.ErrInvalidZone,
	domain.ErrInvalidOrder,
	domain.ErrInvalidSortColumn,
	domain.ErrInvalidPagination,
	domain.ErrInvalidStatus,
}

var notFoundErrors = []error{
	domain.ErrZoneNotFound,
	domain.ErrOrderNotFound,
	domain.ErrMerchantNotFound,
}

// errFromDomain maps a use case error onto an API error. Anything that is not
// a known business outcome is logged and reported as a bare 500.
func errFromDomain(c *fiber.Ctx, err error) error {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return errBadRequest(c, err.Error())
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return errNotFound(c, err.Error())
		}
	}
	switch {
	case errors.Is(err, domain.ErrOutsideDeliveryRange):
		return errUnprocessable(c, "outside_delivery_range", err.Error())
	case errors.Is(err, domain.ErrMissingMerchant):
		return errUnauthorized(c, err.Error())
	}

	ctx := c.UserContext()
	LoggerFromCtx(ctx).ErrorContext(ctx, "request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return errInternal(c, "internal server error")
}
