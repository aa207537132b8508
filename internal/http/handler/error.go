package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pharmadash/internal/form"
	"pharmadash/internal/http/middleware"
	"pharmadash/internal/model"
	"pharmadash/internal/prefs"
	"pharmadash/internal/query"
	"pharmadash/internal/search"
	"pharmadash/internal/service"
	"pharmadash/internal/sheets"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_LIMIT", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writePayload(c, status, errorEnvelope{Code: code, Message: message})
}

func writePayload(c *fiber.Ctx, status int, env errorEnvelope) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error:     env,
	})
}

// writeServiceError translates a domain error into the matching response.
func writeServiceError(c *fiber.Ctx, err error) error {
	var (
		paramErr     *query.ParamError
		transportErr *sheets.TransportError
	)

	if verr, ok := model.AsValidationError(err); ok {
		return writePayload(c, fiber.StatusUnprocessableEntity, errorEnvelope{
			Code:    "VALIDATION_FAILED",
			Message: "validation failed",
			Fields:  verr.Fields,
		})
	}

	switch {
	case errors.As(err, &paramErr):
		return writeError(c, fiber.StatusBadRequest, paramErr.Code, "invalid "+paramErr.Param)
	case errors.Is(err, model.ErrUnknownKind):
		return writeError(c, fiber.StatusNotFound, "UNKNOWN_KIND", "unknown record kind")
	case errors.Is(err, model.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "record not found")
	case errors.Is(err, service.ErrNoSelection):
		return writeError(c, fiber.StatusNotFound, "NO_SELECTION", "nothing selected")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "ID_REQUIRED", "id is required")
	case errors.Is(err, model.ErrConflict):
		return writeError(c, fiber.StatusConflict, "CONFLICT", "record was modified by someone else")
	case errors.Is(err, search.ErrSuperseded):
		return writeError(c, fiber.StatusConflict, "SUPERSEDED", "superseded by a newer search")
	case errors.Is(err, form.ErrBusy):
		return writeError(c, fiber.StatusConflict, "BUSY", "submission already in progress")
	case errors.Is(err, prefs.ErrNoUser):
		return writeError(c, fiber.StatusBadRequest, "USER_REQUIRED", "X-User-ID header is required")
	case errors.Is(err, prefs.ErrUnsupported):
		return writePayload(c, fiber.StatusUnprocessableEntity, errorEnvelope{
			Code:    "VALIDATION_FAILED",
			Message: "validation failed",
			Fields:  map[string]string{"language": "language is not supported"},
		})
	case errors.As(err, &transportErr):
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "spreadsheet service unavailable")
	case errors.Is(err, sheets.ErrMalformed):
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_MALFORMED", "unexpected spreadsheet response")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "BODY_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
