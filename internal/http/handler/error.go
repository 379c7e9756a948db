package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"library/internal/http/middleware"
	"library/internal/service"
)

// errorPayload is the body of every non-2xx response.
type errorPayload struct {
	RequestID string    `json:"request_id"`
	Error     errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiError pairs a machine-readable code with a message that is safe to show to clients.
type apiError struct {
	status  int
	code    string
	message string
}

var (
	errInternal = apiError{fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"}

	statusErrors = map[int]apiError{
		fiber.StatusBadRequest:            {fiber.StatusBadRequest, "BAD_REQUEST", "bad request"},
		fiber.StatusNotFound:              {fiber.StatusNotFound, "NOT_FOUND", "resource not found"},
		fiber.StatusMethodNotAllowed:      {fiber.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed"},
		fiber.StatusRequestEntityTooLarge: {fiber.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large"},
	}
)

func (e apiError) write(c *fiber.Ctx) error {
	rid, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return c.Status(e.status).JSON(errorPayload{
		RequestID: rid,
		Error:     errorBody{Code: e.code, Message: e.message},
	})
}

func writeError(c *fiber.Ctx, status int, code, message string) error {
	return apiError{status, code, message}.write(c)
}

// classify maps an error to its response. Service sentinels win over the
// generic status table; anything unknown becomes a 500 without detail.
func classify(err error) apiError {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		return apiError{fiber.StatusBadRequest, "INVALID_ID", "invalid id format"}
	case errors.Is(err, service.ErrNotFound):
		return apiError{fiber.StatusNotFound, "NOT_FOUND", "book not found"}
	case errors.Is(err, service.ErrAuthorNotFound):
		return apiError{fiber.StatusUnprocessableEntity, "AUTHOR_NOT_FOUND", "author not found"}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if e, ok := statusErrors[fe.Code]; ok {
			return e
		}
		return apiError{fe.Code, errInternal.code, errInternal.message}
	}
	return errInternal
}

func writeServiceError(c *fiber.Ctx, err error) error {
	return classify(err).write(c)
}

// ErrorHandler is the global Fiber error handler. Handlers may return service
// errors directly and get the same payload as writeServiceError produces.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return classify(err).write(c)
	}
}
