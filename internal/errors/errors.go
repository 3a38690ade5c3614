package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/project-management-api/internal/dto"
	"github.com/yukikurage/project-management-api/internal/logger"
)

// APIError is a failure that maps onto the response envelope.
type APIError struct {
	Status  int
	Message string
	Errors  []interface{}
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// New creates an APIError with optional entries for the envelope's errors array
func New(status int, message string, errs ...interface{}) *APIError {
	if message == "" {
		message = http.StatusText(status)
	}
	if errs == nil {
		errs = []interface{}{}
	}
	return &APIError{
		Status:  status,
		Message: message,
		Errors:  errs,
	}
}

// Helper constructors for common failures

// Validation is a 422 carrying one {field: message} entry per invalid field
func Validation(fields []map[string]string) *APIError {
	errs := make([]interface{}, len(fields))
	for i, field := range fields {
		errs[i] = field
	}
	return New(http.StatusUnprocessableEntity, "Received data is not valid", errs...)
}

// BadRequest is a 400
func BadRequest(message string) *APIError {
	if message == "" {
		message = "Invalid request"
	}
	return New(http.StatusBadRequest, message)
}

// Unauthorized is a 401; reasons are exposed in the errors array
func Unauthorized(message string, reasons ...string) *APIError {
	if message == "" {
		message = "Authentication required"
	}
	errs := make([]interface{}, len(reasons))
	for i, reason := range reasons {
		errs[i] = reason
	}
	return New(http.StatusUnauthorized, message, errs...)
}

// Forbidden is a 403
func Forbidden(message string) *APIError {
	if message == "" {
		message = "Access denied"
	}
	return New(http.StatusForbidden, message)
}

// NotFound is a 404
func NotFound(message string) *APIError {
	if message == "" {
		message = "Resource not found"
	}
	return New(http.StatusNotFound, message)
}

// Conflict is a 409
func Conflict(message string) *APIError {
	if message == "" {
		message = "Resource conflict"
	}
	return New(http.StatusConflict, message)
}

// TooManyRequests is a 429
func TooManyRequests(message string) *APIError {
	if message == "" {
		message = "Too many requests, please try again later"
	}
	return New(http.StatusTooManyRequests, message)
}

// Internal is a 500
func Internal(message string) *APIError {
	if message == "" {
		message = "Internal server error"
	}
	return New(http.StatusInternalServerError, message)
}

// ServiceUnavailable is a 503
func ServiceUnavailable(message string) *APIError {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return New(http.StatusServiceUnavailable, message)
}

// Abort records err on the context and stops the handler chain. The
// response is written by Handler.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Handler renders the last error recorded with Abort as the response
// envelope. Errors that are not an *APIError become a generic 500 and are
// logged, never echoed. Panics are recovered the same way.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.FromContext(c.Request.Context()).Error("Panic recovered",
					"panic", recovered,
					"path", c.Request.URL.Path,
				)
				c.Abort()
				render(c, Internal(""))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var apiErr *APIError
		if !stderrors.As(err, &apiErr) {
			logger.FromContext(c.Request.Context()).Error("Unhandled error",
				"error", err,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			apiErr = Internal("")
		}

		render(c, apiErr)
	}
}

func render(c *gin.Context, apiErr *APIError) {
	if c.Writer.Written() {
		return
	}
	c.JSON(apiErr.Status, dto.Envelope{
		Success:    false,
		StatusCode: apiErr.Status,
		Message:    apiErr.Message,
		Data:       nil,
		Errors:     apiErr.Errors,
	})
}
