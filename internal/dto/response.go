package dto

import "net/http"

// Envelope is the uniform body of every response.
type Envelope struct {
	Success    bool          `json:"success"`
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Data       interface{}   `json:"data"`
	Errors     []interface{} `json:"errors,omitempty"`
}

// NewEnvelope wraps data in a success envelope. Success is derived from the
// status code.
func NewEnvelope(statusCode int, message string, data interface{}) Envelope {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return Envelope{
		Success:    statusCode < http.StatusBadRequest,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	}
}
