package chat

import (
	"errors"
	"net/http"
)

// User-facing messages for an exchange that exhausted every candidate
const (
	ConnectionErrorMessage = "Sorry, I'm having trouble connecting to the server. Please check your connection and try again."
	RateLimitMessage       = "Sorry, too many requests are being sent right now. Please wait a moment and try again."
	TooComplexMessage      = "Sorry, that question took too long to answer. Please try a simpler or more specific question."
)

// statusCoder is implemented by transport errors that carry an HTTP status
type statusCoder interface {
	StatusCode() int
}

// FailureWording picks the message shown when all candidates failed, based
// on the error of the last attempt
func FailureWording(last error) string {
	var sc statusCoder
	if errors.As(last, &sc) {
		switch sc.StatusCode() {
		case http.StatusTooManyRequests:
			return RateLimitMessage
		case http.StatusGatewayTimeout:
			return TooComplexMessage
		}
	}
	return ConnectionErrorMessage
}
