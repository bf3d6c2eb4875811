package apiclient

import (
	"errors"
	"fmt"
)

// NetworkErrorMessage is reported when no response was received at all.
const NetworkErrorMessage = "Network error or server unavailable"

// RequestFailedError normalizes every failed call. Status is the HTTP status
// code of a rejected request, or 0 when the request never got a response.
type RequestFailedError struct {
	Status  int
	Message string
}

func (e *RequestFailedError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// StatusOf returns the status carried by a RequestFailedError, or -1 for other errors.
func StatusOf(err error) int {
	var reqErr *RequestFailedError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return -1
}

// IsNetworkError reports whether err is a transport failure rather than a server rejection.
func IsNetworkError(err error) bool {
	return StatusOf(err) == 0
}

// MessageOf returns the human readable part of err.
func MessageOf(err error) string {
	var reqErr *RequestFailedError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
