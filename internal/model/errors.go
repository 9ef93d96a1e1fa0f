package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInput is returned by Submit when no file has been selected.
	// It is detected locally and never reaches the network.
	ErrMissingInput = errors.New("no file selected")

	// ErrRequestFailed marks any failure of the prediction request: network
	// errors, non-2xx statuses and bodies that do not match the expected shape.
	ErrRequestFailed = errors.New("prediction request failed")

	// ErrMalformedResponse is returned when a 2xx body cannot be read as a prediction.
	ErrMalformedResponse = errors.New("malformed prediction response")

	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not resolved yet.
	ErrSubmitInFlight = errors.New("submission already in flight")
)

// HTTPError wraps a non-success HTTP status from the prediction service.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
