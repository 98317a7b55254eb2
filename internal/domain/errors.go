package domain

import (
	"errors"
	"fmt"
)

// ErrNoData marks an empty result: no instruments of a kind, no candles in
// a window, no positions. It is not a failure.
var ErrNoData = errors.New("no data")

// grpcCodes names the status codes the provider reports in error bodies.
var grpcCodes = map[int]string{
	0:  "OK",
	1:  "CANCELLED",
	2:  "UNKNOWN",
	3:  "INVALID_ARGUMENT",
	4:  "DEADLINE_EXCEEDED",
	5:  "NOT_FOUND",
	6:  "ALREADY_EXISTS",
	7:  "PERMISSION_DENIED",
	8:  "RESOURCE_EXHAUSTED",
	9:  "FAILED_PRECONDITION",
	10: "ABORTED",
	11: "OUT_OF_RANGE",
	12: "UNIMPLEMENTED",
	13: "INTERNAL",
	14: "UNAVAILABLE",
	15: "DATA_LOSS",
	16: "UNAUTHENTICATED",
}

// RequestError is a provider-side failure: rate limiting, auth, bad
// arguments, or transport trouble. TrackingID is empty when the provider
// did not return one.
type RequestError struct {
	TrackingID  string
	Code        int
	Message     string
	Description string
	HTTPStatus  int
	Err         error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.TrackingID != "" {
		return fmt.Sprintf("provider request failed: code=%s tracking_id=%s: %s", e.CodeName(), e.TrackingID, msg)
	}
	return fmt.Sprintf("provider request failed: code=%s: %s", e.CodeName(), msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// CodeName returns the symbolic status code, e.g. RESOURCE_EXHAUSTED.
func (e *RequestError) CodeName() string {
	if name, ok := grpcCodes[e.Code]; ok {
		return name
	}
	return fmt.Sprintf("CODE_%d", e.Code)
}

// AsRequestError extracts a RequestError from err's chain.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// IsRequestError reports whether err is a provider failure.
func IsRequestError(err error) bool {
	_, ok := AsRequestError(err)
	return ok
}
