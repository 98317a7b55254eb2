package tinkoff

import (
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/aristath/investsync/internal/domain"
)

// Status codes used when the gateway gives no error body.
const (
	codeUnknown           = 2
	codeDeadlineExceeded  = 4
	codeNotFound          = 5
	codePermissionDenied  = 7
	codeResourceExhausted = 8
	codeInternal          = 13
	codeUnavailable       = 14
	codeUnauthenticated   = 16
)

// apiError is the gateway error body: {"code":3,"message":"...","description":"30079"}.
type apiError struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func decodeError(resp *http.Response, body []byte) *domain.RequestError {
	reqErr := &domain.RequestError{
		TrackingID: resp.Header.Get(trackingIDHeader),
		HTTPStatus: resp.StatusCode,
	}

	var apiErr apiError
	if err := sonic.Unmarshal(body, &apiErr); err == nil && (apiErr.Code != 0 || apiErr.Message != "") {
		reqErr.Code = apiErr.Code
		reqErr.Message = apiErr.Message
		reqErr.Description = apiErr.Description
		return reqErr
	}

	reqErr.Code = codeFromStatus(resp.StatusCode)
	reqErr.Message = http.StatusText(resp.StatusCode)
	return reqErr
}

func codeFromStatus(status int) int {
	switch {
	case status == http.StatusTooManyRequests:
		return codeResourceExhausted
	case status == http.StatusUnauthorized:
		return codeUnauthenticated
	case status == http.StatusForbidden:
		return codePermissionDenied
	case status == http.StatusNotFound:
		return codeNotFound
	case status == http.StatusGatewayTimeout:
		return codeDeadlineExceeded
	case status >= 500:
		return codeInternal
	default:
		return codeUnknown
	}
}
