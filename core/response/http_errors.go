package response

import "net/http"

// HTTPError is a structured error payload.
type HTTPError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e HTTPError) Error() string   { return e.Message }
func (e HTTPError) StatusCode() int { return e.Status }

// WithMessage returns a copy with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy with details attached.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

// WithError returns a copy carrying err as the "cause" detail.
func (e HTTPError) WithError(err error) HTTPError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["cause"] = err.Error()
	e.Details = details
	return e
}

func newHTTPError(status int, code string) HTTPError {
	return HTTPError{Status: status, Code: code, Message: http.StatusText(status)}
}

var (
	ErrBadRequest           = newHTTPError(http.StatusBadRequest, "bad_request")
	ErrUnauthorized         = newHTTPError(http.StatusUnauthorized, "unauthorized")
	ErrPaymentRequired      = newHTTPError(http.StatusPaymentRequired, "payment_required")
	ErrForbidden            = newHTTPError(http.StatusForbidden, "forbidden")
	ErrNotFound             = newHTTPError(http.StatusNotFound, "not_found")
	ErrMethodNotAllowed     = newHTTPError(http.StatusMethodNotAllowed, "method_not_allowed")
	ErrConflict             = newHTTPError(http.StatusConflict, "conflict")
	ErrGone                 = newHTTPError(http.StatusGone, "gone")
	ErrEntityTooLarge       = newHTTPError(http.StatusRequestEntityTooLarge, "request_entity_too_large")
	ErrUnsupportedMediaType = newHTTPError(http.StatusUnsupportedMediaType, "unsupported_media_type")
	ErrUnprocessableEntity  = newHTTPError(http.StatusUnprocessableEntity, "unprocessable_entity")
	ErrTooManyRequests      = newHTTPError(http.StatusTooManyRequests, "too_many_requests")
	ErrInternalServerError  = newHTTPError(http.StatusInternalServerError, "internal_server_error")
	ErrNotImplemented       = newHTTPError(http.StatusNotImplemented, "not_implemented")
	ErrBadGateway           = newHTTPError(http.StatusBadGateway, "bad_gateway")
	ErrServiceUnavailable   = newHTTPError(http.StatusServiceUnavailable, "service_unavailable")
	ErrGatewayTimeout       = newHTTPError(http.StatusGatewayTimeout, "gateway_timeout")
)

var httpErrorsByStatus = map[int]HTTPError{
	http.StatusBadRequest:            ErrBadRequest,
	http.StatusUnauthorized:          ErrUnauthorized,
	http.StatusPaymentRequired:       ErrPaymentRequired,
	http.StatusForbidden:             ErrForbidden,
	http.StatusNotFound:              ErrNotFound,
	http.StatusMethodNotAllowed:      ErrMethodNotAllowed,
	http.StatusConflict:              ErrConflict,
	http.StatusGone:                  ErrGone,
	http.StatusRequestEntityTooLarge: ErrEntityTooLarge,
	http.StatusUnsupportedMediaType:  ErrUnsupportedMediaType,
	http.StatusUnprocessableEntity:   ErrUnprocessableEntity,
	http.StatusTooManyRequests:       ErrTooManyRequests,
	http.StatusInternalServerError:   ErrInternalServerError,
	http.StatusNotImplemented:        ErrNotImplemented,
	http.StatusBadGateway:            ErrBadGateway,
	http.StatusServiceUnavailable:    ErrServiceUnavailable,
	http.StatusGatewayTimeout:        ErrGatewayTimeout,
}
