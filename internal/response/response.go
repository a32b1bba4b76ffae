// Package response holds the wire vocabulary shared by every outcome of
// the notification pipeline: the response URNs, the success envelope and
// the typed failure carried as an error value.
package response

import "net/http"

const (
	SuccessURN   = "urn:dx:acl:success"
	SuccessTitle = "Success"

	ResourceNotFoundURN    = "urn:dx:acl:resourceNotFound"
	DatabaseErrorURN       = "urn:dx:acl:DatabaseError"
	AuthenticationURN      = "urn:dx:acl:authenticationFailure"
	LimitExceededURN       = "urn:dx:acl:limitExceeded"
	BadRequestURN          = "urn:dx:acl:badRequest"
	InternalServerErrorURN = "urn:dx:acl:internalServerError"
)

// Result is the inner success payload: the type/title pair over the
// assembled records.
type Result struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Result any    `json:"result"`
}

// Envelope is the outer success wrapper. The inner Result repeats the
// result key; existing consumers depend on the two-level nesting.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Result     Result `json:"result"`
}

// ServiceError is a terminal pipeline failure. It travels as an error
// value and serializes verbatim as the response body; the Type field
// carries the numeric status per the legacy contract while StatusCode
// drives the HTTP layer.
type ServiceError struct {
	StatusCode int    `json:"-"`
	Type       int    `json:"type"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
}

func (e *ServiceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Detail
}

func NotFound(detail string) *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusNotFound,
		Type:       http.StatusNotFound,
		Title:      ResourceNotFoundURN,
		Detail:     detail,
	}
}

func DatabaseError(detail string) *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusInternalServerError,
		Type:       http.StatusInternalServerError,
		Title:      DatabaseErrorURN,
		Detail:     detail,
	}
}

func Unauthorized(detail string) *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusUnauthorized,
		Type:       http.StatusUnauthorized,
		Title:      AuthenticationURN,
		Detail:     detail,
	}
}

func LimitExceeded(detail string) *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusTooManyRequests,
		Type:       http.StatusTooManyRequests,
		Title:      LimitExceededURN,
		Detail:     detail,
	}
}
