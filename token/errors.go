package token

import (
	stderrors "errors"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/oauthkit/oauthkit/errors"
)

// Code is one of the six rfc6749 token endpoint error codes. Every failure
// the issuance engine can produce carries exactly one of these.
type Code string

const (
	CodeInvalidRequest       = Code("invalid_request")
	CodeInvalidClient        = Code("invalid_client")
	CodeInvalidGrant         = Code("invalid_grant")
	CodeInvalidScope         = Code("invalid_scope")
	CodeUnauthorizedClient   = Code("unauthorized_client")
	CodeUnsupportedGrantType = Code("unsupported_grant_type")
)

// HTTPStatus maps the code to its transport status: 401 for invalid_client
// and unauthorized_client, 400 for everything else.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidClient, CodeUnauthorizedClient:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// Error is a token endpoint protocol error: a stable machine readable code
// plus a human readable description that is safe to send to the client.
type Error struct {
	base *errors.Error
	code Code
}

// NewError builds a protocol error for the given code.
func NewError(code Code, description string) *Error {
	grpcCode := codes.InvalidArgument
	if code.HTTPStatus() == http.StatusUnauthorized {
		grpcCode = codes.Unauthenticated
	}
	e := errors.NewC(description, grpcCode).
		WithHTTPStatusCode(code.HTTPStatus()).
		WithPublicMessage(description)
	return &Error{base: e, code: code}
}

func (e *Error) Error() string { return e.base.Error() }

// Unwrap exposes the underlying coded error for Is and As.
func (e *Error) Unwrap() error { return e.base }

// Code returns the gRPC status code.
func (e *Error) Code() codes.Code { return e.base.Code() }

// HTTPStatusCode returns the transport status for the protocol code.
func (e *Error) HTTPStatusCode() int { return e.base.HTTPStatusCode() }

// PublicMessage returns the client-safe message.
func (e *Error) PublicMessage() string { return e.base.PublicMessage() }

// OAuthCode returns the rfc6749 error code.
func (e *Error) OAuthCode() Code {
	return e.code
}

// Description returns the human readable error_description value.
func (e *Error) Description() string {
	return e.base.PublicMessage()
}

// CodeOf extracts the protocol code from err. Returns the empty Code when
// err is not a token endpoint error.
func CodeOf(err error) Code {
	var te *Error
	if stderrors.As(err, &te) {
		return te.code
	}
	return ""
}

// ErrNotAuthenticated is returned by the grant type gate when it runs
// without an authenticated client. That is a wiring bug in the host, not a
// protocol error, so it maps to a plain 403 rather than an rfc6749 code.
var ErrNotAuthenticated = errors.NewC("a client should be already authenticated at this stage", codes.PermissionDenied)
