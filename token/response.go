package token

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/oauthkit/oauthkit/errors"
)

// Header values the transport must set on every token endpoint response,
// success or error, per rfc6749 section 5.1.
const (
	HeaderCacheControl = "no-store"
	HeaderPragma       = "no-cache"
)

// Response is the success payload of a token request. Serialization emits
// fields in the documented wire order: access_token, token_type, expires_in,
// expiration_date, then scope, with any Extras merged at the top level after
// them. The scope field is omitted entirely when no scopes were granted.
type Response struct {
	AccessToken    string
	TokenType      string
	ExpiresIn      int
	ExpirationDate time.Time
	Scopes         []string

	// Extras are additional top level response fields supplied by the
	// issuer's response hook. Keys colliding with the standard fields are
	// the hook author's problem.
	Extras map[string]interface{}
}

// NewResponse builds a Response from a minted token.
func NewResponse(tok AccessToken) *Response {
	return &Response{
		AccessToken:    tok.Token(),
		TokenType:      tok.TokenType(),
		ExpiresIn:      tok.Lifetime(),
		ExpirationDate: tok.ExpirationDate(),
		Scopes:         tok.Scopes(),
	}
}

// Scope returns the space joined, sorted scope value, or "" when empty.
func (r *Response) Scope() string {
	if len(r.Scopes) == 0 {
		return ""
	}
	scopes := append([]string(nil), r.Scopes...)
	sort.Strings(scopes)
	return strings.Join(scopes, " ")
}

// MarshalJSON writes the response with a stable field order. encoding/json
// sorts map keys and orders struct fields by declaration, neither of which
// lets extension fields follow the standard ones in one flat object, so the
// object is assembled by hand.
func (r *Response) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeField(&buf, "access_token", r.AccessToken, true); err != nil {
		return nil, err
	}
	if err := writeField(&buf, "token_type", r.TokenType, false); err != nil {
		return nil, err
	}
	if err := writeField(&buf, "expires_in", r.ExpiresIn, false); err != nil {
		return nil, err
	}
	if err := writeField(&buf, "expiration_date", FormatUTC(r.ExpirationDate), false); err != nil {
		return nil, err
	}
	if scope := r.Scope(); scope != "" {
		if err := writeField(&buf, "scope", scope, false); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(r.Extras))
	for k := range r.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writeField(&buf, k, r.Extras[k], false); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, name string, value interface{}, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	k, err := json.Marshal(name)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	v, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// ErrorResponse is the error payload of a token request.
type ErrorResponse struct {
	Code        Code   `json:"error"`
	Description string `json:"error_description"`
}

// ErrorResponseFor renders err as a token endpoint error payload plus the
// HTTP status to send it with. The second return is false when err is not a
// protocol error; the host should render those as opaque server failures
// rather than leak internals onto the wire.
func ErrorResponseFor(err error) (ErrorResponse, int, bool) {
	code := CodeOf(err)
	if code == "" {
		return ErrorResponse{}, errors.HTTPStatusCode(err), false
	}
	return ErrorResponse{
		Code:        code,
		Description: errors.PublicMessage(err),
	}, errors.HTTPStatusCode(err), true
}
