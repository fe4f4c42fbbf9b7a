package oauthkit

// GrantType identifies an OAuth2 method of obtaining an access token, as
// defined by RFC 6749. The catalog is closed: this library implements the
// client credentials and resource owner password credentials grants only.
type GrantType string

const (
	// GrantClientCredentials is the client credentials grant type.
	// See https://tools.ietf.org/html/rfc6749#section-4.4
	GrantClientCredentials = GrantType("client_credentials")

	// GrantPassword is the resource owner password credentials grant type.
	// See https://tools.ietf.org/html/rfc6749#section-4.3
	GrantPassword = GrantType("password")
)

// SupportedGrantTypes lists every grant type implemented by this library. A
// deployment's policy may enable a subset of these.
var SupportedGrantTypes = []GrantType{GrantClientCredentials, GrantPassword}

// GrantTypeFromValue maps a grant type wire string, per the rfc6749 naming,
// to a GrantType. Unknown values map to the zero GrantType; that is not an
// error by itself, callers must check and react.
func GrantTypeFromValue(value string) GrantType {
	switch value {
	case "client_credentials":
		return GrantClientCredentials
	case "password":
		return GrantPassword
	default:
		return ""
	}
}

// Supported reports whether the grant type is one this library implements.
func (g GrantType) Supported() bool {
	for _, s := range SupportedGrantTypes {
		if g == s {
			return true
		}
	}
	return false
}

func (g GrantType) String() string {
	return string(g)
}
