package token

import (
	"strconv"

	"github.com/oauthkit/oauthkit"
)

// ResolveLifetime computes the lifetime in seconds of a token about to be
// issued. The base is the client's override when present, else the role
// default. A caller-requested lifetime may only shorten the base, never
// extend it. requested is the raw expires_in parameter; absence is fine, but
// a present value that is not a strictly positive integer is an
// invalid_request.
func ResolveLifetime(role oauthkit.ClientRole, client Client, requested string) (int, error) {
	base := role.TokenLifetime
	if o := client.TokenLifetime(); o != nil {
		base = *o
	}

	if requested == "" {
		return base, nil
	}

	n, err := strconv.Atoi(requested)
	if err != nil || n <= 0 {
		return 0, NewError(CodeInvalidRequest, "The 'expires_in' parameter is not a valid strictly positive integer value.")
	}
	if n < base {
		return n, nil
	}
	return base, nil
}
