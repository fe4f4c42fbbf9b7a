package token

import (
	"github.com/oauthkit/oauthkit"
	"github.com/oauthkit/oauthkit/errors"
)

// CheckGrantType is the authorization gate that runs before scope and
// lifetime resolution. It validates that the grant_type parameter is
// present, names a grant type both known to this library and enabled by the
// policy, and is allowed for the authenticated client's role. On success it
// returns the grant type in effect for the rest of the request.
func CheckGrantType(policy *oauthkit.Policy, client Client, grantParam string) (oauthkit.GrantType, error) {
	if client == nil {
		return "", errors.Mark(ErrNotAuthenticated, 0).
			WithPublicMessage("A client should be already authenticated at this stage.")
	}

	if grantParam == "" {
		return "", NewError(CodeInvalidRequest, "The request is missing a required parameter.")
	}

	grant := oauthkit.GrantTypeFromValue(grantParam)
	if grant == "" || !policy.SupportsGrantType(grant) {
		return "", NewError(CodeUnsupportedGrantType, "The authorization grant type is not supported by the authorization server.")
	}

	role, ok := policy.Role(client.Role())
	if !ok || !role.AllowsGrantType(grant) {
		return "", NewError(CodeUnauthorizedClient, "The authenticated client is not authorized to use this authorization grant type.")
	}

	return grant, nil
}
