// Package scope implements the authorization decision engine guarding
// protected operations. The host maps each operation to a Policy ahead of
// request time (from route metadata, a handler registry, whatever fits);
// Decide then evaluates the authenticated caller's granted scopes against
// that policy and renders allow or deny. The posture is closed: an
// operation with no policy denies everyone.
package scope

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/grpc/codes"

	"github.com/oauthkit/oauthkit/errors"
)

// ErrAccessDenied is the base error for every deny decision. It maps to
// HTTP 403 for authenticated callers whose scopes do not suffice.
var ErrAccessDenied = errors.NewC("access denied", codes.PermissionDenied)

type policyKind int

const (
	policyNone policyKind = iota
	policyAll
	policyAny
)

// Policy declares the scope requirement of one protected operation. The
// zero value declares no requirement at all, which denies by default. Build
// non-zero policies with RequireAll or RequireAny; the tagged representation
// rules out the "both declared" ambiguity by construction.
type Policy struct {
	kind   policyKind
	scopes []string
}

// RequireAll declares that a caller needs every listed scope. With no
// arguments it still allows any authenticated caller; deny-by-default only
// applies to the zero Policy.
func RequireAll(scopes ...string) Policy {
	return Policy{kind: policyAll, scopes: scopes}
}

// RequireAny declares that a caller needs at least one listed scope. With no
// arguments it allows any authenticated caller.
func RequireAny(scopes ...string) Policy {
	return Policy{kind: policyAny, scopes: scopes}
}

// Declared reports whether the policy was built with RequireAll or
// RequireAny, as opposed to being the deny-by-default zero value.
func (p Policy) Declared() bool {
	return p.kind != policyNone
}

// Caller is the authenticated principal whose request is being authorized:
// the scopes granted to its token plus its client role, carried for deny
// diagnostics.
type Caller struct {
	Role   string
	Scopes []string
}

// HasScope reports whether the caller was granted the scope.
func (c Caller) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Decide evaluates the caller against the policy. A nil return allows the
// request. Denials are *DeniedError values wrapping ErrAccessDenied; only a
// failed RequireAll carries diagnostics (the required set and the caller's
// role), a failed RequireAny reveals nothing about what would have passed.
//
// Evaluation order: a zero policy denies; an empty RequireAll or RequireAny
// allows (caller authentication alone suffices); a non-empty RequireAll
// allows iff the caller's scopes are a superset of the required set; a
// non-empty RequireAny allows iff the sets intersect.
func Decide(p Policy, caller Caller) error {
	switch p.kind {
	case policyAll:
		if len(p.scopes) == 0 {
			return nil
		}
		for _, s := range p.scopes {
			if !caller.HasScope(s) {
				return deny(p.scopes, caller.Role)
			}
		}
		return nil

	case policyAny:
		if len(p.scopes) == 0 {
			return nil
		}
		for _, s := range p.scopes {
			if caller.HasScope(s) {
				return nil
			}
		}
		return deny(nil, "")

	default:
		return deny(nil, "")
	}
}

// DeniedError is a deny decision. RequiredScopes and Role are populated only
// when a RequireAll policy failed; they are diagnostic data for the host's
// error page or logs, never serialized to the caller by this package.
type DeniedError struct {
	base *errors.Error

	// RequiredScopes is the sorted set of scopes the policy demanded.
	RequiredScopes []string

	// Role is the denied caller's client role.
	Role string
}

func (e *DeniedError) Error() string { return e.base.Error() }

// Unwrap exposes the marked ErrAccessDenied for Is and As.
func (e *DeniedError) Unwrap() error { return e.base }

// Code returns the gRPC status code.
func (e *DeniedError) Code() codes.Code { return e.base.Code() }

// HTTPStatusCode returns the transport status for the denial.
func (e *DeniedError) HTTPStatusCode() int { return e.base.HTTPStatusCode() }

// PublicMessage returns the client-safe denial message.
func (e *DeniedError) PublicMessage() string { return e.base.PublicMessage() }

func deny(required []string, role string) *DeniedError {
	e := errors.Mark(ErrAccessDenied, 2)
	if len(required) == 0 {
		return &DeniedError{base: e}
	}

	sorted := append([]string(nil), required...)
	sort.Strings(sorted)
	e = e.WithPublicMessage(fmt.Sprintf("Access denied: requires scopes [%s]", strings.Join(sorted, " ")))
	return &DeniedError{
		base:           e,
		RequiredScopes: sorted,
		Role:           role,
	}
}
