package scope

import (
	"context"
	"strings"
)

type callerKey struct{}

// WithCaller attaches the authenticated caller to the context. Hosts do this
// once per request, after validating the access token.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext retrieves the authenticated caller. The second return is
// false when no caller was attached.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	return caller, ok
}

// DecideCtx evaluates the policy against the caller attached to ctx. A
// context with no caller denies, same as a caller with no scopes.
func DecideCtx(ctx context.Context, p Policy) error {
	caller, _ := CallerFromContext(ctx)
	return Decide(p, caller)
}

// HasScope checks if the caller in the context was granted the scope.
func HasScope(ctx context.Context, scope string) bool {
	caller, _ := CallerFromContext(ctx)
	return caller.HasScope(scope)
}

// HasAnyScope checks if the caller in the context has any of the scopes.
func HasAnyScope(ctx context.Context, scopes ...string) bool {
	for _, s := range scopes {
		if HasScope(ctx, s) {
			return true
		}
	}
	return false
}

// HasAllScopes checks if the caller in the context has all of the scopes.
func HasAllScopes(ctx context.Context, scopes ...string) bool {
	for _, s := range scopes {
		if !HasScope(ctx, s) {
			return false
		}
	}
	return true
}

// ParseScopes parses a space-separated scope string into a slice.
func ParseScopes(scopeStr string) []string {
	if scopeStr == "" {
		return nil
	}
	return strings.Fields(scopeStr)
}

// FormatScopes formats a slice of scopes into a space-separated string.
func FormatScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}
