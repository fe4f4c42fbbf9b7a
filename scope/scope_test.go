package scope

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/oauthkit/oauthkit/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ error = (*DeniedError)(nil)

func TestDeniedErrorMessage(t *testing.T) {
	var err error = Decide(RequireAll("a", "b"), Caller{Role: "basic"})
	require.Error(t, err)
	assert.Equal(t, "Access denied: requires scopes [a b]", errors.PublicMessage(err))
	assert.Equal(t, http.StatusForbidden, errors.HTTPStatusCode(err))
}

func TestDecide_NoPolicyDenies(t *testing.T) {
	// Default posture is closed regardless of what the caller holds.
	err := Decide(Policy{}, Caller{Role: "trusted", Scopes: []string{"a", "b", "c"}})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrAccessDenied))
	assert.Equal(t, http.StatusForbidden, errors.HTTPStatusCode(err))
}

func TestDecide_RequireAll(t *testing.T) {
	p := RequireAll("a", "b")

	assert.NoError(t, Decide(p, Caller{Scopes: []string{"a", "b", "c"}}))
	assert.NoError(t, Decide(p, Caller{Scopes: []string{"b", "a"}}))

	err := Decide(p, Caller{Role: "basic", Scopes: []string{"a"}})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrAccessDenied))

	var denied *DeniedError
	require.True(t, stderrors.As(err, &denied))
	assert.Equal(t, []string{"a", "b"}, denied.RequiredScopes)
	assert.Equal(t, "basic", denied.Role)
}

func TestDecide_RequireAllEmpty(t *testing.T) {
	assert.NoError(t, Decide(RequireAll(), Caller{}))
	assert.NoError(t, Decide(RequireAll(), Caller{Scopes: []string{"a"}}))
}

func TestDecide_RequireAny(t *testing.T) {
	p := RequireAny("x", "y")

	assert.NoError(t, Decide(p, Caller{Scopes: []string{"y"}}))
	assert.NoError(t, Decide(p, Caller{Scopes: []string{"x", "z"}}))

	err := Decide(p, Caller{Role: "basic", Scopes: []string{"z"}})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrAccessDenied))

	// RequireAny denials reveal nothing about what would have passed.
	var denied *DeniedError
	require.True(t, stderrors.As(err, &denied))
	assert.Empty(t, denied.RequiredScopes)
	assert.Empty(t, denied.Role)
}

func TestDecide_RequireAnyEmpty(t *testing.T) {
	assert.NoError(t, Decide(RequireAny(), Caller{}))
}

func TestPolicyDeclared(t *testing.T) {
	assert.False(t, Policy{}.Declared())
	assert.True(t, RequireAll().Declared())
	assert.True(t, RequireAny("a").Declared())
}

func TestCallerHasScope(t *testing.T) {
	c := Caller{Scopes: []string{"read", "write"}}
	assert.True(t, c.HasScope("read"))
	assert.False(t, c.HasScope("admin"))
	assert.False(t, Caller{}.HasScope("read"))
}
