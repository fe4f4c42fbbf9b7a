package token

import (
	"context"
	"time"

	"github.com/oauthkit/oauthkit"
)

// Fixture policy used across the package tests. Three scopes, two roles:
// basic clients get the basic scope over client credentials only, trusted
// clients get everything over both grants.
func fixturePolicy() *oauthkit.Policy {
	return &oauthkit.Policy{
		Scopes: []string{"basic_client_scope", "trusted_client_scope", "advanced_client_scope"},
		Roles: map[string]oauthkit.ClientRole{
			"basic": {
				AllowedScopes:     []string{"basic_client_scope"},
				AllowedGrantTypes: []oauthkit.GrantType{oauthkit.GrantClientCredentials},
				TokenLifetime:     3600,
			},
			"trusted": {
				AllowedScopes:     []string{"basic_client_scope", "trusted_client_scope", "advanced_client_scope"},
				AllowedGrantTypes: []oauthkit.GrantType{oauthkit.GrantClientCredentials, oauthkit.GrantPassword},
				TokenLifetime:     7200,
			},
		},
		GrantTypes: []oauthkit.GrantType{oauthkit.GrantClientCredentials, oauthkit.GrantPassword},
		GrantTypeScopes: map[oauthkit.GrantType][]string{
			oauthkit.GrantClientCredentials: {"basic_client_scope", "trusted_client_scope"},
			oauthkit.GrantPassword:          {"basic_client_scope", "trusted_client_scope", "advanced_client_scope"},
		},
	}
}

func fixtureRegistry() *oauthkit.Registry {
	r := oauthkit.NewRegistry()
	if err := r.Register(fixturePolicy()); err != nil {
		panic(err)
	}
	return r
}

type testClient struct {
	role     string
	override *int
}

func (c *testClient) Role() string        { return c.role }
func (c *testClient) TokenLifetime() *int { return c.override }

func intPtr(n int) *int { return &n }

type fakeToken struct {
	token     string
	tokenType string
	lifetime  int
	expires   time.Time
	scopes    []string
}

func (t *fakeToken) Token() string             { return t.token }
func (t *fakeToken) TokenType() string         { return t.tokenType }
func (t *fakeToken) Lifetime() int             { return t.lifetime }
func (t *fakeToken) ExpirationDate() time.Time { return t.expires }
func (t *fakeToken) Scopes() []string          { return t.scopes }

type fakeFactory struct {
	err error

	// captured arguments from the last NewToken call
	client   Client
	lifetime int
	scopes   []string
	user     User
}

func (f *fakeFactory) NewToken(ctx context.Context, client Client, lifetime int, scopes []string, user User) (AccessToken, error) {
	f.client, f.lifetime, f.scopes, f.user = client, lifetime, scopes, user
	if f.err != nil {
		return nil, f.err
	}
	return &fakeToken{
		token:     "2YotnFZFEjr1zCsicMWpAA",
		tokenType: "Bearer",
		lifetime:  lifetime,
		expires:   time.Now().Add(time.Duration(lifetime) * time.Second),
		scopes:    scopes,
	}, nil
}

type fakeUsers struct {
	users map[string]User
	err   error
}

func (f *fakeUsers) ResolveUser(ctx context.Context, username string) (User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}
