// Package clientstore provides an in-memory registry of API clients with
// bcrypt secret verification. It is the client collaborator for the
// issuance engine: Authenticate returns a value satisfying token.Client,
// carrying the client's role and optional lifetime override. Password
// hashing policy beyond bcrypt cost selection is the host's concern.
package clientstore

import (
	"context"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/oauthkit/oauthkit/errors"
	"github.com/oauthkit/oauthkit/token"
)

// ErrInvalidClient is returned when a client ID is unknown or the secret
// does not match. The two cases are deliberately indistinguishable.
var ErrInvalidClient = token.NewError(token.CodeInvalidClient, "Client authentication failed.")

// Client is a registered API client. It satisfies token.Client.
type Client struct {
	id       string
	role     string
	override *int
}

// ID returns the client identifier.
func (c *Client) ID() string { return c.id }

// Role implements token.Client.
func (c *Client) Role() string { return c.role }

// TokenLifetime implements token.Client; nil means no override.
func (c *Client) TokenLifetime() *int { return c.override }

// ClientOption configures a client at registration.
type ClientOption func(*Client)

// WithTokenLifetime sets a per-client lifetime override in seconds, taking
// the place of the role default during lifetime resolution.
func WithTokenLifetime(seconds int) ClientOption {
	return func(c *Client) { c.override = &seconds }
}

type clientRecord struct {
	client     *Client
	secretHash []byte
}

// Store is an in-memory client registry, safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	cost    int
	clients map[string]clientRecord
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithBcryptCost overrides bcrypt.DefaultCost. Lower it in tests, raise it
// where secrets are high value.
func WithBcryptCost(cost int) StoreOption {
	return func(s *Store) { s.cost = cost }
}

// NewStore returns an empty client registry.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		cost:    bcrypt.DefaultCost,
		clients: make(map[string]clientRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a client with the given plaintext secret, hashing it before
// storage. Registering an existing ID fails.
func (s *Store) Register(id, secret, role string, opts ...ClientOption) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return errors.WrapPrefix(err, "hashing client secret", 0)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[id]; exists {
		return errors.Errorf("client %q already registered", id)
	}

	c := &Client{id: id, role: role}
	for _, opt := range opts {
		opt(c)
	}
	s.clients[id] = clientRecord{client: c, secretHash: hash}
	return nil
}

// Authenticate verifies the client's credentials and returns the client, or
// ErrInvalidClient on any mismatch.
func (s *Store) Authenticate(ctx context.Context, id, secret string) (*Client, error) {
	s.mu.RLock()
	rec, ok := s.clients[id]
	s.mu.RUnlock()

	if !ok {
		// Burn a comparison anyway so unknown IDs cost the same as bad
		// secrets.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return nil, ErrInvalidClient
	}
	if err := bcrypt.CompareHashAndPassword(rec.secretHash, []byte(secret)); err != nil {
		return nil, ErrInvalidClient
	}
	return rec.client, nil
}

// Get returns a registered client without checking credentials.
func (s *Store) Get(id string) (*Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.clients[id]
	if !ok {
		return nil, false
	}
	return rec.client, true
}

// Delete removes a client. Removing an unknown ID is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("oauthkit-dummy"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}()
