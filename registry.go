package oauthkit

import (
	"sync"

	"google.golang.org/grpc/codes"

	"github.com/oauthkit/oauthkit/errors"
)

var (
	// ErrAlreadyConfigured is returned by Register when a policy is
	// already in place. A registry is configured exactly once for the
	// lifetime of the process; replacing a live policy would let
	// in-flight requests observe two different rule sets.
	ErrAlreadyConfigured = errors.NewC("a policy is already registered", codes.FailedPrecondition)

	// ErrNotConfigured is returned by Get before a policy is registered.
	ErrNotConfigured = errors.NewC("no policy has been registered", codes.FailedPrecondition)
)

// Registry holds a deployment's Policy and hands it to the request-time
// decision functions. It is write once: the first successful Register wins
// and later calls fail. The zero value is ready to use.
//
// Hosts normally create one Registry at startup and thread it through to the
// token issuer and scope engine. Tests that need a fresh policy per case can
// use Unregister between cases.
type Registry struct {
	mu     sync.RWMutex
	policy *Policy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register validates the policy and installs it. Fails with
// ErrAlreadyConfigured if a policy is already installed, or with the
// validation error if the policy is inconsistent. The registry takes
// ownership of the policy; callers must not mutate it afterwards.
func (r *Registry) Register(p *Policy) error {
	if err := p.Validate(); err != nil {
		return errors.WrapPrefix(err, "invalid policy", 0)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.policy != nil {
		return errors.Mark(ErrAlreadyConfigured, 0)
	}
	r.policy = p
	return nil
}

// Get returns the registered policy, or ErrNotConfigured if Register has
// not succeeded yet.
func (r *Registry) Get() (*Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.policy == nil {
		return nil, errors.Mark(ErrNotConfigured, 0)
	}
	return r.policy, nil
}

// Configured reports whether a policy is installed.
func (r *Registry) Configured() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.policy != nil
}

// Unregister clears the registry so a new policy can be registered. Intended
// for tests; production processes register once and never clear.
func (r *Registry) Unregister() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policy = nil
}
