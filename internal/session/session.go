// Package session is the boundary to the hosted authentication
// collaborator. The board only needs two things from it: who the
// current user is, and a way to log out. Login flows (password,
// guest, federated) live entirely at the unauthenticated surface.
package session

import "context"

// Identity is the authenticated user as the board sees it.
type Identity struct {
	UID       string
	Email     string // empty for guest accounts
	Anonymous bool
}

// Provider supplies the current identity and a logout action.
type Provider interface {
	// Current returns the signed-in identity, or nil when signed out.
	// loading is true until the initial identity check has resolved;
	// the board must not subscribe while loading.
	Current() (id *Identity, loading bool)

	// Logout ends the session. A failed logout means "still logged
	// in": callers log the error and carry on.
	Logout(ctx context.Context) error
}

// Static is a Provider with a fixed identity, used by tests and by
// deployments that resolve identity out of band.
type Static struct {
	ID *Identity
}

// Current returns the fixed identity; a Static provider is never in
// the loading state.
func (s *Static) Current() (*Identity, bool) { return s.ID, false }

// Logout clears the identity.
func (s *Static) Logout(ctx context.Context) error {
	s.ID = nil
	return nil
}
