// Package session implements the server-side session identity used by
// the cookie deployment. The browser cookie carries only a signed
// session id; everything else lives in the store.
package session

import "context"

// Session is the server-side record behind a session id. UserID is 0
// for anonymous sessions, which still carry a CSRF token so that login
// and registration forms can be protected.
type Session struct {
	UserID    int64  `json:"user_id"`
	CSRFToken string `json:"csrf_token"`
	Flash     string `json:"flash,omitempty"`
}

// Authenticated reports whether the session belongs to a logged-in user.
func (s Session) Authenticated() bool {
	return s.UserID > 0
}

// Store maps session ids to session records.
type Store interface {
	// Put writes the record for id, replacing any previous value.
	Put(ctx context.Context, id string, sess Session) error
	// Get returns the record for id and whether it exists.
	Get(ctx context.Context, id string) (Session, bool, error)
	// Delete removes the record for id; deleting a missing id is a no-op.
	Delete(ctx context.Context, id string) error
}
