package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

// CookieName is the browser cookie holding the signed session id.
const CookieName = "todosess"

// Manager pairs the signed session cookie with the backing store.
type Manager struct {
	codec *securecookie.SecureCookie
	store Store
}

// NewManager creates a Manager signing cookies with secret.
func NewManager(secret string, store Store) *Manager {
	// Sign-only codec: the cookie value is just a random id, there is
	// nothing to encrypt.
	codec := securecookie.New([]byte(secret), nil)
	return &Manager{codec: codec, store: store}
}

// Load resolves the request's session. When the cookie is missing,
// tampered or points at an expired record, a fresh anonymous session is
// created and its cookie written to w.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (string, Session, error) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		var id string
		if err := m.codec.Decode(CookieName, cookie.Value, &id); err == nil {
			sess, ok, err := m.store.Get(r.Context(), id)
			if err != nil {
				return "", Session{}, err
			}
			if ok {
				return id, sess, nil
			}
		}
	}
	return m.begin(w, r)
}

// begin creates an anonymous session with a fresh CSRF token.
func (m *Manager) begin(w http.ResponseWriter, r *http.Request) (string, Session, error) {
	csrfToken, err := generateCSRFToken()
	if err != nil {
		return "", Session{}, err
	}
	id := uuid.NewString()
	sess := Session{CSRFToken: csrfToken}
	if err := m.store.Put(r.Context(), id, sess); err != nil {
		return "", Session{}, err
	}

	encoded, err := m.codec.Encode(CookieName, id)
	if err != nil {
		return "", Session{}, fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, sess, nil
}

// Save writes sess back to the store under id.
func (m *Manager) Save(r *http.Request, id string, sess Session) error {
	return m.store.Put(r.Context(), id, sess)
}

// Reset discards the record behind id and replaces it with a fresh
// anonymous session, rotating the session id. Used on logout.
func (m *Manager) Reset(w http.ResponseWriter, r *http.Request, id string) error {
	if err := m.store.Delete(r.Context(), id); err != nil {
		return err
	}
	_, _, err := m.begin(w, r)
	return err
}

func generateCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
