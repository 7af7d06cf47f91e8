// Package session issues and verifies the browser sessions that gate the report API.
package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/ndewijer/Conversions-Report-Backend/internal/validation"
)

// CookieName is the cookie carrying the session token.
const CookieName = "session"

// DefaultTTL is how long a session token stays valid.
const DefaultTTL = 12 * time.Hour

// ErrInvalidPassword is returned by Login for a wrong password.
var ErrInvalidPassword = errors.New("invalid password")

// Manager checks the access password and signs session tokens.
// A Manager with an empty password is disabled and accepts every caller.
type Manager struct {
	password string
	keys     []*fernet.Key
	ttl      time.Duration
}

// NewManager creates a Manager that signs tokens with key and accepts them for ttl.
func NewManager(password string, key *fernet.Key, ttl time.Duration) *Manager {
	return &Manager{
		password: password,
		keys:     []*fernet.Key{key},
		ttl:      ttl,
	}
}

// LoadKey decodes a base64 fernet key. An empty string yields a freshly generated key;
// generated reports whether that happened.
func LoadKey(encoded string) (key *fernet.Key, generated bool, err error) {
	if encoded == "" {
		key = new(fernet.Key)
		if err := key.Generate(); err != nil {
			return nil, false, fmt.Errorf("generate session key: %w", err)
		}
		return key, true, nil
	}

	key, err = fernet.DecodeKey(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("decode session key: %w", err)
	}
	return key, false, nil
}

// Enabled reports whether callers must log in.
func (m *Manager) Enabled() bool {
	return m.password != ""
}

// TTL returns the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login checks password and returns a new session token.
func (m *Manager) Login(password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) != 1 {
		return "", ErrInvalidPassword
	}

	tok, err := fernet.EncryptAndSign([]byte(uuid.NewString()), m.keys[0])
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return string(tok), nil
}

// Verify reports whether token was issued by this Manager and has not expired.
// When the Manager is disabled every caller is accepted.
func (m *Manager) Verify(token string) bool {
	if !m.Enabled() {
		return true
	}
	if token == "" {
		return false
	}

	msg := fernet.VerifyAndDecrypt([]byte(token), m.ttl, m.keys)
	if msg == nil {
		return false
	}
	return validation.ValidateUUID(string(msg)) == nil
}
