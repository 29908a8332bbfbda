// Package session persists the operator's bearer token between runs.
//
// The file is best effort: callers must tolerate missing or invalid data
// and fall back to "not logged in".
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionFileName = "session.json"

// Session is the locally stored credential state.
type Session struct {
	Version int `json:"version"`

	Token string `json:"token,omitempty"`
	Email string `json:"email,omitempty"`

	// SavedAt records when the token was stored (diagnostics only).
	SavedAt time.Time `json:"savedAt,omitempty"`
}

// Store reads and writes the session file under Dir. An empty Dir resolves
// to the user config dir at first use.
type Store struct {
	Dir string
}

func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "backoffice"), nil
}

func (s Store) path() (string, error) {
	dir := strings.TrimSpace(s.Dir)
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	return filepath.Join(dir, sessionFileName), nil
}

// Load returns the stored session, or an empty one when the file is missing
// or unreadable.
func (s Store) Load() (*Session, error) {
	path, err := s.path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Session{Version: 1}, nil
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		// Corrupted session files are treated as logged out.
		return &Session{Version: 1}, nil
	}
	if sess.Version == 0 {
		sess.Version = 1
	}
	return &sess, nil
}

// Save writes the session atomically with owner-only permissions (the file
// holds a live credential).
func (s Store) Save(sess *Session) error {
	if sess == nil {
		return nil
	}
	path, err := s.path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if sess.Version == 0 {
		sess.Version = 1
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Clear removes the stored session (forced logout).
func (s Store) Clear() error {
	path, err := s.path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// TokenExpiry extracts the exp claim from a JWT bearer token without
// verifying the signature. The client cannot verify (it has no key); the
// claim is only used to warn before expiry and to skip doomed requests.
// Returns ok=false for opaque/non-JWT tokens.
func TokenExpiry(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token is a JWT that has already expired.
// Opaque tokens are never reported expired; the server decides.
func Expired(token string, now time.Time) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return now.After(exp)
}
