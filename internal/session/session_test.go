package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestStore_RoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	sess, err := s.Load()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if sess.Token != "" {
		t.Fatalf("fresh store must be logged out")
	}

	sess.Token = "tok-123"
	sess.Email = "ops@example.com"
	sess.SavedAt = time.Now()
	if err := s.Save(sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Token != "tok-123" || got.Email != "ops@example.com" {
		t.Fatalf("reload mismatch: %+v", got)
	}

	fi, err := os.Stat(filepath.Join(s.Dir, sessionFileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("session file mode = %v, want 0600", fi.Mode().Perm())
	}
}

func TestStore_CorruptedFileTreatedAsLoggedOut(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := os.WriteFile(filepath.Join(s.Dir, sessionFileName), []byte("{nope"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	sess, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.Token != "" {
		t.Fatalf("corrupted file must yield empty session")
	}
}

func TestStore_Clear(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Save(&Session{Token: "x"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear must be idempotent: %v", err)
	}
	sess, _ := s.Load()
	if sess.Token != "" {
		t.Fatalf("token survived clear")
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "staff-1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	got, ok := TokenExpiry(signedToken(t, exp))
	if !ok {
		t.Fatalf("expected exp claim")
	}
	if !got.Equal(exp) {
		t.Fatalf("exp = %v, want %v", got, exp)
	}

	if _, ok := TokenExpiry("opaque-token"); ok {
		t.Fatalf("opaque token must not report expiry")
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	if !Expired(signedToken(t, now.Add(-time.Minute)), now) {
		t.Fatalf("past exp must be expired")
	}
	if Expired(signedToken(t, now.Add(time.Hour)), now) {
		t.Fatalf("future exp must not be expired")
	}
	if Expired("opaque-token", now) {
		t.Fatalf("opaque token must never be locally expired")
	}
}
