package auth

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/shelfmark/shelfmark/internal/database"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	svc, err := NewService(db.Conn(), "test-secret", 1)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestService_PasswordLifecycle(t *testing.T) {
	svc := newTestService(t)

	if svc.IsPasswordSet() {
		t.Error("IsPasswordSet() = true before SetPassword")
	}
	if err := svc.ValidatePassword("anything"); !errors.Is(err, ErrNoPasswordSet) {
		t.Errorf("ValidatePassword() error = %v, want ErrNoPasswordSet", err)
	}

	if err := svc.SetPassword(""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("SetPassword(empty) error = %v, want ErrPasswordRequired", err)
	}
	if err := svc.SetPassword("hunter2"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}

	if !svc.IsPasswordSet() {
		t.Error("IsPasswordSet() = false after SetPassword")
	}
	if err := svc.ValidatePassword("hunter2"); err != nil {
		t.Errorf("ValidatePassword(correct) error = %v", err)
	}
	if err := svc.ValidatePassword("wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("ValidatePassword(wrong) error = %v, want ErrInvalidCredentials", err)
	}

	// Password can be rotated.
	if err := svc.SetPassword("correct horse"); err != nil {
		t.Fatalf("SetPassword(rotate) error = %v", err)
	}
	if err := svc.ValidatePassword("hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still valid after rotation")
	}
}

func TestService_Tokens(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Issuer != "shelfmark" {
		t.Errorf("issuer = %q", claims.Issuer)
	}

	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token validated")
	}

	// Tokens from a different secret are rejected.
	other := newTestService(t)
	other.jwtSecret = []byte("other-secret")
	foreign, err := other.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := svc.ValidateToken(foreign); err == nil {
		t.Error("token signed with wrong secret validated")
	}
}
