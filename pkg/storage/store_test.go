package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return s, path
}

// TestOpenMissingFile tests that a missing file yields an empty store
func TestOpenMissingFile(t *testing.T) {
	s, _ := tempStore(t)
	if s.Count() != 0 {
		t.Errorf("expected empty store, got %d users", s.Count())
	}
}

// TestOpenCorruptFile tests that unparseable JSON is an error
func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected error for corrupt file")
	}
}

// TestSaveAndReload tests persistence across store instances
func TestSaveAndReload(t *testing.T) {
	s, path := tempStore(t)

	user, err := NewUser("demo@example.com", "SecurePass123!")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	user.TOTPSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	user.MFAEnabled = true

	if err := s.Save(user); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}

	got, err := reloaded.FindByEmail("demo@example.com")
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected ID %s, got %s", user.ID, got.ID)
	}
	if got.TOTPSecret != user.TOTPSecret {
		t.Errorf("expected secret %s, got %s", user.TOTPSecret, got.TOTPSecret)
	}
	if !got.MFAEnabled {
		t.Error("expected MFA enabled")
	}
	if !got.VerifyPassword("SecurePass123!") {
		t.Error("expected password to verify after reload")
	}
	if got.VerifyPassword("wrong") {
		t.Error("expected wrong password to fail")
	}
}

// TestFindCaseInsensitive tests case-insensitive email lookup
func TestFindCaseInsensitive(t *testing.T) {
	s, _ := tempStore(t)

	user, err := NewUser("Demo@Example.com", "pass")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := s.Save(user); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}

	if _, err := s.FindByEmail("demo@example.com"); err != nil {
		t.Errorf("expected case-insensitive match, got %v", err)
	}
	if !s.Exists("DEMO@EXAMPLE.COM") {
		t.Error("expected Exists to match case-insensitively")
	}
}

// TestSaveReplaces tests that saving an existing email replaces the user
func TestSaveReplaces(t *testing.T) {
	s, _ := tempStore(t)

	first, err := NewUser("demo@example.com", "pass")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := s.Save(first); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}

	second := first
	second.MFAEnabled = true
	if err := s.Save(second); err != nil {
		t.Fatalf("failed to replace user: %v", err)
	}

	if s.Count() != 1 {
		t.Errorf("expected 1 user after replace, got %d", s.Count())
	}
	got, err := s.FindByEmail("demo@example.com")
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if !got.MFAEnabled {
		t.Error("expected replacement to take effect")
	}
}

// TestDelete tests user removal
func TestDelete(t *testing.T) {
	s, _ := tempStore(t)

	user, err := NewUser("demo@example.com", "pass")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := s.Save(user); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}

	if err := s.Delete("demo@example.com"); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("expected empty store, got %d users", s.Count())
	}

	if err := s.Delete("demo@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// TestPasswordNeverStoredInClear tests the file contains no plaintext password
func TestPasswordNeverStoredInClear(t *testing.T) {
	s, path := tempStore(t)

	user, err := NewUser("demo@example.com", "SuperSecretPassword")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := s.Save(user); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if strings.Contains(string(data), "SuperSecretPassword") {
		t.Error("plaintext password found in storage file")
	}
}
