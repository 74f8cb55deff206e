// Package storage persists registered users to a JSON file. It is the demo
// credential store; the core packages never touch it.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// ErrUserNotFound indicates no user exists for the given email.
var ErrUserNotFound = errors.New("storage: user not found")

// Store is a file-backed user list. Emails are matched case-insensitively.
// It is safe for concurrent use.
type Store struct {
	path  string
	mu    sync.Mutex
	users []User
}

// Open loads the user list from path, starting empty when the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.users); err != nil {
			return nil, fmt.Errorf("storage: failed to parse %s: %w", path, err)
		}
	}
	return s, nil
}

// persist writes the user list back to disk. Caller holds the lock.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: failed to encode users: %w", err)
	}
	// Secrets and password hashes live in this file.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("storage: failed to write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) index(email string) int {
	for i, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return i
		}
	}
	return -1
}

// FindByEmail returns the user registered under email.
func (s *Store) FindByEmail(email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(email); i >= 0 {
		return s.users[i], nil
	}
	return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, email)
}

// Exists reports whether a user is registered under email.
func (s *Store) Exists(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(email) >= 0
}

// Save inserts or replaces the user keyed by email and writes the file.
func (s *Store) Save(user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(user.Email); i >= 0 {
		s.users[i] = user
	} else {
		s.users = append(s.users, user)
	}
	return s.persist()
}

// Delete removes the user registered under email.
func (s *Store) Delete(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(email)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	return s.persist()
}

// All returns a copy of the user list.
func (s *Store) All() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]User(nil), s.users...)
}

// Count returns the number of registered users.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
