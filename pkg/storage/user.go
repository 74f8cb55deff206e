package storage

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is a registered account with MFA credentials. The password is kept
// only as a bcrypt hash; the TOTP secret is stored in its Base32 form.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	TOTPSecret   string `json:"totp_secret,omitempty"`
	MFAEnabled   bool   `json:"mfa_enabled"`
}

// NewUser creates a user with a fresh ID and a bcrypt hash of the
// supplied password.
func NewUser(email, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("storage: failed to hash password: %w", err)
	}
	return User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}, nil
}

// VerifyPassword reports whether password matches the stored hash.
func (u User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
