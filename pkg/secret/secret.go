// Package secret generates shared OTP secrets and converts them to and from
// the Base32 text form used by authenticator apps.
package secret

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
)

// DefaultLength is the secret size in bytes. RFC 4226 recommends a shared
// secret of at least 160 bits.
const DefaultLength = 20

// ErrInvalidEncoding indicates a secret string is not valid Base32.
var ErrInvalidEncoding = errors.New("secret: invalid base32 encoding")

// codec is the RFC 4648 Base32 alphabet without padding. Authenticator apps
// expect unpadded, uppercase secrets.
var codec = base32.StdEncoding.WithPadding(base32.NoPadding)

// Secret is an opaque shared key. It is created once at enrollment and is
// immutable thereafter; persistence belongs to the caller.
type Secret []byte

// Generate returns a new cryptographically random secret of DefaultLength
// bytes.
func Generate() (Secret, error) {
	return GenerateLength(DefaultLength)
}

// GenerateLength returns a new cryptographically random secret of n bytes.
// n must be at least DefaultLength.
func GenerateLength(n int) (Secret, error) {
	if n < DefaultLength {
		return nil, fmt.Errorf("secret: length %d below minimum %d bytes", n, DefaultLength)
	}
	s := make(Secret, n)
	if _, err := rand.Read(s); err != nil {
		return nil, fmt.Errorf("secret: random source failed: %w", err)
	}
	return s, nil
}

// Encode returns the canonical textual form of the secret: uppercase
// RFC 4648 Base32 with no padding characters.
func Encode(s Secret) string {
	return codec.EncodeToString(s)
}

// Decode is the inverse of Encode. It accepts mixed case and optional '='
// padding for interoperability with foreign producers. It returns
// ErrInvalidEncoding for empty input, characters outside the Base32
// alphabet, or a length that cannot decode to whole bytes.
func Decode(text string) (Secret, error) {
	clean := strings.TrimRight(strings.ToUpper(strings.TrimSpace(text)), "=")
	if clean == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidEncoding)
	}
	// Base32 packs 8 symbols into 5 bytes; a dangling group of 1, 3 or 6
	// symbols cannot represent whole bytes.
	switch len(clean) % 8 {
	case 1, 3, 6:
		return nil, fmt.Errorf("%w: length %d has no whole-byte decoding", ErrInvalidEncoding, len(clean))
	}
	s, err := codec.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return s, nil
}
