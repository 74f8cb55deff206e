package otp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"math"
	"time"

	"github.com/jeremyhahn/go-mfa/pkg/secret"
)

// Algorithm represents the hash algorithm used for code derivation.
type Algorithm string

const (
	// AlgorithmSHA1 uses HMAC-SHA1. The default; the only algorithm every
	// common authenticator app supports.
	AlgorithmSHA1 Algorithm = "SHA1"
	// AlgorithmSHA256 uses HMAC-SHA256.
	AlgorithmSHA256 Algorithm = "SHA256"
	// AlgorithmSHA512 uses HMAC-SHA512.
	AlgorithmSHA512 Algorithm = "SHA512"
)

// Common errors returned by the OTP engine.
var (
	// ErrInvalidParameters indicates digits, period or skew are out of the
	// allowed range.
	ErrInvalidParameters = errors.New("otp: invalid parameters")
	// ErrInvalidTime indicates a timestamp before the Unix epoch, for which
	// no counter value exists.
	ErrInvalidTime = errors.New("otp: time predates the unix epoch")
	// ErrNilEngine indicates a nil engine was used.
	ErrNilEngine = errors.New("otp: engine is nil")
)

// Config holds OTP engine configuration.
type Config struct {
	// Digits specifies the number of digits in a code (6, 7, or 8).
	// Default: 6
	Digits int
	// Period specifies the time step in seconds.
	// Default: 30
	Period int
	// Algorithm specifies the hash algorithm to use.
	// Default: SHA1
	Algorithm Algorithm
	// Skew specifies the number of time steps to check before and after
	// the given time during validation (tolerance for clock drift).
	// Default: 1
	Skew int
}

// validate checks that the configuration is valid. Zero values mean
// "use the default" and are accepted.
func (c Config) validate() error {
	if c.Digits != 0 && (c.Digits < 6 || c.Digits > 8) {
		return fmt.Errorf("%w: digits must be 6, 7, or 8", ErrInvalidParameters)
	}

	if c.Period < 0 {
		return fmt.Errorf("%w: period must be a positive number of seconds", ErrInvalidParameters)
	}

	if c.Skew < 0 {
		return fmt.Errorf("%w: skew must not be negative", ErrInvalidParameters)
	}

	if c.Algorithm != "" && c.Algorithm != AlgorithmSHA1 &&
		c.Algorithm != AlgorithmSHA256 && c.Algorithm != AlgorithmSHA512 {
		return fmt.Errorf("%w: algorithm must be SHA1, SHA256, or SHA512", ErrInvalidParameters)
	}

	return nil
}

// withDefaults returns a copy of the configuration with defaults applied.
func (c Config) withDefaults() Config {
	if c.Digits == 0 {
		c.Digits = 6
	}
	if c.Period == 0 {
		c.Period = 30
	}
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmSHA1
	}
	if c.Skew == 0 {
		c.Skew = 1
	}
	return c
}

// Engine derives and validates one-time passwords. Every method is a pure
// function of its arguments; the engine holds configuration only and is
// safe for concurrent use.
type Engine struct {
	cfg     Config
	newHash func() hash.Hash
	modulus uint32
}

// NewEngine creates a new OTP engine. The configuration is validated and
// the hash constructor is resolved here so that misconfiguration fails at
// construction time, not per call.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	var newHash func() hash.Hash
	switch cfg.Algorithm {
	case AlgorithmSHA1:
		newHash = sha1.New
	case AlgorithmSHA256:
		newHash = sha256.New
	case AlgorithmSHA512:
		newHash = sha512.New
	}

	return &Engine{
		cfg:     cfg,
		newHash: newHash,
		modulus: uint32(math.Pow10(cfg.Digits)),
	}, nil
}

// Config returns the effective configuration with defaults applied.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return e.cfg
}

// HOTP computes the RFC 4226 code for a secret and counter value:
// an HMAC over the 8-byte big-endian counter, dynamically truncated to a
// 31-bit integer and reduced to the configured number of digits.
func (e *Engine) HOTP(sec secret.Secret, counter uint64) string {
	if e == nil {
		return ""
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)

	mac := hmac.New(e.newHash, sec)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte selects a 4-byte
	// window, read big-endian with the sign bit masked off.
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", e.cfg.Digits, value%e.modulus)
}

// Counter returns the time-step counter for the given moment,
// floor(unixSeconds / period). Moments before the Unix epoch have no
// counter and return ErrInvalidTime.
func (e *Engine) Counter(at time.Time) (uint64, error) {
	if e == nil {
		return 0, ErrNilEngine
	}

	unix := at.Unix()
	if unix < 0 {
		return 0, ErrInvalidTime
	}
	return uint64(unix) / uint64(e.cfg.Period), nil
}

// TOTP computes the RFC 6238 code for a secret at the given moment. The
// caller supplies the clock value, which keeps the engine deterministic
// and testable.
func (e *Engine) TOTP(sec secret.Secret, at time.Time) (string, error) {
	if e == nil {
		return "", ErrNilEngine
	}
	counter, err := e.Counter(at)
	if err != nil {
		return "", err
	}
	return e.HOTP(sec, counter), nil
}

// Validate reports whether candidate is a valid code for the secret at the
// given moment, accepting codes from up to Skew time steps before or after
// to tolerate clock drift between parties.
//
// Malformed candidates (wrong length, non-digit characters) are rejected
// without computing any hash. Each comparison is constant time and every
// counter in the window is checked, so timing reveals nothing about how
// close a candidate came.
func (e *Engine) Validate(sec secret.Secret, candidate string, at time.Time) bool {
	if e == nil || !e.wellFormed(candidate) {
		return false
	}

	counter, err := e.Counter(at)
	if err != nil {
		return false
	}

	match := 0
	for offset := -e.cfg.Skew; offset <= e.cfg.Skew; offset++ {
		c, ok := shiftCounter(counter, offset)
		if !ok {
			continue
		}
		expected := e.HOTP(sec, c)
		match |= subtle.ConstantTimeCompare([]byte(candidate), []byte(expected))
	}
	return match == 1
}

// wellFormed reports whether candidate has exactly the configured number
// of decimal digits.
func (e *Engine) wellFormed(candidate string) bool {
	if len(candidate) != e.cfg.Digits {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		if candidate[i] < '0' || candidate[i] > '9' {
			return false
		}
	}
	return true
}

// shiftCounter offsets a counter value, reporting false instead of
// wrapping when the result would fall outside the uint64 range.
func shiftCounter(counter uint64, offset int) (uint64, bool) {
	switch {
	case offset < 0:
		back := uint64(-offset)
		if back > counter {
			return 0, false
		}
		return counter - back, true
	default:
		fwd := uint64(offset)
		if counter > math.MaxUint64-fwd {
			return 0, false
		}
		return counter + fwd, true
	}
}
