// Package otp implements TOTP (RFC 6238) and HOTP (RFC 4226) code
// derivation and validation.
//
// The algorithms are implemented directly: an HMAC over the 8-byte
// big-endian counter, RFC 4226 dynamic truncation, and reduction to a
// fixed number of decimal digits. Codes produced here interoperate with
// Google Authenticator, Authy and every other RFC-conforming app.
//
// # Usage
//
// Create an engine once, then derive or validate codes:
//
//	engine, err := otp.NewEngine(otp.Config{
//	    Digits:    6,
//	    Period:    30,
//	    Algorithm: otp.AlgorithmSHA1,
//	    Skew:      1, // tolerate one step of clock drift
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sec, err := secret.Generate()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Validate a code typed by the user
//	ok := engine.Validate(sec, "123456", time.Now())
//
//	// Counter-based codes for hardware tokens
//	code := engine.HOTP(sec, counter)
//
// # Clock Injection
//
// The engine never reads the system clock. TOTP and Validate take the
// moment as an argument, so a verifier supplies time.Now() and a test
// supplies a fixed timestamp. Deriving a code with TOTP and showing it to
// anyone is only appropriate in demos and tests; a real verifier must
// never reveal its own valid code.
//
// # State
//
// Every method is a pure function of its arguments. Replay bookkeeping
// (remembering the last accepted counter so a code cannot be used twice
// inside the drift window) and lockout after repeated failures are the
// caller's concern, typically a keyed store consulted around Validate.
//
// # Hash Algorithms
//
// SHA1 is the default and the interoperable choice; SHA256 and SHA512 are
// selectable for callers whose authenticators support them.
//
// # Thread Safety
//
// An Engine holds configuration only and is safe for concurrent use.
package otp
