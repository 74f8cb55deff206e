// Package enroll builds otpauth:// enrollment URIs for QR-based onboarding
// of authenticator apps.
package enroll

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jeremyhahn/go-mfa/pkg/otp"
	"github.com/jeremyhahn/go-mfa/pkg/secret"
)

// ErrInvalidEnrollment indicates the issuer or account label is empty.
var ErrInvalidEnrollment = errors.New("enroll: invalid enrollment parameters")

// BuildURI composes the otpauth:// URI that authenticator apps understand:
//
//	otpauth://totp/{issuer}:{account}?secret=…&issuer=…&algorithm=…&digits=…&period=…
//
// Issuer and account are percent-encoded per RFC 3986 wherever they appear;
// a literal ':' or '&' in either would otherwise corrupt the URI. The
// secret is embedded in its canonical Base32 form unmodified. The OTP
// configuration is validated the same way the engine validates it, so a
// URI can only describe parameters the engine would accept.
func BuildURI(issuer, account string, sec secret.Secret, cfg otp.Config) (string, error) {
	if strings.TrimSpace(issuer) == "" {
		return "", fmt.Errorf("%w: issuer must not be empty", ErrInvalidEnrollment)
	}
	if strings.TrimSpace(account) == "" {
		return "", fmt.Errorf("%w: account must not be empty", ErrInvalidEnrollment)
	}

	engine, err := otp.NewEngine(cfg)
	if err != nil {
		return "", err
	}
	cfg = engine.Config()

	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s&algorithm=%s&digits=%d&period=%d",
		escape(issuer),
		escape(account),
		secret.Encode(sec),
		escape(issuer),
		cfg.Algorithm,
		cfg.Digits,
		cfg.Period,
	), nil
}

// escape percent-encodes everything outside the RFC 3986 unreserved set.
// url.QueryEscape emits '+' for spaces, which authenticator apps do not
// decode in otpauth URIs, so spaces become %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
