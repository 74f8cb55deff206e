// Package api binds a credential store and an OTP engine into a
// two-factor authentication service: password verification followed by a
// TOTP challenge, plus the enrollment flow that provisions the secret.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-mfa/pkg/enroll"
	"github.com/jeremyhahn/go-mfa/pkg/otp"
	"github.com/jeremyhahn/go-mfa/pkg/secret"
	"github.com/jeremyhahn/go-mfa/pkg/storage"
)

// UserSource supplies and accepts user records. *storage.Store satisfies
// it; any other credential store can be plugged in.
type UserSource interface {
	FindByEmail(email string) (storage.User, error)
	Exists(email string) bool
	Save(user storage.User) error
}

// Common errors returned by the MFA service.
var (
	// ErrNilService indicates a nil or unconfigured service was used.
	ErrNilService = errors.New("api: service is not configured")
	// ErrMissingCredentials indicates the request lacks email or password.
	ErrMissingCredentials = errors.New("api: email and password are required")
	// ErrUserExists indicates enrollment for an already registered email.
	ErrUserExists = errors.New("api: user already exists")
	// ErrInvalidPassword indicates the password does not match.
	ErrInvalidPassword = errors.New("api: invalid password")
	// ErrMissingCode indicates MFA is enabled but no code was supplied.
	ErrMissingCode = errors.New("api: authenticator code required")
	// ErrInvalidCode indicates the authenticator code is not valid.
	ErrInvalidCode = errors.New("api: invalid authenticator code")
)

// Config holds MFA service configuration.
type Config struct {
	// Users is the credential store (required).
	Users UserSource
	// Engine derives and validates codes (required).
	Engine *otp.Engine
	// Issuer is the name shown in authenticator apps (required).
	Issuer string
	// Now supplies the clock for code validation.
	// Default: time.Now
	Now func() time.Time
}

// Service implements the two-factor login and enrollment flows. It is
// safe for concurrent use.
type Service struct {
	users  UserSource
	engine *otp.Engine
	issuer string
	now    func() time.Time
}

// NewService builds a Service from the supplied configuration.
func NewService(cfg Config) (*Service, error) {
	if cfg.Users == nil {
		return nil, fmt.Errorf("%w: user source is required", ErrNilService)
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("%w: otp engine is required", ErrNilService)
	}
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("%w: issuer is required", ErrNilService)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		users:  cfg.Users,
		engine: cfg.Engine,
		issuer: cfg.Issuer,
		now:    cfg.Now,
	}, nil
}

// Enrollment is the material a newly registered user needs to set up
// their authenticator app.
type Enrollment struct {
	// Secret is the Base32 secret for manual entry.
	Secret string
	// URI is the otpauth:// URI for QR-based enrollment.
	URI string
}

// Enroll registers a new user and provisions a TOTP secret for them.
// MFA stays disabled until ConfirmEnrollment sees a first valid code, so
// a user who never finished scanning the QR cannot lock themselves out.
func (s *Service) Enroll(ctx context.Context, email, password string) (Enrollment, error) {
	if s == nil {
		return Enrollment{}, ErrNilService
	}
	if err := ctxErr(ctx); err != nil {
		return Enrollment{}, err
	}
	if email == "" || password == "" {
		return Enrollment{}, ErrMissingCredentials
	}
	if s.users.Exists(email) {
		return Enrollment{}, fmt.Errorf("%w: %s", ErrUserExists, email)
	}

	user, err := storage.NewUser(email, password)
	if err != nil {
		return Enrollment{}, err
	}

	sec, err := secret.Generate()
	if err != nil {
		return Enrollment{}, err
	}

	uri, err := enroll.BuildURI(s.issuer, email, sec, s.engine.Config())
	if err != nil {
		return Enrollment{}, err
	}

	user.TOTPSecret = secret.Encode(sec)
	if err := s.users.Save(user); err != nil {
		return Enrollment{}, err
	}

	return Enrollment{Secret: user.TOTPSecret, URI: uri}, nil
}

// ConfirmEnrollment enables MFA for a user after they prove their
// authenticator app produces valid codes.
func (s *Service) ConfirmEnrollment(ctx context.Context, email, code string) error {
	if s == nil {
		return ErrNilService
	}
	if err := ctxErr(ctx); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		return err
	}

	if err := s.challenge(user, code); err != nil {
		return err
	}

	user.MFAEnabled = true
	return s.users.Save(user)
}

// Login authenticates email and password, then challenges for an
// authenticator code when MFA is enabled for the account.
func (s *Service) Login(ctx context.Context, email, password, code string) error {
	if s == nil {
		return ErrNilService
	}
	if err := ctxErr(ctx); err != nil {
		return err
	}
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(password) {
		return ErrInvalidPassword
	}

	if !user.MFAEnabled {
		return nil
	}
	return s.challenge(user, code)
}

// challenge validates an authenticator code against the user's secret.
func (s *Service) challenge(user storage.User, code string) error {
	if code == "" {
		return ErrMissingCode
	}

	sec, err := secret.Decode(user.TOTPSecret)
	if err != nil {
		return err
	}

	if !s.engine.Validate(sec, code, s.now()) {
		return ErrInvalidCode
	}
	return nil
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
