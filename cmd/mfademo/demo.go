package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeremyhahn/go-mfa/pkg/secret"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "SecurePass123!"
)

// demo runs the non-interactive end-to-end walkthrough: onboarding,
// authentication, and a rejected wrong code. It derives and prints the
// currently valid code, which is acceptable only because both sides of
// the exchange are this demo process.
func (a *app) demo(ctx context.Context) error {
	section := func(title string) {
		fmt.Println("\n" + strings.Repeat("=", 60))
		fmt.Println("  " + title)
		fmt.Println(strings.Repeat("=", 60))
	}

	section("PART 1: USER ONBOARDING (First-time MFA Setup)")

	if a.store.Exists(demoEmail) {
		if err := a.store.Delete(demoEmail); err != nil {
			return err
		}
	}

	fmt.Println("\n[Step 1] Enroll new user and generate TOTP secret...")
	enrollment, err := a.svc.Enroll(ctx, demoEmail, demoPassword)
	if err != nil {
		return err
	}
	fmt.Printf("  Secret Key: %s\n", enrollment.Secret)

	fmt.Println("\n[Step 2] Enrollment URI for the authenticator app...")
	fmt.Printf("  %s\n", enrollment.URI)

	fmt.Println("\n[Step 3] QR code (scan with Google Authenticator/Authy):")
	fmt.Println()
	ascii, err := qrASCII(enrollment.URI)
	if err != nil {
		return err
	}
	fmt.Println(ascii)

	if err := qrPNG(enrollment.URI, a.qrOut); err == nil {
		fmt.Printf("  QR code also saved to: %s\n", a.qrOut)
	}

	sec, err := secret.Decode(enrollment.Secret)
	if err != nil {
		return err
	}
	code, err := a.engine.TOTP(sec, time.Now())
	if err != nil {
		return err
	}

	fmt.Println("\n[Step 4] Confirm enrollment with the current code...")
	fmt.Printf("  Current valid code: %s\n", code)
	if err := a.svc.ConfirmEnrollment(ctx, demoEmail, code); err != nil {
		return err
	}
	fmt.Println("  MFA enabled: true")

	section("PART 2: USER AUTHENTICATION (Login with MFA)")

	fmt.Println("\n[Step 1] Login with password and code...")
	fmt.Printf("  Email: %s\n", demoEmail)
	fmt.Println("  Password: ********")
	fmt.Printf("  Code: %s\n", code)

	if err := a.svc.Login(ctx, demoEmail, demoPassword, code); err != nil {
		return err
	}

	session, err := a.tokens.Issue(demoEmail)
	if err != nil {
		return err
	}
	fmt.Println("\n[Step 2] LOGIN SUCCESSFUL")
	fmt.Printf("  Session token: %s\n", session)

	section("PART 3: TESTING INVALID CODE")

	fmt.Println("\n[Test] Attempting login with wrong code: 000000")
	err = a.svc.Login(ctx, demoEmail, demoPassword, "000000")
	fmt.Printf("  Result: %v\n", err)
	if err == nil {
		return fmt.Errorf("wrong code was accepted")
	}

	section("DEMO COMPLETE")
	fmt.Println("\nKey takeaways:")
	fmt.Println("  - The library packages are storage-agnostic; this demo supplies a JSON store")
	fmt.Println("  - QR codes work with any TOTP authenticator app")
	fmt.Println("  - Codes are time-based and change every 30 seconds")
	fmt.Println()
	return nil
}
