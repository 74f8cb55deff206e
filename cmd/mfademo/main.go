// Command mfademo is an interactive walkthrough of the go-mfa library:
// user registration with authenticator-app onboarding, then login with a
// password and a time-based code.
package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jeremyhahn/go-mfa/pkg/api"
	"github.com/jeremyhahn/go-mfa/pkg/otp"
	"github.com/jeremyhahn/go-mfa/pkg/storage"
	"github.com/jeremyhahn/go-mfa/pkg/token"
)

func main() {
	root := &cli.Command{
		Name:  "mfademo",
		Usage: "TOTP multi-factor authentication demo",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "users",
				Usage:   "Path to the JSON user store",
				Value:   "users.json",
				Sources: cli.EnvVars("MFADEMO_USERS"),
			},
			&cli.StringFlag{
				Name:    "issuer",
				Usage:   "Issuer name shown in authenticator apps",
				Value:   "MFADemo",
				Sources: cli.EnvVars("MFADEMO_ISSUER"),
			},
			&cli.StringFlag{
				Name:  "qr-out",
				Usage: "Path for the enrollment QR code PNG",
				Value: "qrcode.png",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Register a new user with MFA onboarding",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := newApp(cmd)
					if err != nil {
						return err
					}
					return a.register(ctx)
				},
			},
			{
				Name:  "login",
				Usage: "Login with password and authenticator code",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := newApp(cmd)
					if err != nil {
						return err
					}
					return a.login(ctx)
				},
			},
			{
				Name:  "demo",
				Usage: "Run the non-interactive end-to-end walkthrough",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := newApp(cmd)
					if err != nil {
						return err
					}
					return a.demo(ctx)
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return a.menu(ctx)
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// app wires the library packages together for the CLI.
type app struct {
	store  *storage.Store
	engine *otp.Engine
	svc    *api.Service
	tokens *token.Issuer
	issuer string
	qrOut  string
	in     *bufio.Reader
}

func newApp(cmd *cli.Command) (*app, error) {
	store, err := storage.Open(cmd.String("users"))
	if err != nil {
		return nil, err
	}

	engine, err := otp.NewEngine(otp.Config{})
	if err != nil {
		return nil, err
	}

	issuer := cmd.String("issuer")
	svc, err := api.NewService(api.Config{
		Users:  store,
		Engine: engine,
		Issuer: issuer,
	})
	if err != nil {
		return nil, err
	}

	// Session tokens are only meaningful for the lifetime of this process,
	// so a random per-run signing key is fine.
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	tokens, err := token.NewIssuer(token.Config{Key: key, Issuer: issuer})
	if err != nil {
		return nil, err
	}

	return &app{
		store:  store,
		engine: engine,
		svc:    svc,
		tokens: tokens,
		issuer: issuer,
		qrOut:  cmd.String("qr-out"),
		in:     bufio.NewReader(os.Stdin),
	}, nil
}

// menu runs the interactive main loop.
func (a *app) menu(ctx context.Context) error {
	fmt.Println()
	fmt.Println("=============================================")
	fmt.Println("  MFA Demo - TOTP Authentication")
	fmt.Println("=============================================")

	for {
		fmt.Println("\n=== Main Menu ===")
		fmt.Println("1. Register new user (with MFA onboarding)")
		fmt.Println("2. Login (with MFA challenge)")
		fmt.Println("3. Exit")

		choice, err := a.readLine("\nSelect option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			if err := a.register(ctx); err != nil {
				fmt.Printf("\nError: %v\n", err)
			}
		case "2":
			if err := a.login(ctx); err != nil {
				fmt.Printf("\nError: %v\n", err)
			}
		case "3":
			fmt.Println("\nGoodbye!")
			return nil
		default:
			fmt.Println("\nInvalid option. Please try again.")
		}
	}
}

// register walks a new user through enrollment: credentials, QR scan,
// then a first code to prove the authenticator is set up.
func (a *app) register(ctx context.Context) error {
	fmt.Println("\n=== User Registration ===")

	email, err := a.readLine("\nEnter email: ")
	if err != nil {
		return err
	}

	password, err := a.readPassword("Enter password: ")
	if err != nil {
		return err
	}
	confirm, err := a.readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	enrollment, err := a.svc.Enroll(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Println("\n=== MFA Setup ===")
	fmt.Println("\nScan this QR code with your authenticator app")
	fmt.Println("(Google Authenticator, Authy, etc.):")
	fmt.Println()

	ascii, err := qrASCII(enrollment.URI)
	if err != nil {
		return err
	}
	fmt.Println(ascii)

	if err := qrPNG(enrollment.URI, a.qrOut); err != nil {
		fmt.Printf("Note: could not save QR code image: %v\n", err)
	} else {
		fmt.Printf("QR code also saved to: %s\n", a.qrOut)
	}

	fmt.Println("\nOr enter this key manually:")
	fmt.Printf("Secret:  %s\n", enrollment.Secret)
	fmt.Printf("Issuer:  %s\n", a.issuer)
	fmt.Printf("Account: %s\n", email)

	fmt.Println("\n=== Verify Setup ===")
	code, err := a.readLine("\nEnter the 6-digit code from your authenticator app: ")
	if err != nil {
		return err
	}

	if err := a.svc.ConfirmEnrollment(ctx, email, code); err != nil {
		// Enrollment stays pending until a valid code is seen; back out the
		// half-registered user so the email can be reused.
		if delErr := a.store.Delete(email); delErr != nil {
			return delErr
		}
		return fmt.Errorf("invalid code, registration cancelled: %w", err)
	}

	fmt.Println("\nRegistration successful!")
	fmt.Println("  MFA has been enabled for your account.")
	fmt.Println("  You can now login with your credentials and authenticator code.")
	return nil
}

// login authenticates a user and prints a session token on success.
func (a *app) login(ctx context.Context) error {
	fmt.Println("\n=== User Login ===")

	email, err := a.readLine("\nEnter email: ")
	if err != nil {
		return err
	}
	password, err := a.readPassword("Enter password: ")
	if err != nil {
		return err
	}

	var code string
	if user, err := a.store.FindByEmail(email); err == nil && user.MFAEnabled {
		fmt.Println("\n=== MFA Challenge ===")
		code, err = a.readLine("\nEnter the 6-digit code from your authenticator app: ")
		if err != nil {
			return err
		}
	}

	if err := a.svc.Login(ctx, email, password, code); err != nil {
		return err
	}

	session, err := a.tokens.Issue(email)
	if err != nil {
		return err
	}

	fmt.Println("\nLogin successful!")
	fmt.Printf("  Welcome, %s!\n", email)
	fmt.Printf("  Session token: %s\n", session)
	return nil
}
