// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lispendens/internal/auth"
	"github.com/pdiddy/lispendens/internal/portal"
)

// --- login / logout / status ---

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the portal",
	Long: `Login authenticates with the backend and stores the session. The
password is read from standard input when --password is not given.`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	accountType, _ := cmd.Flags().GetString("type")
	if email == "" {
		return fmt.Errorf("--email is required")
	}

	in := bufio.NewReader(cmd.InOrStdin())
	if password == "" {
		p, err := prompt(in, cmd.ErrOrStderr(), "Password: ")
		if err != nil {
			return err
		}
		password = p
	}

	return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
		data, route, err := a.session.Login(ctx, portal.Credentials{Email: email, Password: password, Type: accountType})
		if err != nil {
			return err
		}
		name := data.FirstName
		if name == "" {
			name = data.Email
		}
		fmt.Fprintf(out, "Signed in as %s (%s).\n", name, data.Role)
		fmt.Fprintf(out, "Landing page: %s\n", route)
		return nil
	})
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			if err := a.session.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Signed out.")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the signed-in user and the search flow state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(out, "Not signed in.")
			} else {
				d := a.session.Data()
				fmt.Fprintf(out, "Signed in:  %s (%s)\n", d.Email, d.Role)
				fmt.Fprintf(out, "User ID:    %s\n", d.UserID)
				fmt.Fprintf(out, "Dashboard:  %s\n", auth.LandingRoute(d.Role))
			}
			fmt.Fprintf(out, "Search:     %s\n", a.flow.State())
			return nil
		})
	},
}

// --- signup / verify ---

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an individual or company account",
	Long: `Signup creates an account and remembers its email for verification.
Use --company with --company-name and --rc-number for a company account.`,
	RunE: runSignup,
}

func runSignup(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	company, _ := f.GetBool("company")
	req := portal.SignupRequest{}
	req.Email, _ = f.GetString("email")
	req.Phone, _ = f.GetString("phone")
	req.Password, _ = f.GetString("password")
	req.PasswordConfirmation, _ = f.GetString("password-confirmation")

	kind := portal.SignupIndividual
	if company {
		kind = portal.SignupCompany
		req.CompanyName, _ = f.GetString("company-name")
		req.RCNumber, _ = f.GetString("rc-number")
		if req.CompanyName == "" {
			return fmt.Errorf("--company-name is required for a company account")
		}
	} else {
		req.FirstName, _ = f.GetString("first-name")
		req.LastName, _ = f.GetString("last-name")
	}
	req.Type = string(kind)

	return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
		if err := a.accounts.Signup(ctx, kind, req); err != nil {
			return err
		}
		fmt.Fprintf(out, "Account created. A verification code was sent to %s.\n", req.Email)
		fmt.Fprintln(out, `Run "lispendens verify" to enter it.`)
		return nil
	})
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify your email with the code you were sent",
	Long: `Verify confirms the code sent at signup. Without --code it prompts for
the code; type "resend" at the prompt to request a new one (at most once a
minute).`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	code, _ := cmd.Flags().GetString("code")

	return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
		if code != "" {
			if err := a.accounts.Verify(ctx, email, code); err != nil {
				return err
			}
			fmt.Fprintln(out, "Email verified. You can now sign in.")
			return nil
		}
		return verifyLoop(ctx, a.accounts, email, bufio.NewReader(cmd.InOrStdin()), out)
	})
}

// verifyLoop prompts for codes until one is accepted or input ends.
func verifyLoop(ctx context.Context, accounts *auth.Accounts, email string, in *bufio.Reader, out io.Writer) error {
	for {
		line, err := prompt(in, out, `Verification code (or "resend"): `)
		if err != nil {
			return err
		}
		switch strings.ToLower(line) {
		case "":
			continue
		case "resend":
			if err := accounts.ResendCode(ctx, email); err != nil {
				fmt.Fprintln(out, userMessage(err))
				continue
			}
			fmt.Fprintln(out, "A new code is on its way.")
			continue
		}

		if err := accounts.Verify(ctx, email, line); err != nil {
			if errors.Is(err, auth.ErrNoEmail) {
				return err
			}
			fmt.Fprintln(out, userMessage(err))
			continue
		}
		fmt.Fprintln(out, "Email verified. You can now sign in.")
		return nil
	}
}

var resendCodeCmd = &cobra.Command{
	Use:   "resend-code",
	Short: "Request a new verification code",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			if err := a.accounts.ResendCode(ctx, email); err != nil {
				return err
			}
			fmt.Fprintln(out, "A new verification code was sent.")
			return nil
		})
	},
}

// --- password ---

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Recover a forgotten password",
}

var passwordForgotCmd = &cobra.Command{
	Use:   "forgot",
	Short: "Email a password reset link",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			if err := a.accounts.ForgotPassword(ctx, email); err != nil {
				return err
			}
			fmt.Fprintf(out, "A reset link was sent to %s.\n", email)
			fmt.Fprintln(out, `Paste it with "lispendens password reset-link <link>".`)
			return nil
		})
	},
}

var passwordLinkCmd = &cobra.Command{
	Use:   "reset-link <link-or-token>",
	Short: "Remember the token from a reset email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			if err := a.accounts.RememberResetLink(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out, `Reset token saved. Run "lispendens password reset" to choose a new password.`)
			return nil
		})
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set a new password using the saved reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		email, _ := f.GetString("email")
		token, _ := f.GetString("token")
		password, _ := f.GetString("password")
		confirmation, _ := f.GetString("password-confirmation")
		if password == "" {
			return fmt.Errorf("--password is required")
		}
		return withApp(cmd, nil, func(ctx context.Context, a *portalApp, out io.Writer) error {
			if err := a.accounts.ResetPassword(ctx, email, token, password, confirmation); err != nil {
				return err
			}
			fmt.Fprintln(out, "Password changed. You can now sign in.")
			return nil
		})
	},
}

// prompt writes label to out and reads one trimmed line. A final line
// without a newline is accepted.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when empty)")
	loginCmd.Flags().String("type", "", "account type, if the backend asks for one")

	sf := signupCmd.Flags()
	sf.Bool("company", false, "create a company account")
	sf.String("first-name", "", "first name (individual)")
	sf.String("last-name", "", "last name (individual)")
	sf.String("company-name", "", "registered company name (company)")
	sf.String("rc-number", "", "CAC registration number (company)")
	sf.String("email", "", "account email")
	sf.String("phone", "", "phone number")
	sf.String("password", "", "password")
	sf.String("password-confirmation", "", "password again")

	verifyCmd.Flags().String("email", "", "email to verify (default: the one used at signup)")
	verifyCmd.Flags().String("code", "", "verification code")
	resendCodeCmd.Flags().String("email", "", "email to verify (default: the one used at signup)")

	passwordForgotCmd.Flags().String("email", "", "account email")
	rf := passwordResetCmd.Flags()
	rf.String("email", "", "account email (default: the one used with forgot)")
	rf.String("token", "", "reset token (default: the saved one)")
	rf.String("password", "", "new password")
	rf.String("password-confirmation", "", "new password again")
	passwordCmd.AddCommand(passwordForgotCmd, passwordLinkCmd, passwordResetCmd)

	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd, signupCmd, verifyCmd, resendCodeCmd, passwordCmd)
}
