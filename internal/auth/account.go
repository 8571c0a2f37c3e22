// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/lispendens/internal/portal"
	"github.com/pdiddy/lispendens/internal/storage"
)

// DefaultResendCooldown is the minimum gap between "Resend Code" requests.
const DefaultResendCooldown = 60 * time.Second

// ErrPasswordMismatch is returned when password and confirmation differ.
var ErrPasswordMismatch = errors.New("password and confirmation do not match")

// ErrNoEmail is returned when an operation needs an email and none was
// given or remembered.
var ErrNoEmail = errors.New("no email address: pass one or sign up first")

// ErrNoResetToken is returned when reset-password has no token to send.
var ErrNoResetToken = errors.New("no reset token: open the link from the reset email first")

// CooldownError is returned when a resend is requested too soon.
type CooldownError struct {
	Wait time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %s before requesting another code", e.Wait.Round(time.Second))
}

// AccountAPI is the backend surface used by Accounts.
type AccountAPI interface {
	Signup(ctx context.Context, kind portal.SignupKind, in portal.SignupRequest) error
	VerifyToken(ctx context.Context, email, token string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in portal.ResetRequest) error
	DeleteAccount(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, token string, fields map[string]string) error
}

// Accounts groups the account operations that surround a session.
type Accounts struct {
	kv      storage.KV
	api     AccountAPI
	session *Session
	resend  *rate.Limiter
}

// NewAccounts returns Accounts. A cooldown of zero uses DefaultResendCooldown.
func NewAccounts(kv storage.KV, api AccountAPI, session *Session, cooldown time.Duration) *Accounts {
	if cooldown <= 0 {
		cooldown = DefaultResendCooldown
	}
	return &Accounts{
		kv:      kv,
		api:     api,
		session: session,
		resend:  rate.NewLimiter(rate.Every(cooldown), 1),
	}
}

// Signup creates an account and remembers its email for verification.
func (a *Accounts) Signup(ctx context.Context, kind portal.SignupKind, in portal.SignupRequest) error {
	if strings.TrimSpace(in.Email) == "" {
		return ErrNoEmail
	}
	if in.Password != in.PasswordConfirmation {
		return ErrPasswordMismatch
	}
	if err := a.api.Signup(ctx, kind, in); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	// The backend sends a verification code on signup; start the cooldown.
	a.resend.Allow()
	return a.kv.Set(ctx, storage.KeyUserEmail, strings.TrimSpace(in.Email))
}

// Verify confirms a verification code. An empty email falls back to the
// remembered one.
func (a *Accounts) Verify(ctx context.Context, email, code string) error {
	email, err := a.email(ctx, email)
	if err != nil {
		return err
	}
	if err := a.api.VerifyToken(ctx, email, strings.TrimSpace(code)); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	return a.kv.Remove(ctx, storage.KeyUserEmail)
}

// ResendCode asks for a new verification code, at most once per cooldown.
func (a *Accounts) ResendCode(ctx context.Context, email string) error {
	email, err := a.email(ctx, email)
	if err != nil {
		return err
	}
	r := a.resend.Reserve()
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return &CooldownError{Wait: d}
	}
	if err := a.api.ResendVerification(ctx, email); err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	return nil
}

// ForgotPassword requests a reset email and remembers the address.
func (a *Accounts) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrNoEmail
	}
	if err := a.api.ForgotPassword(ctx, email); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	return a.kv.Set(ctx, storage.KeyUserEmail, email)
}

// RememberResetLink stores the token carried by a reset link, which may be
// a full URL with ?token= (and optionally ?email=) or the bare token.
func (a *Accounts) RememberResetLink(ctx context.Context, link string) error {
	link = strings.TrimSpace(link)
	token := link
	if u, err := url.Parse(link); err == nil && u.RawQuery != "" {
		q := u.Query()
		token = q.Get("token")
		if email := q.Get("email"); email != "" {
			if err := a.kv.Set(ctx, storage.KeyUserEmail, email); err != nil {
				return err
			}
		}
	}
	if token == "" {
		return ErrNoResetToken
	}
	return a.kv.Set(ctx, storage.KeyResetPasswordToken, token)
}

// ResetPassword sets a new password. Empty email and token fall back to the
// remembered values; both are cleared on success.
func (a *Accounts) ResetPassword(ctx context.Context, email, token, password, confirmation string) error {
	if password != confirmation {
		return ErrPasswordMismatch
	}
	email, err := a.email(ctx, email)
	if err != nil {
		return err
	}
	if token == "" {
		stored, ok, err := a.kv.Get(ctx, storage.KeyResetPasswordToken)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoResetToken
		}
		token = stored
	}

	err = a.api.ResetPassword(ctx, portal.ResetRequest{
		Email:                email,
		Token:                token,
		Password:             password,
		PasswordConfirmation: confirmation,
	})
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return errors.Join(
		a.kv.Remove(ctx, storage.KeyResetPasswordToken),
		a.kv.Remove(ctx, storage.KeyUserEmail),
	)
}

// UpdateProfile changes account fields for the signed-in user.
func (a *Accounts) UpdateProfile(ctx context.Context, fields map[string]string) error {
	sess, err := a.session.Require(ctx, "update-profile")
	if err != nil {
		return err
	}
	if fields["password"] != fields["password_confirmation"] {
		return ErrPasswordMismatch
	}
	return a.session.Observe(ctx, a.api.UpdateProfile(ctx, sess.AccessToken, fields))
}

// DeleteAccount removes the account and wipes all stored state.
func (a *Accounts) DeleteAccount(ctx context.Context) error {
	sess, err := a.session.Require(ctx, "delete-account")
	if err != nil {
		return err
	}
	if err := a.api.DeleteAccount(ctx, sess.AccessToken); err != nil {
		return a.session.Observe(ctx, fmt.Errorf("delete account: %w", err))
	}

	var errs []error
	for _, k := range storage.Keys() {
		if err := a.kv.Remove(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	a.session.reset()
	return errors.Join(errs...)
}

func (a *Accounts) email(ctx context.Context, email string) (string, error) {
	if email = strings.TrimSpace(email); email != "" {
		return email, nil
	}
	stored, ok, err := a.kv.Get(ctx, storage.KeyUserEmail)
	if err != nil {
		return "", err
	}
	if !ok || stored == "" {
		return "", ErrNoEmail
	}
	return stored, nil
}
