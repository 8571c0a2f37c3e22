// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/lispendens/internal/httputil"
	"github.com/pdiddy/lispendens/pkg/types"
)

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Type     string `json:"type,omitempty"`
}

// Login posts credentials and returns the decoded response. The role and
// token live in different places depending on account type; see
// auth.NormalizeLogin.
func (c *Client) Login(ctx context.Context, creds Credentials) (map[string]any, error) {
	out := map[string]any{}
	if err := c.postJSON(ctx, "login", pathLogin, "", creds, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SignupKind selects the signup form.
type SignupKind string

const (
	SignupIndividual SignupKind = "individual"
	SignupCompany    SignupKind = "company"
)

// SignupRequest carries both signup forms; fields that do not apply to the
// chosen kind are left empty and omitted.
type SignupRequest struct {
	FirstName            string `json:"first_name,omitempty"`
	LastName             string `json:"last_name,omitempty"`
	CompanyName          string `json:"company_name,omitempty"`
	RCNumber             string `json:"rc_number,omitempty"`
	Email                string `json:"email"`
	Phone                string `json:"phone,omitempty"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Type                 string `json:"type"`
}

// Signup creates an account of the given kind.
func (c *Client) Signup(ctx context.Context, kind SignupKind, in SignupRequest) error {
	path := pathSignupIndividual
	switch kind {
	case SignupIndividual:
	case SignupCompany:
		path = pathSignupCompany
	default:
		return fmt.Errorf("unknown signup kind %q", kind)
	}
	in.Type = string(kind)
	return c.postJSON(ctx, "signup", path, "", in, nil)
}

// VerifyToken confirms the emailed verification code.
func (c *Client) VerifyToken(ctx context.Context, email, token string) error {
	return c.postJSON(ctx, "verify-token", pathVerifyToken, "", map[string]string{
		"email": email,
		"token": token,
	}, nil)
}

// ResendVerification asks the backend to email a new verification code.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.postJSON(ctx, "resend-verification", pathResendVerification, "", map[string]string{
		"email": email,
	}, nil)
}

// ForgotPassword requests a password reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.postJSON(ctx, "forgot-password", pathForgotPassword, "", map[string]string{
		"email": email,
	}, nil)
}

// ResetRequest is the reset-password form.
type ResetRequest struct {
	Email                string `json:"email"`
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ResetPassword sets a new password using the emailed token.
func (c *Client) ResetPassword(ctx context.Context, in ResetRequest) error {
	return c.postJSON(ctx, "reset-password", pathResetPassword, "", in, nil)
}

// DeleteAccount removes the authenticated account.
func (c *Client) DeleteAccount(ctx context.Context, token string) error {
	const op = "delete-account"
	req, err := httputil.NewJSONRequest(http.MethodDelete, c.url(pathDeleteAccount), nil)
	if err != nil {
		return err
	}
	if err := httputil.SetBearer(req, op, token); err != nil {
		return err
	}
	return c.send(ctx, op, req, nil)
}

// UpdateProfile changes account fields such as name or password.
func (c *Client) UpdateProfile(ctx context.Context, token string, fields map[string]string) error {
	if token == "" {
		return &httputil.AuthError{Op: "update-profile", Message: "no access token"}
	}
	return c.postJSON(ctx, "update-profile", pathUpdateProfile, token, fields, nil)
}

// GetDetails reads the user profile. The record may be wrapped in "data"
// or "user".
func (c *Client) GetDetails(ctx context.Context, token string) (types.Profile, error) {
	const op = "update-details"
	req, err := httputil.NewJSONRequest(http.MethodGet, c.url(pathUpdateDetails), nil)
	if err != nil {
		return types.Profile{}, err
	}
	if err := httputil.SetBearer(req, op, token); err != nil {
		return types.Profile{}, err
	}

	var body map[string]json.RawMessage
	if err := c.send(ctx, op, req, &body); err != nil {
		return types.Profile{}, err
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return types.Profile{}, err
	}
	for _, wrapper := range []string{"data", "user"} {
		if inner, ok := body[wrapper]; ok && len(inner) > 0 && inner[0] == '{' {
			raw = inner
			break
		}
	}

	var p types.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.Profile{}, fmt.Errorf("parsing %s response: %w", op, err)
	}
	return p, nil
}

// UpdateDetails writes the user profile as form-data.
func (c *Client) UpdateDetails(ctx context.Context, token string, p types.Profile) error {
	const op = "update-details"
	req, err := httputil.NewMultipartRequest(http.MethodPost, c.url(pathUpdateDetails), map[string]string{
		"first_name":   p.FirstName,
		"last_name":    p.LastName,
		"email":        p.Email,
		"phone":        p.Phone,
		"company_name": p.CompanyName,
		"address":      p.Address,
	})
	if err != nil {
		return err
	}
	if err := httputil.SetBearer(req, op, token); err != nil {
		return err
	}
	return c.send(ctx, op, req, nil)
}

func (c *Client) postJSON(ctx context.Context, op, path, token string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", op, err)
	}
	req, err := httputil.NewJSONRequest(http.MethodPost, c.url(path), body)
	if err != nil {
		return err
	}
	if token != "" {
		if err := httputil.SetBearer(req, op, token); err != nil {
			return err
		}
	}
	return c.send(ctx, op, req, out)
}
