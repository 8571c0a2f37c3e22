// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package auth holds the authenticated session: login, logout, the
// Anonymous -> Authenticating -> Authenticated state machine, and the
// account operations around it (signup, verification, password reset,
// profile, deletion).
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pdiddy/lispendens/internal/httputil"
	"github.com/pdiddy/lispendens/internal/portal"
	"github.com/pdiddy/lispendens/internal/storage"
	"github.com/pdiddy/lispendens/pkg/types"
)

// State is the session lifecycle state.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// LoginAPI is the backend call behind Login.
type LoginAPI interface {
	Login(ctx context.Context, creds portal.Credentials) (map[string]any, error)
}

type authRecord struct {
	Role        types.Role `json:"role"`
	AccessToken string     `json:"accessToken"`
}

type userRecord struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// Session is the AuthSession.
type Session struct {
	kv    storage.KV
	api   LoginAPI
	log   *slog.Logger
	now   func() time.Time
	state State
	data  types.AuthSessionData
}

// NewSession returns an anonymous session. Call Restore to pick up a
// previous login.
func NewSession(kv storage.KV, api LoginAPI, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{kv: kv, api: api, log: log, now: time.Now}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Data returns the current session data. It is zero when anonymous.
func (s *Session) Data() types.AuthSessionData { return s.data }

// IsAuthenticated reports whether both a token and a role are held.
func (s *Session) IsAuthenticated() bool {
	return s.data.AccessToken != "" && s.data.Role != ""
}

// Restore loads a stored login. Malformed records are treated as absent.
func (s *Session) Restore(ctx context.Context) error {
	var a authRecord
	ok, err := storage.GetJSON(ctx, s.kv, storage.KeyAuth, &a)
	if err != nil && !errors.Is(err, storage.ErrMalformed) {
		return err
	}
	if !ok {
		s.reset()
		return nil
	}

	var u userRecord
	if _, err := storage.GetJSON(ctx, s.kv, storage.KeyUser, &u); err != nil && !errors.Is(err, storage.ErrMalformed) {
		return err
	}
	if u.UserID == "" {
		if id, found, err := s.kv.Get(ctx, storage.KeyUserID); err == nil && found {
			u.UserID = id
		}
	}

	s.data = types.AuthSessionData{
		Role:        a.Role,
		AccessToken: a.AccessToken,
		Email:       u.Email,
		FirstName:   u.FirstName,
		UserID:      u.UserID,
	}
	if s.IsAuthenticated() {
		s.state = Authenticated
	} else {
		s.reset()
	}
	return nil
}

// Login authenticates against the backend, stores the session, and returns
// it with the role's landing route.
func (s *Session) Login(ctx context.Context, creds portal.Credentials) (types.AuthSessionData, string, error) {
	s.state = Authenticating
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		s.reset()
		return types.AuthSessionData{}, "", fmt.Errorf("login: %w", err)
	}

	data, err := NormalizeLogin(resp)
	if err != nil {
		s.reset()
		return types.AuthSessionData{}, "", fmt.Errorf("login: %w", err)
	}
	if data.Email == "" {
		data.Email = creds.Email
	}

	if err := s.persist(ctx, data); err != nil {
		s.reset()
		return types.AuthSessionData{}, "", err
	}
	s.data = data
	s.state = Authenticated
	s.log.Info("logged in", "role", data.Role, "user_id", data.UserID)
	return data, LandingRoute(data.Role), nil
}

func (s *Session) persist(ctx context.Context, data types.AuthSessionData) error {
	if err := storage.SetJSON(ctx, s.kv, storage.KeyAuth, authRecord{Role: data.Role, AccessToken: data.AccessToken}); err != nil {
		return err
	}
	if err := storage.SetJSON(ctx, s.kv, storage.KeyUser, userRecord{Email: data.Email, FirstName: data.FirstName, UserID: data.UserID}); err != nil {
		return err
	}
	if data.UserID != "" {
		if err := s.kv.Set(ctx, storage.KeyUserID, data.UserID); err != nil {
			return err
		}
	}
	if _, ok, err := s.kv.Get(ctx, storage.KeySessionID); err != nil {
		return err
	} else if !ok {
		if err := s.kv.Set(ctx, storage.KeySessionID, uuid.NewString()); err != nil {
			return err
		}
	}
	return nil
}

// Logout clears every auth key and returns to Anonymous. All keys are
// attempted even if one removal fails.
func (s *Session) Logout(ctx context.Context) error {
	var errs []error
	for _, k := range storage.AuthKeys {
		if err := s.kv.Remove(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	s.reset()
	return errors.Join(errs...)
}

func (s *Session) reset() {
	s.data = types.AuthSessionData{}
	s.state = Anonymous
}

// Require returns the session for a gated operation. An anonymous session
// or an expired bearer token yields an *httputil.AuthError; expiry also
// logs the session out.
func (s *Session) Require(ctx context.Context, op string) (types.AuthSessionData, error) {
	if !s.IsAuthenticated() {
		return types.AuthSessionData{}, &httputil.AuthError{Op: op, Message: "not signed in"}
	}
	if tokenExpired(s.data.AccessToken, s.now()) {
		s.log.Info("access token expired", "op", op)
		if err := s.Logout(ctx); err != nil {
			s.log.Warn("clearing expired session", "error", err)
		}
		return types.AuthSessionData{}, &httputil.AuthError{Op: op, Message: "session expired"}
	}
	return s.data, nil
}

// Observe inspects the error of a gated call: a 401 logs the session out.
// The error is returned unchanged.
func (s *Session) Observe(ctx context.Context, err error) error {
	if err != nil && errors.Is(err, httputil.ErrUnauthorized) && s.state != Anonymous {
		s.log.Info("backend rejected token, signing out")
		if lerr := s.Logout(ctx); lerr != nil {
			s.log.Warn("clearing rejected session", "error", lerr)
		}
	}
	return err
}

// tokenExpired reports whether token is a JWT whose exp lies in the past.
// Opaque tokens never expire client-side; the backend's 401 decides.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time)
}
