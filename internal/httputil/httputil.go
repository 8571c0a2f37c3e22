// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the backend client:
// form request builders, bearer authentication, and classification of
// failures into network, auth, and status errors. Nothing here retries;
// every retry is a user action.
package httputil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"syscall"
)

// ErrUnauthorized marks a 401 response or a call made without a token.
var ErrUnauthorized = errors.New("unauthorized")

// NetworkError reports that the request never produced a response.
type NetworkError struct {
	Op      string
	Refused bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Refused {
		return fmt.Sprintf("%s: connection refused: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError is a 401 from the backend or a missing bearer token.
type AuthError struct {
	Op      string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: unauthorized: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: unauthorized", e.Op)
}

func (e *AuthError) Unwrap() error { return ErrUnauthorized }

// StatusError is any other non-2xx response.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned HTTP %d", e.Op, e.StatusCode)
}

// Do sends req and converts transport failures into *NetworkError. Context
// cancellation is returned as the context error so callers can tell an
// abort from a network fault.
func Do(ctx context.Context, client *http.Client, op string, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &NetworkError{Op: op, Refused: errors.Is(err, syscall.ECONNREFUSED), Err: err}
	}
	return resp, nil
}

// CheckStatus returns nil for 2xx responses. For anything else it drains
// the body and returns an *AuthError (401) or *StatusError carrying the
// backend's message when one is present.
func CheckStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := extractMessage(body)
	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Op: op, Message: msg}
	}
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Message: msg}
}

// SetBearer adds the Authorization header. An empty token is an auth error.
func SetBearer(req *http.Request, op, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &AuthError{Op: op, Message: "no access token"}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// NewMultipartRequest builds a multipart/form-data POST. Fields are written
// in sorted order; empty values are omitted.
func NewMultipartRequest(method, rawURL string, fields map[string]string) (*http.Request, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, k := range sortedKeys(fields) {
		if fields[k] == "" {
			continue
		}
		if err := mw.WriteField(k, fields[k]); err != nil {
			return nil, fmt.Errorf("writing form field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequest(method, rawURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// NewFormRequest builds an application/x-www-form-urlencoded request.
func NewFormRequest(method, rawURL string, fields map[string]string) (*http.Request, error) {
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	req, err := http.NewRequest(method, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// NewJSONRequest builds a request with a JSON body.
func NewJSONRequest(method, rawURL string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, rawURL, r)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
