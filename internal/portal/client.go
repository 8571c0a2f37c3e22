// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package portal is the typed client for the Lis Pendens backend REST API.
// Each method maps to one endpoint and preserves the backend's field names
// exactly. Response bodies whose shape varies by endpoint version are
// returned as decoded maps for the calling component to normalize.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/lispendens/internal/httputil"
	"github.com/pdiddy/lispendens/pkg/types"
)

// Endpoint paths relative to APIConfig.BaseURL.
const (
	pathSearchProperty     = "/search-property"
	pathPaymentUpdate      = "/payment-update"
	pathStoreSearch        = "/store-search"
	pathSearchHistory      = "/search-history"
	pathUpdateDownload     = "/update-download"
	pathUpdateDetails      = "/update-details"
	pathLogin              = "/login"
	pathSignupIndividual   = "/signup/individual"
	pathSignupCompany      = "/signup/company"
	pathVerifyToken        = "/verify-token"
	pathResendVerification = "/resend-verification"
	pathDeleteAccount      = "/delete-account"
	pathUpdateProfile      = "/update-profile"
	pathForgotPassword     = "/forgot-password"
	pathResetPassword      = "/reset-password"
)

// Client calls the backend.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
}

// New returns a Client for cfg.
func New(cfg types.APIConfig) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		BaseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		UserAgent: cfg.UserAgent,
	}
}

// send executes req and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) send(ctx context.Context, op string, req *http.Request, out any) error {
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := httputil.Do(ctx, c.HTTP, op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(op, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", op, err)
	}
	return nil
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// bearerIfSet attaches the token when one is available.
func bearerIfSet(req *http.Request, token string) {
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}
}

// SearchProperty posts the search form and returns the raw records in
// backend order. A missing or null data array yields an empty slice.
func (c *Client) SearchProperty(ctx context.Context, token string, in types.SearchIntent) ([]map[string]any, error) {
	const op = "search-property"
	req, err := httputil.NewMultipartRequest(http.MethodPost, c.url(pathSearchProperty), map[string]string{
		"title_type": in.PropertyTitle,
		"lga":        in.LGA,
		"state":      in.State,
	})
	if err != nil {
		return nil, err
	}
	bearerIfSet(req, token)

	var body struct {
		Data []map[string]any `json:"data"`
	}
	if err := c.send(ctx, op, req, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return []map[string]any{}, nil
	}
	return body.Data, nil
}

// PaymentUpdate is the payment-update form.
type PaymentUpdate struct {
	UserID    string
	Amount    float64
	SessionID string
	PendensID string
}

// UpdatePayment registers a completed checkout with the backend and returns
// the decoded response, which carries the backend payment_id.
func (c *Client) UpdatePayment(ctx context.Context, token string, in PaymentUpdate) (map[string]any, error) {
	const op = "payment-update"
	req, err := httputil.NewMultipartRequest(http.MethodPost, c.url(pathPaymentUpdate), map[string]string{
		"user_id":            in.UserID,
		"payment_amount":     formatAmount(in.Amount),
		"payment_session_id": in.SessionID,
		"pendens_id":         in.PendensID,
	})
	if err != nil {
		return nil, err
	}
	if err := httputil.SetBearer(req, op, token); err != nil {
		return nil, err
	}

	out := map[string]any{}
	if err := c.send(ctx, op, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StoreSearch claims pendensID against paymentID.
func (c *Client) StoreSearch(ctx context.Context, token, pendensID, paymentID string) (map[string]any, error) {
	const op = "store-search"
	req, err := httputil.NewFormRequest(http.MethodPost, c.url(pathStoreSearch), map[string]string{
		"pendens_id": pendensID,
		"payment_id": paymentID,
	})
	if err != nil {
		return nil, err
	}
	if err := httputil.SetBearer(req, op, token); err != nil {
		return nil, err
	}

	out := map[string]any{}
	if err := c.send(ctx, op, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchHistory returns the raw history payload for userID.
func (c *Client) SearchHistory(ctx context.Context, token, userID string) (json.RawMessage, error) {
	const op = "search-history"
	req, err := httputil.NewJSONRequest(http.MethodGet, c.url(pathSearchHistory)+"?user_id="+url.QueryEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	if err := httputil.SetBearer(req, op, token); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.send(ctx, op, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UpdateDownload records that searchID was downloaded.
func (c *Client) UpdateDownload(ctx context.Context, token, searchID string) error {
	const op = "update-download"
	req, err := httputil.NewMultipartRequest(http.MethodPost, c.url(pathUpdateDownload), map[string]string{
		"search_id": searchID,
	})
	if err != nil {
		return err
	}
	bearerIfSet(req, token)
	return c.send(ctx, op, req, nil)
}

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
