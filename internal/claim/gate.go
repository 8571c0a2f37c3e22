// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package claim enforces "pay once, view all summaries, fully view or
// download only one": it registers the single claimed result against the
// backend payment_id through store-search.
package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pdiddy/lispendens/internal/storage"
	"github.com/pdiddy/lispendens/pkg/types"
)

var (
	// ErrMissingPaymentID means no backend payment_id is held. No request
	// is sent and no placeholder is substituted.
	ErrMissingPaymentID = errors.New("claim: no payment_id from payment registration")

	// ErrInvalidPaymentID means the stored payment_id is not a recognisable id.
	ErrInvalidPaymentID = errors.New("claim: payment_id is not a numeric id")

	// ErrAlreadyClaimed means another result was already claimed with this payment.
	ErrAlreadyClaimed = errors.New("claim: a different result was already claimed for this payment")

	// ErrUnknownResult means the id is not in the current result set.
	ErrUnknownResult = errors.New("claim: result is not in the current search results")
)

// ClaimError wraps a failed store-search call. The result stays unclaimed
// and the claim may be retried.
type ClaimError struct {
	ResultID string
	Err      error
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("claiming result %s: %v", e.ResultID, e.Err)
}

func (e *ClaimError) Unwrap() error { return e.Err }

// StoreSearchAPI is the backend call behind Claim.
type StoreSearchAPI interface {
	StoreSearch(ctx context.Context, token, pendensID, paymentID string) (map[string]any, error)
}

// ResultLookup resolves a result id against the cached result set.
type ResultLookup interface {
	Find(ctx context.Context, id string) (types.SearchResult, bool, error)
}

// Result is the outcome of a successful claim.
type Result struct {
	Result    types.SearchResult
	PaymentID string
	UserID    string

	// Repeat is true when the result had already been claimed in this
	// session and no request was sent.
	Repeat bool
}

// Gate is the ResultSelectionGate.
type Gate struct {
	kv      storage.KV
	api     StoreSearchAPI
	results ResultLookup
	log     *slog.Logger
}

// NewGate returns a Gate.
func NewGate(kv storage.KV, api StoreSearchAPI, results ResultLookup, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{kv: kv, api: api, results: results, log: log}
}

// Claim registers resultID as the one fully viewable result for info's
// payment. Preconditions are checked before any request is made.
func (g *Gate) Claim(ctx context.Context, resultID string, info types.PaymentInfo, userID, token string) (Result, error) {
	resultID = strings.TrimSpace(resultID)
	if strings.TrimSpace(info.PaymentID) == "" {
		return Result{}, ErrMissingPaymentID
	}
	paymentID, err := NormalizePaymentID(info.PaymentID)
	if err != nil {
		return Result{}, err
	}

	if resultID == "" {
		return Result{}, ErrUnknownResult
	}
	res, ok, err := g.results.Find(ctx, resultID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, ErrUnknownResult
	}

	switch info.ClaimedID {
	case "":
	case resultID:
		return Result{Result: res, PaymentID: paymentID, UserID: userID, Repeat: true}, nil
	default:
		return Result{}, fmt.Errorf("%w (claimed %s)", ErrAlreadyClaimed, info.ClaimedID)
	}

	if _, err := g.api.StoreSearch(ctx, token, resultID, paymentID); err != nil {
		return Result{}, &ClaimError{ResultID: resultID, Err: err}
	}

	info.ClaimedID = resultID
	if err := storage.SetJSON(ctx, g.kv, storage.KeyPaymentInfo, info); err != nil {
		return Result{}, err
	}
	g.log.Info("result claimed", "pendens_id", resultID, "payment_id", paymentID, "user_id", userID)
	return Result{Result: res, PaymentID: paymentID, UserID: userID}, nil
}

// paymentIDPattern accepts digits with an optional short alphabetic or
// punctuation prefix such as "#77" or "PAY-77".
var paymentIDPattern = regexp.MustCompile(`^[A-Za-z]{0,8}[#:_-]?\s*([0-9]+)$`)

// NormalizePaymentID reduces a payment id to the digits the backend
// expects. Anything but a prefixed run of digits is rejected rather than
// coerced.
func NormalizePaymentID(v string) (string, error) {
	v = strings.TrimSpace(v)
	m := paymentIDPattern.FindStringSubmatch(v)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentID, v)
	}
	return m[1], nil
}
