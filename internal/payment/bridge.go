// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package payment is the bridge to the third-party checkout: it starts a
// checkout, handles the provider's redirect, and registers the completed
// payment with the backend. The backend's payment-update response is the
// only source of a payment_id.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/lispendens/internal/portal"
	"github.com/pdiddy/lispendens/internal/storage"
	"github.com/pdiddy/lispendens/pkg/types"
)

var (
	// ErrMissingReference means no provider reference reached the
	// verification step. A reference is never fabricated.
	ErrMissingReference = errors.New("payment: no provider reference to verify")

	// ErrCheckoutClosed means the payer closed or cancelled the checkout.
	ErrCheckoutClosed = errors.New("payment: checkout closed before completion")

	// ErrNoPaymentID means payment-update succeeded but carried no payment_id.
	ErrNoPaymentID = errors.New("payment-update response carries no payment_id")
)

// PaymentRegistrationError wraps any failure to register a payment with the
// backend. The flow must stop before result selection when it occurs.
type PaymentRegistrationError struct {
	Err error
}

func (e *PaymentRegistrationError) Error() string {
	return fmt.Sprintf("registering payment: %v", e.Err)
}

func (e *PaymentRegistrationError) Unwrap() error { return e.Err }

// RegisterAPI is the backend call behind RegisterPayment.
type RegisterAPI interface {
	UpdatePayment(ctx context.Context, token string, in portal.PaymentUpdate) (map[string]any, error)
}

// Widget presents a checkout URL to the payer and blocks until the provider
// redirects back, returning the redirect query. It returns ErrCheckoutClosed
// if the payer gives up.
type Widget interface {
	Open(ctx context.Context, checkoutURL string) (url.Values, error)
}

// Hooks receive the checkout outcome.
type Hooks struct {
	OnSuccess func(ctx context.Context, reference string, query url.Values) error
	OnClose   func()
}

// Checkout describes one initiated checkout.
type Checkout struct {
	TxRef    string         `json:"tx_ref"`
	Amount   float64        `json:"amount"`
	Currency string         `json:"currency"`
	Customer types.Customer `json:"customer"`
	URL      string         `json:"url"`
}

// paymentIDPaths lists where payment-update responses carry the id.
var paymentIDPaths = [][]string{
	{"payment_id"},
	{"data", "payment_id"},
	{"payment", "id"},
}

// Bridge is the PaymentBridge.
type Bridge struct {
	kv     storage.KV
	api    RegisterAPI
	cfg    types.PaymentConfig
	widget Widget
	log    *slog.Logger
	now    func() time.Time
	newRef func() string
}

// NewBridge returns a Bridge. widget may be nil, in which case
// InitiateCheckout only prepares the checkout and the redirect arrives
// later through HandleCallback.
func NewBridge(kv storage.KV, api RegisterAPI, cfg types.PaymentConfig, widget Widget, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		kv:     kv,
		api:    api,
		cfg:    cfg,
		widget: widget,
		log:    log,
		now:    time.Now,
		newRef: func() string { return "LP-" + uuid.NewString() },
	}
}

// Load returns the stored PaymentInfo and whether one exists.
func (b *Bridge) Load(ctx context.Context) (types.PaymentInfo, bool, error) {
	var info types.PaymentInfo
	ok, err := storage.GetJSON(ctx, b.kv, storage.KeyPaymentInfo, &info)
	if errors.Is(err, storage.ErrMalformed) {
		b.log.Warn("discarding malformed paymentInfo")
		return types.PaymentInfo{}, false, nil
	}
	return info, ok, err
}

// Save writes info to paymentInfo.
func (b *Bridge) Save(ctx context.Context, info types.PaymentInfo) error {
	return storage.SetJSON(ctx, b.kv, storage.KeyPaymentInfo, info)
}

// InitiateCheckout records a pending payment and opens the checkout. With a
// widget attached it waits for the outcome and calls the matching hook.
func (b *Bridge) InitiateCheckout(ctx context.Context, amount float64, customer types.Customer, hooks Hooks) (Checkout, error) {
	if amount <= 0 {
		return Checkout{}, fmt.Errorf("checkout amount must be positive, got %v", amount)
	}
	if strings.TrimSpace(customer.Email) == "" {
		return Checkout{}, fmt.Errorf("checkout requires a customer email")
	}

	co := Checkout{
		TxRef:    b.newRef(),
		Amount:   amount,
		Currency: b.cfg.Currency,
		Customer: customer,
	}
	co.URL = b.checkoutURL(co)

	info := types.PaymentInfo{
		PaymentStatus: types.PaymentPending,
		TxRef:         co.TxRef,
		Amount:        amount,
	}
	if err := b.Save(ctx, info); err != nil {
		return Checkout{}, err
	}
	b.log.Info("checkout initiated", "tx_ref", co.TxRef, "amount", amount)

	if b.widget == nil {
		return co, nil
	}

	query, err := b.widget.Open(ctx, co.URL)
	if errors.Is(err, ErrCheckoutClosed) {
		if hooks.OnClose != nil {
			hooks.OnClose()
		}
		return co, err
	}
	if err != nil {
		return co, fmt.Errorf("checkout: %w", err)
	}

	ref := CallbackReference(query)
	if ref != "" {
		if err := b.kv.Set(ctx, storage.KeyPaymentReference, ref); err != nil {
			return co, err
		}
	}
	if hooks.OnSuccess != nil {
		if err := hooks.OnSuccess(ctx, ref, query); err != nil {
			return co, err
		}
	}
	return co, nil
}

func (b *Bridge) checkoutURL(co Checkout) string {
	q := url.Values{}
	q.Set("tx_ref", co.TxRef)
	q.Set("amount", strconv.FormatFloat(co.Amount, 'f', -1, 64))
	if co.Currency != "" {
		q.Set("currency", co.Currency)
	}
	if b.cfg.PublicKey != "" {
		q.Set("public_key", b.cfg.PublicKey)
	}
	if b.cfg.RedirectAddr != "" {
		q.Set("redirect_url", b.cfg.RedirectURL())
	}
	q.Set("customer[email]", co.Customer.Email)
	if co.Customer.Name != "" {
		q.Set("customer[name]", co.Customer.Name)
	}
	if co.Customer.Phone != "" {
		q.Set("customer[phone_number]", co.Customer.Phone)
	}

	sep := "?"
	if strings.Contains(b.cfg.CheckoutURL, "?") {
		sep = "&"
	}
	return b.cfg.CheckoutURL + sep + q.Encode()
}

// CallbackReference returns the provider reference from a redirect query:
// "reference" first, then "trxref".
func CallbackReference(q url.Values) string {
	if ref := strings.TrimSpace(q.Get("reference")); ref != "" {
		return ref
	}
	return strings.TrimSpace(q.Get("trxref"))
}

// closedWithoutPayment reports a cancelled redirect that carries no
// provider reference.
func closedWithoutPayment(q url.Values) bool {
	return CallbackReference(q) == "" && strings.EqualFold(q.Get("status"), "cancelled")
}

// HandleCallback applies the provider redirect to the stored PaymentInfo.
// A reference or trxref in the query completes the payment whatever the
// status says; status=cancelled without one means the checkout was closed.
// Without a reference in the query it falls back to paymentReference; with
// neither, the info is returned still pending and Verify will fail.
func (b *Bridge) HandleCallback(ctx context.Context, q url.Values) (types.PaymentInfo, error) {
	if closedWithoutPayment(q) {
		return types.PaymentInfo{}, ErrCheckoutClosed
	}
	ref := CallbackReference(q)

	info, _, err := b.Load(ctx)
	if err != nil {
		return types.PaymentInfo{}, err
	}
	if info.TxRef == "" {
		info.TxRef = q.Get("tx_ref")
	}

	if ref == "" {
		stored, ok, err := b.kv.Get(ctx, storage.KeyPaymentReference)
		if err != nil {
			return types.PaymentInfo{}, err
		}
		if ok {
			ref = strings.TrimSpace(stored)
		}
	}
	if ref == "" {
		b.log.Warn("payment redirect carried no reference")
		return info, nil
	}

	if info.Reference != "" && info.Reference != ref {
		// A different payment; its registration and claim do not carry over.
		info.PaymentID = ""
		info.ClaimedID = ""
	}
	now := b.now().UTC()
	info.Reference = ref
	info.PaymentStatus = types.PaymentCompleted
	info.CompletedAt = &now
	if err := b.Save(ctx, info); err != nil {
		return types.PaymentInfo{}, err
	}
	if err := b.kv.Set(ctx, storage.KeyPaymentReference, ref); err != nil {
		return types.PaymentInfo{}, err
	}
	b.log.Info("payment completed", "reference", ref)
	return info, nil
}

// Verify fails with ErrMissingReference unless info carries a completed
// provider reference.
func Verify(info types.PaymentInfo) error {
	if info.Reference == "" || info.PaymentStatus != types.PaymentCompleted {
		return ErrMissingReference
	}
	return nil
}

// RegisterPayment posts payment-update and merges the returned payment_id
// into the stored PaymentInfo.
func (b *Bridge) RegisterPayment(ctx context.Context, token, userID string, amount float64, sessionID, pendensID string) (types.PaymentInfo, error) {
	if strings.TrimSpace(sessionID) == "" {
		return types.PaymentInfo{}, ErrMissingReference
	}
	if strings.TrimSpace(userID) == "" {
		return types.PaymentInfo{}, &PaymentRegistrationError{Err: errors.New("no user id in session")}
	}

	resp, err := b.api.UpdatePayment(ctx, token, portal.PaymentUpdate{
		UserID:    userID,
		Amount:    amount,
		SessionID: sessionID,
		PendensID: pendensID,
	})
	if err != nil {
		return types.PaymentInfo{}, &PaymentRegistrationError{Err: err}
	}

	paymentID := portal.FirstString(resp, paymentIDPaths...)
	if paymentID == "" {
		return types.PaymentInfo{}, &PaymentRegistrationError{Err: ErrNoPaymentID}
	}

	info, _, err := b.Load(ctx)
	if err != nil {
		return types.PaymentInfo{}, err
	}
	info.PaymentID = paymentID
	if info.Amount == 0 {
		info.Amount = amount
	}
	if err := b.Save(ctx, info); err != nil {
		return types.PaymentInfo{}, err
	}
	b.log.Info("payment registered", "payment_id", paymentID)
	return info, nil
}
