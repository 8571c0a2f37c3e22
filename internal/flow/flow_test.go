// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lispendens/internal/auth"
	"github.com/pdiddy/lispendens/internal/claim"
	"github.com/pdiddy/lispendens/internal/httputil"
	"github.com/pdiddy/lispendens/internal/payment"
	"github.com/pdiddy/lispendens/internal/portal"
	"github.com/pdiddy/lispendens/internal/results"
	"github.com/pdiddy/lispendens/internal/storage"
	"github.com/pdiddy/lispendens/pkg/types"
)

// --- test backend ---

type backend struct {
	mu     sync.Mutex
	calls  map[string][]url.Values
	status map[string]int
	bodies map[string]any
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{
		calls:  map[string][]url.Values{},
		status: map[string]int{},
		bodies: map[string]any{
			"/login": map[string]any{
				"token": "tok-1",
				"data":  map[string]any{"type": "individual", "id": 12, "email": "ada@example.ng", "first_name": "Ada"},
			},
			"/payment-update": map[string]any{"payment_id": 77, "message": "payment recorded"},
			"/search-property": map[string]any{"data": []any{
				map[string]any{"id": "42", "title": "C of O Plot 7", "owner": "Emeka Eze", "summary": "Suit FHC/EN/12/2025 pending"},
			}},
			"/store-search":    map[string]any{"message": "search stored"},
			"/update-download": map[string]any{"message": "ok"},
			"/search-history": map[string]any{"history": []any{
				map[string]any{"id": 3, "pendens_id": "42", "title": "C of O Plot 7", "created_at": "2026-10-16", "downloaded": 1},
			}},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	var form url.Values
	if r.URL.Path == "/login" {
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		form = url.Values{"email": {creds["email"]}}
	} else {
		r.ParseMultipartForm(1 << 20)
		form = url.Values{}
		for k, v := range r.Form {
			form[k] = v
		}
		form.Set("authorization", r.Header.Get("Authorization"))
	}

	b.mu.Lock()
	b.calls[r.URL.Path] = append(b.calls[r.URL.Path], form)
	status, body := b.status[r.URL.Path], b.bodies[r.URL.Path]
	b.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 300 {
		json.NewEncoder(w).Encode(map[string]any{"message": "rejected"})
		return
	}
	json.NewEncoder(w).Encode(body)
}

func (b *backend) callsTo(path string) []url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

type fakeWidget struct {
	query url.Values
	err   error
}

func (f *fakeWidget) Open(context.Context, string) (url.Values, error) {
	return f.query, f.err
}

type harness struct {
	kv      *storage.Store
	client  *portal.Client
	session *auth.Session
	widget  payment.Widget
}

func newHarness(t *testing.T, srv *httptest.Server, widget payment.Widget) *harness {
	t.Helper()
	kv, err := storage.Open(types.StorageConfig{Path: filepath.Join(t.TempDir(), "storage.db")})
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	client := portal.New(types.APIConfig{BaseURL: srv.URL})
	return &harness{kv: kv, client: client, session: auth.NewSession(kv, client, nil), widget: widget}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, _, err := h.session.Login(context.Background(), portal.Credentials{Email: "ada@example.ng", Password: "secret"})
	require.NoError(t, err)
}

// flow returns a freshly restored Flow, as a new invocation would see it.
func (h *harness) flow(t *testing.T) *Flow {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.session.Restore(ctx))
	cfg := types.PaymentConfig{CheckoutURL: "https://checkout.example/pay", Currency: "NGN"}
	bridge := payment.NewBridge(h.kv, h.client, cfg, h.widget, nil)
	f := New(h.kv, h.session, h.client, bridge, 5000, nil)
	require.NoError(t, f.Restore(ctx))
	return f
}

var testIntent = types.SearchIntent{PropertyTitle: "C of O", State: "Enugu", LGA: "Nsukka"}

// --- scenarios ---

func TestFlow_SearchPayClaimDownload(t *testing.T) {
	ctx := context.Background()
	be, srv := newBackend(t)
	h := newHarness(t, srv, &fakeWidget{query: url.Values{"reference": {"PSK-9"}}})
	h.login(t)

	f := h.flow(t)
	assert.Equal(t, Idle, f.State())

	out, err := f.StartSearch(ctx, testIntent)
	require.NoError(t, err)
	assert.True(t, out.Paid)
	assert.Contains(t, out.Checkout.URL, "tx_ref=LP-")
	require.Len(t, out.Results, 1)
	assert.Equal(t, "42", out.Results[0].ID)
	assert.Equal(t, Viewing, f.State())

	search := be.callsTo("/search-property")
	require.Len(t, search, 1)
	assert.Equal(t, "C of O", search[0].Get("title_type"))
	assert.Equal(t, "Nsukka", search[0].Get("lga"))
	assert.Equal(t, "Enugu", search[0].Get("state"))

	update := be.callsTo("/payment-update")
	require.Len(t, update, 1)
	assert.Equal(t, "12", update[0].Get("user_id"))
	assert.Equal(t, "5000", update[0].Get("payment_amount"))
	assert.Equal(t, "PSK-9", update[0].Get("payment_session_id"))
	assert.Equal(t, "Bearer tok-1", update[0].Get("authorization"))

	// A later invocation sees the cached results.
	f = h.flow(t)
	assert.Equal(t, Viewing, f.State())
	list, err := f.Results(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	res, err := f.ViewDetails(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Emeka Eze", res.Result.Owner)
	assert.Equal(t, Viewing, f.State())

	stored := be.callsTo("/store-search")
	require.Len(t, stored, 1)
	assert.Equal(t, "42", stored[0].Get("pendens_id"))
	assert.Equal(t, "77", stored[0].Get("payment_id"))

	var buf bytes.Buffer
	require.NoError(t, f.Download(ctx, "42", &buf))
	assert.Contains(t, buf.String(), `id: "42"`)
	assert.Contains(t, buf.String(), "owner: Emeka Eze")
	downloads := be.callsTo("/update-download")
	require.Len(t, downloads, 1)
	assert.Equal(t, "42", downloads[0].Get("search_id"))

	pending, err := f.intents.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, pending, "intent is consumed once results load")
}

func TestFlow_CallbackInLaterInvocation(t *testing.T) {
	ctx := context.Background()
	be, srv := newBackend(t)
	h := newHarness(t, srv, nil)
	h.login(t)

	out, err := h.flow(t).StartSearch(ctx, testIntent)
	require.NoError(t, err)
	assert.False(t, out.Paid)
	assert.NotEmpty(t, out.Checkout.URL)
	assert.Empty(t, be.callsTo("/payment-update"))

	f := h.flow(t)
	require.Equal(t, AwaitingPayment, f.State())
	list, err := f.CompletePayment(ctx, url.Values{"trxref": {"TRX-5"}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, Viewing, f.State())
	assert.Equal(t, "TRX-5", be.callsTo("/payment-update")[0].Get("payment_session_id"))
}

func TestFlow_CallbackWithoutSearchRestarts(t *testing.T) {
	be, srv := newBackend(t)
	h := newHarness(t, srv, nil)
	h.login(t)

	f := h.flow(t)
	_, err := f.CompletePayment(context.Background(), url.Values{"reference": {"PSK-9"}})
	assert.ErrorIs(t, err, ErrRestart)
	assert.Empty(t, be.callsTo("/payment-update"))
	assert.Empty(t, be.callsTo("/search-property"))
}

func TestFlow_MissingReferenceFails(t *testing.T) {
	ctx := context.Background()
	be, srv := newBackend(t)
	h := newHarness(t, srv, nil)
	h.login(t)
	_, err := h.flow(t).StartSearch(ctx, testIntent)
	require.NoError(t, err)

	f := h.flow(t)
	_, err = f.CompletePayment(ctx, url.Values{"status": {"successful"}})
	assert.ErrorIs(t, err, payment.ErrMissingReference)
	assert.Equal(t, Failed, f.State())
	assert.ErrorIs(t, f.Cause(), payment.ErrMissingReference)
	assert.Empty(t, be.callsTo("/payment-update"))
}

func TestFlow_CheckoutClosedStaysPending(t *testing.T) {
	ctx := context.Background()
	be, srv := newBackend(t)
	h := newHarness(t, srv, &fakeWidget{err: payment.ErrCheckoutClosed})
	h.login(t)

	f := h.flow(t)
	_, err := f.StartSearch(ctx, testIntent)
	assert.ErrorIs(t, err, payment.ErrCheckoutClosed)
	assert.Equal(t, AwaitingPayment, f.State())
	assert.Empty(t, be.callsTo("/payment-update"))

	assert.Equal(t, AwaitingPayment, h.flow(t).State())
}

func TestFlow_PaymentRegistrationFailureHalts(t *testing.T) {
	be, srv := newBackend(t)
	be.status["/payment-update"] = http.StatusInternalServerError
	h := newHarness(t, srv, &fakeWidget{query: url.Values{"reference": {"PSK-9"}}})
	h.login(t)

	f := h.flow(t)
	_, err := f.StartSearch(context.Background(), testIntent)
	var regErr *payment.PaymentRegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, Failed, f.State())
	assert.Empty(t, be.callsTo("/search-property"), "no search after failed registration")
}

func TestFlow_RetryAfterSearchFailureKeepsPayment(t *testing.T) {
	ctx := context.Background()
	be, srv := newBackend(t)
	be.status["/search-property"] = http.StatusInternalServerError
	h := newHarness(t, srv, &fakeWidget{query: url.Values{"reference": {"PSK-9"}}})
	h.login(t)

	f := h.flow(t)
	_, err := f.StartSearch(ctx, testIntent)
	require.Error(t, err)
	assert.Equal(t, Failed, f.State())
	require.Len(t, be.callsTo("/payment-update"), 1)

	be.mu.Lock()
	be.status["/search-property"] = 0
	be.mu.Unlock()

	f = h.flow(t)
	require.Equal(t, AwaitingPayment, f.State())
	list, err := f.CompletePayment(ctx, url.Values{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, Viewing, f.State())
	assert.Len(t, be.callsTo("/payment-update"), 1, "the payment is registered once")
	assert.Len(t, be.callsTo("/search-property"), 2)

	res, err := f.ViewDetails(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "77", res.PaymentID)
}

func TestFlow_UnauthorizedSignsOut(t *testing.T) {
	ctx := context.Background()
	be, srv := newBackend(t)
	be.status["/search-property"] = http.StatusUnauthorized
	h := newHarness(t, srv, &fakeWidget{query: url.Values{"reference": {"PSK-9"}}})
	h.login(t)

	_, err := h.flow(t).StartSearch(ctx, testIntent)
	assert.ErrorIs(t, err, httputil.ErrUnauthorized)
	assert.False(t, h.session.IsAuthenticated())

	_, ok, err := h.kv.Get(ctx, storage.KeyAuth)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlow_EmptyResults(t *testing.T) {
	be, srv := newBackend(t)
	be.bodies["/search-property"] = map[string]any{"data": []any{}}
	h := newHarness(t, srv, &fakeWidget{query: url.Values{"reference": {"PSK-9"}}})
	h.login(t)

	f := h.flow(t)
	out, err := f.StartSearch(context.Background(), testIntent)
	require.NoError(t, err)
	assert.True(t, out.Paid)
	assert.Empty(t, out.Results)
	assert.NotNil(t, out.Results)
}

func TestFlow_RequiresLogin(t *testing.T) {
	_, srv := newBackend(t)
	h := newHarness(t, srv, nil)

	_, err := h.flow(t).StartSearch(context.Background(), testIntent)
	var authErr *httputil.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestFlow_StartSearchValidates(t *testing.T) {
	ctx := context.Background()
	_, srv := newBackend(t)
	h := newHarness(t, srv, nil)
	h.login(t)

	f := h.flow(t)
	_, err := f.StartSearch(ctx, types.SearchIntent{State: "Enugu"})
	assert.Error(t, err)
	assert.Equal(t, Idle, f.State())

	_, ok, err := h.kv.Get(ctx, storage.KeyPaymentInfo)
	require.NoError(t, err)
	assert.False(t, ok, "no checkout for an invalid search")
}

func TestFlow_ViewDetailsWithoutPaymentID(t *testing.T) {
	ctx := context.Background()
	be, srv := newBackend(t)
	h := newHarness(t, srv, nil)
	h.login(t)

	_, err := results.NewCache(h.kv).Populate(ctx, []map[string]any{{"id": "42"}})
	require.NoError(t, err)
	require.NoError(t, storage.SetJSON(ctx, h.kv, storage.KeyPaymentInfo, types.PaymentInfo{
		PaymentStatus: types.PaymentCompleted, Reference: "PSK-9",
	}))

	f := h.flow(t)
	require.Equal(t, Viewing, f.State())
	_, err = f.ViewDetails(ctx, "42")
	assert.ErrorIs(t, err, claim.ErrMissingPaymentID)
	assert.Equal(t, Viewing, f.State())
	assert.Empty(t, be.callsTo("/store-search"))
}

func TestFlow_ViewDetailsWithNoResults(t *testing.T) {
	_, srv := newBackend(t)
	h := newHarness(t, srv, nil)
	h.login(t)

	_, err := h.flow(t).ViewDetails(context.Background(), "42")
	assert.ErrorIs(t, err, ErrRestart)
}

func TestFlow_DownloadRequiresClaim(t *testing.T) {
	ctx := context.Background()
	be, srv := newBackend(t)
	h := newHarness(t, srv, nil)
	h.login(t)

	_, err := results.NewCache(h.kv).Populate(ctx, []map[string]any{{"id": "42"}, {"id": "43"}})
	require.NoError(t, err)
	require.NoError(t, storage.SetJSON(ctx, h.kv, storage.KeyPaymentInfo, types.PaymentInfo{PaymentID: "77", ClaimedID: "42"}))

	var buf bytes.Buffer
	err = h.flow(t).Download(ctx, "43", &buf)
	assert.ErrorIs(t, err, ErrNotClaimed)
	assert.Empty(t, buf.String())
	assert.Empty(t, be.callsTo("/update-download"))
}

func TestFlow_History(t *testing.T) {
	be, srv := newBackend(t)
	h := newHarness(t, srv, nil)
	h.login(t)

	entries, err := h.flow(t).History(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "42", entries[0].PendensID)
	assert.True(t, entries[0].Downloaded)
	assert.Equal(t, "12", be.callsTo("/search-history")[0].Get("user_id"))
}
