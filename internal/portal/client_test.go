// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lispendens/internal/httputil"
	"github.com/pdiddy/lispendens/pkg/types"
)

// recorded captures what the fake backend received.
type recorded struct {
	method string
	path   string
	query  string
	auth   string
	form   map[string]string
	json   map[string]any
}

func backend(t *testing.T, status int, body string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			form:   map[string]string{},
		}
		switch ct := r.Header.Get("Content-Type"); {
		case ct == "application/json":
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &rec.json)
		case ct != "":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				_ = r.ParseForm()
			}
			for k, v := range r.PostForm {
				rec.form[k] = v[0]
			}
			if r.MultipartForm != nil {
				for k, v := range r.MultipartForm.Value {
					rec.form[k] = v[0]
				}
			}
		}
		calls = append(calls, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)

	c := New(types.APIConfig{BaseURL: ts.URL + "/", Timeout: 5 * time.Second, UserAgent: "lispendens-test"})
	return c, &calls
}

func TestSearchProperty(t *testing.T) {
	c, calls := backend(t, http.StatusOK, `{"data":[{"id":42,"title":"Plot 7"},{"id":"43"}]}`)

	got, err := c.SearchProperty(context.Background(), "", types.SearchIntent{
		PropertyTitle: "C of O", LGA: "Nsukka", State: "Enugu",
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, json.Number("42"), got[0]["id"])
	assert.Equal(t, "43", got[1]["id"])

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/search-property", call.path)
	assert.Empty(t, call.auth)
	assert.Equal(t, map[string]string{"title_type": "C of O", "lga": "Nsukka", "state": "Enugu"}, call.form)
}

func TestSearchProperty_EmptyData(t *testing.T) {
	for _, body := range []string{`{"data":[]}`, `{"data":null}`, `{}`} {
		c, _ := backend(t, http.StatusOK, body)
		got, err := c.SearchProperty(context.Background(), "tok", types.SearchIntent{LGA: "Nsukka", State: "Enugu"})
		require.NoError(t, err, body)
		assert.NotNil(t, got, body)
		assert.Empty(t, got, body)
	}
}

func TestUpdatePayment(t *testing.T) {
	c, calls := backend(t, http.StatusOK, `{"status":"success","payment_id":77}`)

	out, err := c.UpdatePayment(context.Background(), "tok", PaymentUpdate{
		UserID: "12", Amount: 5000, SessionID: "ref-abc", PendensID: "",
	})
	require.NoError(t, err)
	assert.Equal(t, json.Number("77"), out["payment_id"])

	call := (*calls)[0]
	assert.Equal(t, "/payment-update", call.path)
	assert.Equal(t, "Bearer tok", call.auth)
	assert.Equal(t, map[string]string{
		"user_id":            "12",
		"payment_amount":     "5000",
		"payment_session_id": "ref-abc",
	}, call.form)
}

func TestUpdatePayment_RequiresToken(t *testing.T) {
	c, calls := backend(t, http.StatusOK, `{}`)
	_, err := c.UpdatePayment(context.Background(), "", PaymentUpdate{UserID: "12"})
	assert.ErrorIs(t, err, httputil.ErrUnauthorized)
	assert.Empty(t, *calls)
}

func TestStoreSearch(t *testing.T) {
	c, calls := backend(t, http.StatusOK, `{"message":"stored"}`)

	_, err := c.StoreSearch(context.Background(), "tok", "42", "77")
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, "/store-search", call.path)
	assert.Equal(t, "Bearer tok", call.auth)
	assert.Equal(t, map[string]string{"pendens_id": "42", "payment_id": "77"}, call.form)
}

func TestStoreSearch_Unauthorized(t *testing.T) {
	c, _ := backend(t, http.StatusUnauthorized, `{"message":"Unauthenticated."}`)
	_, err := c.StoreSearch(context.Background(), "expired", "42", "77")
	assert.ErrorIs(t, err, httputil.ErrUnauthorized)
}

func TestSearchHistory(t *testing.T) {
	c, calls := backend(t, http.StatusOK, `{"history":[{"id":1}]}`)

	raw, err := c.SearchHistory(context.Background(), "tok", "12")
	require.NoError(t, err)
	assert.JSONEq(t, `{"history":[{"id":1}]}`, string(raw))

	call := (*calls)[0]
	assert.Equal(t, http.MethodGet, call.method)
	assert.Equal(t, "/search-history", call.path)
	assert.Equal(t, "user_id=12", call.query)
}

func TestUpdateDownload(t *testing.T) {
	c, calls := backend(t, http.StatusOK, `{}`)
	require.NoError(t, c.UpdateDownload(context.Background(), "tok", "42"))
	assert.Equal(t, map[string]string{"search_id": "42"}, (*calls)[0].form)
	assert.Equal(t, "/update-download", (*calls)[0].path)
}

func TestLogin(t *testing.T) {
	c, calls := backend(t, http.StatusOK, `{"token":"abc","data":{"type":"individual"}}`)

	out, err := c.Login(context.Background(), Credentials{Email: "ada@example.ng", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "abc", out["token"])

	call := (*calls)[0]
	assert.Equal(t, "/login", call.path)
	assert.Equal(t, "ada@example.ng", call.json["email"])
	assert.Equal(t, "secret", call.json["password"])
	_, hasType := call.json["type"]
	assert.False(t, hasType)
}

func TestSignup(t *testing.T) {
	c, calls := backend(t, http.StatusCreated, `{}`)

	err := c.Signup(context.Background(), SignupCompany, SignupRequest{
		CompanyName: "Okafor & Sons", RCNumber: "RC1234", Email: "ops@okafor.ng",
		Password: "pw", PasswordConfirmation: "pw",
	})
	require.NoError(t, err)
	call := (*calls)[0]
	assert.Equal(t, "/signup/company", call.path)
	assert.Equal(t, "company", call.json["type"])
	assert.Equal(t, "RC1234", call.json["rc_number"])
	assert.Equal(t, "pw", call.json["password_confirmation"])

	assert.Error(t, c.Signup(context.Background(), SignupKind("robot"), SignupRequest{}))
}

func TestGetDetails_Wrapped(t *testing.T) {
	for _, body := range []string{
		`{"data":{"first_name":"Ada","email":"ada@example.ng"}}`,
		`{"user":{"first_name":"Ada","email":"ada@example.ng"}}`,
		`{"first_name":"Ada","email":"ada@example.ng"}`,
	} {
		c, _ := backend(t, http.StatusOK, body)
		p, err := c.GetDetails(context.Background(), "tok")
		require.NoError(t, err, body)
		assert.Equal(t, "Ada", p.FirstName, body)
		assert.Equal(t, "ada@example.ng", p.Email, body)
	}
}

func TestUpdateDetails(t *testing.T) {
	c, calls := backend(t, http.StatusOK, `{}`)
	err := c.UpdateDetails(context.Background(), "tok", types.Profile{FirstName: "Ada", Phone: "0803"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"first_name": "Ada", "phone": "0803"}, (*calls)[0].form)
}

func TestDeleteAccount(t *testing.T) {
	c, calls := backend(t, http.StatusOK, `{}`)
	require.NoError(t, c.DeleteAccount(context.Background(), "tok"))
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "/delete-account", (*calls)[0].path)
}

func TestStatusErrorCarriesMessage(t *testing.T) {
	c, _ := backend(t, http.StatusUnprocessableEntity, `{"message":"The lga field is required."}`)
	_, err := c.SearchProperty(context.Background(), "", types.SearchIntent{State: "Enugu"})
	var se *httputil.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
	assert.Equal(t, "The lga field is required.", se.Message)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "5000", formatAmount(5000))
	assert.Equal(t, "2500.5", formatAmount(2500.5))
	assert.Equal(t, "", formatAmount(0))
}
