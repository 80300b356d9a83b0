package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/guest-wallet/internal/client"
	"github.com/AlexZinkM/guest-wallet/internal/contract"
	"github.com/AlexZinkM/guest-wallet/internal/keys"
	"github.com/AlexZinkM/guest-wallet/internal/model"
	"github.com/AlexZinkM/guest-wallet/internal/session"
	"github.com/AlexZinkM/guest-wallet/internal/store"
	"github.com/AlexZinkM/guest-wallet/near"
)

type stubIssuer struct {
	registerErr error
}

func (s stubIssuer) RegisterKey(context.Context, string) error    { return s.registerErr }
func (stubIssuer) VerifyKey(context.Context, *keys.KeyPair) error { return nil }
func (stubIssuer) RevokeAll(context.Context) error                { return nil }

// stubChain mints sequential ids and fails guest_mint after two calls.
type stubChain struct {
	minted int
}

func (c *stubChain) ViewFunction(_ context.Context, _ string, method string, _ []byte) (json.RawMessage, error) {
	switch method {
	case contract.MethodGetNumTokens:
		return []byte(fmt.Sprint(c.minted)), nil
	case contract.MethodGetProceeds:
		return []byte(`"0"`), nil
	}
	return nil, &client.ChainError{Method: method, Message: "No owner of the token ID specified"}
}

func (c *stubChain) CallFunction(_ context.Context, _ client.Signer, _ string, method string, _ []byte, _ uint64, _ *big.Int) (json.RawMessage, error) {
	if method == contract.MethodGuestMint && c.minted >= 2 {
		return nil, &client.ChainError{Method: method, Message: "Out of free mints"}
	}
	c.minted++
	return []byte(fmt.Sprint(c.minted)), nil
}

func newTestApp(t *testing.T, iss session.Issuer, allowRevoke bool) *near.App {
	t.Helper()
	m := session.NewManager(store.NewMemoryStore(), iss)
	require.NoError(t, m.Load())
	return near.New(m, contract.NewInvoker(&stubChain{}, "nft.testnet", 1), allowRevoke)
}

func do(t *testing.T, h http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestGuestEndpoints(t *testing.T) {
	app := newTestApp(t, stubIssuer{}, false)
	h := NewGuestHandler(app)

	rec, body := do(t, h.Status, http.MethodGet, "/guest/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no_credential", body["state"])

	rec, body = do(t, h.SignIn, http.MethodPost, "/guest/signin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_credential", body["code"])

	rec, body = do(t, h.RequestAccess, http.MethodPost, "/guest/access", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed_in", body["state"])

	rec, body = do(t, h.Status, http.MethodGet, "/guest/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guest", body["authority"])
	assert.NotEmpty(t, body["QR"])

	rec, body = do(t, h.SignOut, http.MethodPost, "/guest/signout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed_out", body["state"])

	rec, body = do(t, h.Revoke, http.MethodPost, "/guest/revoke", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "revoke_disabled", body["code"])

	rec, _ = do(t, h.Status, http.MethodPost, "/guest/status", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestAccess_IssuerFailure(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&client.IssuerError{Op: "add_key", Err: client.ErrUnreachable}, http.StatusBadGateway, "issuer_unreachable"},
		{&client.IssuerError{Op: "add_key", Err: client.ErrRejected}, http.StatusForbidden, "issuer_rejected"},
	}
	for _, c := range cases {
		h := NewGuestHandler(newTestApp(t, stubIssuer{registerErr: c.err}, false))
		rec, body := do(t, h.RequestAccess, http.MethodPost, "/guest/access", "")
		assert.Equal(t, c.status, rec.Code)
		assert.Equal(t, c.code, body["code"])
	}
}

func TestWalletSignIn_BadRequest(t *testing.T) {
	h := NewGuestHandler(newTestApp(t, stubIssuer{}, false))

	rec, body := do(t, h.WalletSignIn, http.MethodPost, "/wallet/signin", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "credentialspath is required")

	rec, body = do(t, h.WalletSignIn, http.MethodPost, "/wallet/signin", `{"credentialsPath":"/nonexistent.json"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_credentials", body["code"])
}

func TestContractEndpoints(t *testing.T) {
	app := newTestApp(t, stubIssuer{}, false)
	guest := NewGuestHandler(app)
	h := NewContractHandler(app)

	rec, body := do(t, h.Mint, http.MethodPost, "/contract/mint", `{"metadata":"hello"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "not_signed_in", body["code"])

	rec, _ = do(t, guest.RequestAccess, http.MethodPost, "/guest/access", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, h.Mint, http.MethodPost, "/contract/mint", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "metadata is required")

	for i := 1; i <= 2; i++ {
		rec, body = do(t, h.Mint, http.MethodPost, "/contract/mint", `{"metadata":"hello"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(i), body["tokenId"])
		assert.Equal(t, "guest_mint", body["method"])
	}

	rec, body = do(t, h.Mint, http.MethodPost, "/contract/mint", `{"metadata":"hello"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "limit_exceeded", body["code"])

	rec, body = do(t, h.SetPrice, http.MethodPost, "/contract/price", `{"tokenId":1,"amount":"1.5.0"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "amount must be a NEAR amount")

	rec, body = do(t, h.Tokens, http.MethodGet, "/contract/tokens?fromId=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(t, h.Tokens, http.MethodGet, "/contract/tokens?fromId=3&toId=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "toId")

	rec, body = do(t, h.Proceeds, http.MethodGet, "/contract/proceeds", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", body["near"])
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{session.ErrBusy, http.StatusConflict, "busy"},
		{fmt.Errorf("wrap: %w", session.ErrSessionConflict), http.StatusConflict, "session_conflict"},
		{&contract.Error{Kind: contract.KindNotFound}, http.StatusNotFound, "not_found"},
		{&contract.Error{Kind: contract.KindTransport}, http.StatusBadGateway, "transport"},
		{&contract.Error{Kind: contract.KindDepositMismatch}, http.StatusConflict, "deposit_mismatch"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, c := range cases {
		status, code := errorStatus(c.err)
		assert.Equal(t, c.status, status, c.err.Error())
		assert.Equal(t, c.code, code, c.err.Error())
	}
}

func TestValidator(t *testing.T) {
	v := newValidator()
	assert.NoError(t, v.Validate(&model.SetPriceRequest{TokenID: 1, Amount: "0.000001"}))
	assert.Error(t, v.Validate(&model.SetPriceRequest{TokenID: 1, Amount: "-1"}))
	assert.Error(t, v.Validate(&model.TransferRequest{TokenID: 1}))
}

func TestErrorCarriesRequestID(t *testing.T) {
	app := newTestApp(t, stubIssuer{}, false)
	h := NewGuestHandler(app)

	req := httptest.NewRequest(http.MethodPost, "/guest/signin", nil)
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Request-ID", "req-1")
	h.SignIn(rec, req)

	var out model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "no_credential", out.Code)
	assert.Equal(t, "req-1", out.RequestID)
}
