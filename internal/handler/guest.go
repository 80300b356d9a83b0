package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AlexZinkM/guest-wallet/internal/config"
	"github.com/AlexZinkM/guest-wallet/internal/model"
	"github.com/AlexZinkM/guest-wallet/near"
)

// GuestHandler serves guest and wallet session endpoints.
type GuestHandler struct {
	app       *near.App
	validator *requestValidator
}

// NewGuestHandler creates a new GuestHandler.
func NewGuestHandler(app *near.App) *GuestHandler {
	return &GuestHandler{app: app, validator: newValidator()}
}

// RequestAccess handles POST /guest/access
// @Summary      Request guest access
// @Description  Generates a guest key, registers and verifies it with the issuer, then signs in. Signs an existing credential in instead.
// @Tags         guest
// @Produce      json
// @Success      200  {object}  model.GuestAccessResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /guest/access [post]
func (h *GuestHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	resp, err := h.app.RequestGuestAccess(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SignIn handles POST /guest/signin
// @Summary      Sign the guest in
// @Tags         guest
// @Produce      json
// @Success      200  {object}  model.GuestAccessResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /guest/signin [post]
func (h *GuestHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	resp, err := h.app.SignIn(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SignOut handles POST /guest/signout
// @Summary      Sign the guest out
// @Tags         guest
// @Produce      json
// @Success      200  {object}  model.GuestAccessResponse
// @Router       /guest/signout [post]
func (h *GuestHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	resp, err := h.app.SignOut()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Revoke handles POST /guest/revoke
// @Summary      Revoke all guest keys
// @Description  Deletes every guest key at the issuer and the local credential. Disabled unless ALLOW_REVOKE=true.
// @Tags         guest
// @Produce      json
// @Success      200  {object}  model.GuestAccessResponse
// @Failure      403  {object}  model.ErrorResponse
// @Router       /guest/revoke [post]
func (h *GuestHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	resp, err := h.app.Revoke(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /guest/status
// @Summary      Session status
// @Description  Current guest state and active authority; includes a QR code of the guest's implicit account
// @Tags         guest
// @Produce      json
// @Success      200  {object}  model.GuestStatusResponse
// @Router       /guest/status [get]
func (h *GuestHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	resp, err := h.app.Status()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// WalletSignIn handles POST /wallet/signin
// @Summary      Sign in with a wallet account
// @Description  Loads a credentials file {account_id, public_key, private_key}. Sealed files are opened with the store passphrase.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.WalletSignInRequest  true  "Credentials file"
// @Success      200      {object}  model.WalletSignInResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallet/signin [post]
func (h *GuestHandler) WalletSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.WalletSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Get password as []byte, use it, then zero it immediately
	passwordBytes, _ := config.GetStorePasswordBytes()
	defer clear(passwordBytes)

	resp, err := h.app.SignInWallet(req.CredentialsPath, passwordBytes)
	if err != nil {
		status, code := errorStatus(err)
		if status == http.StatusInternalServerError {
			status, code = http.StatusBadRequest, "invalid_credentials"
		}
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// WalletSignOut handles POST /wallet/signout
// @Summary      Sign the wallet out
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.WalletSignInResponse
// @Router       /wallet/signout [post]
func (h *GuestHandler) WalletSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	writeJSON(w, http.StatusOK, h.app.SignOutWallet())
}
