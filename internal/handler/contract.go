package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/AlexZinkM/guest-wallet/internal/model"
	"github.com/AlexZinkM/guest-wallet/near"
)

// ContractHandler serves NFT contract endpoints for the active account.
type ContractHandler struct {
	app       *near.App
	validator *requestValidator
}

// NewContractHandler creates a new ContractHandler.
func NewContractHandler(app *near.App) *ContractHandler {
	return &ContractHandler{app: app, validator: newValidator()}
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *ContractHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return false
	}
	return true
}

// Mint handles POST /contract/mint
// @Summary      Mint a token
// @Description  Mints a token owned by the active account. Guests use guest_mint (limited free mints per key), wallets use mint_token.
// @Tags         contract
// @Accept       json
// @Produce      json
// @Param        request  body      model.MintRequest  true  "Token metadata"
// @Success      200      {object}  model.MintResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      429      {object}  model.ErrorResponse
// @Router       /contract/mint [post]
func (h *ContractHandler) Mint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.MintRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.app.Mint(r.Context(), req.Metadata)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Transfer handles POST /contract/transfer
// @Summary      Transfer a token
// @Tags         contract
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransferRequest  true  "Token and new owner"
// @Success      200      {object}  model.TxResponse
// @Failure      403      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /contract/transfer [post]
func (h *ContractHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.TransferRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.app.Transfer(r.Context(), req.TokenID, req.NewOwnerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetPrice handles POST /contract/price
// @Summary      Set a token's sale price
// @Description  Amount in NEAR; "0" takes the token off sale
// @Tags         contract
// @Accept       json
// @Produce      json
// @Param        request  body      model.SetPriceRequest  true  "Token and price"
// @Success      200      {object}  model.TxResponse
// @Router       /contract/price [post]
func (h *ContractHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.SetPriceRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.app.SetPrice(r.Context(), req.TokenID, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Purchase handles POST /contract/purchase
// @Summary      Buy a token at its listed price
// @Tags         contract
// @Accept       json
// @Produce      json
// @Param        request  body      model.PurchaseRequest  true  "Token"
// @Success      200      {object}  model.TxResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /contract/purchase [post]
func (h *ContractHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.PurchaseRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.app.Purchase(r.Context(), req.TokenID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Withdraw handles POST /contract/withdraw
// @Summary      Withdraw sale proceeds
// @Tags         contract
// @Accept       json
// @Produce      json
// @Param        request  body      model.WithdrawRequest  false  "Beneficiary, defaults to the active account"
// @Success      200      {object}  model.TxResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /contract/withdraw [post]
func (h *ContractHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.WithdrawRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}

	resp, err := h.app.Withdraw(r.Context(), req.Beneficiary)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Tokens handles GET /contract/tokens
// @Summary      List tokens
// @Description  Lists tokens with filtering capability, newest first
// @Tags         contract
// @Produce      json
// @Param        owner     query     string  false  "Owner account id"
// @Param        mine      query     bool    false  "Only tokens of the active account"
// @Param        contains  query     string  false  "Metadata substring (case-insensitive)"
// @Param        fromId    query     int     false  "First token id"
// @Param        toId      query     int     false  "Last token id"
// @Param        minPrice  query     string  false  "Minimum price in NEAR"
// @Param        maxPrice  query     string  false  "Maximum price in NEAR"
// @Success      200  {object}  model.TokenListResponse
// @Router       /contract/tokens [get]
func (h *ContractHandler) Tokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	var req model.TokenListRequest
	q := r.URL.Query()

	if owner := q.Get("owner"); owner != "" {
		req.Owner = &owner
	}
	if contains := q.Get("contains"); contains != "" {
		req.Contains = &contains
	}
	for name, dst := range map[string]**uint64{"fromId": &req.FromID, "toId": &req.ToID} {
		s := q.Get(name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid %s: %q", name, s))
			return
		}
		*dst = &v
	}
	if minPrice := q.Get("minPrice"); minPrice != "" {
		req.MinPrice = &minPrice
	}
	if maxPrice := q.Get("maxPrice"); maxPrice != "" {
		req.MaxPrice = &maxPrice
	}
	if mine := q.Get("mine"); mine != "" {
		v, err := strconv.ParseBool(mine)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid mine: %q", mine))
			return
		}
		req.Mine = v
	}

	// Validate
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	resp, err := h.app.ListTokens(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Proceeds handles GET /contract/proceeds
// @Summary      Sale proceeds
// @Tags         contract
// @Produce      json
// @Param        accountId  query     string  false  "Account id, defaults to the active account"
// @Success      200  {object}  model.ProceedsResponse
// @Router       /contract/proceeds [get]
func (h *ContractHandler) Proceeds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	resp, err := h.app.GetProceeds(r.Context(), r.URL.Query().Get("accountId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
