package model

// MintRequest represents request for POST /contract/mint
type MintRequest struct {
	Metadata string `json:"metadata" validate:"required,max=2048"`
}

// MintResponse represents response for POST /contract/mint
type MintResponse struct {
	TokenID uint64 `json:"tokenId"`
	OwnerID string `json:"ownerId"`
	Method  string `json:"method"`
}

// TransferRequest represents request for POST /contract/transfer
type TransferRequest struct {
	TokenID    uint64 `json:"tokenId" validate:"required"`
	NewOwnerID string `json:"newOwnerId" validate:"required"`
}

// SetPriceRequest represents request for POST /contract/price
type SetPriceRequest struct {
	TokenID uint64 `json:"tokenId" validate:"required"`
	Amount  string `json:"amount" validate:"required,numeric_amount"` // NEAR, e.g. "1.5"
}

// PurchaseRequest represents request for POST /contract/purchase
type PurchaseRequest struct {
	TokenID uint64 `json:"tokenId" validate:"required"`
}

// WithdrawRequest represents request for POST /contract/withdraw
type WithdrawRequest struct {
	Beneficiary string `json:"beneficiary,omitempty"`
}

// TxResponse represents response for change calls without a return value
type TxResponse struct {
	Success bool   `json:"success"`
	Method  string `json:"method"`
}

// ProceedsResponse represents response for GET /contract/proceeds
type ProceedsResponse struct {
	AccountID string `json:"accountId"`
	Yocto     string `json:"yocto"`
	NEAR      string `json:"near"`
}
