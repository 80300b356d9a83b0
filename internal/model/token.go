package model

import (
	"fmt"

	"github.com/AlexZinkM/guest-wallet/internal/common"
)

// Token is one NFT as read from the contract views.
type Token struct {
	ID       uint64 `json:"tokenId"`
	OwnerID  string `json:"ownerId"`
	Metadata string `json:"metadata"`
	Price    string `json:"price"` // NEAR, "0" when not for sale
}

// TokenListRequest represents request parameters for GET /contract/tokens
type TokenListRequest struct {
	Owner    *string `form:"owner"`
	Contains *string `form:"contains"`
	FromID   *uint64 `form:"fromId"`
	ToID     *uint64 `form:"toId"`
	MinPrice *string `form:"minPrice"` // NEAR
	MaxPrice *string `form:"maxPrice"` // NEAR
	Mine     bool    `form:"mine"`
}

// TokenListResponse represents response for GET /contract/tokens
type TokenListResponse struct {
	Total  uint64  `json:"total"`
	Tokens []Token `json:"tokens"`
}

// Validate validates TokenListRequest filter parameters.
func (r *TokenListRequest) Validate() error {
	if r.FromID != nil && *r.FromID == 0 {
		return fmt.Errorf("fromId must be at least 1")
	}
	if r.FromID != nil && r.ToID != nil && *r.ToID < *r.FromID {
		return fmt.Errorf("toId must be greater than or equal to fromId")
	}
	for name, v := range map[string]*string{"minPrice": r.MinPrice, "maxPrice": r.MaxPrice} {
		if v == nil {
			continue
		}
		if _, err := common.NEARToYocto(*v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if r.Mine && r.Owner != nil {
		return fmt.Errorf("owner and mine are mutually exclusive")
	}
	return nil
}
