// Package contract calls the NFT contract on behalf of a wallet account or a
// guest key and turns chain failures into typed errors.
package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/AlexZinkM/guest-wallet/internal/client"
	"github.com/AlexZinkM/guest-wallet/internal/common"
	"github.com/AlexZinkM/guest-wallet/internal/keys"
	"github.com/AlexZinkM/guest-wallet/internal/logger"
	"github.com/AlexZinkM/guest-wallet/internal/metrics"
)

// Contract methods.
const (
	MethodMintToken        = "mint_token"
	MethodGuestMint        = "guest_mint"
	MethodTransfer         = "transfer"
	MethodSetPrice         = "set_price"
	MethodPurchase         = "purchase"
	MethodWithdraw         = "withdraw"
	MethodGetTokenOwner    = "get_token_owner"
	MethodGetTokenData     = "get_token_data"
	MethodGetTokenMetadata = "get_token_metadata"
	MethodGetNumTokens     = "get_num_tokens"
	MethodGetProceeds      = "get_proceeds"
	MethodGetPrice         = "get_price"
)

// Chain is the chain access the invoker needs; client.NearClient implements it.
type Chain interface {
	ViewFunction(ctx context.Context, contractID, method string, args []byte) (json.RawMessage, error)
	CallFunction(ctx context.Context, signer client.Signer, receiverID, method string, args []byte, gas uint64, deposit *big.Int) (json.RawMessage, error)
}

// IdentityKind is the kind of caller.
type IdentityKind int

const (
	IdentityWallet IdentityKind = iota + 1
	IdentityGuest
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityWallet:
		return "wallet"
	case IdentityGuest:
		return "guest"
	default:
		return "none"
	}
}

// Identity is the caller of a change method. For a wallet AccountID is the
// named account holding Key. For a guest AccountID is the implicit account of
// Key, and transactions are signed by the contract account with the guest's
// function-call access key.
type Identity struct {
	Kind      IdentityKind
	AccountID string
	Key       *keys.KeyPair
}

// Owner is the account that owns what this identity mints or buys.
func (id Identity) Owner() string {
	return id.AccountID
}

// TokenData is the answer of get_token_data.
type TokenData struct {
	OwnerID  string   `json:"owner_id"`
	Metadata string   `json:"metadata"`
	Price    *big.Int `json:"-"`
}

// Invoker issues contract calls.
type Invoker struct {
	chain      Chain
	contractID string
	gas        uint64
}

// NewInvoker creates an invoker for contractID with a gas budget per call.
func NewInvoker(chain Chain, contractID string, gas uint64) *Invoker {
	return &Invoker{chain: chain, contractID: contractID, gas: gas}
}

func (inv *Invoker) signer(id Identity) (client.Signer, error) {
	if id.Key == nil || id.AccountID == "" {
		return client.Signer{}, fmt.Errorf("no signing key")
	}
	switch id.Kind {
	case IdentityWallet:
		return client.Signer{AccountID: id.AccountID, Key: id.Key}, nil
	case IdentityGuest:
		return client.Signer{AccountID: inv.contractID, Key: id.Key}, nil
	default:
		return client.Signer{}, fmt.Errorf("unknown identity kind %d", id.Kind)
	}
}

// Invoke calls a change method. args is the JSON argument object; deposit may be nil.
func (inv *Invoker) Invoke(ctx context.Context, id Identity, method string, args []byte, deposit *big.Int) (json.RawMessage, error) {
	signer, err := inv.signer(id)
	if err != nil {
		return nil, inv.fail(method, &Error{Kind: KindUnauthorized, Method: method, Message: err.Error()})
	}

	log := logger.Get().With().
		Str("method", method).
		Str("identity", id.Kind.String()).
		Str("account_id", id.AccountID).
		Logger()

	start := time.Now()
	out, err := inv.chain.CallFunction(ctx, signer, inv.contractID, method, args, inv.gas, deposit)
	metrics.ContractCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		ce := classify(method, err)
		log.Warn().Str("kind", ce.Kind.String()).Str("error", ce.Message).Msg("contract call failed")
		return nil, inv.fail(method, ce)
	}

	log.Debug().Dur("took", time.Since(start)).Msg("contract call succeeded")
	metrics.ContractCallsTotal.WithLabelValues(method, "ok").Inc()
	return out, nil
}

// View calls a read-only method.
func (inv *Invoker) View(ctx context.Context, method string, args []byte) (json.RawMessage, error) {
	start := time.Now()
	out, err := inv.chain.ViewFunction(ctx, inv.contractID, method, args)
	metrics.ContractCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, inv.fail(method, classify(method, err))
	}
	metrics.ContractCallsTotal.WithLabelValues(method, "ok").Inc()
	return out, nil
}

func (inv *Invoker) fail(method string, ce *Error) error {
	metrics.ContractCallsTotal.WithLabelValues(method, ce.Kind.String()).Inc()
	return ce
}

// MintMethod returns the mint entry point for an identity kind.
func MintMethod(kind IdentityKind) string {
	if kind == IdentityGuest {
		return MethodGuestMint
	}
	return MethodMintToken
}

// Mint mints a token owned by the caller. Guests go through guest_mint, which
// enforces a per-key cap.
func (inv *Invoker) Mint(ctx context.Context, id Identity, metadata string) (uint64, error) {
	method := MintMethod(id.Kind)
	if strings.TrimSpace(metadata) == "" {
		return 0, inv.fail(method, &Error{Kind: KindInvalidArgument, Method: method, Message: "metadata is required"})
	}

	args, err := json.Marshal(map[string]string{
		"owner_id": id.Owner(),
		"metadata": metadata,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal mint args: %w", err)
	}

	out, err := inv.Invoke(ctx, id, method, args, nil)
	if err != nil {
		return 0, err
	}
	return parseTokenID(method, out)
}

// Transfer moves a token owned by the caller to newOwnerID.
func (inv *Invoker) Transfer(ctx context.Context, id Identity, tokenID uint64, newOwnerID string) error {
	args, err := json.Marshal(map[string]interface{}{
		"new_owner_id": newOwnerID,
		"token_id":     tokenID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal transfer args: %w", err)
	}
	_, err = inv.Invoke(ctx, id, MethodTransfer, args, nil)
	return err
}

// SetPrice puts a token up for sale at price yoctoNEAR. Zero takes it off sale.
func (inv *Invoker) SetPrice(ctx context.Context, id Identity, tokenID uint64, price *big.Int) error {
	if price == nil || price.Sign() < 0 {
		return inv.fail(MethodSetPrice, &Error{Kind: KindInvalidArgument, Method: MethodSetPrice, Message: "price must not be negative"})
	}
	args, err := json.Marshal(map[string]interface{}{
		"token_id": tokenID,
		"amount":   price.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal set_price args: %w", err)
	}
	_, err = inv.Invoke(ctx, id, MethodSetPrice, args, nil)
	return err
}

// Purchase buys a token for the caller, attaching its current price.
func (inv *Invoker) Purchase(ctx context.Context, id Identity, tokenID uint64) (*big.Int, error) {
	price, err := inv.GetPrice(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if price.Sign() == 0 {
		return nil, inv.fail(MethodPurchase, &Error{Kind: KindNotForSale, Method: MethodPurchase, Message: "not for sale"})
	}

	args, err := json.Marshal(map[string]interface{}{
		"new_owner_id": id.Owner(),
		"token_id":     tokenID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal purchase args: %w", err)
	}
	if _, err := inv.Invoke(ctx, id, MethodPurchase, args, price); err != nil {
		return nil, err
	}
	return price, nil
}

// Withdraw pays out the proceeds of accountID, the caller's account when empty.
func (inv *Invoker) Withdraw(ctx context.Context, id Identity, accountID string) error {
	if accountID == "" {
		accountID = id.Owner()
	}
	args, err := json.Marshal(map[string]string{"account_id": accountID})
	if err != nil {
		return fmt.Errorf("failed to marshal withdraw args: %w", err)
	}
	_, err = inv.Invoke(ctx, id, MethodWithdraw, args, nil)
	return err
}

func tokenArgs(tokenID uint64) []byte {
	return []byte(fmt.Sprintf(`{"token_id":%d}`, tokenID))
}

// GetTokenOwner returns the owner account of a token.
func (inv *Invoker) GetTokenOwner(ctx context.Context, tokenID uint64) (string, error) {
	out, err := inv.View(ctx, MethodGetTokenOwner, tokenArgs(tokenID))
	if err != nil {
		return "", err
	}
	return parseString(MethodGetTokenOwner, out)
}

// GetTokenMetadata returns the metadata string of a token.
func (inv *Invoker) GetTokenMetadata(ctx context.Context, tokenID uint64) (string, error) {
	out, err := inv.View(ctx, MethodGetTokenMetadata, tokenArgs(tokenID))
	if err != nil {
		return "", err
	}
	return parseString(MethodGetTokenMetadata, out)
}

// GetTokenData returns owner, metadata and price of a token in one view.
func (inv *Invoker) GetTokenData(ctx context.Context, tokenID uint64) (*TokenData, error) {
	out, err := inv.View(ctx, MethodGetTokenData, tokenArgs(tokenID))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(out) || !gjson.ParseBytes(out).IsObject() {
		return nil, badResult(MethodGetTokenData, out)
	}

	parsed := gjson.ParseBytes(out)
	data := &TokenData{
		OwnerID:  parsed.Get("owner_id").String(),
		Metadata: parsed.Get("metadata").String(),
		Price:    new(big.Int),
	}
	if price := parsed.Get("price"); price.Exists() {
		p, err := parseU128(MethodGetTokenData, []byte(price.Raw))
		if err != nil {
			return nil, err
		}
		data.Price = p
	}
	return data, nil
}

// GetNumTokens returns the number of minted tokens; ids run from 1 to it.
func (inv *Invoker) GetNumTokens(ctx context.Context) (uint64, error) {
	out, err := inv.View(ctx, MethodGetNumTokens, nil)
	if err != nil {
		return 0, err
	}
	return parseTokenID(MethodGetNumTokens, out)
}

// GetPrice returns the sale price of a token in yoctoNEAR, zero when not for sale.
func (inv *Invoker) GetPrice(ctx context.Context, tokenID uint64) (*big.Int, error) {
	out, err := inv.View(ctx, MethodGetPrice, tokenArgs(tokenID))
	if err != nil {
		return nil, err
	}
	return parseU128(MethodGetPrice, out)
}

// GetProceeds returns the withdrawable balance of accountID in yoctoNEAR.
func (inv *Invoker) GetProceeds(ctx context.Context, accountID string) (*big.Int, error) {
	args, err := json.Marshal(map[string]string{"account_id": accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal get_proceeds args: %w", err)
	}
	out, err := inv.View(ctx, MethodGetProceeds, args)
	if err != nil {
		return nil, err
	}
	return parseU128(MethodGetProceeds, out)
}

func badResult(method string, out []byte) error {
	return &Error{Kind: KindRejected, Method: method, Message: fmt.Sprintf("unexpected result %q", string(out))}
}

func parseTokenID(method string, out []byte) (uint64, error) {
	r := gjson.ParseBytes(out)
	switch r.Type {
	case gjson.Number:
		return r.Uint(), nil
	case gjson.String:
		var id uint64
		if _, err := fmt.Sscan(r.Str, &id); err == nil {
			return id, nil
		}
	}
	return 0, badResult(method, out)
}

func parseString(method string, out []byte) (string, error) {
	r := gjson.ParseBytes(out)
	if r.Type != gjson.String {
		return "", badResult(method, out)
	}
	return r.Str, nil
}

// parseU128 accepts both a JSON number and the quoted U128 form.
func parseU128(method string, out []byte) (*big.Int, error) {
	r := gjson.ParseBytes(out)
	var digits string
	switch r.Type {
	case gjson.Number:
		digits = r.Raw
	case gjson.String:
		digits = r.Str
	case gjson.Null:
		return new(big.Int), nil
	default:
		return nil, badResult(method, out)
	}
	v, err := common.ParseYocto(digits)
	if err != nil {
		return nil, badResult(method, out)
	}
	return v, nil
}
