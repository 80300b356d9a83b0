package contract

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/guest-wallet/internal/client"
	"github.com/AlexZinkM/guest-wallet/internal/keys"
)

const (
	contractID    = "nft.testnet"
	freeMintLimit = 2
)

// fakeChain is an in-memory NFT contract with the same panics as the real one.
type fakeChain struct {
	mu        sync.Mutex
	owners    map[uint64]string
	metadata  map[uint64]string
	prices    map[uint64]*big.Int
	proceeds  map[string]*big.Int
	minted    map[string]int
	lastToken uint64
	calls     []string
	down      bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		owners:   map[uint64]string{},
		metadata: map[uint64]string{},
		prices:   map[uint64]*big.Int{},
		proceeds: map[string]*big.Int{},
		minted:   map[string]int{},
	}
}

func panicErr(method, msg string) error {
	return &client.ChainError{Method: method, Message: msg}
}

func (f *fakeChain) ViewFunction(_ context.Context, _ string, method string, args []byte) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, fmt.Errorf("%w: dial tcp: connection refused", client.ErrNodeUnreachable)
	}

	var a struct {
		TokenID   uint64 `json:"token_id"`
		AccountID string `json:"account_id"`
	}
	if len(args) > 0 {
		_ = json.Unmarshal(args, &a)
	}

	switch method {
	case MethodGetTokenOwner, MethodGetTokenMetadata:
		owner, ok := f.owners[a.TokenID]
		if !ok {
			return nil, panicErr(method, "No owner of the token ID specified")
		}
		if method == MethodGetTokenOwner {
			return json.Marshal(owner)
		}
		return json.Marshal(f.metadata[a.TokenID])
	case MethodGetTokenData:
		owner, ok := f.owners[a.TokenID]
		if !ok {
			return nil, panicErr(method, "No owner of the token ID specified")
		}
		return []byte(fmt.Sprintf(`{"owner_id":%q,"metadata":%q,"price":"%s"}`, owner, f.metadata[a.TokenID], f.price(a.TokenID))), nil
	case MethodGetPrice:
		return []byte(f.price(a.TokenID).String()), nil
	case MethodGetNumTokens:
		return []byte(fmt.Sprint(f.lastToken)), nil
	case MethodGetProceeds:
		p := f.proceeds[a.AccountID]
		if p == nil {
			p = new(big.Int)
		}
		return []byte(`"` + p.String() + `"`), nil
	}
	return nil, panicErr(method, "MethodNotFound")
}

func (f *fakeChain) price(tokenID uint64) *big.Int {
	if p := f.prices[tokenID]; p != nil {
		return p
	}
	return new(big.Int)
}

func (f *fakeChain) CallFunction(_ context.Context, signer client.Signer, _ string, method string, args []byte, _ uint64, deposit *big.Int) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	if f.down {
		return nil, fmt.Errorf("%w: dial tcp: connection refused", client.ErrNodeUnreachable)
	}

	pub := signer.Key.PublicKey()
	implicit := hex.EncodeToString(pub[:])
	onlyOwner := func(account string) error {
		if signer.AccountID != account && implicit != account {
			return panicErr(method, "Attempt to call transfer on tokens belonging to another account.")
		}
		return nil
	}

	switch method {
	case MethodGuestMint, MethodMintToken:
		var a struct {
			OwnerID  *string `json:"owner_id"`
			Metadata *string `json:"metadata"`
		}
		if err := json.Unmarshal(args, &a); err != nil || a.OwnerID == nil || a.Metadata == nil {
			return nil, panicErr(method, "Failed to deserialize input from JSON.")
		}
		if signer.AccountID != contractID {
			return nil, panicErr(method, "Only contract owner can call this method.")
		}
		if method == MethodGuestMint {
			key := signer.Key.PublicKeyString()
			if f.minted[key]+1 > freeMintLimit {
				return nil, panicErr(method, "Out of free mints")
			}
			f.minted[key]++
		}
		f.lastToken++
		f.owners[f.lastToken] = *a.OwnerID
		f.metadata[f.lastToken] = *a.Metadata
		return []byte(fmt.Sprint(f.lastToken)), nil

	case MethodTransfer, MethodSetPrice, MethodPurchase:
		var a struct {
			TokenID    uint64 `json:"token_id"`
			NewOwnerID string `json:"new_owner_id"`
			Amount     string `json:"amount"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, panicErr(method, "Failed to deserialize input from JSON.")
		}
		owner, ok := f.owners[a.TokenID]
		if !ok {
			return nil, panicErr(method, "No owner of the token ID specified")
		}
		switch method {
		case MethodTransfer:
			if err := onlyOwner(owner); err != nil {
				return nil, err
			}
			f.owners[a.TokenID] = a.NewOwnerID
		case MethodSetPrice:
			if err := onlyOwner(owner); err != nil {
				return nil, err
			}
			p, _ := new(big.Int).SetString(a.Amount, 10)
			f.prices[a.TokenID] = p
		case MethodPurchase:
			price := f.price(a.TokenID)
			if price.Sign() == 0 {
				return nil, panicErr(method, "not for sale")
			}
			if deposit == nil || deposit.Cmp(price) != 0 {
				return nil, panicErr(method, "deposit != price")
			}
			bal := f.proceeds[owner]
			if bal == nil {
				bal = new(big.Int)
			}
			f.proceeds[owner] = new(big.Int).Add(bal, deposit)
			f.owners[a.TokenID] = a.NewOwnerID
		}
		return nil, nil

	case MethodWithdraw:
		var a struct {
			AccountID string `json:"account_id"`
		}
		_ = json.Unmarshal(args, &a)
		if err := onlyOwner(a.AccountID); err != nil {
			return nil, err
		}
		if p := f.proceeds[a.AccountID]; p == nil || p.Sign() == 0 {
			return nil, panicErr(method, "nothing to withdraw")
		}
		delete(f.proceeds, a.AccountID)
		return nil, nil
	}
	return nil, panicErr(method, "MethodNotFound")
}

func guestIdentity(t *testing.T) Identity {
	t.Helper()
	kp, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)
	return Identity{Kind: IdentityGuest, AccountID: kp.ImplicitAccountID(), Key: kp}
}

func walletIdentity(t *testing.T, account string) Identity {
	t.Helper()
	kp, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)
	return Identity{Kind: IdentityWallet, AccountID: account, Key: kp}
}

func TestMint_Routing(t *testing.T) {
	chain := newFakeChain()
	inv := NewInvoker(chain, contractID, 300_000_000_000_000)

	guest := guestIdentity(t)
	id, err := inv.Mint(context.Background(), guest, "hello")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	owner, err := inv.GetTokenOwner(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, guest.AccountID, owner)

	contractOwner := walletIdentity(t, contractID)
	id, err = inv.Mint(context.Background(), contractOwner, "world")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)

	assert.Equal(t, []string{MethodGuestMint, MethodMintToken}, chain.calls)
}

func TestMint_WalletNotContractOwner(t *testing.T) {
	inv := NewInvoker(newFakeChain(), contractID, 1)
	_, err := inv.Mint(context.Background(), walletIdentity(t, "alice.testnet"), "x")
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestGuestMint_TwoThenMissingField(t *testing.T) {
	chain := newFakeChain()
	inv := NewInvoker(chain, contractID, 1)
	guest := guestIdentity(t)
	secretBefore := guest.Key.SecretKeyString()

	for i := 0; i < 2; i++ {
		_, err := inv.Mint(context.Background(), guest, fmt.Sprintf("token %d", i))
		require.NoError(t, err)
	}

	args, err := json.Marshal(map[string]string{"owner_id": guest.AccountID})
	require.NoError(t, err)
	_, err = inv.Invoke(context.Background(), guest, MethodGuestMint, args, nil)
	require.Error(t, err)

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindInvalidArgument, ce.Kind)
	assert.Equal(t, MethodGuestMint, ce.Method)

	// the identity used for the call is untouched
	assert.Equal(t, secretBefore, guest.Key.SecretKeyString())
}

func TestGuestMint_LimitExceeded(t *testing.T) {
	inv := NewInvoker(newFakeChain(), contractID, 1)
	guest := guestIdentity(t)

	for i := 0; i < freeMintLimit; i++ {
		_, err := inv.Mint(context.Background(), guest, "m")
		require.NoError(t, err)
	}
	_, err := inv.Mint(context.Background(), guest, "m")
	assert.True(t, IsKind(err, KindLimitExceeded))
}

func TestMint_EmptyMetadata(t *testing.T) {
	chain := newFakeChain()
	inv := NewInvoker(chain, contractID, 1)
	_, err := inv.Mint(context.Background(), guestIdentity(t), "  ")
	assert.True(t, IsKind(err, KindInvalidArgument))
	assert.Empty(t, chain.calls)
}

func TestInvoke_NoKey(t *testing.T) {
	inv := NewInvoker(newFakeChain(), contractID, 1)
	_, err := inv.Invoke(context.Background(), Identity{Kind: IdentityGuest}, MethodGuestMint, []byte(`{}`), nil)
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestTransferAndSale(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	inv := NewInvoker(chain, contractID, 1)
	seller := guestIdentity(t)
	buyer := walletIdentity(t, "bob.testnet")

	id, err := inv.Mint(ctx, seller, "art")
	require.NoError(t, err)

	_, err = inv.Purchase(ctx, buyer, id)
	assert.True(t, IsKind(err, KindNotForSale))

	err = inv.SetPrice(ctx, buyer, id, big.NewInt(10))
	assert.True(t, IsKind(err, KindUnauthorized))

	require.NoError(t, inv.SetPrice(ctx, seller, id, big.NewInt(10)))
	price, err := inv.GetPrice(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "10", price.String())

	paid, err := inv.Purchase(ctx, buyer, id)
	require.NoError(t, err)
	assert.Equal(t, "10", paid.String())

	owner, err := inv.GetTokenOwner(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bob.testnet", owner)

	proceeds, err := inv.GetProceeds(ctx, seller.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "10", proceeds.String())

	require.NoError(t, inv.Withdraw(ctx, seller, ""))
	err = inv.Withdraw(ctx, seller, "")
	assert.True(t, IsKind(err, KindNothingToWithdraw))

	require.NoError(t, inv.Transfer(ctx, buyer, id, "carol.testnet"))
	err = inv.Transfer(ctx, buyer, id, "bob.testnet")
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestSetPrice_Negative(t *testing.T) {
	inv := NewInvoker(newFakeChain(), contractID, 1)
	err := inv.SetPrice(context.Background(), guestIdentity(t), 1, big.NewInt(-1))
	assert.True(t, IsKind(err, KindInvalidArgument))
}

func TestViews(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	inv := NewInvoker(chain, contractID, 1)
	guest := guestIdentity(t)

	n, err := inv.GetNumTokens(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = inv.GetTokenOwner(ctx, 1)
	assert.True(t, IsKind(err, KindNotFound))

	id, err := inv.Mint(ctx, guest, "meta")
	require.NoError(t, err)

	n, err = inv.GetNumTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	meta, err := inv.GetTokenMetadata(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "meta", meta)

	data, err := inv.GetTokenData(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, guest.AccountID, data.OwnerID)
	assert.Equal(t, "meta", data.Metadata)
	assert.Zero(t, data.Price.Sign())
}

func TestTransportError(t *testing.T) {
	chain := newFakeChain()
	chain.down = true
	inv := NewInvoker(chain, contractID, 1)

	_, err := inv.GetNumTokens(context.Background())
	assert.True(t, IsKind(err, KindTransport))
	assert.True(t, errors.Is(err, client.ErrNodeUnreachable))

	_, err = inv.Mint(context.Background(), guestIdentity(t), "m")
	assert.True(t, IsKind(err, KindTransport))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{context.DeadlineExceeded, KindTransport},
		{fmt.Errorf("wrap: %w", client.ErrAccessKeyNotFound), KindUnauthorized},
		{panicErr("m", "Out of free mints"), KindLimitExceeded},
		{panicErr("m", "No message with that id"), KindNotFound},
		{panicErr("m", "deposit != price"), KindDepositMismatch},
		{panicErr("m", "something odd"), KindRejected},
		{&client.ChainError{Method: "m", Message: "{}", Raw: `{"InvalidTxError":{"InvalidAccessKeyError":{"MethodNameMismatch":{"method_name":"transfer"}}}}`}, KindUnauthorized},
		{errors.New("boom"), KindUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, classify("m", c.err).Kind, c.err.Error())
	}
}

func TestParseU128(t *testing.T) {
	v, err := parseU128("get_price", []byte(`340282366920938463463374607431768211455`))
	require.NoError(t, err)
	assert.Equal(t, "340282366920938463463374607431768211455", v.String())

	v, err = parseU128("get_proceeds", []byte(`"42"`))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())

	_, err = parseU128("get_price", []byte(`{"a":1}`))
	require.Error(t, err)

	_, err = parseU128("get_price", []byte(`"-5"`))
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindRejected, cerr.Kind)
}
