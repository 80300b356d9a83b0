package issuer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/AlexZinkM/guest-wallet/internal/client"
	"github.com/AlexZinkM/guest-wallet/internal/common"
	"github.com/AlexZinkM/guest-wallet/internal/contract"
	"github.com/AlexZinkM/guest-wallet/internal/keys"
)

// GuestMethods are the contract methods a guest key may call.
var GuestMethods = []string{
	contract.MethodGuestMint,
	contract.MethodTransfer,
	contract.MethodSetPrice,
	contract.MethodPurchase,
	contract.MethodWithdraw,
}

const defaultAllowance = "0.25"

// Authorizer mirrors registry changes onto the application account.
type Authorizer interface {
	Authorize(ctx context.Context, publicKey string) error
	Revoke(ctx context.Context, publicKeys []string) error
}

// NoopAuthorizer only keeps the registry; keys are not added on chain.
type NoopAuthorizer struct{}

func (NoopAuthorizer) Authorize(context.Context, string) error { return nil }

func (NoopAuthorizer) Revoke(context.Context, []string) error { return nil }

type actionSender interface {
	SendActions(ctx context.Context, signer client.Signer, receiverID string, actions ...client.Action) (*client.TxOutcome, error)
}

// ChainAuthorizer adds guest keys to the application account as function-call
// keys limited to GuestMethods, signing with the account's own key.
type ChainAuthorizer struct {
	sender    actionSender
	account   client.Signer
	allowance *big.Int
}

// NewChainAuthorizer builds an authorizer for accountID. secretKey is the
// account's "ed25519:<base58>" full-access key.
func NewChainAuthorizer(sender actionSender, accountID, secretKey string) (*ChainAuthorizer, error) {
	if accountID == "" {
		return nil, errors.New("application account id is empty")
	}
	kp, err := keys.ParseSecretKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("application key: %w", err)
	}
	allowance, err := common.NEARToYocto(defaultAllowance)
	if err != nil {
		return nil, err
	}
	return &ChainAuthorizer{
		sender:    sender,
		account:   client.Signer{AccountID: accountID, Key: kp},
		allowance: allowance,
	}, nil
}

func (a *ChainAuthorizer) Authorize(ctx context.Context, publicKey string) error {
	pub, err := keys.ParsePublicKey(publicKey)
	if err != nil {
		return err
	}
	_, err = a.sender.SendActions(ctx, a.account, a.account.AccountID, client.AddKeyAction{
		PublicKey:   pub,
		ReceiverID:  a.account.AccountID,
		MethodNames: GuestMethods,
		Allowance:   a.allowance,
	})
	if err != nil {
		return fmt.Errorf("add guest key: %w", err)
	}
	return nil
}

// Revoke deletes the keys in one transaction.
func (a *ChainAuthorizer) Revoke(ctx context.Context, publicKeys []string) error {
	if len(publicKeys) == 0 {
		return nil
	}
	actions := make([]client.Action, 0, len(publicKeys))
	for _, pk := range publicKeys {
		pub, err := keys.ParsePublicKey(pk)
		if err != nil {
			return err
		}
		actions = append(actions, client.DeleteKeyAction{PublicKey: pub})
	}
	if _, err := a.sender.SendActions(ctx, a.account, a.account.AccountID, actions...); err != nil {
		return fmt.Errorf("delete guest keys: %w", err)
	}
	return nil
}
