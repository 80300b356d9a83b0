// Package near composes the guest session, the wallet session and the NFT
// contract into the operations exposed by the CLI and the HTTP API.
package near

import (
	"context"
	"errors"

	"github.com/AlexZinkM/guest-wallet/internal/contract"
	"github.com/AlexZinkM/guest-wallet/internal/session"
)

// ErrNotSignedIn is returned by change calls when neither a wallet nor a
// guest session is active.
var ErrNotSignedIn = errors.New("sign in with a wallet or as a guest first")

// ErrRevokeDisabled is returned by Revoke unless revoking was enabled.
var ErrRevokeDisabled = errors.New("revoking guest keys is disabled")

// App is the application facade.
type App struct {
	manager     *session.Manager
	invoker     *contract.Invoker
	allowRevoke bool
}

// New creates the facade. The manager must already be loaded.
func New(manager *session.Manager, invoker *contract.Invoker, allowRevoke bool) *App {
	return &App{manager: manager, invoker: invoker, allowRevoke: allowRevoke}
}

// Manager returns the session manager.
func (a *App) Manager() *session.Manager {
	return a.manager
}

// withIdentity runs fn under the busy guard with the active identity.
func (a *App) withIdentity(fn func(id contract.Identity) error) error {
	release, err := a.manager.Acquire()
	if err != nil {
		return err
	}
	defer release()

	id, err := a.identity()
	if err != nil {
		return err
	}
	defer id.Key.Wipe()
	return fn(id)
}

func (a *App) identity() (contract.Identity, error) {
	auth, err := a.manager.Authority()
	if err != nil {
		return contract.Identity{}, err
	}
	switch auth.Kind {
	case session.AuthorityWallet:
		return contract.Identity{Kind: contract.IdentityWallet, AccountID: auth.AccountID, Key: auth.Key}, nil
	case session.AuthorityGuest:
		return contract.Identity{Kind: contract.IdentityGuest, AccountID: auth.AccountID, Key: auth.Key}, nil
	default:
		return contract.Identity{}, ErrNotSignedIn
	}
}

// accountID returns the active account without taking the busy guard.
func (a *App) accountID() (string, error) {
	snap := a.manager.Snapshot()
	switch snap.Authority() {
	case session.AuthorityWallet:
		return snap.WalletAccountID, nil
	case session.AuthorityGuest:
		return snap.Credential.DerivedAccountID, nil
	default:
		return "", ErrNotSignedIn
	}
}

func background(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
