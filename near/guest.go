package near

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/AlexZinkM/guest-wallet/internal/model"
	"github.com/AlexZinkM/guest-wallet/internal/session"
)

func (a *App) accessResponse(message string) *model.GuestAccessResponse {
	return &model.GuestAccessResponse{
		Success: true,
		Message: message,
		State:   a.manager.Snapshot().State.String(),
	}
}

// RequestGuestAccess creates a guest credential, or signs the existing one in.
func (a *App) RequestGuestAccess(ctx context.Context) (*model.GuestAccessResponse, error) {
	if err := a.manager.RequestGuestAccess(background(ctx)); err != nil {
		return nil, err
	}
	return a.accessResponse("guest access granted"), nil
}

// SignIn signs the stored guest credential in.
func (a *App) SignIn(ctx context.Context) (*model.GuestAccessResponse, error) {
	if err := a.manager.SignIn(background(ctx)); err != nil {
		return nil, err
	}
	return a.accessResponse("signed in"), nil
}

// SignOut signs the guest credential out. The key stays stored.
func (a *App) SignOut() (*model.GuestAccessResponse, error) {
	if err := a.manager.SignOut(); err != nil {
		return nil, err
	}
	return a.accessResponse("signed out"), nil
}

// Revoke removes every guest key at the issuer and the local credential.
func (a *App) Revoke(ctx context.Context) (*model.GuestAccessResponse, error) {
	if !a.allowRevoke {
		return nil, ErrRevokeDisabled
	}
	if err := a.manager.Revoke(background(ctx)); err != nil {
		return nil, err
	}
	return a.accessResponse("guest keys revoked"), nil
}

// Status describes the session. When a guest credential exists the response
// carries a QR code of its implicit account, which can be used to fund it.
func (a *App) Status() (*model.GuestStatusResponse, error) {
	snap := a.manager.Snapshot()
	resp := &model.GuestStatusResponse{
		State:     snap.State.String(),
		Authority: snap.Authority().String(),
	}

	switch {
	case snap.WalletAccountID != "":
		resp.AccountID = snap.WalletAccountID
	case snap.Credential != nil:
		resp.AccountID = snap.Credential.DerivedAccountID
		resp.PublicKey = snap.Credential.PublicKey
		qr, err := generateQRCode(snap.Credential.DerivedAccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR code: %w", err)
		}
		resp.QR = qr
	}
	return resp, nil
}

// SignInWallet loads a credentials file and activates the wallet session.
// password must be []byte for security (caller should zero it after use)
func (a *App) SignInWallet(path string, password []byte) (*model.WalletSignInResponse, error) {
	account, err := session.LoadWalletAccount(path, password)
	if err != nil {
		return nil, err
	}
	if err := a.manager.SignInWallet(account); err != nil {
		return nil, err
	}
	return &model.WalletSignInResponse{Success: true, AccountID: account.AccountID}, nil
}

// SignOutWallet ends the wallet session.
func (a *App) SignOutWallet() *model.WalletSignInResponse {
	a.manager.SignOutWallet()
	return &model.WalletSignInResponse{Success: true}
}

// generateQRCode generates QR code of an account id in base64
func generateQRCode(accountID string) (string, error) {
	qr, err := qrcode.New(accountID, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
