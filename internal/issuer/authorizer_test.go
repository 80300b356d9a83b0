package issuer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/guest-wallet/internal/client"
	"github.com/AlexZinkM/guest-wallet/internal/keys"
)

type fakeSender struct {
	signer   client.Signer
	receiver string
	actions  []client.Action
	err      error
}

func (f *fakeSender) SendActions(_ context.Context, signer client.Signer, receiverID string, actions ...client.Action) (*client.TxOutcome, error) {
	f.signer, f.receiver, f.actions = signer, receiverID, actions
	if f.err != nil {
		return nil, f.err
	}
	return &client.TxOutcome{Hash: "tx"}, nil
}

func newChainAuthorizer(t *testing.T, sender actionSender) *ChainAuthorizer {
	t.Helper()
	app, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)
	a, err := NewChainAuthorizer(sender, testContract, app.SecretKeyString())
	require.NoError(t, err)
	return a
}

func TestChainAuthorizer_Authorize(t *testing.T) {
	sender := &fakeSender{}
	a := newChainAuthorizer(t, sender)
	guest := newKey(t)

	require.NoError(t, a.Authorize(context.Background(), guest.PublicKeyString()))
	assert.Equal(t, testContract, sender.signer.AccountID)
	assert.Equal(t, testContract, sender.receiver)
	require.Len(t, sender.actions, 1)

	add, ok := sender.actions[0].(client.AddKeyAction)
	require.True(t, ok)
	assert.Equal(t, guest.PublicKey(), add.PublicKey)
	assert.Equal(t, testContract, add.ReceiverID)
	assert.Equal(t, GuestMethods, add.MethodNames)
	assert.Equal(t, "250000000000000000000000", add.Allowance.String())
}

func TestChainAuthorizer_Revoke(t *testing.T) {
	sender := &fakeSender{}
	a := newChainAuthorizer(t, sender)
	g1, g2 := newKey(t), newKey(t)

	require.NoError(t, a.Revoke(context.Background(), nil))
	assert.Nil(t, sender.actions, "no transaction for an empty registry")

	require.NoError(t, a.Revoke(context.Background(), []string{g1.PublicKeyString(), g2.PublicKeyString()}))
	require.Len(t, sender.actions, 2)
	assert.Equal(t, client.DeleteKeyAction{PublicKey: g1.PublicKey()}, sender.actions[0])
	assert.Equal(t, client.DeleteKeyAction{PublicKey: g2.PublicKey()}, sender.actions[1])
}

func TestChainAuthorizer_Errors(t *testing.T) {
	_, err := NewChainAuthorizer(&fakeSender{}, "", "ed25519:x")
	require.Error(t, err)
	_, err = NewChainAuthorizer(&fakeSender{}, testContract, "ed25519:x")
	require.ErrorIs(t, err, keys.ErrInvalidKey)

	sender := &fakeSender{err: errors.New("boom")}
	a := newChainAuthorizer(t, sender)
	require.ErrorContains(t, a.Authorize(context.Background(), newKey(t).PublicKeyString()), "add guest key")
	require.ErrorIs(t, a.Authorize(context.Background(), "garbage"), keys.ErrInvalidKey)
}

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier("none", "", "", 0)
	require.NoError(t, err)
	assert.IsType(t, AllowAll{}, v)

	_, err = NewVerifier("token", "", "", 0)
	require.Error(t, err)
	_, err = NewVerifier("jwt", "", "", 0)
	require.Error(t, err)

	v, err = NewVerifier("pow", "", "", 12)
	require.NoError(t, err)
	assert.Equal(t, PowVerifier{Difficulty: 12}, v)

	_, err = NewVerifier("captcha", "", "", 0)
	require.Error(t, err)
}
