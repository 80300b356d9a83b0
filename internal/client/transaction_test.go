package client

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/guest-wallet/internal/keys"
)

func TestTransactionSerialize_FunctionCall(t *testing.T) {
	kp, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)
	pub := kp.PublicKey()

	tx := &Transaction{
		SignerID:   "a",
		PublicKey:  pub,
		Nonce:      7,
		ReceiverID: "b",
		BlockHash:  [32]byte{9},
		Actions: []Action{FunctionCallAction{
			MethodName: "m",
			Args:       []byte("{}"),
			Gas:        1,
			Deposit:    big.NewInt(258),
		}},
	}
	got, err := tx.Serialize()
	require.NoError(t, err)

	var want []byte
	want = append(want, 1, 0, 0, 0, 'a')
	want = append(want, 0)
	want = append(want, pub[:]...)
	want = append(want, 7, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, 1, 0, 0, 0, 'b')
	want = append(want, 9)
	want = append(want, make([]byte, 31)...)
	want = append(want, 1, 0, 0, 0)
	want = append(want, actionFunctionCall)
	want = append(want, 1, 0, 0, 0, 'm')
	want = append(want, 2, 0, 0, 0, '{', '}')
	want = append(want, 1, 0, 0, 0, 0, 0, 0, 0)
	deposit := make([]byte, 16)
	deposit[0], deposit[1] = 2, 1
	want = append(want, deposit...)

	assert.Equal(t, want, got)
}

func TestTransactionSerialize_AddAndDeleteKey(t *testing.T) {
	kp, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)
	guest, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)

	tx := &Transaction{
		SignerID:   "nft.testnet",
		PublicKey:  kp.PublicKey(),
		ReceiverID: "nft.testnet",
		Actions: []Action{
			AddKeyAction{PublicKey: guest.PublicKey(), ReceiverID: "nft.testnet", MethodNames: []string{"guest_mint"}},
			AddKeyAction{PublicKey: guest.PublicKey()},
			DeleteKeyAction{PublicKey: guest.PublicKey()},
		},
	}
	got, err := tx.Serialize()
	require.NoError(t, err)

	header := 4 + len("nft.testnet") + 33 + 8 + 4 + len("nft.testnet") + 32 + 4
	limited := 1 + 33 + 8 + 1 + 1 + 4 + len("nft.testnet") + 4 + 4 + len("guest_mint")
	full := 1 + 33 + 8 + 1
	del := 1 + 33
	require.Len(t, got, header+limited+full+del)

	assert.Equal(t, byte(actionAddKey), got[header])
	assert.Equal(t, byte(permissionFunctionCall), got[header+1+33+8])
	assert.Equal(t, byte(actionAddKey), got[header+limited])
	assert.Equal(t, byte(permissionFullAccess), got[header+limited+1+33+8])
	assert.Equal(t, byte(actionDeleteKey), got[header+limited+full])
}

func TestTransactionSerialize_DepositOverflow(t *testing.T) {
	kp, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)

	tooBig := new(big.Int).Lsh(big.NewInt(1), 128)
	tx := &Transaction{
		SignerID:  "a",
		PublicKey: kp.PublicKey(),
		Actions:   []Action{FunctionCallAction{MethodName: "m", Deposit: tooBig}},
	}
	_, err = tx.Serialize()
	require.Error(t, err)

	tx.Actions = []Action{FunctionCallAction{MethodName: "m", Deposit: big.NewInt(-1)}}
	_, err = tx.Serialize()
	require.Error(t, err)
}

func TestTransactionSign(t *testing.T) {
	kp, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)

	tx := &Transaction{
		SignerID:   "nft.testnet",
		PublicKey:  kp.PublicKey(),
		Nonce:      1,
		ReceiverID: "nft.testnet",
		Actions:    []Action{FunctionCallAction{MethodName: "guest_mint", Args: []byte(`{}`), Gas: 30}},
	}
	signed, hash, err := tx.Sign(kp)
	require.NoError(t, err)

	encoded, err := tx.Serialize()
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256(encoded), hash)
	require.Len(t, signed, len(encoded)+1+ed25519.SignatureSize)
	assert.Equal(t, encoded, signed[:len(encoded)])
	assert.Equal(t, byte(keyTypeED25519), signed[len(encoded)])

	pub := kp.PublicKey()
	assert.True(t, ed25519.Verify(pub[:], hash[:], signed[len(encoded)+1:]))
}

func TestTransactionSign_WrongKey(t *testing.T) {
	kp, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)
	other, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)

	tx := &Transaction{SignerID: "a", PublicKey: kp.PublicKey()}
	_, _, err = tx.Sign(other)
	require.Error(t, err)
}

func TestTransactionSerialize_AllowanceLayout(t *testing.T) {
	kp, err := keys.GenerateSeedPhrase()
	require.NoError(t, err)
	pub := kp.PublicKey()

	// 2^64 + 3 needs both halves of the u128
	allowance := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(3))
	got, err := (&Transaction{
		SignerID:  "a",
		PublicKey: pub,
		Actions: []Action{AddKeyAction{
			PublicKey:   pub,
			ReceiverID:  "c",
			MethodNames: []string{"m"},
			Allowance:   allowance,
		}},
	}).Serialize()
	require.NoError(t, err)

	header := 4 + 1 + 33 + 8 + 4 + 32 + 4
	var want []byte
	want = append(want, actionAddKey, keyTypeED25519)
	want = append(want, pub[:]...)
	want = append(want, make([]byte, 8)...)
	want = append(want, permissionFunctionCall, 1)
	want = append(want, 3, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0)
	want = append(want, 1, 0, 0, 0, 'c')
	want = append(want, 1, 0, 0, 0)
	want = append(want, 1, 0, 0, 0, 'm')
	assert.Equal(t, want, got[header:])
}

func TestToUint128(t *testing.T) {
	v, err := toUint128(nil)
	require.NoError(t, err)
	assert.Zero(t, v.Lo)
	assert.Zero(t, v.Hi)

	limit := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	v, err = toUint128(limit)
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), v.Lo)
	assert.Equal(t, ^uint64(0), v.Hi)
	assert.Equal(t, limit.String(), v.BigInt().String())
}
