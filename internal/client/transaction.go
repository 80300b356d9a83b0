package client

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/AlexZinkM/guest-wallet/internal/keys"
)

// Borsh enum tags of the chain's Action type.
const (
	actionFunctionCall = 2
	actionAddKey       = 5
	actionDeleteKey    = 6

	keyTypeED25519 = 0

	permissionFunctionCall = 0
	permissionFullAccess   = 1
)

// Action is one step of a transaction.
type Action interface {
	encode(enc *bin.Encoder) error
}

// FunctionCallAction calls a contract method. Deposit may be nil.
type FunctionCallAction struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    *big.Int
}

func (a FunctionCallAction) encode(enc *bin.Encoder) error {
	deposit, err := toUint128(a.Deposit)
	if err != nil {
		return err
	}
	if err := enc.WriteUint8(actionFunctionCall); err != nil {
		return err
	}
	if err := enc.WriteString(a.MethodName); err != nil {
		return err
	}
	if err := enc.WriteBytes(a.Args, true); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.Gas, bin.LE); err != nil {
		return err
	}
	return enc.WriteUint128(deposit, bin.LE)
}

// AddKeyAction adds an access key. With ReceiverID set the key is limited to
// function calls on that contract (and MethodNames, when not empty);
// otherwise it is a full-access key.
type AddKeyAction struct {
	PublicKey   solana.PublicKey
	ReceiverID  string
	MethodNames []string
	Allowance   *big.Int
}

func (a AddKeyAction) encode(enc *bin.Encoder) error {
	if err := enc.WriteUint8(actionAddKey); err != nil {
		return err
	}
	if err := writePublicKey(enc, a.PublicKey); err != nil {
		return err
	}
	if err := enc.WriteUint64(0, bin.LE); err != nil { // access key nonce
		return err
	}
	if a.ReceiverID == "" {
		return enc.WriteUint8(permissionFullAccess)
	}
	if err := enc.WriteUint8(permissionFunctionCall); err != nil {
		return err
	}
	if err := enc.WriteOption(a.Allowance != nil); err != nil {
		return err
	}
	if a.Allowance != nil {
		allowance, err := toUint128(a.Allowance)
		if err != nil {
			return err
		}
		if err := enc.WriteUint128(allowance, bin.LE); err != nil {
			return err
		}
	}
	if err := enc.WriteString(a.ReceiverID); err != nil {
		return err
	}
	if err := enc.WriteLength(len(a.MethodNames)); err != nil {
		return err
	}
	for _, m := range a.MethodNames {
		if err := enc.WriteString(m); err != nil {
			return err
		}
	}
	return nil
}

// DeleteKeyAction removes an access key.
type DeleteKeyAction struct {
	PublicKey solana.PublicKey
}

func (a DeleteKeyAction) encode(enc *bin.Encoder) error {
	if err := enc.WriteUint8(actionDeleteKey); err != nil {
		return err
	}
	return writePublicKey(enc, a.PublicKey)
}

// Transaction is an unsigned chain transaction.
type Transaction struct {
	SignerID   string
	PublicKey  solana.PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []Action
}

// Serialize returns the borsh encoding of the transaction.
func (t *Transaction) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)

	if err := enc.WriteString(t.SignerID); err != nil {
		return nil, err
	}
	if err := writePublicKey(enc, t.PublicKey); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(t.Nonce, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteString(t.ReceiverID); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(t.BlockHash[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteLength(len(t.Actions)); err != nil {
		return nil, err
	}
	for i, a := range t.Actions {
		if err := a.encode(enc); err != nil {
			return nil, fmt.Errorf("failed to encode action %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Sign returns the borsh encoded SignedTransaction and the transaction hash.
func (t *Transaction) Sign(kp *keys.KeyPair) ([]byte, [32]byte, error) {
	var hash [32]byte
	if kp.PublicKey() != t.PublicKey {
		return nil, hash, fmt.Errorf("key pair does not match transaction public key")
	}

	encoded, err := t.Serialize()
	if err != nil {
		return nil, hash, err
	}
	hash = sha256.Sum256(encoded)

	sig, err := kp.Sign(hash[:])
	if err != nil {
		return nil, hash, err
	}

	signed := make([]byte, 0, len(encoded)+1+len(sig))
	signed = append(signed, encoded...)
	signed = append(signed, keyTypeED25519)
	signed = append(signed, sig...)
	return signed, hash, nil
}

func writePublicKey(enc *bin.Encoder, pk solana.PublicKey) error {
	if err := enc.WriteUint8(keyTypeED25519); err != nil {
		return err
	}
	return enc.WriteBytes(pk[:], false)
}

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// toUint128 converts an amount in yocto units; nil is zero.
func toUint128(v *big.Int) (bin.Uint128, error) {
	out := bin.Uint128{Endianness: bin.LE}
	if v == nil {
		return out, nil
	}
	if v.Sign() < 0 {
		return out, fmt.Errorf("negative u128 %s", v)
	}
	if v.Cmp(maxUint128) > 0 {
		return out, fmt.Errorf("value %s overflows u128", v)
	}
	mask := new(big.Int).SetUint64(^uint64(0))
	out.Lo = new(big.Int).And(v, mask).Uint64()
	out.Hi = new(big.Int).Rsh(v, 64).Uint64()
	return out, nil
}
