package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerateSeedPhrase(t *testing.T) {
	kp, err := GenerateSeedPhrase()
	require.NoError(t, err)

	assert.Len(t, strings.Fields(kp.SeedPhrase()), 12)
	assert.True(t, strings.HasPrefix(kp.PublicKeyString(), KeyTypePrefix))
	assert.True(t, strings.HasPrefix(kp.SecretKeyString(), KeyTypePrefix))
	assert.Len(t, kp.ImplicitAccountID(), 64)

	again, err := FromSeedPhrase(kp.SeedPhrase())
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKeyString(), again.PublicKeyString())
	assert.Equal(t, kp.SecretKeyString(), again.SecretKeyString())
}

func TestFromSeedPhrase_Deterministic(t *testing.T) {
	a, err := FromSeedPhrase(testPhrase)
	require.NoError(t, err)
	b, err := FromSeedPhrase("  ABANDON abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon   about ")
	require.NoError(t, err)

	assert.Equal(t, a.PublicKeyString(), b.PublicKeyString())
	assert.Equal(t, testPhrase, b.SeedPhrase())
}

func TestFromSeedPhrase_Invalid(t *testing.T) {
	_, err := FromSeedPhrase("not a real mnemonic at all")
	require.ErrorIs(t, err, ErrInvalidSeedPhrase)
}

func TestImplicitAccountID(t *testing.T) {
	kp, err := FromSeedPhrase(testPhrase)
	require.NoError(t, err)

	id, err := ImplicitAccountID(kp.PublicKeyString())
	require.NoError(t, err)
	assert.Equal(t, kp.ImplicitAccountID(), id)

	pub := kp.PublicKey()
	assert.Equal(t, hex.EncodeToString(pub[:]), id)

	// re-deriving always yields the same id
	for i := 0; i < 3; i++ {
		again, err := ImplicitAccountID(kp.PublicKeyString())
		require.NoError(t, err)
		assert.Equal(t, id, again)
	}

	other, err := GenerateSeedPhrase()
	require.NoError(t, err)
	assert.NotEqual(t, id, other.ImplicitAccountID())
}

func TestParseSecretKey_RoundTrip(t *testing.T) {
	kp, err := GenerateSeedPhrase()
	require.NoError(t, err)

	parsed, err := ParseSecretKey(kp.SecretKeyString())
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKeyString(), parsed.PublicKeyString())
	assert.Empty(t, parsed.SeedPhrase())
}

func TestParseSecretKey_Mismatch(t *testing.T) {
	a, err := GenerateSeedPhrase()
	require.NoError(t, err)
	b, err := GenerateSeedPhrase()
	require.NoError(t, err)

	rawA, err := base58.Decode(strings.TrimPrefix(a.SecretKeyString(), KeyTypePrefix))
	require.NoError(t, err)
	pubB := b.PublicKey()
	copy(rawA[32:], pubB[:])

	_, err = ParseSecretKey(KeyTypePrefix + base58.Encode(rawA))
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestParsePublicKey_Errors(t *testing.T) {
	cases := []string{
		"",
		"secp256k1:abc",
		"ed25519:0OIl",
		"ed25519:" + base58.Encode([]byte{1, 2, 3}),
	}
	for _, c := range cases {
		_, err := ParsePublicKey(c)
		assert.ErrorIs(t, err, ErrInvalidKey, c)
	}
}

func TestSignVerify(t *testing.T) {
	kp, err := GenerateSeedPhrase()
	require.NoError(t, err)

	msg := []byte("guest-nft.testnet:1700000000")
	sig, err := kp.Sign(msg)
	require.NoError(t, err)
	assert.Len(t, sig, ed25519.SignatureSize)

	assert.True(t, Verify(kp.PublicKeyString(), msg, sig))
	assert.False(t, Verify(kp.PublicKeyString(), []byte("other"), sig))

	sig[0] ^= 0xff
	assert.False(t, Verify(kp.PublicKeyString(), msg, sig))
}
