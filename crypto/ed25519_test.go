package crypto

import (
	"bytes"
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/pact/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEd25519Signing(t *testing.T) {
	private, err := GenPrivateKey()
	require.NoError(t, err)
	public := private.PublicKey()

	msg := []byte("foobar")
	msg2 := []byte("dingbooms")

	sig := private.Sign(msg)
	sig2 := private.Sign(msg2)

	if bytes.Equal(sig, sig2) {
		t.Fatal("different messages produce the same signature")
	}

	assert.True(t, public.Verify(msg, sig))
	assert.True(t, public.Verify(msg2, sig2))
	assert.False(t, public.Verify(msg, sig2), "verified signature of the wrong message")
	assert.False(t, public.Verify(msg, nil), "verified a nil signature")
	assert.False(t, PublicKey(nil).Verify(msg, sig), "verified with an empty key")
}

func TestEd25519Address(t *testing.T) {
	a, err := GenPrivateKey()
	require.NoError(t, err)
	b, err := GenPrivateKey()
	require.NoError(t, err)

	ca, cb := a.PublicKey().Condition(), b.PublicKey().Condition()
	require.NoError(t, ca.Validate())
	require.NoError(t, cb.Validate())
	assert.False(t, ca.Equals(cb))

	ext, typ, data, err := ca.Parse()
	require.NoError(t, err)
	assert.Equal(t, "sigs", ext)
	assert.Equal(t, "ed25519", typ)
	assert.Equal(t, []byte(a.PublicKey()), data)

	require.NoError(t, a.PublicKey().Address().Validate())
	assert.Equal(t, ca.Address(), a.PublicKey().Address())
}

func TestPrivateKeyFromSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a, err := PrivateKeyFromSeed(seed)
	require.NoError(t, err)
	b, err := PrivateKeyFromSeed(seed)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = PrivateKeyFromSeed([]byte("short"))
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)
}

func TestDeriveKey(t *testing.T) {
	// SLIP-10 ed25519 test vector 1.
	seed, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)

	key, err := DeriveKey(seed, "m/0'")
	require.NoError(t, err)
	wantPub, err := hex.DecodeString("8c8a13df77a28f3445213a0f432fde644acaa215fc72dcdf300d5efaa85d350c")
	require.NoError(t, err)
	assert.Equal(t, PublicKey(wantPub), key.PublicKey())

	def, err := DeriveKey(seed, "")
	require.NoError(t, err)
	other, err := DeriveKey(seed, "m/44'/234'/1'")
	require.NoError(t, err)
	assert.NotEqual(t, def, other)

	_, err = DeriveKey(seed, "m/0")
	assert.True(t, errors.ErrInput.Is(err), "non hardened path: %+v", err)
}

func TestSaveLoadPrivateKey(t *testing.T) {
	dir, err := ioutil.TempDir("", "crypto")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "key.priv")
	key, err := GenPrivateKey()
	require.NoError(t, err)

	require.NoError(t, SavePrivateKey(path, key))
	err = SavePrivateKey(path, key)
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

	loaded, err := LoadPrivateKey(path)
	require.NoError(t, err)
	assert.Equal(t, key, loaded)

	bad := filepath.Join(dir, "bad.priv")
	require.NoError(t, ioutil.WriteFile(bad, []byte("short"), 0600))
	_, err = LoadPrivateKey(bad)
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)
}
