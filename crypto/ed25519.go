package crypto

import (
	"io/ioutil"
	"os"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
	"github.com/stellar/go/exp/crypto/derivation"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is used for the conditions we get from signatures
const ExtensionName = "sigs"

// DefaultDerivationPath is the SLIP-10 path used when deriving a key from a
// seed and no path is given.
const DefaultDerivationPath = "m/44'/234'/0'"

// PrivateKey is an ed25519 signing key.
type PrivateKey ed25519.PrivateKey

// PublicKey is an ed25519 verification key.
type PublicKey ed25519.PublicKey

// GenPrivateKey returns a random new private key.
func GenPrivateKey() (PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrState, err.Error())
	}
	return PrivateKey(priv), nil
}

// PrivateKeyFromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivateKeyFromSeed(seed []byte) (PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return PrivateKey(ed25519.NewKeyFromSeed(seed)), nil
}

// DeriveKey returns the private key found at given SLIP-10 derivation path
// of the master seed. All path segments must be hardened.
func DeriveKey(seed []byte, path string) (PrivateKey, error) {
	if path == "" {
		path = DefaultDerivationPath
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "derive %q: %s", path, err)
	}
	return PrivateKeyFromSeed(k.Key)
}

// Sign returns a signature of the message.
func (p PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(p), message)
}

// PublicKey returns the corresponding PublicKey
func (p PrivateKey) PublicKey() PublicKey {
	pub := ed25519.PrivateKey(p).Public().(ed25519.PublicKey)
	return PublicKey(pub)
}

// Validate returns an error if the key has not the expected size.
func (p PrivateKey) Validate() error {
	if len(p) != ed25519.PrivateKeySize {
		return errors.Wrapf(errors.ErrInput, "invalid private key length: %d", len(p))
	}
	return nil
}

// Verify verifies the signature was created with this message and public key
func (p PublicKey) Verify(message, sig []byte) bool {
	if len(p) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p), message, sig)
}

// Condition encodes the public key into a pact condition
func (p PublicKey) Condition() pact.Condition {
	return pact.NewCondition(ExtensionName, "ed25519", p)
}

// Address returns the address authorized by a signature of this key.
func (p PublicKey) Address() pact.Address {
	return p.Condition().Address()
}

// LoadPrivateKey reads a binary private key file.
func LoadPrivateKey(path string) (PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot read private key file: %s", err)
	}
	key := PrivateKey(raw)
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return key, nil
}

// SavePrivateKey writes the key to a new file. An existing file is never
// overwritten.
func SavePrivateKey(path string, key PrivateKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(errors.ErrDuplicate, "private key file %q already exists", path)
		}
		return errors.Wrapf(errors.ErrInput, "cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(key); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot close private key file: %s", err)
	}
	return nil
}
