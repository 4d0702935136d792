package pacttest

import (
	"testing"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/crypto"
)

// NewKey returns a fresh random private key. It panics if the system source
// of randomness fails.
func NewKey() crypto.PrivateKey {
	key, err := crypto.GenPrivateKey()
	if err != nil {
		panic(err)
	}
	return key
}

// NewCondition returns the signature condition of a fresh random key.
func NewCondition() pact.Condition {
	return NewKey().PublicKey().Condition()
}

// ParseAddress takes an address in a human readable format and returns its
// binary representation.
func ParseAddress(t testing.TB, encodedAddress string) pact.Address {
	t.Helper()

	addr, err := pact.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
