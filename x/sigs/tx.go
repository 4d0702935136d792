package sigs

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/codec"
	"github.com/iov-one/pact/crypto"
	"github.com/iov-one/pact/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	pact.Tx

	// GetSignBytes returns the canonical byte representation of the Msg.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is a signature of a single signer together with the sequence
// it was created for.
type StdSignature struct {
	Pubkey    crypto.PublicKey
	Signature []byte
	Sequence  uint64
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if len(s.Pubkey) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if len(s.Signature) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

func (s *StdSignature) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, s.Pubkey).
		Bytes(2, s.Signature).
		Uint64(3, s.Sequence).
		Result()
}

func (s *StdSignature) Unmarshal(raw []byte) error {
	*s = StdSignature{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			s.Pubkey = d.Bytes()
		case 2:
			s.Signature = d.Bytes()
		case 3:
			s.Sequence = d.Uint64()
		default:
			d.Skip()
		}
	}
	return d.Err()
}
