package sigs

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/codec"
	"github.com/iov-one/pact/crypto"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/orm"
)

// BucketName is where we store the sequences of the signers
const BucketName = "sigs"

// maxSequence is the greatest nonce value a client can represent
//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
const maxSequence = (1 << 53) - 1

// UserData holds the next expected sequence of a signer.
type UserData struct {
	Pubkey   crypto.PublicKey
	Sequence uint64
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Validate() error {
	if u.Sequence > 0 && len(u.Pubkey) == 0 {
		return errors.Field("Sequence", ErrInvalidSequence, "needs Pubkey")
	}
	if u.Sequence > maxSequence {
		return errors.Field("Sequence", errors.ErrOverflow, "out of range")
	}
	return nil
}

func (u *UserData) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, u.Pubkey).
		Uint64(2, u.Sequence).
		Result()
}

func (u *UserData) Unmarshal(raw []byte) error {
	*u = UserData{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			u.Pubkey = d.Bytes()
		case 2:
			u.Sequence = d.Uint64()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected uint64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	if u.Sequence+1 > maxSequence {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence++
	return nil
}

// Bucket stores UserData keyed by the address of the public key.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for signer sequences.
func NewBucket() Bucket {
	return Bucket{ModelBucket: orm.NewModelBucket(BucketName)}
}

// GetOrCreate loads the signer data or returns a fresh instance bound to
// given public key when the signer was never seen.
func (b Bucket) GetOrCreate(db pact.ReadOnlyKVStore, pubkey crypto.PublicKey) (*UserData, error) {
	var u UserData
	err := b.One(db, pubkey.Address(), &u)
	switch {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pubkey}, nil
	default:
		return nil, err
	}
}

// RegisterQuery will register this bucket as "/auth"
func RegisterQuery(qr pact.QueryRouter) {
	NewBucket().Register("auth", qr)
}
