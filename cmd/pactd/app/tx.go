package pactd

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/codec"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/x/escrow"
	"github.com/iov-one/pact/x/sigs"
	"github.com/iov-one/pact/x/token"
)

// Tx is the transaction format of pactd. Exactly one message field is set.
type Tx struct {
	Signatures []*sigs.StdSignature

	CreateAccountMsg *token.CreateAccountMsg
	SendMsg          *token.SendMsg
	InitializeMsg    *escrow.InitializeMsg
	TakeMsg          *escrow.TakeMsg
}

// make sure tx fulfills all interfaces
var _ pact.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (pact.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewTx returns an unsigned transaction carrying given message.
func NewTx(msg pact.Msg) (*Tx, error) {
	var tx Tx
	switch m := msg.(type) {
	case *token.CreateAccountMsg:
		tx.CreateAccountMsg = m
	case *token.SendMsg:
		tx.SendMsg = m
	case *escrow.InitializeMsg:
		tx.InitializeMsg = m
	case *escrow.TakeMsg:
		tx.TakeMsg = m
	default:
		return nil, errors.Wrapf(errors.ErrType, "unsupported message %T", msg)
	}
	return &tx, nil
}

// GetMsg returns the single message of this transaction.
func (tx *Tx) GetMsg() (pact.Msg, error) {
	var msgs []pact.Msg
	if tx.CreateAccountMsg != nil {
		msgs = append(msgs, tx.CreateAccountMsg)
	}
	if tx.SendMsg != nil {
		msgs = append(msgs, tx.SendMsg)
	}
	if tx.InitializeMsg != nil {
		msgs = append(msgs, tx.InitializeMsg)
	}
	if tx.TakeMsg != nil {
		msgs = append(msgs, tx.TakeMsg)
	}
	switch len(msgs) {
	case 0:
		return nil, errors.Wrap(errors.ErrState, "transaction without a message")
	case 1:
		return msgs[0], nil
	default:
		return nil, errors.Wrapf(errors.ErrState, "transaction with %d messages", len(msgs))
	}
}

// GetSignBytes returns the bytes to sign...
func (tx *Tx) GetSignBytes() ([]byte, error) {
	// temporarily unset the signatures, as the sign bytes
	// should only come from the data itself, not previous signatures
	signatures := tx.Signatures
	tx.Signatures = nil

	bz, err := tx.Marshal()

	// reset the signatures after calculating the bytes
	tx.Signatures = signatures
	return bz, err
}

// GetSignatures returns all signatures attached to this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

func (tx *Tx) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	for _, s := range tx.Signatures {
		e.Message(1, s)
	}
	if tx.CreateAccountMsg != nil {
		e.Message(2, tx.CreateAccountMsg)
	}
	if tx.SendMsg != nil {
		e.Message(3, tx.SendMsg)
	}
	if tx.InitializeMsg != nil {
		e.Message(4, tx.InitializeMsg)
	}
	if tx.TakeMsg != nil {
		e.Message(5, tx.TakeMsg)
	}
	return e.Result()
}

func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			var s sigs.StdSignature
			d.Message(&s)
			tx.Signatures = append(tx.Signatures, &s)
		case 2:
			tx.CreateAccountMsg = new(token.CreateAccountMsg)
			d.Message(tx.CreateAccountMsg)
		case 3:
			tx.SendMsg = new(token.SendMsg)
			d.Message(tx.SendMsg)
		case 4:
			tx.InitializeMsg = new(escrow.InitializeMsg)
			d.Message(tx.InitializeMsg)
		case 5:
			tx.TakeMsg = new(escrow.TakeMsg)
			d.Message(tx.TakeMsg)
		default:
			d.Skip()
		}
	}
	return d.Err()
}
