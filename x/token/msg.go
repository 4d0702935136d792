package token

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/codec"
	"github.com/iov-one/pact/errors"
)

const (
	pathCreateAccountMsg = "token/create_account"
	pathSendMsg          = "token/send"

	// maxMemoSize is the longest memo a transfer may carry.
	maxMemoSize = 128
)

// CreateAccountMsg opens an empty account of given ticker, owned by the
// signer. The account is stored under AccountAddress(Owner, Ticker).
type CreateAccountMsg struct {
	Owner  pact.Address
	Ticker string
}

var _ pact.Msg = (*CreateAccountMsg)(nil)

func (CreateAccountMsg) Path() string {
	return pathCreateAccountMsg
}

func (m *CreateAccountMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	if !IsTicker(m.Ticker) {
		errs = errors.Append(errs, errors.Field("Ticker", errors.ErrCurrency, "%q", m.Ticker))
	}
	return errs
}

func (m *CreateAccountMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, m.Owner).
		String(2, m.Ticker).
		Result()
}

func (m *CreateAccountMsg) Unmarshal(raw []byte) error {
	*m = CreateAccountMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Owner = d.Bytes()
		case 2:
			m.Ticker = d.String()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// SendMsg moves Amount from the Source to the Destination account. Both
// accounts must hold the same ticker.
type SendMsg struct {
	Source      pact.Address
	Destination pact.Address
	Amount      uint64
	Memo        string
}

var _ pact.Msg = (*SendMsg)(nil)

func (SendMsg) Path() string {
	return pathSendMsg
}

func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if m.Amount == 0 {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrAmount, "must be positive"))
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.Append(errs, errors.Field("Memo", errors.ErrInput, "too long"))
	}
	return errs
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, m.Source).
		Bytes(2, m.Destination).
		Uint64(3, m.Amount).
		String(4, m.Memo).
		Result()
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	*m = SendMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Source = d.Bytes()
		case 2:
			m.Destination = d.Bytes()
		case 3:
			m.Amount = d.Uint64()
		case 4:
			m.Memo = d.String()
		default:
			d.Skip()
		}
	}
	return d.Err()
}
