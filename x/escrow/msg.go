package escrow

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/codec"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/x/token"
)

const (
	pathInitializeMsg = "escrow/initialize"
	pathTakeMsg       = "escrow/take"
)

// InitializeMsg locks InitializerAmount of Ticker taken from the
// FundingAccount and publishes an offer asking for TakerAmount paid into
// the ReceiveAccount.
type InitializeMsg struct {
	Initializer       pact.Address
	FundingAccount    pact.Address
	ReceiveAccount    pact.Address
	Ticker            string
	InitializerAmount uint64
	TakerAmount       uint64
}

var _ pact.Msg = (*InitializeMsg)(nil)

func (InitializeMsg) Path() string {
	return pathInitializeMsg
}

func (m *InitializeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Initializer", m.Initializer.Validate())
	errs = errors.AppendField(errs, "FundingAccount", m.FundingAccount.Validate())
	errs = errors.AppendField(errs, "ReceiveAccount", m.ReceiveAccount.Validate())
	if !token.IsTicker(m.Ticker) {
		errs = errors.Append(errs, errors.Field("Ticker", errors.ErrCurrency, "%q", m.Ticker))
	}
	if m.InitializerAmount == 0 {
		errs = errors.Append(errs, errors.Field("InitializerAmount", errors.ErrAmount, "must be positive"))
	}
	if m.TakerAmount == 0 {
		errs = errors.Append(errs, errors.Field("TakerAmount", errors.ErrAmount, "must be positive"))
	}
	return errs
}

func (m *InitializeMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, m.Initializer).
		Bytes(2, m.FundingAccount).
		Bytes(3, m.ReceiveAccount).
		String(4, m.Ticker).
		Uint64(5, m.InitializerAmount).
		Uint64(6, m.TakerAmount).
		Result()
}

func (m *InitializeMsg) Unmarshal(raw []byte) error {
	*m = InitializeMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Initializer = d.Bytes()
		case 2:
			m.FundingAccount = d.Bytes()
		case 3:
			m.ReceiveAccount = d.Bytes()
		case 4:
			m.Ticker = d.String()
		case 5:
			m.InitializerAmount = d.Uint64()
		case 6:
			m.TakerAmount = d.Uint64()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// TakeMsg settles the offer stored under Escrow. The remaining fields
// repeat the terms the taker agreed to and must match the stored record.
type TakeMsg struct {
	Escrow              pact.Address
	Taker               pact.Address
	TakerPayAccount     pact.Address
	TakerReceiveAccount pact.Address
	Initializer         pact.Address
	InitializerReceive  pact.Address
	Custody             pact.Address
	InitializerAmount   uint64
	TakerAmount         uint64
}

var _ pact.Msg = (*TakeMsg)(nil)

func (TakeMsg) Path() string {
	return pathTakeMsg
}

func (m *TakeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Escrow", m.Escrow.Validate())
	errs = errors.AppendField(errs, "Taker", m.Taker.Validate())
	errs = errors.AppendField(errs, "TakerPayAccount", m.TakerPayAccount.Validate())
	errs = errors.AppendField(errs, "TakerReceiveAccount", m.TakerReceiveAccount.Validate())
	errs = errors.AppendField(errs, "Initializer", m.Initializer.Validate())
	errs = errors.AppendField(errs, "InitializerReceive", m.InitializerReceive.Validate())
	errs = errors.AppendField(errs, "Custody", m.Custody.Validate())
	if m.InitializerAmount == 0 {
		errs = errors.Append(errs, errors.Field("InitializerAmount", errors.ErrAmount, "must be positive"))
	}
	if m.TakerAmount == 0 {
		errs = errors.Append(errs, errors.Field("TakerAmount", errors.ErrAmount, "must be positive"))
	}
	return errs
}

func (m *TakeMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, m.Escrow).
		Bytes(2, m.Taker).
		Bytes(3, m.TakerPayAccount).
		Bytes(4, m.TakerReceiveAccount).
		Bytes(5, m.Initializer).
		Bytes(6, m.InitializerReceive).
		Bytes(7, m.Custody).
		Uint64(8, m.InitializerAmount).
		Uint64(9, m.TakerAmount).
		Result()
}

func (m *TakeMsg) Unmarshal(raw []byte) error {
	*m = TakeMsg{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Escrow = d.Bytes()
		case 2:
			m.Taker = d.Bytes()
		case 3:
			m.TakerPayAccount = d.Bytes()
		case 4:
			m.TakerReceiveAccount = d.Bytes()
		case 5:
			m.Initializer = d.Bytes()
		case 6:
			m.InitializerReceive = d.Bytes()
		case 7:
			m.Custody = d.Bytes()
		case 8:
			m.InitializerAmount = d.Uint64()
		case 9:
			m.TakerAmount = d.Uint64()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// TermsOf returns a TakeMsg pre-filled with the terms of a stored offer.
// The caller completes the taker fields.
func TermsOf(addr pact.Address, e *Escrow) TakeMsg {
	return TakeMsg{
		Escrow:             addr,
		Initializer:        e.Initializer,
		InitializerReceive: e.InitializerReceive,
		Custody:            e.Custody,
		InitializerAmount:  e.InitializerAmount,
		TakerAmount:        e.TakerAmount,
	}
}
