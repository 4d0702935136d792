package escrow

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/gconf"
	"github.com/iov-one/pact/x"
	"github.com/iov-one/pact/x/token"
)

const (
	initializeCost = 300
	takeCost       = 300
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r pact.Registry, auth x.Authenticator, control token.Controller) {
	bucket := NewBucket()
	r.Handle(pathInitializeMsg, InitializeHandler{auth: auth, bucket: bucket, control: control})
	r.Handle(pathTakeMsg, TakeHandler{auth: auth, bucket: bucket, control: control})
}

// RegisterQuery will register the escrow bucket as "/escrows"
func RegisterQuery(qr pact.QueryRouter) {
	NewBucket().Register("escrows", qr)
}

func loadConfig(db pact.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, BucketName, &conf); {
	case errors.ErrNotFound.Is(err):
		return &conf, nil
	case err != nil:
		return nil, errors.Wrap(err, "escrow configuration")
	}
	return &conf, nil
}

// InitializeHandler opens a new offer.
type InitializeHandler struct {
	auth    x.Authenticator
	bucket  Bucket
	control token.Controller
}

var _ pact.Handler = InitializeHandler{}

// initialization holds everything Deliver needs once all preconditions
// passed.
type initialization struct {
	msg         *InitializeMsg
	record      pact.Address
	custody     pact.Address
	reserve     pact.Address
	authority   pact.Condition
	bump        uint8
	reservation uint64
}

func (h InitializeHandler) Check(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return pact.NewCheck(initializeCost, ""), nil
}

func (h InitializeHandler) Deliver(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.DeliverResult, error) {
	in, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	msg := in.msg

	if _, err := h.control.CreateAccount(db, in.custody, in.authority.Address(), msg.Ticker); err != nil {
		return nil, errors.Wrap(err, "custody account")
	}
	if err := h.control.Transfer(ctx, h.auth, db, msg.FundingAccount, in.custody, msg.InitializerAmount); err != nil {
		return nil, errors.Wrap(err, "lock funds")
	}
	if in.reservation > 0 {
		if _, err := h.control.CreateAccount(db, in.reserve, in.authority.Address(), msg.Ticker); err != nil {
			return nil, errors.Wrap(err, "reserve account")
		}
		if err := h.control.Transfer(ctx, h.auth, db, msg.FundingAccount, in.reserve, in.reservation); err != nil {
			return nil, errors.Wrap(err, "reserve funds")
		}
	}

	escrow := &Escrow{
		Initialized:        true,
		Initializer:        msg.Initializer,
		InitializerReceive: msg.ReceiveAccount,
		Custody:            in.custody,
		InitializerAmount:  msg.InitializerAmount,
		TakerAmount:        msg.TakerAmount,
		Ticker:             msg.Ticker,
		Bump:               uint32(in.bump),
		Funding:            msg.FundingAccount,
		Reservation:        in.reservation,
	}
	if err := h.bucket.Create(db, in.record, escrow); err != nil {
		return nil, errors.Wrap(err, "escrow record")
	}
	pact.GetLogger(ctx).Debug("escrow initialized", "escrow", in.record, "custody", in.custody)
	return &pact.DeliverResult{Data: in.record}, nil
}

// validate checks every precondition of the initialization. It does not
// write to the store.
func (h InitializeHandler) validate(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*initialization, error) {
	var msg InitializeMsg
	if err := pact.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Initializer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "initializer signature missing")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, err
	}

	funding, err := h.control.Account(db, msg.FundingAccount)
	if err != nil {
		return nil, errors.Wrap(err, "funding account")
	}
	if !funding.Owner.Equals(msg.Initializer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "funding account not owned by initializer")
	}
	if funding.Ticker != msg.Ticker {
		return nil, errors.Wrapf(ErrTermsMismatch, "funding account holds %s", funding.Ticker)
	}
	total := msg.InitializerAmount + conf.Reservation
	if total < msg.InitializerAmount {
		return nil, errors.Wrap(errors.ErrOverflow, "amount with reservation")
	}
	if funding.Amount < total {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount,
			"funding account holds %d %s, need %d", funding.Amount, funding.Ticker, total)
	}

	if _, err := h.control.Account(db, msg.ReceiveAccount); err != nil {
		return nil, errors.Wrap(err, "receive account")
	}

	in := initialization{msg: &msg, reservation: conf.Reservation}
	if in.record, err = RecordAddress(msg.Initializer, msg.Ticker); err != nil {
		return nil, err
	}
	if in.custody, err = CustodyAddress(msg.Initializer, msg.Ticker); err != nil {
		return nil, err
	}
	if in.authority, in.bump, err = Authority(msg.Initializer, msg.Ticker); err != nil {
		return nil, err
	}
	if err := h.bucket.Has(db, in.record); err == nil {
		return nil, errors.Wrapf(errors.ErrDuplicate, "escrow %s", in.record)
	}
	if _, err := h.control.Account(db, in.custody); err == nil {
		return nil, errors.Wrapf(errors.ErrDuplicate, "custody account %s", in.custody)
	}
	if in.reservation > 0 {
		if in.reserve, err = ReserveAddress(msg.Initializer, msg.Ticker); err != nil {
			return nil, err
		}
		if _, err := h.control.Account(db, in.reserve); err == nil {
			return nil, errors.Wrapf(errors.ErrDuplicate, "reserve account %s", in.reserve)
		}
	}
	return &in, nil
}

// TakeHandler settles an offer. Both legs of the swap and the removal of
// the record happen in one Deliver call.
type TakeHandler struct {
	auth    x.Authenticator
	bucket  Bucket
	control token.Controller
}

var _ pact.Handler = TakeHandler{}

func (h TakeHandler) Check(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return pact.NewCheck(takeCost, ""), nil
}

func (h TakeHandler) Deliver(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.DeliverResult, error) {
	msg, escrow, authority, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if err := h.control.Transfer(ctx, h.auth, db, msg.TakerPayAccount, escrow.InitializerReceive, escrow.TakerAmount); err != nil {
		return nil, errors.Wrap(err, "pay initializer")
	}

	// Funds in custody move only here, while the authority is granted.
	cctx := withCustody(ctx, authority)
	custodian := x.ChainAuth(h.auth, Authenticate{})
	if err := h.control.Transfer(cctx, custodian, db, escrow.Custody, msg.TakerReceiveAccount, escrow.InitializerAmount); err != nil {
		return nil, errors.Wrap(err, "release custody")
	}
	if err := h.drain(cctx, custodian, db, escrow, escrow.Custody); err != nil {
		return nil, errors.Wrap(err, "close custody")
	}
	if err := h.bucket.Delete(db, msg.Escrow); err != nil {
		return nil, errors.Wrap(err, "delete escrow")
	}

	if escrow.Reservation > 0 {
		reserve, err := ReserveAddress(escrow.Initializer, escrow.Ticker)
		if err != nil {
			return nil, err
		}
		if err := h.drain(cctx, custodian, db, escrow, reserve); err != nil {
			return nil, errors.Wrap(err, "close reserve")
		}
	}

	pact.GetLogger(ctx).Info("escrow settled", "escrow", msg.Escrow, "taker", msg.Taker)
	return &pact.DeliverResult{Data: msg.Escrow}, nil
}

// drain returns whatever is left on an account held by the escrow authority
// to the funding account of the initializer and closes it. Anyone may send
// tokens to a custody or reserve account, so the balance is not assumed.
func (h TakeHandler) drain(ctx pact.Context, auth x.Authenticator, db pact.KVStore, e *Escrow, addr pact.Address) error {
	acc, err := h.control.Account(db, addr)
	if err != nil {
		return err
	}
	if acc.Amount > 0 {
		switch _, err := h.control.Account(db, e.Funding); {
		case errors.ErrNotFound.Is(err):
			if _, err := h.control.CreateAccount(db, e.Funding, e.Initializer, e.Ticker); err != nil {
				return errors.Wrap(err, "reopen funding account")
			}
		case err != nil:
			return errors.Wrap(err, "funding account")
		}
		if err := h.control.Transfer(ctx, auth, db, addr, e.Funding, acc.Amount); err != nil {
			return errors.Wrapf(err, "return %d %s", acc.Amount, acc.Ticker)
		}
	}
	return h.control.CloseAccount(ctx, auth, db, addr)
}

// validate checks every precondition of the settlement in order and
// returns the stored offer together with its re-derived authority.
func (h TakeHandler) validate(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*TakeMsg, *Escrow, pact.Condition, error) {
	var msg TakeMsg
	if err := pact.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}

	var escrow Escrow
	if err := h.bucket.One(db, msg.Escrow, &escrow); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "escrow %s", msg.Escrow)
	}
	if !escrow.Initialized {
		return nil, nil, nil, errors.Wrapf(errors.ErrNotFound, "escrow %s not initialized", msg.Escrow)
	}
	switch {
	case !escrow.Initializer.Equals(msg.Initializer):
		return nil, nil, nil, errors.Wrap(ErrTermsMismatch, "initializer")
	case !escrow.InitializerReceive.Equals(msg.InitializerReceive):
		return nil, nil, nil, errors.Wrap(ErrTermsMismatch, "initializer receive account")
	case !escrow.Custody.Equals(msg.Custody):
		return nil, nil, nil, errors.Wrap(ErrTermsMismatch, "custody account")
	case escrow.InitializerAmount != msg.InitializerAmount:
		return nil, nil, nil, errors.Wrapf(ErrTermsMismatch, "initializer amount is %d", escrow.InitializerAmount)
	case escrow.TakerAmount != msg.TakerAmount:
		return nil, nil, nil, errors.Wrapf(ErrTermsMismatch, "taker amount is %d", escrow.TakerAmount)
	}

	if !h.auth.HasAddress(ctx, msg.Taker) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "taker signature missing")
	}
	pay, err := h.control.Account(db, msg.TakerPayAccount)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "taker pay account")
	}
	if !pay.Owner.Equals(msg.Taker) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "pay account not owned by taker")
	}
	if pay.Amount < escrow.TakerAmount {
		return nil, nil, nil, errors.Wrapf(errors.ErrInsufficientAmount,
			"pay account holds %d %s, need %d", pay.Amount, pay.Ticker, escrow.TakerAmount)
	}

	payee, err := h.control.Account(db, escrow.InitializerReceive)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "initializer receive account")
	}
	if payee.Ticker != pay.Ticker {
		return nil, nil, nil, errors.Wrapf(errors.ErrCurrency, "initializer wants %s, taker pays %s", payee.Ticker, pay.Ticker)
	}

	receive, err := h.control.Account(db, msg.TakerReceiveAccount)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "taker receive account")
	}
	if receive.Ticker != escrow.Ticker {
		return nil, nil, nil, errors.Wrapf(errors.ErrCurrency, "taker receive account holds %s, escrow locks %s", receive.Ticker, escrow.Ticker)
	}

	authority, err := authorityWithBump(escrow.Initializer, escrow.Ticker, uint8(escrow.Bump))
	if err != nil {
		return nil, nil, nil, err
	}
	custody, err := h.control.Account(db, escrow.Custody)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "custody account")
	}
	if !custody.Owner.Equals(authority.Address()) {
		return nil, nil, nil, errors.Wrap(errors.ErrState, "custody account not held by the escrow authority")
	}
	if custody.Amount < escrow.InitializerAmount {
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "custody holds %d, expected %d", custody.Amount, escrow.InitializerAmount)
	}
	return &msg, &escrow, authority, nil
}
