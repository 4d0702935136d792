package token

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/x"
)

const (
	createAccountCost = 100
	sendCost          = 100
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r pact.Registry, auth x.Authenticator, control Controller) {
	r.Handle(pathCreateAccountMsg, CreateAccountHandler{auth: auth, control: control})
	r.Handle(pathSendMsg, SendHandler{auth: auth, control: control})
}

// CreateAccountHandler opens accounts on behalf of their owners.
type CreateAccountHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ pact.Handler = CreateAccountHandler{}

func (h CreateAccountHandler) Check(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.CheckResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.control.Account(db, AccountAddress(msg.Owner, msg.Ticker)); err == nil {
		return nil, errors.Wrap(errors.ErrDuplicate, "account exists")
	}
	return pact.NewCheck(createAccountCost, ""), nil
}

func (h CreateAccountHandler) Deliver(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	addr := AccountAddress(msg.Owner, msg.Ticker)
	if _, err := h.control.CreateAccount(db, addr, msg.Owner, msg.Ticker); err != nil {
		return nil, err
	}
	return &pact.DeliverResult{Data: addr}, nil
}

func (h CreateAccountHandler) validate(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*CreateAccountMsg, error) {
	var msg CreateAccountMsg
	if err := pact.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	return &msg, nil
}

// SendHandler will handle sending tokens
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ pact.Handler = SendHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h SendHandler) Check(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.CheckResult, error) {
	var msg SendMsg
	if err := pact.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return pact.NewCheck(sendCost, ""), nil
}

// Deliver moves the tokens from source to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.DeliverResult, error) {
	var msg SendMsg
	if err := pact.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.control.Transfer(ctx, h.auth, db, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &pact.DeliverResult{}, nil
}
