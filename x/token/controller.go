package token

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/x"
)

// Controller is the ledger API other extensions use to manage accounts and
// move funds.
type Controller interface {
	// Account loads the account stored under given address.
	Account(db pact.ReadOnlyKVStore, addr pact.Address) (*Account, error)

	// Transfer moves amount from src to dest. The owner of the source
	// account must be authenticated and both accounts must hold the same
	// ticker.
	Transfer(ctx pact.Context, auth x.Authenticator, db pact.KVStore, src, dest pact.Address, amount uint64) error

	// Mint increases the balance of an account.
	Mint(db pact.KVStore, dest pact.Address, amount uint64) error

	// CreateAccount creates an empty account under given address.
	CreateAccount(db pact.KVStore, addr, owner pact.Address, ticker string) (*Account, error)

	// CloseAccount removes an empty account. The owner must be
	// authenticated.
	CloseAccount(ctx pact.Context, auth x.Authenticator, db pact.KVStore, addr pact.Address) error
}

// BaseController is the default Controller implementation.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the default bucket.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

func (c BaseController) Account(db pact.ReadOnlyKVStore, addr pact.Address) (*Account, error) {
	var acc Account
	if err := c.bucket.One(db, addr, &acc); err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return &acc, nil
}

func (c BaseController) Transfer(ctx pact.Context, auth x.Authenticator, db pact.KVStore, src, dest pact.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "transfer must be positive")
	}
	sender, err := c.Account(db, src)
	if err != nil {
		return err
	}
	if !auth.HasAddress(ctx, sender.Owner) {
		return errors.Wrapf(errors.ErrUnauthorized, "account %s owner signature missing", src)
	}
	recipient, err := c.Account(db, dest)
	if err != nil {
		return err
	}
	if sender.Ticker != recipient.Ticker {
		return errors.Wrapf(errors.ErrCurrency, "cannot send %s to %s account", sender.Ticker, recipient.Ticker)
	}
	if sender.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "account %s holds %d %s", src, sender.Amount, sender.Ticker)
	}
	if src.Equals(dest) {
		return nil
	}
	if recipient.Amount+amount < recipient.Amount {
		return errors.Wrapf(errors.ErrOverflow, "account %s", dest)
	}

	sender.Amount -= amount
	recipient.Amount += amount
	if err := c.bucket.Put(db, src, sender); err != nil {
		return errors.Wrap(err, "save sender")
	}
	if err := c.bucket.Put(db, dest, recipient); err != nil {
		return errors.Wrap(err, "save recipient")
	}
	return nil
}

func (c BaseController) Mint(db pact.KVStore, dest pact.Address, amount uint64) error {
	acc, err := c.Account(db, dest)
	if err != nil {
		return err
	}
	if acc.Amount+amount < acc.Amount {
		return errors.Wrapf(errors.ErrOverflow, "account %s", dest)
	}
	acc.Amount += amount
	return c.bucket.Put(db, dest, acc)
}

func (c BaseController) CreateAccount(db pact.KVStore, addr, owner pact.Address, ticker string) (*Account, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "account address")
	}
	acc := &Account{Owner: owner, Ticker: ticker}
	if err := c.bucket.Create(db, addr, acc); err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return acc, nil
}

func (c BaseController) CloseAccount(ctx pact.Context, auth x.Authenticator, db pact.KVStore, addr pact.Address) error {
	acc, err := c.Account(db, addr)
	if err != nil {
		return err
	}
	if !auth.HasAddress(ctx, acc.Owner) {
		return errors.Wrapf(errors.ErrUnauthorized, "account %s owner signature missing", addr)
	}
	if acc.Amount != 0 {
		return errors.Wrapf(errors.ErrState, "account %s holds %d %s", addr, acc.Amount, acc.Ticker)
	}
	return c.bucket.Delete(db, addr)
}
