package token

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
)

const optKey = "token"

// GenesisAccount is used to parse the json from genesis file. Address is
// optional, when not given the account is stored under
// AccountAddress(Owner, Ticker).
type GenesisAccount struct {
	Address pact.Address `json:"address"`
	Account
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ pact.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts pact.Options, db pact.KVStore) error {
	next, err := opts.Stream(optKey)
	switch {
	case errors.ErrEmpty.Is(err):
		return nil
	case err != nil:
		return err
	}

	bucket := NewBucket()
	for i := 0; ; i++ {
		var acc GenesisAccount
		switch err := next(&acc); {
		case errors.ErrEmpty.Is(err):
			return nil
		case err != nil:
			return errors.Wrapf(err, "account %d", i)
		}

		addr := acc.Address
		if addr == nil {
			addr = AccountAddress(acc.Owner, acc.Ticker)
		}
		if err := addr.Validate(); err != nil {
			return errors.Wrapf(err, "account %d address", i)
		}
		if err := bucket.Create(db, addr, &acc.Account); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
}
