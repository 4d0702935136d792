package escrow

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/gconf"
)

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ pact.Initializer = Initializer{}

// FromGenesis stores the escrow configuration. A genesis without an
// "escrow" configuration leaves the defaults in place.
func (Initializer) FromGenesis(opts pact.Options, db pact.KVStore) error {
	var conf Configuration
	switch err := gconf.InitConfig(db, opts, BucketName, &conf); {
	case errors.ErrNotFound.Is(err):
		return nil
	case err != nil:
		return errors.Wrap(err, "escrow configuration")
	}
	return nil
}
