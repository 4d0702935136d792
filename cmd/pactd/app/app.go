/*
Package pactd links together all the various components
to construct the pactd application.
*/
package pactd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/app"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/store/iavl"
	"github.com/iov-one/pact/x"
	"github.com/iov-one/pact/x/escrow"
	"github.com/iov-one/pact/x/sigs"
	"github.com/iov-one/pact/x/token"
	"github.com/iov-one/pact/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{}, escrow.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will increment nonce
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching token and escrow messages.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	ctrl := token.NewController()
	token.RegisterRoutes(r, authFn, ctrl)
	escrow.RegisterRoutes(r, authFn, ctrl)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/tokens", "/escrows" and "/auth"
func QueryRouter() pact.QueryRouter {
	r := pact.NewQueryRouter()
	r.RegisterAll(
		token.RegisterQuery,
		escrow.RegisterQuery,
		sigs.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis loaders of all extensions.
func Initializers() pact.Initializer {
	return app.ChainInitializers(
		token.Initializer{},
		escrow.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack() pact.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h pact.Handler, kv pact.CommitKVStore,
	logger log.Logger, debug bool) app.BaseApp {
	store := app.NewStoreApp(name, kv, QueryRouter(), context.Background()).
		WithInit(Initializers()).
		WithLogger(logger)
	return app.NewBaseApp(store, TxDecoder, h, debug)
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path. An empty path gives a memory
// backed store.
func CommitKVStore(dbPath string) (iavl.CommitStore, error) {
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return iavl.CommitStore{}, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}
