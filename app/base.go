package app

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx, CheckTx, and BeginBlock
// handlers to the storage and query functionality of StoreApp
type BaseApp struct {
	*StoreApp
	decoder pact.TxDecoder
	handler pact.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(
	store *StoreApp,
	decoder pact.TxDecoder,
	handler pact.Handler,
	debug bool,
) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return deliverTxError(err, b.debug)
	}
	res, err := b.Deliver(tx)
	if err != nil {
		return deliverTxError(err, b.debug)
	}
	return abci.ResponseDeliverTx{
		Data: res.Data,
		Log:  res.Log,
	}
}

// Deliver runs an already decoded transaction against the deliver store.
func (b BaseApp) Deliver(tx pact.Tx) (*pact.DeliverResult, error) {
	ctx := pact.WithLogInfo(b.BlockContext(),
		"call", "deliver_tx",
		"path", pact.GetPath(tx))
	return b.handler.Deliver(ctx, b.DeliverStore(), tx)
}

// CheckTx - ABCI - dispatches to the handler
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return checkTxError(err, b.debug)
	}
	res, err := b.Check(tx)
	if err != nil {
		return checkTxError(err, b.debug)
	}
	return abci.ResponseCheckTx{
		Data:      res.Data,
		Log:       res.Log,
		GasWanted: res.GasAllocated,
	}
}

// Check runs an already decoded transaction against the check store.
func (b BaseApp) Check(tx pact.Tx) (*pact.CheckResult, error) {
	ctx := pact.WithLogInfo(b.BlockContext(),
		"call", "check_tx",
		"path", pact.GetPath(tx))
	return b.handler.Check(ctx, b.CheckStore(), tx)
}

// loadTx calls the decoder, and capture any panics
func (b BaseApp) loadTx(txBytes []byte) (tx pact.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	return
}

func deliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := errors.ABCIInfo(err, debug)
	return abci.ResponseDeliverTx{
		Code: code,
		Log:  log,
	}
}

func checkTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := errors.ABCIInfo(err, debug)
	return abci.ResponseCheckTx{
		Code: code,
		Log:  log,
	}
}
