package pact

import (
	"bytes"
	"encoding/json"

	"github.com/iov-one/pact/errors"
)

// Handler is a core engine that can process a few specific messages
// This could represent "escrow initialize", or "token transfer"
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or logging, to many Handlers
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	Handle(path string, h Handler)
}

// DeliverResult captures any non-error result
// to make sure people use error for error cases
type DeliverResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
}

// CheckResult captures any non-error result
// to make sure people use error for error cases
type CheckResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
	// GasAllocated is the maximum units of work we allow this tx to perform
	GasAllocated int64
}

// NewCheck sets the gas used and the log.
func NewCheck(gasAllocated int64, log string) *CheckResult {
	return &CheckResult{
		GasAllocated: gasAllocated,
		Log:          log,
	}
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis %q: %s", key, err)
	}
	return nil
}

// Stream expects an array of json elements under the given key and returns
// a function that decodes one element per call into given destination.
// ErrEmpty is returned once all elements were consumed, any call after that
// (or after a decoding failure) returns ErrState.
func (o Options) Stream(key string) (func(interface{}) error, error) {
	msg := o[key]
	if len(msg) == 0 {
		return nil, errors.Wrapf(errors.ErrEmpty, "no %q in genesis", key)
	}

	dec := json.NewDecoder(bytes.NewReader(msg))
	var started, closed bool
	return func(dest interface{}) error {
		if closed {
			return errors.Wrap(errors.ErrState, "closed")
		}
		if !started {
			started = true
			if t, err := dec.Token(); err != nil || t != json.Delim('[') {
				closed = true
				return errors.Wrapf(errors.ErrInput, "%q must be a list", key)
			}
		}
		if !dec.More() {
			closed = true
			return errors.Wrap(errors.ErrEmpty, "end of list")
		}
		if err := dec.Decode(dest); err != nil {
			closed = true
			return errors.Wrap(errors.ErrInput, err.Error())
		}
		return nil
	}, nil
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
