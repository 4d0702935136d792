package app

import (
	"github.com/iov-one/pact"
)

// Decorators is an ordered stack of decorators waiting for the handler
// they wrap. The first decorator runs outermost.
type Decorators []pact.Decorator

// ChainDecorators starts a stack, for example:
//
//   app.ChainDecorators(
//     utils.NewLogging(),
//     utils.NewRecovery(),
//     sigs.NewDecorator(),
//     utils.NewSavepoint().OnDeliver(),
//   ).WithHandler(router)
func ChainDecorators(ds ...pact.Decorator) Decorators {
	return Decorators(nil).Chain(ds...)
}

// Chain returns a new stack with ds appended. Nil entries are skipped so
// optional decorators can be passed unconditionally. The receiver is never
// modified.
func (d Decorators) Chain(ds ...pact.Decorator) Decorators {
	out := make(Decorators, len(d), len(d)+len(ds))
	copy(out, d)
	for _, dec := range ds {
		if dec != nil {
			out = append(out, dec)
		}
	}
	return out
}

// WithHandler resolves the stack into a single handler.
func (d Decorators) WithHandler(h pact.Handler) pact.Handler {
	for i := len(d) - 1; i >= 0; i-- {
		h = layer{dec: d[i], next: h}
	}
	return h
}

// layer runs one decorator around the rest of the stack.
type layer struct {
	dec  pact.Decorator
	next pact.Handler
}

func (l layer) Check(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.CheckResult, error) {
	return l.dec.Check(ctx, db, tx, l.next)
}

func (l layer) Deliver(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.DeliverResult, error) {
	return l.dec.Deliver(ctx, db, tx, l.next)
}
