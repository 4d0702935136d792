package utils

import (
	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
)

// Recovery turns a panic in the wrapped handler into an ErrPanic error. The
// panic value is logged together with the message path, the returned error
// is redacted by the application before it reaches the client.
type Recovery struct{}

var _ pact.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (r Recovery) Check(ctx pact.Context, store pact.KVStore, tx pact.Tx, next pact.Checker) (_ *pact.CheckResult, err error) {
	defer r.recovered(ctx, tx, &err)
	return next.Check(ctx, store, tx)
}

func (r Recovery) Deliver(ctx pact.Context, store pact.KVStore, tx pact.Tx, next pact.Deliverer) (_ *pact.DeliverResult, err error) {
	defer r.recovered(ctx, tx, &err)
	return next.Deliver(ctx, store, tx)
}

// recovered must be deferred directly, recover has no effect otherwise.
func (Recovery) recovered(ctx pact.Context, tx pact.Tx, err *error) {
	p := recover()
	if p == nil {
		return
	}
	*err = errors.Wrapf(errors.ErrPanic, "%v", p)
	pact.GetLogger(ctx).Error("handler panic", "path", pact.GetPath(tx), "panic", p)
}
