package pacttest

import "github.com/iov-one/pact"

// Handler is a mock implementation of the pact.Handler interface. Each call
// is counted.
type Handler struct {
	checkCall   int
	CheckResult pact.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult pact.DeliverResult
	DeliverErr    error

	// Write if set is stored in the database before returning.
	Write *pact.Model
	// Panic if set makes both methods panic with its value.
	Panic interface{}
}

var _ pact.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.CheckResult, error) {
	h.checkCall++
	h.act(db)
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.DeliverResult, error) {
	h.deliverCall++
	h.act(db)
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) act(db pact.KVStore) {
	if h.Write != nil {
		db.Set(h.Write.Key, h.Write.Value)
	}
	if h.Panic != nil {
		panic(h.Panic)
	}
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// Decorator is a mock implementation of the pact.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding method.
// If error attributes are not set then wrapped handler method is called and
// its result returned.
type Decorator struct {
	checkCall int
	CheckErr  error

	deliverCall int
	DeliverErr  error
}

var _ pact.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx pact.Context, db pact.KVStore, tx pact.Tx, next pact.Checker) (*pact.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx pact.Context, db pact.KVStore, tx pact.Tx, next pact.Deliverer) (*pact.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate returns a handler that calls given decorator with the handler as
// the next step.
func Decorate(h pact.Handler, d pact.Decorator) pact.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn pact.Handler
	dc pact.Decorator
}

func (d *decoratedHandler) Check(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx pact.Context, db pact.KVStore, tx pact.Tx) (*pact.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
