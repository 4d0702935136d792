package pacttest

import (
	"context"

	"github.com/iov-one/pact"
)

// Auth authenticates a fixed set of conditions, whatever the context.
// Signer and Signers are combined, either may be left empty.
type Auth struct {
	Signer  pact.Condition
	Signers []pact.Condition
}

func (a *Auth) GetConditions(pact.Context) []pact.Condition {
	conds := make([]pact.Condition, 0, len(a.Signers)+1)
	conds = append(conds, a.Signers...)
	if a.Signer != nil {
		conds = append(conds, a.Signer)
	}
	return conds
}

func (a *Auth) HasAddress(ctx pact.Context, addr pact.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

// CtxAuth authenticates the conditions stored in the context by
// SetConditions. Authenticators with different keys do not see each other's
// conditions, which lets a test stand in for two independent sources such
// as signatures and the escrow authority.
type CtxAuth struct {
	Key string
}

type ctxAuthKey string

func (a *CtxAuth) SetConditions(ctx pact.Context, conds ...pact.Condition) pact.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conds)
}

func (a *CtxAuth) GetConditions(ctx pact.Context) []pact.Condition {
	conds, _ := ctx.Value(ctxAuthKey(a.Key)).([]pact.Condition)
	return conds
}

func (a *CtxAuth) HasAddress(ctx pact.Context, addr pact.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

func hasAddress(conds []pact.Condition, addr pact.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
