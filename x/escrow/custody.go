package escrow

import (
	"context"

	"github.com/iov-one/pact"
	"github.com/iov-one/pact/errors"
	"github.com/iov-one/pact/x"
)

// ProgramID is the program name of all addresses derived by this package.
const ProgramID = "escrow"

var (
	seedState     = []byte("escrow-state")
	seedCustody   = []byte("escrow-token")
	seedReserve   = []byte("escrow-reserve")
	seedAuthority = []byte("escrow")
)

func derive(seed []byte, initializer pact.Address, ticker string) (pact.Condition, uint8, error) {
	return pact.FindProgramAddress(ProgramID, seed, initializer, []byte(ticker))
}

func deriveAddress(seed []byte, initializer pact.Address, ticker string) (pact.Address, error) {
	c, _, err := derive(seed, initializer, ticker)
	if err != nil {
		return nil, err
	}
	return c.Address(), nil
}

// RecordAddress returns the key of the escrow record of given initializer
// and ticker.
func RecordAddress(initializer pact.Address, ticker string) (pact.Address, error) {
	return deriveAddress(seedState, initializer, ticker)
}

// CustodyAddress returns the address of the token account that holds the
// locked funds.
func CustodyAddress(initializer pact.Address, ticker string) (pact.Address, error) {
	return deriveAddress(seedCustody, initializer, ticker)
}

// ReserveAddress returns the address of the token account that holds the
// storage reservation.
func ReserveAddress(initializer pact.Address, ticker string) (pact.Address, error) {
	return deriveAddress(seedReserve, initializer, ticker)
}

// Authority returns the custodial authority condition together with the
// bump found while deriving it.
func Authority(initializer pact.Address, ticker string) (pact.Condition, uint8, error) {
	return derive(seedAuthority, initializer, ticker)
}

// authorityWithBump recreates the custodial authority using a known bump.
func authorityWithBump(initializer pact.Address, ticker string, bump uint8) (pact.Condition, error) {
	c, err := pact.CreateProgramAddress(ProgramID, seedAuthority, initializer, []byte(ticker), []byte{bump})
	if err != nil {
		return nil, errors.Wrap(err, "custodial authority")
	}
	return c, nil
}

type contextKey int // local to the escrow module

const (
	contextKeyCustody contextKey = iota
)

// withCustody is a private method, as only this module can act as the
// custodial authority.
func withCustody(ctx pact.Context, authority pact.Condition) pact.Context {
	return context.WithValue(ctx, contextKeyCustody, authority)
}

// Authenticate reports the custodial authority granted by the escrow
// settlement.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the authority set on this context, if any.
func (a Authenticate) GetConditions(ctx pact.Context) []pact.Condition {
	val, _ := ctx.Value(contextKeyCustody).(pact.Condition)
	if val == nil {
		return nil
	}
	return []pact.Condition{val}
}

// HasAddress returns true iff this address is in GetConditions
func (a Authenticate) HasAddress(ctx pact.Context, addr pact.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
