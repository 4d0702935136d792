package escrow

import "github.com/iov-one/pact/errors"

// escrow takes 1010-1020
var (
	// ErrTermsMismatch is returned when the terms given by a taker do not
	// match the stored offer.
	ErrTermsMismatch = errors.Register(1010, "terms mismatch")
)
