package pact

import (
	"crypto/sha256"
	"regexp"

	"filippo.io/edwards25519"
	"github.com/iov-one/pact/errors"
)

const (
	// MaxSeeds is the maximum number of seeds a program address can be
	// derived from, bump included.
	MaxSeeds = 16

	// MaxSeedLength is the maximum length of a single seed in bytes.
	MaxSeedLength = 32

	// ProgramAddressType is the condition type of all program addresses.
	ProgramAddressType = "pda"

	pdaMarker = "ProgramDerivedAddress"
)

var isProgramName = regexp.MustCompile(`^[a-zA-Z0-9_\-]{3,8}$`).MatchString

// CreateProgramAddress derives a keyless condition owned by the program of
// given name. The condition data is a 32 byte digest of all seeds and the
// program name. Seeds that hash into a valid ed25519 point are rejected,
// because a private key might exist for such value.
func CreateProgramAddress(program string, seeds ...[]byte) (Condition, error) {
	if err := validateSeeds(program, seeds); err != nil {
		return nil, err
	}
	point := programPoint(program, seeds)
	if IsOnCurve(point) {
		return nil, errors.Wrap(errors.ErrInput, "derived address is on the curve")
	}
	return NewCondition(program, ProgramAddressType, point), nil
}

// FindProgramAddress searches for a bump seed that together with given seeds
// produces a valid program address. The bump is tried from 255 down to 0 and
// appended as the last seed. Both the condition and the bump are returned so
// that the bump can be stored and the search does not have to be repeated.
func FindProgramAddress(program string, seeds ...[]byte) (Condition, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	withBump[len(seeds)] = []byte{0}
	if err := validateSeeds(program, withBump); err != nil {
		return nil, 0, err
	}
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		if point := programPoint(program, withBump); !IsOnCurve(point) {
			return NewCondition(program, ProgramAddressType, point), uint8(bump), nil
		}
	}
	return nil, 0, errors.Wrap(errors.ErrState, "no viable bump found")
}

func validateSeeds(program string, seeds [][]byte) error {
	if !isProgramName(program) {
		return errors.Wrapf(errors.ErrInput, "invalid program name %q", program)
	}
	if len(seeds) > MaxSeeds {
		return errors.Wrapf(errors.ErrInput, "too many seeds: %d", len(seeds))
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return errors.Wrapf(errors.ErrInput, "seed %d too long: %d", i, len(s))
		}
	}
	return nil
}

func programPoint(program string, seeds [][]byte) []byte {
	h := sha256.New()
	for _, s := range seeds {
		_, _ = h.Write(s)
	}
	_, _ = h.Write([]byte(program))
	_, _ = h.Write([]byte(pdaMarker))
	return h.Sum(nil)
}

// IsOnCurve returns true if given 32 bytes decode to a point of the ed25519
// curve.
func IsOnCurve(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
