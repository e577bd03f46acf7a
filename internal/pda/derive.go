// Package pda implements deterministic program-derived address derivation.
//
// A derived address is computed purely from a set of seed byte slices, a
// deployment identity, and a one-byte bump discriminant. The same inputs
// always produce the same address, so both sides of an operation can agree
// on where an entity lives without any ledger round trip.
package pda

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLen is the byte length of every address and identity value.
const AddressLen = 32

// Address is a 32-byte ledger address or identity.
type Address [AddressLen]byte

// derivationMarker domain-separates derived addresses from plain identities.
var derivationMarker = []byte("0xmartDerivedAddress")

var (
	// ErrNoBump is returned when no bump in [0,255] yields a usable address.
	ErrNoBump = errors.New("no valid bump discriminant found")
	// ErrInvalidAddress is returned when parsing malformed address text.
	ErrInvalidAddress = errors.New("invalid address")
)

// Derive computes the derived address for the given deployment identity and
// seeds, searching the bump discriminant from 255 downward. Candidates that
// land in the reserved identity range are skipped so derived addresses never
// collide with system-reserved addresses.
func Derive(deployment Address, seeds ...[]byte) (Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr := deriveWithBump(deployment, seeds, uint8(bump))
		if addr.reserved() {
			continue
		}
		return addr, uint8(bump), nil
	}
	return Address{}, 0, ErrNoBump
}

// DeriveWithBump recomputes the address for a known bump. Verification paths
// use this to check a caller-supplied (address, bump) pair.
func DeriveWithBump(deployment Address, bump uint8, seeds ...[]byte) Address {
	return deriveWithBump(deployment, seeds, bump)
}

func deriveWithBump(deployment Address, seeds [][]byte, bump uint8) Address {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte{bump})
	h.Write(deployment[:])
	h.Write(derivationMarker)

	var addr Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// reserved reports whether the address falls in the range reserved for
// system identities. Derivation skips these candidates.
func (a Address) reserved() bool {
	return a[0] == 0
}

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Equal reports whether two addresses are identical.
func (a Address) Equal(other Address) bool {
	return a == other
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLen)
	copy(out, a[:])
	return out
}

// String renders the address as base58 text.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Parse decodes a base58 address string.
func Parse(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return FromBytes(raw)
}

// FromBytes builds an address from exactly 32 raw bytes.
func FromBytes(raw []byte) (Address, error) {
	if len(raw) != AddressLen {
		return Address{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAddress, len(raw), AddressLen)
	}
	var addr Address
	copy(addr[:], raw)
	return addr, nil
}

// MarshalText implements encoding.TextMarshaler using base58.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(bytes.TrimSpace(text)))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
