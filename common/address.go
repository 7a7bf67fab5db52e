package common

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
)

// AddressLength is the byte length of an EVM account address.
const AddressLength = 20

// Address is a checksummed-insensitive, lowercased 0x-prefixed EVM address.
// The zero value is the zero address.
type Address string

// ZeroAddress is the null account. It is never a valid buyer, referrer or recipient.
const ZeroAddress = Address("0x0000000000000000000000000000000000000000")

// ParseAddress parses and normalizes a 0x-prefixed hex address.
func ParseAddress(s string) (Address, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return "", errors.Wrapf(errs.InvalidInput, "invalid address %q", s)
	}
	if len(b) != AddressLength {
		return "", errors.Wrapf(errs.InvalidInput, "address must be %d bytes, got %d", AddressLength, len(b))
	}
	return Address("0x" + raw), nil
}

func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is empty or the null account.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}
