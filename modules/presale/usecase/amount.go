package usecase

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/holiman/uint256"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
)

const bpsDenominator = 10_000

// magaxDecimalsMultiplier is 10^18, the number of MAGAX base units per whole token.
var magaxDecimalsMultiplier = uint256.MustFromDecimal("1000000000000000000")

// safeAdd returns a+b or Overflow if the sum exceeds 128 bits.
func safeAdd(a, b uint128.Uint128) (uint128.Uint128, error) {
	sum := new(big.Int).Add(a.Big(), b.Big())
	if sum.BitLen() > 128 {
		return uint128.Zero, errors.WithStack(errs.Overflow)
	}
	u, _ := uint128.FromBig(sum)
	return u, nil
}

// bonusAmount returns floor(base * bps / 10000). The intermediate product can
// exceed 128 bits, so it is computed in 256-bit space.
func bonusAmount(base uint128.Uint128, bps uint16) uint128.Uint128 {
	x := uint256.MustFromBig(base.Big())
	x.Mul(x, uint256.NewInt(uint64(bps)))
	x.Div(x, uint256.NewInt(bpsDenominator))
	// floor(base * bps / 10000) <= base, always fits back into 128 bits
	u, _ := uint128.FromBig(x.ToBig())
	return u
}

// priceWithinTolerance checks that the per-token price implied by
// usdt/magax matches the configured stage price within an absolute tolerance
// of ±1 six-decimal USDT unit:
//
//	|usdt*10^18 - price*magax| <= 1*magax
//
// The cross products are computed in 256-bit space so large purchases cannot
// overflow the comparison.
func priceWithinTolerance(price, usdt, magax uint128.Uint128) bool {
	lhs := uint256.MustFromBig(usdt.Big())
	lhs.Mul(lhs, magaxDecimalsMultiplier)

	rhs := uint256.MustFromBig(price.Big())
	rhs.Mul(rhs, uint256.MustFromBig(magax.Big()))

	var diff uint256.Int
	if lhs.Cmp(rhs) >= 0 {
		diff.Sub(lhs, rhs)
	} else {
		diff.Sub(rhs, lhs)
	}
	return diff.Cmp(uint256.MustFromBig(magax.Big())) <= 0
}
