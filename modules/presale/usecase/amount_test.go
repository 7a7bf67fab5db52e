package usecase

import (
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/stretchr/testify/require"
)

func TestSafeAdd(t *testing.T) {
	sum, err := safeAdd(u128("1"), u128("2"))
	require.NoError(t, err)
	require.Equal(t, u128("3"), sum)

	sum, err = safeAdd(uint128.Max.Sub64(1), uint128.From64(1))
	require.NoError(t, err)
	require.Equal(t, uint128.Max, sum)

	_, err = safeAdd(uint128.Max, uint128.From64(1))
	require.ErrorIs(t, err, errs.Overflow)
}

func TestBonusAmount(t *testing.T) {
	// exact division
	require.Equal(t, u128("50"), bonusAmount(u128("1000"), 500))
	// floor behaviour
	require.Equal(t, u128("5"), bonusAmount(u128("101"), 500))
	require.Equal(t, u128("0"), bonusAmount(u128("1"), 500))
	// zero rate
	require.Equal(t, u128("0"), bonusAmount(u128("1000"), 0))
	// the intermediate product exceeds 128 bits but the result still fits
	require.Equal(t, uint128.Max.Div64(2), bonusAmount(uint128.Max, 5000))
}

func TestPriceWithinTolerance(t *testing.T) {
	price := u128("1000") // 0.001 USDT per token
	oneToken := u128("1000000000000000000")

	// exact price
	require.True(t, priceWithinTolerance(price, u128("1000"), oneToken))
	// off by exactly one token's worth is still within tolerance
	require.True(t, priceWithinTolerance(price, u128("1001"), oneToken))
	// off by more than the tolerance
	require.False(t, priceWithinTolerance(price, u128("1002"), oneToken))
	require.False(t, priceWithinTolerance(price, u128("2000"), oneToken))

	// large purchase does not overflow the comparison; the absolute tolerance
	// scales with the purchased amount
	bigMagax := u128("100000000000000000000000000") // 100M tokens
	require.True(t, priceWithinTolerance(price, u128("100000000000"), bigMagax))
	require.True(t, priceWithinTolerance(price, u128("100100000000"), bigMagax))
	require.False(t, priceWithinTolerance(price, u128("100100000001"), bigMagax))
}
