package common

import (
	"testing"

	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		addr, err := ParseAddress("  0xAbCdEf0123456789aBcDeF0123456789ABCDEF01 ")
		require.NoError(t, err)
		assert.Equal(t, Address("0xabcdef0123456789abcdef0123456789abcdef01"), addr)
	})

	t.Run("accepts missing 0x prefix", func(t *testing.T) {
		addr, err := ParseAddress("abcdef0123456789abcdef0123456789abcdef01")
		require.NoError(t, err)
		assert.Equal(t, Address("0xabcdef0123456789abcdef0123456789abcdef01"), addr)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		for _, input := range []string{
			"",
			"0x",
			"0xzzcdef0123456789abcdef0123456789abcdef01",
			"0xabcd",
			"0xabcdef0123456789abcdef0123456789abcdef0123", // too long
		} {
			_, err := ParseAddress(input)
			assert.ErrorIs(t, err, errs.InvalidInput, input)
		}
	})
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, Address("").IsZero())
	assert.True(t, ZeroAddress.IsZero())
	assert.False(t, Address("0xabcdef0123456789abcdef0123456789abcdef01").IsZero())
}
