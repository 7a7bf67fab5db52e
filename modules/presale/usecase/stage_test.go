package usecase

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestConfigureStage(t *testing.T) {
	ctx := context.Background()
	price := u128("1000")
	allocation := u128("1000000000000000000000000")

	t.Run("success", func(t *testing.T) {
		u, g := setup(t)
		err := u.ConfigureStage(ctx, addrManager, ConfigureStageParams{
			Number:          1,
			PricePerToken:   price,
			TokensAllocated: allocation,
		})
		require.NoError(t, err)

		stage := g.state.stages[1]
		require.True(t, stage.Configured)
		require.False(t, stage.Active)
		require.Equal(t, price, stage.PricePerToken)
		require.Equal(t, allocation, stage.TokensAllocated)
		require.True(t, stage.TokensSold.IsZero())

		_, ok := lastEventOfKind(g, entity.EventStageConfigured)
		require.True(t, ok)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		u, _ := setup(t)
		for _, arg := range []ConfigureStageParams{
			{Number: 0, PricePerToken: price, TokensAllocated: allocation},
			{Number: MaxStageNumber + 1, PricePerToken: price, TokensAllocated: allocation},
			{Number: 1, PricePerToken: uint128.Zero, TokensAllocated: allocation},
			{Number: 1, PricePerToken: price, TokensAllocated: uint128.Zero},
		} {
			err := u.ConfigureStage(ctx, addrManager, arg)
			require.ErrorIs(t, err, errs.InvalidInput)
		}
	})

	t.Run("requires stage manager", func(t *testing.T) {
		u, _ := setup(t)
		err := u.ConfigureStage(ctx, addrNobody, ConfigureStageParams{
			Number:          1,
			PricePerToken:   price,
			TokensAllocated: allocation,
		})
		require.ErrorIs(t, err, errs.Unauthorized)

		// admin role does not imply stage management
		err = u.ConfigureStage(ctx, addrAdmin, ConfigureStageParams{
			Number:          1,
			PricePerToken:   price,
			TokensAllocated: allocation,
		})
		require.ErrorIs(t, err, errs.Unauthorized)
	})

	t.Run("reconfigure before activation", func(t *testing.T) {
		u, g := setup(t)
		require.NoError(t, u.ConfigureStage(ctx, addrManager, ConfigureStageParams{
			Number:          1,
			PricePerToken:   price,
			TokensAllocated: allocation,
		}))

		newPrice := u128("2000")
		require.NoError(t, u.ConfigureStage(ctx, addrManager, ConfigureStageParams{
			Number:          1,
			PricePerToken:   newPrice,
			TokensAllocated: allocation,
		}))
		require.Equal(t, newPrice, g.state.stages[1].PricePerToken)
	})

	t.Run("reconfigure after activation is rejected", func(t *testing.T) {
		u, _ := setup(t)
		openStage(t, u, 1, price, allocation)

		err := u.ConfigureStage(ctx, addrManager, ConfigureStageParams{
			Number:          1,
			PricePerToken:   price,
			TokensAllocated: allocation,
		})
		require.ErrorIs(t, err, errs.StateConflict)
	})
}

func TestActivateStage(t *testing.T) {
	ctx := context.Background()
	price := u128("1000")
	allocation := u128("1000000000000000000000000")

	t.Run("unconfigured stage", func(t *testing.T) {
		u, _ := setup(t)
		err := u.ActivateStage(ctx, addrManager, 1)
		require.ErrorIs(t, err, errs.StateConflict)
	})

	t.Run("requires stage manager", func(t *testing.T) {
		u, _ := setup(t)
		require.NoError(t, u.ConfigureStage(ctx, addrManager, ConfigureStageParams{
			Number:          1,
			PricePerToken:   price,
			TokensAllocated: allocation,
		}))
		err := u.ActivateStage(ctx, addrNobody, 1)
		require.ErrorIs(t, err, errs.Unauthorized)
	})

	t.Run("switches the single active stage", func(t *testing.T) {
		u, g := setup(t)
		openStage(t, u, 1, price, allocation)
		require.NoError(t, u.ConfigureStage(ctx, addrManager, ConfigureStageParams{
			Number:          2,
			PricePerToken:   price,
			TokensAllocated: allocation,
		}))

		require.NoError(t, u.ActivateStage(ctx, addrManager, 2))
		require.False(t, g.state.stages[1].Active)
		require.True(t, g.state.stages[2].Active)
		require.Equal(t, uint8(2), g.state.ledger.ActiveStage)
	})

	t.Run("already active", func(t *testing.T) {
		u, _ := setup(t)
		openStage(t, u, 1, price, allocation)
		err := u.ActivateStage(ctx, addrManager, 1)
		require.ErrorIs(t, err, errs.StateConflict)
	})

	t.Run("completed stage cannot be reactivated", func(t *testing.T) {
		u, g := setup(t)
		allocation := u128("1000000000000000000")
		openStage(t, u, 1, price, allocation)

		// consume the whole allocation
		_, err := u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("1000"),
			MagaxAmount: allocation,
		})
		require.NoError(t, err)
		require.True(t, g.state.stages[1].Completed)

		err = u.ActivateStage(ctx, addrManager, 1)
		require.ErrorIs(t, err, errs.StateConflict)
	})
}

func TestStageExhaustion(t *testing.T) {
	ctx := context.Background()
	price := u128("1000")
	// one whole token's worth of allocation
	allocation := u128("1000000000000000000")

	u, g := setup(t)
	openStage(t, u, 1, price, allocation)

	receipt, err := u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
		Buyer:       addrBuyer,
		UsdtAmount:  u128("1000"),
		MagaxAmount: allocation,
	})
	require.NoError(t, err)
	require.Equal(t, allocation, receipt.MagaxAllocated)

	stage := g.state.stages[1]
	require.True(t, stage.Completed)
	require.False(t, stage.Active)
	require.NotNil(t, stage.CompletedAt)
	require.Equal(t, uint8(0), g.state.ledger.ActiveStage)

	_, ok := lastEventOfKind(g, entity.EventStageCompleted)
	require.True(t, ok)

	// no active stage anymore, further purchases fail
	_, err = u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
		Buyer:       addrBuyer,
		UsdtAmount:  u128("1000"),
		MagaxAmount: u128("1000000000000000000"),
	})
	require.ErrorIs(t, err, errs.StateConflict)
}

func TestPurchaseExceedingRemainingAllocation(t *testing.T) {
	ctx := context.Background()
	u, g := setup(t)
	openStage(t, u, 1, u128("1000"), u128("1000000000000000000"))

	_, err := u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
		Buyer:       addrBuyer,
		UsdtAmount:  u128("2000"),
		MagaxAmount: u128("2000000000000000000"),
	})
	require.ErrorIs(t, err, errs.StateConflict)
	require.True(t, errors.Is(err, errs.StateConflict))

	// the failed purchase left nothing behind
	require.True(t, g.state.stages[1].TokensSold.IsZero())
	require.Empty(t, g.state.receipts)
}
