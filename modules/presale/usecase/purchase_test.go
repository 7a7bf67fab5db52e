package usecase

import (
	"context"
	"testing"

	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestRecordPurchase(t *testing.T) {
	ctx := context.Background()
	// 0.001 USDT per token, 200M tokens allocated
	price := u128("1000")
	allocation := u128("200000000000000000000000000")

	t.Run("happy path", func(t *testing.T) {
		u, g := setup(t)
		openStage(t, u, 1, price, allocation)

		// 100,000 USDT buys 100M tokens at 0.001 USDT/token
		usdt := u128("100000000000")
		magax := u128("100000000000000000000000000")
		receipt, err := u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  usdt,
			MagaxAmount: magax,
		})
		require.NoError(t, err)
		require.Equal(t, addrBuyer, receipt.Buyer)
		require.Equal(t, usdt, receipt.UsdtPaid)
		require.Equal(t, magax, receipt.MagaxAllocated)
		require.Equal(t, uint8(1), receipt.StageNumber)

		require.Equal(t, magax, g.state.stages[1].TokensSold)
		require.Equal(t, usdt, g.state.ledger.TotalUSDT)
		require.Equal(t, magax, g.state.ledger.TotalMAGAX)
		require.Len(t, g.state.receipts, 1)

		event, ok := lastEventOfKind(g, entity.EventPurchaseRecorded)
		require.True(t, ok)
		require.Equal(t, addrRecorder, event.Actor)
	})

	t.Run("requires recorder role", func(t *testing.T) {
		u, _ := setup(t)
		openStage(t, u, 1, price, allocation)

		for _, caller := range []common.Address{addrNobody, addrAdmin, addrManager} {
			_, err := u.RecordPurchase(ctx, caller, RecordPurchaseParams{
				Buyer:       addrBuyer,
				UsdtAmount:  u128("1000"),
				MagaxAmount: u128("1000000000000000000"),
			})
			require.ErrorIs(t, err, errs.Unauthorized, caller)
		}
	})

	t.Run("zero inputs", func(t *testing.T) {
		u, _ := setup(t)
		openStage(t, u, 1, price, allocation)

		_, err := u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("0"),
			MagaxAmount: u128("1000000000000000000"),
		})
		require.ErrorIs(t, err, errs.InvalidInput)

		_, err = u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("1000"),
			MagaxAmount: u128("0"),
		})
		require.ErrorIs(t, err, errs.InvalidInput)

		_, err = u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
			UsdtAmount:  u128("1000"),
			MagaxAmount: u128("1000000000000000000"),
		})
		require.ErrorIs(t, err, errs.InvalidInput)
	})

	t.Run("no active stage", func(t *testing.T) {
		u, _ := setup(t)
		_, err := u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("1000"),
			MagaxAmount: u128("1000000000000000000"),
		})
		require.ErrorIs(t, err, errs.StateConflict)
	})

	t.Run("price outside tolerance", func(t *testing.T) {
		u, _ := setup(t)
		openStage(t, u, 1, price, allocation)

		// paying double the configured price
		_, err := u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("2000"),
			MagaxAmount: u128("1000000000000000000"),
		})
		require.ErrorIs(t, err, errs.StateConflict)
	})

	t.Run("paused rejects recording", func(t *testing.T) {
		u, _ := setup(t)
		openStage(t, u, 1, price, allocation)
		require.NoError(t, u.Pause(ctx, addrAdmin))

		_, err := u.RecordPurchase(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("1000"),
			MagaxAmount: u128("1000000000000000000"),
		})
		require.ErrorIs(t, err, errs.StateConflict)
	})
}

func TestRecordPurchaseWithReferral(t *testing.T) {
	ctx := context.Background()
	price := u128("1000")
	allocation := u128("200000000000000000000000000")

	t.Run("bonuses and referral link", func(t *testing.T) {
		u, g := setup(t)
		openStage(t, u, 1, price, allocation)

		usdt := u128("100000")
		magax := u128("100000000000000000000")
		receipt, err := u.RecordPurchaseWithReferral(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  usdt,
			MagaxAmount: magax,
		}, addrReferrer)
		require.NoError(t, err)

		// buyer receives base + 5%
		require.Equal(t, u128("105000000000000000000"), receipt.MagaxAllocated)

		// stage pool is drained by base + 5% + 7%
		require.Equal(t, u128("112000000000000000000"), g.state.stages[1].TokensSold)
		require.Equal(t, u128("112000000000000000000"), g.state.ledger.TotalMAGAX)

		referral := g.state.referrals[addrBuyer]
		require.Equal(t, addrReferrer, referral.Referrer)
		require.Equal(t, uint32(1), g.state.refCounts[addrReferrer])

		// the referrer gets no receipt of their own
		for _, r := range g.state.receipts {
			require.NotEqual(t, addrReferrer, r.Buyer)
		}

		_, ok := lastEventOfKind(g, entity.EventReferralBonusAwarded)
		require.True(t, ok)
	})

	t.Run("bonus math floors", func(t *testing.T) {
		u, g := setup(t)
		openStage(t, u, 1, u128("1000000"), allocation)

		// 101 base units: 5% = 5.05 and 7% = 7.07, both floored
		_, err := u.RecordPurchaseWithReferral(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("1"),
			MagaxAmount: u128("101"),
		}, addrReferrer)
		require.NoError(t, err)
		// 101 + 5 + 7
		require.Equal(t, u128("113"), g.state.stages[1].TokensSold)
		require.Equal(t, u128("106"), g.state.receipts[0].MagaxAllocated)
	})

	t.Run("self referral rejected", func(t *testing.T) {
		u, _ := setup(t)
		openStage(t, u, 1, price, allocation)

		_, err := u.RecordPurchaseWithReferral(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("1000"),
			MagaxAmount: u128("1000000000000000000"),
		}, addrBuyer)
		require.ErrorIs(t, err, errs.InvalidInput)
	})

	t.Run("first referral link is sticky", func(t *testing.T) {
		u, g := setup(t)
		openStage(t, u, 1, price, allocation)

		arg := RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("1000"),
			MagaxAmount: u128("1000000000000000000"),
		}
		_, err := u.RecordPurchaseWithReferral(ctx, addrRecorder, arg, addrReferrer)
		require.NoError(t, err)

		// a different referrer on the second purchase is ignored
		_, err = u.RecordPurchaseWithReferral(ctx, addrRecorder, arg, addrReferrer2)
		require.NoError(t, err)

		require.Equal(t, addrReferrer, g.state.referrals[addrBuyer].Referrer)
		require.Equal(t, uint32(1), g.state.refCounts[addrReferrer])
		require.Equal(t, uint32(0), g.state.refCounts[addrReferrer2])

		// both referred purchases credited the original referrer
		require.Equal(t, 2, countEventsOfKind(g, entity.EventReferralBonusAwarded))
	})
}

func TestRecordPurchaseWithPromo(t *testing.T) {
	ctx := context.Background()
	price := u128("1000")
	allocation := u128("200000000000000000000000000")

	t.Run("bonus within cap", func(t *testing.T) {
		u, g := setup(t)
		openStage(t, u, 1, price, allocation)

		magax := u128("100000000000000000000")
		receipt, err := u.RecordPurchaseWithPromo(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("100000"),
			MagaxAmount: magax,
		}, 1000) // 10%
		require.NoError(t, err)
		require.Equal(t, u128("110000000000000000000"), receipt.MagaxAllocated)

		_, ok := lastEventOfKind(g, entity.EventPromoBonusAwarded)
		require.True(t, ok)
	})

	t.Run("zero bps emits no promo event", func(t *testing.T) {
		u, g := setup(t)
		openStage(t, u, 1, price, allocation)

		_, err := u.RecordPurchaseWithPromo(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("1000"),
			MagaxAmount: u128("1000000000000000000"),
		}, 0)
		require.NoError(t, err)
		require.Equal(t, 0, countEventsOfKind(g, entity.EventPromoBonusAwarded))
	})

	t.Run("bps above cap rejected", func(t *testing.T) {
		u, _ := setup(t)
		openStage(t, u, 1, price, allocation)

		_, err := u.RecordPurchaseWithPromo(ctx, addrRecorder, RecordPurchaseParams{
			Buyer:       addrBuyer,
			UsdtAmount:  u128("1000"),
			MagaxAmount: u128("1000000000000000000"),
		}, DefaultMaxPromoBps+1)
		require.ErrorIs(t, err, errs.InvalidInput)
	})
}

func TestBuyerSummaryAggregation(t *testing.T) {
	ctx := context.Background()
	u, g := setup(t)
	openStage(t, u, 1, u128("1000"), u128("200000000000000000000000000"))

	arg := RecordPurchaseParams{
		Buyer:       addrBuyer,
		UsdtAmount:  u128("1000"),
		MagaxAmount: u128("1000000000000000000"),
	}
	_, err := u.RecordPurchase(ctx, addrRecorder, arg)
	require.NoError(t, err)
	_, err = u.RecordPurchase(ctx, addrRecorder, arg)
	require.NoError(t, err)

	arg.Buyer = addrBuyer2
	_, err = u.RecordPurchase(ctx, addrRecorder, arg)
	require.NoError(t, err)

	summary, err := g.GetBuyerSummary(ctx, addrBuyer)
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.PurchaseCount)
	require.Equal(t, u128("2000"), summary.TotalUSDT)
	require.Equal(t, u128("2000000000000000000"), summary.TotalMAGAX)
	require.True(t, summary.Referrer.IsZero())
}
