package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger"
	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger/slogx"
)

const (
	// Referral bonus rates in basis points of the base purchase.
	RefereeBonusBps  = 500 // 5% extra tokens for the referred buyer
	ReferrerBonusBps = 700 // 7% of the base amount awarded to the referrer
)

type RecordPurchaseParams struct {
	Buyer       common.Address
	UsdtAmount  uint128.Uint128 // 6-decimal USDT units
	MagaxAmount uint128.Uint128 // 18-decimal MAGAX units
}

func (arg RecordPurchaseParams) validate() error {
	if arg.Buyer.IsZero() {
		return errors.Wrap(errs.InvalidInput, "buyer address is required")
	}
	if arg.UsdtAmount.IsZero() {
		return errors.Wrap(errs.InvalidInput, "usdt amount must not be zero")
	}
	if arg.MagaxAmount.IsZero() {
		return errors.Wrap(errs.InvalidInput, "magax amount must not be zero")
	}
	return nil
}

// RecordPurchase validates and records a plain purchase against the active stage.
func (u *Usecase) RecordPurchase(ctx context.Context, caller common.Address, arg RecordPurchaseParams) (*entity.Receipt, error) {
	if err := arg.validate(); err != nil {
		return nil, err
	}

	var receipt *entity.Receipt
	err := u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		var err error
		receipt, err = u.recordPurchase(ctx, qtx, caller, arg, uint128.Zero, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// RecordPurchaseWithReferral records a purchase plus referral bonuses. The
// referee bonus is folded into the buyer's receipt; the referrer bonus is
// tracked through the audit event and referral counters only, so a buyer's
// receipts stay strictly their own purchases.
func (u *Usecase) RecordPurchaseWithReferral(ctx context.Context, caller common.Address, arg RecordPurchaseParams, referrer common.Address) (*entity.Receipt, error) {
	if err := arg.validate(); err != nil {
		return nil, err
	}
	if referrer.IsZero() {
		return nil, errors.Wrap(errs.InvalidInput, "referrer address is required")
	}
	if referrer == arg.Buyer {
		return nil, errors.Wrap(errs.InvalidInput, "buyer cannot refer themselves")
	}

	var receipt *entity.Receipt
	err := u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		// The first referral link is sticky: once a buyer has been referred,
		// later referred purchases keep crediting the original referrer.
		linked, err := qtx.GetReferral(ctx, arg.Buyer)
		if err != nil && !errors.Is(err, errs.NotFound) {
			return errors.Wrap(err, "failed to load referral link")
		}
		isNewLink := linked == nil
		if !isNewLink {
			referrer = linked.Referrer
		}

		refereeBonus := bonusAmount(arg.MagaxAmount, RefereeBonusBps)
		referrerBonus := bonusAmount(arg.MagaxAmount, ReferrerBonusBps)

		receipt, err = u.recordPurchase(ctx, qtx, caller, arg, refereeBonus, &referralAward{
			Referrer:      referrer,
			ReferrerBonus: referrerBonus,
		})
		if err != nil {
			return err
		}

		if isNewLink {
			if err := qtx.CreateReferral(ctx, entity.Referral{
				Buyer:     arg.Buyer,
				Referrer:  referrer,
				CreatedAt: u.now().UTC(),
			}); err != nil {
				return errors.Wrap(err, "failed to create referral link")
			}
			if _, err := qtx.IncrementReferralCount(ctx, referrer); err != nil {
				return errors.Wrap(err, "failed to increment referral count")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// RecordPurchaseWithPromo records a purchase with a promotional bonus of
// promoBps basis points, bounded by the multi-sig governed maxPromoBps.
func (u *Usecase) RecordPurchaseWithPromo(ctx context.Context, caller common.Address, arg RecordPurchaseParams, promoBps uint16) (*entity.Receipt, error) {
	if err := arg.validate(); err != nil {
		return nil, err
	}

	var receipt *entity.Receipt
	err := u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		state, err := qtx.GetLedgerState(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load ledger state")
		}
		if promoBps > state.MaxPromoBps {
			return errors.Wrapf(errs.InvalidInput, "promo bps %d exceeds maximum %d", promoBps, state.MaxPromoBps)
		}

		promoBonus := bonusAmount(arg.MagaxAmount, promoBps)
		receipt, err = u.recordPurchase(ctx, qtx, caller, arg, promoBonus, nil)
		if err != nil {
			return err
		}

		if !promoBonus.IsZero() {
			if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
				Kind:  entity.EventPromoBonusAwarded,
				Actor: caller,
				Payload: map[string]any{
					"buyer":      arg.Buyer,
					"baseAmount": arg.MagaxAmount,
					"bonus":      promoBonus,
					"promoBps":   promoBps,
					"stage":      receipt.StageNumber,
				},
			}); err != nil {
				return errors.Wrap(err, "failed to append event")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

type referralAward struct {
	Referrer      common.Address
	ReferrerBonus uint128.Uint128
}

// recordPurchase is the shared recording path. buyerBonus is added to the
// buyer's receipt; award, when set, additionally consumes allocation for the
// referrer-side bonus without creating a receipt for the referrer.
func (u *Usecase) recordPurchase(ctx context.Context, qtx datagateway.PresaleDataGatewayWithTx, caller common.Address, arg RecordPurchaseParams, buyerBonus uint128.Uint128, award *referralAward) (*entity.Receipt, error) {
	if err := u.requireRole(ctx, qtx, caller, entity.RoleRecorder); err != nil {
		return nil, err
	}

	state, err := qtx.GetLedgerState(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ledger state")
	}
	if err := requireActive(state); err != nil {
		return nil, err
	}

	if state.ActiveStage == 0 {
		return nil, errors.Wrap(errs.StateConflict, "no active stage")
	}
	stage, err := qtx.GetStage(ctx, state.ActiveStage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active stage")
	}

	if !priceWithinTolerance(stage.PricePerToken, arg.UsdtAmount, arg.MagaxAmount) {
		return nil, errors.Wrapf(errs.StateConflict,
			"implied price of %s USDT for %s MAGAX is outside tolerance of stage %d price %s",
			arg.UsdtAmount, arg.MagaxAmount, stage.Number, stage.PricePerToken)
	}

	buyerAllocation, err := safeAdd(arg.MagaxAmount, buyerBonus)
	if err != nil {
		return nil, err
	}
	consumed := buyerAllocation
	if award != nil {
		if consumed, err = safeAdd(consumed, award.ReferrerBonus); err != nil {
			return nil, err
		}
	}

	// Bonuses draw from the same stage allocation pool as the base purchase.
	if err := u.sellFromStage(ctx, qtx, state, stage, consumed); err != nil {
		return nil, err
	}

	priorCount, err := qtx.CountReceipts(ctx, arg.Buyer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count receipts")
	}
	isNewBuyer := priorCount == 0

	receipt := entity.Receipt{
		Buyer:          arg.Buyer,
		UsdtPaid:       arg.UsdtAmount,
		MagaxAllocated: buyerAllocation,
		StageNumber:    stage.Number,
		Timestamp:      u.now().UTC(),
	}
	if err := qtx.CreateReceipt(ctx, receipt); err != nil {
		return nil, errors.Wrap(err, "failed to create receipt")
	}

	if state.TotalUSDT, err = safeAdd(state.TotalUSDT, arg.UsdtAmount); err != nil {
		return nil, err
	}
	if state.TotalMAGAX, err = safeAdd(state.TotalMAGAX, consumed); err != nil {
		return nil, err
	}
	if err := qtx.UpdateLedgerState(ctx, *state); err != nil {
		return nil, errors.Wrap(err, "failed to update ledger state")
	}

	if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
		Kind:  entity.EventPurchaseRecorded,
		Actor: caller,
		Payload: map[string]any{
			"buyer":          arg.Buyer,
			"usdtPaid":       arg.UsdtAmount,
			"magaxAllocated": buyerAllocation,
			"timestamp":      receipt.Timestamp.Unix(),
			"stage":          stage.Number,
			"purchaseCount":  priorCount + 1,
			"isNewBuyer":     isNewBuyer,
		},
	}); err != nil {
		return nil, errors.Wrap(err, "failed to append event")
	}

	if award != nil {
		if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:  entity.EventReferralBonusAwarded,
			Actor: caller,
			Payload: map[string]any{
				"buyer":         arg.Buyer,
				"referrer":      award.Referrer,
				"refereeBonus":  buyerBonus,
				"referrerBonus": award.ReferrerBonus,
				"stage":         stage.Number,
			},
		}); err != nil {
			return nil, errors.Wrap(err, "failed to append event")
		}
	}

	logger.InfoContext(ctx, "Purchase recorded",
		slogx.Stringer("buyer", arg.Buyer),
		slogx.Stringer("usdt", arg.UsdtAmount),
		slogx.Stringer("magax", buyerAllocation),
		slogx.Int("stage", int(stage.Number)),
		slogx.Bool("newBuyer", isNewBuyer),
	)
	return &receipt, nil
}
