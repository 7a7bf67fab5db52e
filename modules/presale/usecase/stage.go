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

type ConfigureStageParams struct {
	Number          uint8
	PricePerToken   uint128.Uint128
	TokensAllocated uint128.Uint128
}

// ConfigureStage creates or re-configures a stage. Re-configuration is only
// allowed while the stage has not been activated, so mistakes can be fixed
// before any sale happened against it.
func (u *Usecase) ConfigureStage(ctx context.Context, caller common.Address, arg ConfigureStageParams) error {
	if arg.Number < 1 || arg.Number > MaxStageNumber {
		return errors.Wrapf(errs.InvalidInput, "stage number must be in 1..%d, got %d", MaxStageNumber, arg.Number)
	}
	if arg.PricePerToken.IsZero() {
		return errors.Wrap(errs.InvalidInput, "price per token must not be zero")
	}
	if arg.TokensAllocated.IsZero() {
		return errors.Wrap(errs.InvalidInput, "token allocation must not be zero")
	}

	return u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		if err := u.requireRole(ctx, qtx, caller, entity.RoleStageManager); err != nil {
			return err
		}

		stage, err := qtx.GetStage(ctx, arg.Number)
		if err != nil && !errors.Is(err, errs.NotFound) {
			return errors.Wrap(err, "failed to load stage")
		}
		if stage != nil && (stage.Active || stage.Completed || !stage.TokensSold.IsZero()) {
			return errors.Wrapf(errs.StateConflict, "stage %d was already activated and can no longer be configured", arg.Number)
		}

		if err := qtx.UpsertStage(ctx, entity.Stage{
			Number:          arg.Number,
			PricePerToken:   arg.PricePerToken,
			TokensAllocated: arg.TokensAllocated,
			TokensSold:      uint128.Zero,
			Configured:      true,
		}); err != nil {
			return errors.Wrap(err, "failed to upsert stage")
		}

		if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:  entity.EventStageConfigured,
			Actor: caller,
			Payload: map[string]any{
				"stage":           arg.Number,
				"pricePerToken":   arg.PricePerToken,
				"tokensAllocated": arg.TokensAllocated,
			},
		}); err != nil {
			return errors.Wrap(err, "failed to append event")
		}

		logger.InfoContext(ctx, "Stage configured",
			slogx.Int("stage", int(arg.Number)),
			slogx.Stringer("price", arg.PricePerToken),
			slogx.Stringer("allocation", arg.TokensAllocated),
		)
		return nil
	})
}

// ActivateStage moves the target stage to Active and deactivates the
// currently active stage in the same transaction, so at most one stage is
// ever active.
func (u *Usecase) ActivateStage(ctx context.Context, caller common.Address, number uint8) error {
	if number < 1 || number > MaxStageNumber {
		return errors.Wrapf(errs.InvalidInput, "stage number must be in 1..%d, got %d", MaxStageNumber, number)
	}

	return u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		if err := u.requireRole(ctx, qtx, caller, entity.RoleStageManager); err != nil {
			return err
		}

		stage, err := qtx.GetStage(ctx, number)
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				return errors.Wrapf(errs.StateConflict, "stage %d is not configured", number)
			}
			return errors.Wrap(err, "failed to load stage")
		}
		if stage.Completed {
			return errors.Wrapf(errs.StateConflict, "stage %d is completed and cannot be reactivated", number)
		}
		if stage.Active {
			return errors.Wrapf(errs.StateConflict, "stage %d is already active", number)
		}

		state, err := qtx.GetLedgerState(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load ledger state")
		}

		// Deactivate the previous stage atomically with the activation.
		if state.ActiveStage != 0 {
			prev, err := qtx.GetStage(ctx, state.ActiveStage)
			if err != nil {
				return errors.Wrap(err, "failed to load active stage")
			}
			prev.Active = false
			if err := qtx.UpsertStage(ctx, *prev); err != nil {
				return errors.Wrap(err, "failed to deactivate previous stage")
			}
		}

		stage.Active = true
		if err := qtx.UpsertStage(ctx, *stage); err != nil {
			return errors.Wrap(err, "failed to activate stage")
		}

		state.ActiveStage = number
		if err := qtx.UpdateLedgerState(ctx, *state); err != nil {
			return errors.Wrap(err, "failed to update ledger state")
		}

		if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:    entity.EventStageActivated,
			Actor:   caller,
			Payload: map[string]any{"stage": number},
		}); err != nil {
			return errors.Wrap(err, "failed to append event")
		}

		logger.InfoContext(ctx, "Stage activated", slogx.Int("stage", int(number)))
		return nil
	})
}

// sellFromStage adds sold tokens to the active stage, completing it when the
// allocation is exhausted. Exhaustion auto-deactivates the stage; purchases
// against an exhausted stage fail regardless of the active flag.
func (u *Usecase) sellFromStage(ctx context.Context, qtx datagateway.PresaleDataGatewayWithTx, state *entity.LedgerState, stage *entity.Stage, amount uint128.Uint128) error {
	if stage.Completed || stage.TokensSold.Cmp(stage.TokensAllocated) >= 0 {
		return errors.Wrapf(errs.StateConflict, "stage %d allocation is exhausted", stage.Number)
	}
	if amount.Cmp(stage.Remaining()) > 0 {
		return errors.Wrapf(errs.StateConflict,
			"purchase of %s exceeds remaining allocation %s of stage %d",
			amount, stage.Remaining(), stage.Number)
	}

	sold, err := safeAdd(stage.TokensSold, amount)
	if err != nil {
		return err
	}
	stage.TokensSold = sold

	if stage.TokensSold.Equals(stage.TokensAllocated) {
		now := u.now().UTC()
		stage.Completed = true
		stage.Active = false
		stage.CompletedAt = &now
		state.ActiveStage = 0

		if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:  entity.EventStageCompleted,
			Actor: common.ZeroAddress,
			Payload: map[string]any{
				"stage":      stage.Number,
				"tokensSold": stage.TokensSold,
			},
		}); err != nil {
			return errors.Wrap(err, "failed to append event")
		}
		logger.InfoContext(ctx, "Stage completed", slogx.Int("stage", int(stage.Number)))
	}

	if err := qtx.UpsertStage(ctx, *stage); err != nil {
		return errors.Wrap(err, "failed to update stage")
	}
	return nil
}
