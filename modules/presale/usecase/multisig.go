package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger"
	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger/slogx"
)

// Operations wrapped by the multi-sig gateway.
const (
	OpFinalizePresale   = "finalize-presale"
	OpSetMaxPromoBps    = "set-max-promo-bps"
	OpEmergencyWithdraw = "emergency-token-withdraw"
)

const opHashVersion = 1

// opTimeBucketSeconds bounds how long a stale proposal remains confirmable:
// confirmations never carry across the hour boundary because the bucket is
// part of the operation identifier.
const opTimeBucketSeconds = 3600

// operationHash derives the content-addressed identifier of a gated
// operation from its kind, canonical arguments and coarse time window.
func operationHash(kind string, args []string, bucket int64) string {
	var sb strings.Builder
	sb.WriteString("presale:v" + strconv.Itoa(opHashVersion))
	sb.WriteString("|" + kind)
	for _, arg := range args {
		sb.WriteString("|" + arg)
	}
	sb.WriteString("|" + strconv.FormatInt(bucket, 10))

	sum := sha256.Sum256([]byte(sb.String()))
	return "0x" + hex.EncodeToString(sum[:])
}

// confirmOperation runs one step of the propose/confirm protocol inside the
// caller's transaction. It returns execute=true only for the confirmation
// that reaches quorum; the wrapped action must then run exactly once in the
// same transaction.
func (u *Usecase) confirmOperation(ctx context.Context, qtx datagateway.PresaleDataGatewayWithTx, caller common.Address, kind string, args []string, params any) (execute bool, opHash string, err error) {
	bucket := u.now().Unix() / opTimeBucketSeconds
	opHash = operationHash(kind, args, bucket)

	paramsJson, err := json.Marshal(params)
	if err != nil {
		return false, opHash, errors.Wrap(err, "failed to marshal operation params")
	}

	op, err := qtx.GetPendingOperation(ctx, opHash)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return false, opHash, errors.Wrap(err, "failed to load pending operation")
	}

	if op == nil {
		// First confirmation: record the proposal and halt. A rolled-over
		// time bucket lands here too, as a fresh proposal.
		if err := qtx.CreatePendingOperation(ctx, entity.PendingOperation{
			OpHash:     opHash,
			Kind:       kind,
			Params:     paramsJson,
			Confirmers: []common.Address{caller},
			CreatedAt:  u.now().UTC(),
		}); err != nil {
			return false, opHash, errors.Wrap(err, "failed to create pending operation")
		}
		if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:  entity.EventOperationProposed,
			Actor: caller,
			Payload: map[string]any{
				"opHash":    opHash,
				"operation": kind,
				"params":    json.RawMessage(paramsJson),
			},
		}); err != nil {
			return false, opHash, errors.Wrap(err, "failed to append event")
		}
		logger.InfoContext(ctx, "Operation proposed, awaiting confirmation",
			slogx.String("operation", kind), slogx.String("opHash", opHash))
		return false, opHash, nil
	}

	if op.Executed {
		return false, opHash, errors.Wrapf(errs.StateConflict, "operation %s was already executed", opHash)
	}
	if op.Confirmed(caller) {
		return false, opHash, errors.Wrapf(errs.AlreadyConfirmed, "caller %s already confirmed operation %s", caller, opHash)
	}

	op.Confirmers = append(op.Confirmers, caller)
	if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
		Kind:  entity.EventOperationConfirmed,
		Actor: caller,
		Payload: map[string]any{
			"opHash":        opHash,
			"operation":     kind,
			"confirmations": len(op.Confirmers),
		},
	}); err != nil {
		return false, opHash, errors.Wrap(err, "failed to append event")
	}

	if len(op.Confirmers) >= Quorum {
		op.Executed = true
		if err := qtx.UpdatePendingOperation(ctx, *op); err != nil {
			return false, opHash, errors.Wrap(err, "failed to retire pending operation")
		}
		if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:  entity.EventOperationExecuted,
			Actor: caller,
			Payload: map[string]any{
				"opHash":    opHash,
				"operation": kind,
				"params":    json.RawMessage(paramsJson),
			},
		}); err != nil {
			return false, opHash, errors.Wrap(err, "failed to append event")
		}
		logger.InfoContext(ctx, "Operation confirmed and executed",
			slogx.String("operation", kind), slogx.String("opHash", opHash))
		return true, opHash, nil
	}

	if err := qtx.UpdatePendingOperation(ctx, *op); err != nil {
		return false, opHash, errors.Wrap(err, "failed to update pending operation")
	}
	return false, opHash, nil
}

// SetMaxPromoBps changes the promotional bonus cap. DEFAULT_ADMIN gated and
// multi-sig protected; the new cap takes effect on the second confirmation.
func (u *Usecase) SetMaxPromoBps(ctx context.Context, caller common.Address, bps uint16) (string, error) {
	if bps > bpsDenominator {
		return "", errors.Wrapf(errs.InvalidInput, "max promo bps %d exceeds %d", bps, bpsDenominator)
	}

	var opHash string
	err := u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		if err := u.requireRole(ctx, qtx, caller, entity.RoleDefaultAdmin); err != nil {
			return err
		}

		execute, hash, err := u.confirmOperation(ctx, qtx, caller,
			OpSetMaxPromoBps, []string{strconv.Itoa(int(bps))}, map[string]any{"bps": bps})
		opHash = hash
		if err != nil {
			return err
		}
		if !execute {
			return errors.Wrapf(errs.MultiSigPending, "operation %s requires an additional confirmation", hash)
		}

		state, err := qtx.GetLedgerState(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load ledger state")
		}
		state.MaxPromoBps = bps
		return errors.Wrap(qtx.UpdateLedgerState(ctx, *state), "failed to update ledger state")
	})
	return opHash, err
}

// Finalize permanently closes the presale and pauses recording. FINALIZER
// gated, multi-sig protected, terminal: there is no un-finalize path.
func (u *Usecase) Finalize(ctx context.Context, caller common.Address) (string, error) {
	var opHash string
	err := u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		if err := u.requireRole(ctx, qtx, caller, entity.RoleFinalizer); err != nil {
			return err
		}

		state, err := qtx.GetLedgerState(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load ledger state")
		}
		if state.Finalized {
			return errors.Wrap(errs.StateConflict, "presale is already finalized")
		}

		execute, hash, err := u.confirmOperation(ctx, qtx, caller, OpFinalizePresale, nil, nil)
		opHash = hash
		if err != nil {
			return err
		}
		if !execute {
			return errors.Wrapf(errs.MultiSigPending, "operation %s requires an additional confirmation", hash)
		}

		state.Finalized = true
		state.Paused = true
		if err := qtx.UpdateLedgerState(ctx, *state); err != nil {
			return errors.Wrap(err, "failed to update ledger state")
		}
		return errors.Wrap(qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:    entity.EventPaused,
			Actor:   caller,
			Payload: map[string]any{"reason": "finalized"},
		}), "failed to append event")
	})
	return opHash, err
}

// EmergencyTokenWithdraw authorizes rescue of tokens mistakenly sent to the
// presale contract. EMERGENCY gated, multi-sig protected. The authorization
// is recorded in the audit log; presale accounting is left untouched.
func (u *Usecase) EmergencyTokenWithdraw(ctx context.Context, caller common.Address, token, recipient common.Address) (string, error) {
	if token.IsZero() {
		return "", errors.Wrap(errs.InvalidInput, "token address is required")
	}
	if recipient.IsZero() {
		return "", errors.Wrap(errs.InvalidInput, "recipient address is required")
	}

	var opHash string
	err := u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		if err := u.requireRole(ctx, qtx, caller, entity.RoleEmergency); err != nil {
			return err
		}

		execute, hash, err := u.confirmOperation(ctx, qtx, caller,
			OpEmergencyWithdraw,
			[]string{token.String(), recipient.String()},
			map[string]any{"token": token, "recipient": recipient})
		opHash = hash
		if err != nil {
			return err
		}
		if !execute {
			return errors.Wrapf(errs.MultiSigPending, "operation %s requires an additional confirmation", hash)
		}
		return nil
	})
	return opHash, err
}
