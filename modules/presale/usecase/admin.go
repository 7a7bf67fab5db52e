package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger"
	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger/slogx"
)

// Pause stops all recording entry points. Reads stay available.
func (u *Usecase) Pause(ctx context.Context, caller common.Address) error {
	return u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		if err := u.requireRole(ctx, qtx, caller, entity.RoleDefaultAdmin, entity.RoleEmergency); err != nil {
			return err
		}

		state, err := qtx.GetLedgerState(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load ledger state")
		}
		if state.Paused {
			return errors.Wrap(errs.StateConflict, "presale is already paused")
		}

		state.Paused = true
		if err := qtx.UpdateLedgerState(ctx, *state); err != nil {
			return errors.Wrap(err, "failed to update ledger state")
		}

		if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:  entity.EventPaused,
			Actor: caller,
		}); err != nil {
			return errors.Wrap(err, "failed to append event")
		}

		logger.InfoContext(ctx, "Presale paused", slogx.Stringer("caller", caller))
		return nil
	})
}

// Unpause re-enables recording. Not possible once finalized.
func (u *Usecase) Unpause(ctx context.Context, caller common.Address) error {
	return u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		if err := u.requireRole(ctx, qtx, caller, entity.RoleDefaultAdmin, entity.RoleEmergency); err != nil {
			return err
		}

		state, err := qtx.GetLedgerState(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load ledger state")
		}
		if state.Finalized {
			return errors.Wrap(errs.StateConflict, "presale is finalized, cannot unpause")
		}
		if !state.Paused {
			return errors.Wrap(errs.StateConflict, "presale is not paused")
		}

		state.Paused = false
		if err := qtx.UpdateLedgerState(ctx, *state); err != nil {
			return errors.Wrap(err, "failed to update ledger state")
		}

		if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:  entity.EventUnpaused,
			Actor: caller,
		}); err != nil {
			return errors.Wrap(err, "failed to append event")
		}

		logger.InfoContext(ctx, "Presale unpaused", slogx.Stringer("caller", caller))
		return nil
	})
}

// GrantRole adds an address to a role set. DEFAULT_ADMIN only. Membership
// changes take effect for the next authorization check.
func (u *Usecase) GrantRole(ctx context.Context, caller common.Address, role entity.Role, addr common.Address) error {
	if !role.Valid() {
		return errors.Wrapf(errs.InvalidInput, "unknown role %q", role)
	}
	if addr.IsZero() {
		return errors.Wrap(errs.InvalidInput, "address is required")
	}

	return u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		if err := u.requireRole(ctx, qtx, caller, entity.RoleDefaultAdmin); err != nil {
			return err
		}

		ok, err := qtx.HasRole(ctx, role, addr)
		if err != nil {
			return errors.Wrap(err, "failed to check role membership")
		}
		if ok {
			return errors.Wrapf(errs.StateConflict, "%s already holds role %s", addr, role)
		}

		if err := qtx.GrantRole(ctx, datagateway.GrantRoleParams{
			Role:      role,
			Address:   addr,
			GrantedBy: caller,
		}); err != nil {
			return errors.Wrap(err, "failed to grant role")
		}

		if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:    entity.EventRoleGranted,
			Actor:   caller,
			Payload: map[string]any{"role": role, "address": addr},
		}); err != nil {
			return errors.Wrap(err, "failed to append event")
		}

		logger.InfoContext(ctx, "Role granted", slogx.Stringer("role", role), slogx.Stringer("address", addr))
		return nil
	})
}

// RevokeRole removes an address from a role set. DEFAULT_ADMIN only.
func (u *Usecase) RevokeRole(ctx context.Context, caller common.Address, role entity.Role, addr common.Address) error {
	if !role.Valid() {
		return errors.Wrapf(errs.InvalidInput, "unknown role %q", role)
	}
	if addr.IsZero() {
		return errors.Wrap(errs.InvalidInput, "address is required")
	}

	return u.withTx(ctx, func(qtx datagateway.PresaleDataGatewayWithTx) error {
		if err := u.requireRole(ctx, qtx, caller, entity.RoleDefaultAdmin); err != nil {
			return err
		}

		revoked, err := qtx.RevokeRole(ctx, role, addr)
		if err != nil {
			return errors.Wrap(err, "failed to revoke role")
		}
		if !revoked {
			return errors.Wrapf(errs.NotFound, "%s does not hold role %s", addr, role)
		}

		if err := qtx.AddEvent(ctx, datagateway.AddEventParams{
			Kind:    entity.EventRoleRevoked,
			Actor:   caller,
			Payload: map[string]any{"role": role, "address": addr},
		}); err != nil {
			return errors.Wrap(err, "failed to append event")
		}

		logger.InfoContext(ctx, "Role revoked", slogx.Stringer("role", role), slogx.Stringer("address", addr))
		return nil
	})
}
