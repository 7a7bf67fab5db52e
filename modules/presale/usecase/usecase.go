package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
)

const (
	// MaxStageNumber bounds the stage table. Stage numbers are dense, 1-based.
	MaxStageNumber = 50

	// Quorum is the number of distinct confirmations a gated operation needs.
	Quorum = 2

	// DefaultMaxPromoBps caps promotional bonuses at 50% until changed
	// through the multi-sig gateway.
	DefaultMaxPromoBps = 5000
)

type Usecase struct {
	presaleDg datagateway.PresaleDataGateway

	// mu serializes mutating entry points. One call's effects are fully
	// committed or fully rolled back before the next call observes anything,
	// which also stands in for the contract's reentrancy guard.
	mu sync.Mutex

	// now is the clock used for receipts and multi-sig time buckets.
	now func() time.Time

	cleanupFuncs []func(context.Context) error
}

func New(presaleDg datagateway.PresaleDataGateway, cleanupFuncs []func(context.Context) error) *Usecase {
	return &Usecase{
		presaleDg:    presaleDg,
		now:          time.Now,
		cleanupFuncs: cleanupFuncs,
	}
}

func (u *Usecase) Name() string {
	return "presale"
}

func (u *Usecase) Shutdown(ctx context.Context) error {
	for _, cleanupFunc := range u.cleanupFuncs {
		if err := cleanupFunc(ctx); err != nil {
			return errors.Wrap(err, "cleanup function error")
		}
	}
	return nil
}

// withTx runs fn inside a single DB transaction under the writer lock.
// A MultiSigPending result still commits: the proposal and its event must
// survive the halt so the second confirmer can complete it later.
func (u *Usecase) withTx(ctx context.Context, fn func(qtx datagateway.PresaleDataGatewayWithTx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	qtx, err := u.presaleDg.BeginPresaleTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		_ = qtx.Rollback(ctx)
	}()

	fnErr := fn(qtx)
	if fnErr != nil && !errors.Is(fnErr, errs.MultiSigPending) {
		return fnErr
	}
	if err := qtx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return fnErr
}

// requireRole fails with Unauthorized before any state is touched.
func (u *Usecase) requireRole(ctx context.Context, qtx datagateway.PresaleDataGateway, caller common.Address, roles ...entity.Role) error {
	if caller.IsZero() {
		return errors.Wrap(errs.InvalidInput, "caller address is required")
	}
	for _, role := range roles {
		ok, err := qtx.HasRole(ctx, role, caller)
		if err != nil {
			return errors.Wrap(err, "failed to check role membership")
		}
		if ok {
			return nil
		}
	}
	return errors.Wrapf(errs.Unauthorized, "caller %s holds none of the required roles %v", caller, roles)
}

// requireActive fails when recording is disabled by pause or finalization.
func requireActive(state *entity.LedgerState) error {
	if state.Finalized {
		return errors.Wrap(errs.StateConflict, "presale is finalized")
	}
	if state.Paused {
		return errors.Wrap(errs.StateConflict, "presale is paused")
	}
	return nil
}
