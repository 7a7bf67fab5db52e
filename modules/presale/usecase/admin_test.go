package usecase

import (
	"context"
	"testing"

	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestPauseUnpause(t *testing.T) {
	ctx := context.Background()

	t.Run("admin pauses and unpauses", func(t *testing.T) {
		u, g := setup(t)

		require.NoError(t, u.Pause(ctx, addrAdmin))
		require.True(t, g.state.ledger.Paused)
		require.NoError(t, u.Unpause(ctx, addrAdmin))
		require.False(t, g.state.ledger.Paused)

		require.Equal(t, 1, countEventsOfKind(g, entity.EventPaused))
		require.Equal(t, 1, countEventsOfKind(g, entity.EventUnpaused))
	})

	t.Run("emergency role can pause", func(t *testing.T) {
		u, g := setup(t)
		require.NoError(t, u.Pause(ctx, addrEmergency))
		require.True(t, g.state.ledger.Paused)
	})

	t.Run("other roles cannot", func(t *testing.T) {
		u, _ := setup(t)
		require.ErrorIs(t, u.Pause(ctx, addrRecorder), errs.Unauthorized)
		require.ErrorIs(t, u.Pause(ctx, addrManager), errs.Unauthorized)
	})

	t.Run("double pause and double unpause conflict", func(t *testing.T) {
		u, _ := setup(t)
		require.ErrorIs(t, u.Unpause(ctx, addrAdmin), errs.StateConflict)
		require.NoError(t, u.Pause(ctx, addrAdmin))
		require.ErrorIs(t, u.Pause(ctx, addrAdmin), errs.StateConflict)
	})
}

func TestGrantRevokeRole(t *testing.T) {
	ctx := context.Background()

	t.Run("granted role takes effect", func(t *testing.T) {
		u, _ := setup(t)

		err := u.ConfigureStage(ctx, addrNobody, ConfigureStageParams{
			Number:          1,
			PricePerToken:   u128("1000"),
			TokensAllocated: u128("1000000000000000000"),
		})
		require.ErrorIs(t, err, errs.Unauthorized)

		require.NoError(t, u.GrantRole(ctx, addrAdmin, entity.RoleStageManager, addrNobody))
		require.NoError(t, u.ConfigureStage(ctx, addrNobody, ConfigureStageParams{
			Number:          1,
			PricePerToken:   u128("1000"),
			TokensAllocated: u128("1000000000000000000"),
		}))
	})

	t.Run("revoked role stops working", func(t *testing.T) {
		u, _ := setup(t)
		require.NoError(t, u.RevokeRole(ctx, addrAdmin, entity.RoleStageManager, addrManager))

		err := u.ConfigureStage(ctx, addrManager, ConfigureStageParams{
			Number:          1,
			PricePerToken:   u128("1000"),
			TokensAllocated: u128("1000000000000000000"),
		})
		require.ErrorIs(t, err, errs.Unauthorized)
	})

	t.Run("duplicate grant conflicts", func(t *testing.T) {
		u, _ := setup(t)
		err := u.GrantRole(ctx, addrAdmin, entity.RoleRecorder, addrRecorder)
		require.ErrorIs(t, err, errs.StateConflict)
	})

	t.Run("revoking a role not held", func(t *testing.T) {
		u, _ := setup(t)
		err := u.RevokeRole(ctx, addrAdmin, entity.RoleRecorder, addrNobody)
		require.ErrorIs(t, err, errs.NotFound)
	})

	t.Run("only admin manages roles", func(t *testing.T) {
		u, _ := setup(t)
		err := u.GrantRole(ctx, addrManager, entity.RoleRecorder, addrNobody)
		require.ErrorIs(t, err, errs.Unauthorized)
		err = u.RevokeRole(ctx, addrManager, entity.RoleRecorder, addrRecorder)
		require.ErrorIs(t, err, errs.Unauthorized)
	})

	t.Run("unknown role and zero address", func(t *testing.T) {
		u, _ := setup(t)
		err := u.GrantRole(ctx, addrAdmin, entity.Role("JANITOR"), addrNobody)
		require.ErrorIs(t, err, errs.InvalidInput)
		err = u.GrantRole(ctx, addrAdmin, entity.RoleRecorder, "")
		require.ErrorIs(t, err, errs.InvalidInput)
	})
}

func TestEventFiltering(t *testing.T) {
	ctx := context.Background()
	u, g := setup(t)

	require.NoError(t, u.Pause(ctx, addrAdmin))
	require.NoError(t, u.Unpause(ctx, addrAdmin))
	require.NoError(t, u.Pause(ctx, addrEmergency))

	events, err := g.GetEvents(ctx, datagateway.GetEventsParams{Kind: entity.EventPaused, Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 2)
	// newest first
	require.Equal(t, addrEmergency, events[0].Actor)
	require.Equal(t, addrAdmin, events[1].Actor)

	events, err = g.GetEvents(ctx, datagateway.GetEventsParams{Actor: addrEmergency, Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, entity.EventPaused, events[0].Kind)
}
