package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/gaze-network/uint128"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
	"github.com/stretchr/testify/require"
)

func testAddr(b byte) common.Address {
	const hexdigits = "0123456789abcdef"
	pair := string([]byte{hexdigits[b>>4], hexdigits[b&0xf]})
	return common.Address("0x" + strings.Repeat(pair, common.AddressLength))
}

var (
	addrAdmin      = testAddr(0xa1)
	addrAdmin2     = testAddr(0xa2)
	addrRecorder   = testAddr(0xb1)
	addrManager    = testAddr(0xc1)
	addrFinalizer  = testAddr(0xd1)
	addrFinalizer2 = testAddr(0xd2)
	addrEmergency  = testAddr(0xe1)
	addrEmergency2 = testAddr(0xe2)
	addrBuyer      = testAddr(0x01)
	addrBuyer2     = testAddr(0x02)
	addrReferrer   = testAddr(0x03)
	addrReferrer2  = testAddr(0x04)
	addrNobody     = testAddr(0x0f)
)

func u128(s string) uint128.Uint128 {
	return utils.Must(uint128.FromString(s))
}

func setup(t *testing.T) (*Usecase, *memGateway) {
	t.Helper()
	g := newMemGateway()
	g.grant(entity.RoleDefaultAdmin, addrAdmin)
	g.grant(entity.RoleDefaultAdmin, addrAdmin2)
	g.grant(entity.RoleRecorder, addrRecorder)
	g.grant(entity.RoleStageManager, addrManager)
	g.grant(entity.RoleFinalizer, addrFinalizer)
	g.grant(entity.RoleFinalizer, addrFinalizer2)
	g.grant(entity.RoleEmergency, addrEmergency)
	g.grant(entity.RoleEmergency, addrEmergency2)
	return New(g, nil), g
}

// openStage configures and activates a stage in one step.
func openStage(t *testing.T, u *Usecase, number uint8, price, allocation uint128.Uint128) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, u.ConfigureStage(ctx, addrManager, ConfigureStageParams{
		Number:          number,
		PricePerToken:   price,
		TokensAllocated: allocation,
	}))
	require.NoError(t, u.ActivateStage(ctx, addrManager, number))
}

func lastEventOfKind(g *memGateway, kind string) (entity.Event, bool) {
	for i := len(g.state.events) - 1; i >= 0; i-- {
		if g.state.events[i].Kind == kind {
			return g.state.events[i], true
		}
	}
	return entity.Event{}, false
}

func countEventsOfKind(g *memGateway, kind string) int {
	var n int
	for _, event := range g.state.events {
		if event.Kind == kind {
			n++
		}
	}
	return n
}

func TestShutdownRunsCleanupFuncs(t *testing.T) {
	var called bool
	u := New(newMemGateway(), []func(context.Context) error{
		func(context.Context) error {
			called = true
			return nil
		},
	})
	require.NoError(t, u.Shutdown(context.Background()))
	require.True(t, called)
}

func TestClockInjection(t *testing.T) {
	u, _ := setup(t)
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	u.now = func() time.Time { return fixed }

	openStage(t, u, 1, u128("1000"), u128("200000000000000000000000000"))
	receipt, err := u.RecordPurchase(context.Background(), addrRecorder, RecordPurchaseParams{
		Buyer:       addrBuyer,
		UsdtAmount:  u128("1000"),
		MagaxAmount: u128("1000000000000000000"),
	})
	require.NoError(t, err)
	require.Equal(t, fixed, receipt.Timestamp)
}
