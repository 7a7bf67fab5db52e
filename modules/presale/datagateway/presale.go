package datagateway

import (
	"context"

	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
)

type PresaleDataGateway interface {
	BeginPresaleTx(ctx context.Context) (PresaleDataGatewayWithTx, error)

	// Global state. The ledger state is a single row created by migration.
	GetLedgerState(ctx context.Context) (*entity.LedgerState, error)
	UpdateLedgerState(ctx context.Context, state entity.LedgerState) error

	// Stages.
	GetStage(ctx context.Context, number uint8) (*entity.Stage, error)
	GetActiveStage(ctx context.Context) (*entity.Stage, error)
	GetStages(ctx context.Context) ([]entity.Stage, error)
	UpsertStage(ctx context.Context, stage entity.Stage) error

	// Receipts.
	CreateReceipt(ctx context.Context, receipt entity.Receipt) error
	GetReceiptsPaginated(ctx context.Context, arg GetReceiptsPaginatedParams) ([]entity.Receipt, error)
	CountReceipts(ctx context.Context, buyer common.Address) (int64, error)
	GetBuyerSummary(ctx context.Context, buyer common.Address) (*entity.BuyerSummary, error)

	// Referrals.
	GetReferral(ctx context.Context, buyer common.Address) (*entity.Referral, error)
	CreateReferral(ctx context.Context, referral entity.Referral) error
	IncrementReferralCount(ctx context.Context, referrer common.Address) (uint32, error)

	// Roles.
	HasRole(ctx context.Context, role entity.Role, addr common.Address) (bool, error)
	GrantRole(ctx context.Context, arg GrantRoleParams) error
	RevokeRole(ctx context.Context, role entity.Role, addr common.Address) (bool, error)

	// Multi-sig pending operations.
	GetPendingOperation(ctx context.Context, opHash string) (*entity.PendingOperation, error)
	CreatePendingOperation(ctx context.Context, op entity.PendingOperation) error
	UpdatePendingOperation(ctx context.Context, op entity.PendingOperation) error

	// Audit log.
	AddEvent(ctx context.Context, arg AddEventParams) error
	GetEvents(ctx context.Context, arg GetEventsParams) ([]entity.Event, error)
}

type PresaleDataGatewayWithTx interface {
	PresaleDataGateway
	Tx
}

type GetReceiptsPaginatedParams struct {
	Buyer  common.Address
	Offset int32
	Limit  int32
}

type GrantRoleParams struct {
	Role      entity.Role
	Address   common.Address
	GrantedBy common.Address
}

type AddEventParams struct {
	Kind    string
	Actor   common.Address
	Payload any // marshalled to JSON by the repository
}

type GetEventsParams struct {
	Kind   string         // empty = all kinds
	Actor  common.Address // zero = all actors
	Offset int32
	Limit  int32
}
