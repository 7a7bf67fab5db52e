package entity

import (
	"encoding/json"
	"time"

	"github.com/gaze-network/uint128"
	"github.com/moonShotMAGAX1/presale-ledger/common"
)

// Role is a capability set checked before every mutating entry point.
type Role string

const (
	RoleDefaultAdmin Role = "DEFAULT_ADMIN"
	RoleRecorder     Role = "RECORDER"
	RoleStageManager Role = "STAGE_MANAGER"
	RoleEmergency    Role = "EMERGENCY"
	RoleFinalizer    Role = "FINALIZER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDefaultAdmin, RoleRecorder, RoleStageManager, RoleEmergency, RoleFinalizer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Stage is one presale phase. Price is in 6-decimal USDT units per whole
// token, allocations in 18-decimal MAGAX units. Lifecycle:
// Unconfigured -> Configured -> Active -> Completed (terminal).
type Stage struct {
	Number          uint8
	PricePerToken   uint128.Uint128
	TokensAllocated uint128.Uint128
	TokensSold      uint128.Uint128
	Configured      bool
	Active          bool
	Completed       bool
	CompletedAt     *time.Time
}

// Remaining returns the unsold allocation of the stage.
func (s Stage) Remaining() uint128.Uint128 {
	return s.TokensAllocated.Sub(s.TokensSold)
}

// Receipt is an immutable record of one recorded purchase. Never mutated or
// deleted after creation.
type Receipt struct {
	Id             int64
	Buyer          common.Address
	UsdtPaid       uint128.Uint128
	MagaxAllocated uint128.Uint128
	StageNumber    uint8
	Timestamp      time.Time
}

// LedgerState is the single-row global state of the presale.
type LedgerState struct {
	Paused      bool
	Finalized   bool
	MaxPromoBps uint16
	TotalUSDT   uint128.Uint128
	TotalMAGAX  uint128.Uint128
	ActiveStage uint8 // 0 = no active stage
}

// Referral links a buyer to the referrer of their first referred purchase.
// The link is sticky: it is written once and never updated.
type Referral struct {
	Buyer     common.Address
	Referrer  common.Address
	CreatedAt time.Time
}

// BuyerSummary aggregates a buyer's recorded history.
type BuyerSummary struct {
	Buyer         common.Address
	PurchaseCount int64
	TotalUSDT     uint128.Uint128
	TotalMAGAX    uint128.Uint128
	Referrer      common.Address // zero if never referred
}

// PendingOperation is a multi-sig proposal awaiting its second confirmation.
// OpHash is content-addressed over (kind, args, hour bucket), so a stale
// proposal can never be completed in a later time bucket.
type PendingOperation struct {
	OpHash     string
	Kind       string
	Params     json.RawMessage
	Confirmers []common.Address
	Executed   bool
	CreatedAt  time.Time
}

// Confirmed reports whether the given address already confirmed the operation.
func (op PendingOperation) Confirmed(addr common.Address) bool {
	for _, c := range op.Confirmers {
		if c == addr {
			return true
		}
	}
	return false
}

// Event is one entry of the append-only audit log.
type Event struct {
	Seq       int64
	Kind      string
	Actor     common.Address
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Audit event kinds.
const (
	EventStageConfigured      = "StageConfigured"
	EventStageActivated       = "StageActivated"
	EventStageCompleted       = "StageCompleted"
	EventPurchaseRecorded     = "PurchaseRecorded"
	EventReferralBonusAwarded = "ReferralBonusAwarded"
	EventPromoBonusAwarded    = "PromoBonusAwarded"
	EventOperationProposed    = "OperationProposed"
	EventOperationConfirmed   = "OperationConfirmed"
	EventOperationExecuted    = "OperationExecuted"
	EventPaused               = "Paused"
	EventUnpaused             = "Unpaused"
	EventRoleGranted          = "RoleGranted"
	EventRoleRevoked          = "RoleRevoked"
)
