package usecase

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
)

// memState is the full ledger snapshot held by the in-memory gateway.
type memState struct {
	ledger    entity.LedgerState
	stages    map[uint8]entity.Stage
	receipts  []entity.Receipt
	referrals map[common.Address]entity.Referral
	refCounts map[common.Address]uint32
	roles     map[entity.Role]map[common.Address]bool
	ops       map[string]entity.PendingOperation
	events    []entity.Event
}

func newMemState() *memState {
	return &memState{
		ledger:    entity.LedgerState{MaxPromoBps: DefaultMaxPromoBps},
		stages:    make(map[uint8]entity.Stage),
		referrals: make(map[common.Address]entity.Referral),
		refCounts: make(map[common.Address]uint32),
		roles:     make(map[entity.Role]map[common.Address]bool),
		ops:       make(map[string]entity.PendingOperation),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.ledger = s.ledger
	for k, v := range s.stages {
		c.stages[k] = v
	}
	c.receipts = append([]entity.Receipt(nil), s.receipts...)
	for k, v := range s.referrals {
		c.referrals[k] = v
	}
	for k, v := range s.refCounts {
		c.refCounts[k] = v
	}
	for role, members := range s.roles {
		m := make(map[common.Address]bool, len(members))
		for addr, ok := range members {
			m[addr] = ok
		}
		c.roles[role] = m
	}
	for k, v := range s.ops {
		v.Confirmers = append([]common.Address(nil), v.Confirmers...)
		c.ops[k] = v
	}
	c.events = append([]entity.Event(nil), s.events...)
	return c
}

// memGateway is an in-memory PresaleDataGateway with snapshot transactions:
// BeginPresaleTx hands out a deep copy, Commit swaps it in, Rollback drops it.
type memGateway struct {
	memOps
}

func newMemGateway() *memGateway {
	return &memGateway{memOps{state: newMemState()}}
}

func (g *memGateway) grant(role entity.Role, addr common.Address) {
	members, ok := g.state.roles[role]
	if !ok {
		members = make(map[common.Address]bool)
		g.state.roles[role] = members
	}
	members[addr] = true
}

func (g *memGateway) BeginPresaleTx(_ context.Context) (datagateway.PresaleDataGatewayWithTx, error) {
	return &memTx{memOps: memOps{state: g.state.clone()}, parent: g}, nil
}

type memTx struct {
	memOps
	parent *memGateway
	done   bool
}

func (tx *memTx) BeginPresaleTx(_ context.Context) (datagateway.PresaleDataGatewayWithTx, error) {
	return nil, errors.New("transaction already started")
}

func (tx *memTx) Commit(_ context.Context) error {
	if tx.done {
		return errors.New("transaction is closed")
	}
	tx.parent.state = tx.state
	tx.done = true
	return nil
}

func (tx *memTx) Rollback(_ context.Context) error {
	tx.done = true
	return nil
}

// memOps implements the gateway query methods over a memState.
type memOps struct {
	state *memState
}

func (o memOps) GetLedgerState(_ context.Context) (*entity.LedgerState, error) {
	ledger := o.state.ledger
	return &ledger, nil
}

func (o memOps) UpdateLedgerState(_ context.Context, state entity.LedgerState) error {
	o.state.ledger = state
	return nil
}

func (o memOps) GetStage(_ context.Context, number uint8) (*entity.Stage, error) {
	stage, ok := o.state.stages[number]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return &stage, nil
}

func (o memOps) GetActiveStage(_ context.Context) (*entity.Stage, error) {
	for _, stage := range o.state.stages {
		if stage.Active {
			stage := stage
			return &stage, nil
		}
	}
	return nil, errors.WithStack(errs.NotFound)
}

func (o memOps) GetStages(_ context.Context) ([]entity.Stage, error) {
	stages := make([]entity.Stage, 0, len(o.state.stages))
	for _, stage := range o.state.stages {
		stages = append(stages, stage)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i].Number < stages[j].Number })
	return stages, nil
}

func (o memOps) UpsertStage(_ context.Context, stage entity.Stage) error {
	o.state.stages[stage.Number] = stage
	return nil
}

func (o memOps) CreateReceipt(_ context.Context, receipt entity.Receipt) error {
	receipt.Id = int64(len(o.state.receipts) + 1)
	o.state.receipts = append(o.state.receipts, receipt)
	return nil
}

func (o memOps) GetReceiptsPaginated(_ context.Context, arg datagateway.GetReceiptsPaginatedParams) ([]entity.Receipt, error) {
	matched := make([]entity.Receipt, 0)
	for _, receipt := range o.state.receipts {
		if receipt.Buyer == arg.Buyer {
			matched = append(matched, receipt)
		}
	}
	if int(arg.Offset) >= len(matched) {
		return []entity.Receipt{}, nil
	}
	matched = matched[arg.Offset:]
	if int(arg.Limit) < len(matched) {
		matched = matched[:arg.Limit]
	}
	return matched, nil
}

func (o memOps) CountReceipts(_ context.Context, buyer common.Address) (int64, error) {
	var count int64
	for _, receipt := range o.state.receipts {
		if receipt.Buyer == buyer {
			count++
		}
	}
	return count, nil
}

func (o memOps) GetBuyerSummary(ctx context.Context, buyer common.Address) (*entity.BuyerSummary, error) {
	summary := entity.BuyerSummary{Buyer: buyer}
	for _, receipt := range o.state.receipts {
		if receipt.Buyer != buyer {
			continue
		}
		summary.PurchaseCount++
		summary.TotalUSDT = summary.TotalUSDT.Add(receipt.UsdtPaid)
		summary.TotalMAGAX = summary.TotalMAGAX.Add(receipt.MagaxAllocated)
	}
	if referral, ok := o.state.referrals[buyer]; ok {
		summary.Referrer = referral.Referrer
	}
	return &summary, nil
}

func (o memOps) GetReferral(_ context.Context, buyer common.Address) (*entity.Referral, error) {
	referral, ok := o.state.referrals[buyer]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return &referral, nil
}

func (o memOps) CreateReferral(_ context.Context, referral entity.Referral) error {
	o.state.referrals[referral.Buyer] = referral
	return nil
}

func (o memOps) IncrementReferralCount(_ context.Context, referrer common.Address) (uint32, error) {
	o.state.refCounts[referrer]++
	return o.state.refCounts[referrer], nil
}

func (o memOps) HasRole(_ context.Context, role entity.Role, addr common.Address) (bool, error) {
	return o.state.roles[role][addr], nil
}

func (o memOps) GrantRole(_ context.Context, arg datagateway.GrantRoleParams) error {
	members, ok := o.state.roles[arg.Role]
	if !ok {
		members = make(map[common.Address]bool)
		o.state.roles[arg.Role] = members
	}
	members[arg.Address] = true
	return nil
}

func (o memOps) RevokeRole(_ context.Context, role entity.Role, addr common.Address) (bool, error) {
	if !o.state.roles[role][addr] {
		return false, nil
	}
	delete(o.state.roles[role], addr)
	return true, nil
}

func (o memOps) GetPendingOperation(_ context.Context, opHash string) (*entity.PendingOperation, error) {
	op, ok := o.state.ops[opHash]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	op.Confirmers = append([]common.Address(nil), op.Confirmers...)
	return &op, nil
}

func (o memOps) CreatePendingOperation(_ context.Context, op entity.PendingOperation) error {
	o.state.ops[op.OpHash] = op
	return nil
}

func (o memOps) UpdatePendingOperation(_ context.Context, op entity.PendingOperation) error {
	o.state.ops[op.OpHash] = op
	return nil
}

func (o memOps) AddEvent(_ context.Context, arg datagateway.AddEventParams) error {
	payload := json.RawMessage("{}")
	if arg.Payload != nil {
		raw, err := json.Marshal(arg.Payload)
		if err != nil {
			return errors.WithStack(err)
		}
		payload = raw
	}
	o.state.events = append(o.state.events, entity.Event{
		Seq:     int64(len(o.state.events) + 1),
		Kind:    arg.Kind,
		Actor:   arg.Actor,
		Payload: payload,
	})
	return nil
}

func (o memOps) GetEvents(_ context.Context, arg datagateway.GetEventsParams) ([]entity.Event, error) {
	matched := make([]entity.Event, 0)
	for i := len(o.state.events) - 1; i >= 0; i-- {
		event := o.state.events[i]
		if arg.Kind != "" && event.Kind != arg.Kind {
			continue
		}
		if !arg.Actor.IsZero() && event.Actor != arg.Actor {
			continue
		}
		matched = append(matched, event)
	}
	if int(arg.Offset) >= len(matched) {
		return []entity.Event{}, nil
	}
	matched = matched[arg.Offset:]
	if arg.Limit > 0 && int(arg.Limit) < len(matched) {
		matched = matched[:arg.Limit]
	}
	return matched, nil
}
