package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/common/errs"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
	"github.com/samber/lo"
)

func (r *Repository) GetLedgerState(ctx context.Context) (*entity.LedgerState, error) {
	var (
		state       entity.LedgerState
		totalUsdt   pgtype.Numeric
		totalMagax  pgtype.Numeric
		maxPromoBps int32
		activeStage int16
	)
	err := r.q.QueryRow(ctx, `
		SELECT paused, finalized, max_promo_bps, total_usdt, total_magax, active_stage
		FROM presale_state WHERE id = 1`,
	).Scan(&state.Paused, &state.Finalized, &maxPromoBps, &totalUsdt, &totalMagax, &activeStage)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	state.MaxPromoBps = uint16(maxPromoBps)
	state.ActiveStage = uint8(activeStage)
	if state.TotalUSDT, err = uint128FromNumeric(totalUsdt); err != nil {
		return nil, errors.Wrap(err, "failed to parse total usdt")
	}
	if state.TotalMAGAX, err = uint128FromNumeric(totalMagax); err != nil {
		return nil, errors.Wrap(err, "failed to parse total magax")
	}
	return &state, nil
}

func (r *Repository) UpdateLedgerState(ctx context.Context, state entity.LedgerState) error {
	totalUsdt, err := numericFromUint128(state.TotalUSDT)
	if err != nil {
		return errors.Wrap(err, "failed to convert total usdt")
	}
	totalMagax, err := numericFromUint128(state.TotalMAGAX)
	if err != nil {
		return errors.Wrap(err, "failed to convert total magax")
	}
	_, err = r.q.Exec(ctx, `
		UPDATE presale_state
		SET paused = $1, finalized = $2, max_promo_bps = $3, total_usdt = $4, total_magax = $5, active_stage = $6
		WHERE id = 1`,
		state.Paused, state.Finalized, int32(state.MaxPromoBps), totalUsdt, totalMagax, int16(state.ActiveStage),
	)
	return errors.Wrap(err, "error during exec")
}

const selectStage = `
	SELECT number, price_per_token, tokens_allocated, tokens_sold, configured, active, completed, completed_at
	FROM presale_stages`

func (r *Repository) scanStage(row pgx.Row) (*entity.Stage, error) {
	var (
		stage       entity.Stage
		number      int16
		price       pgtype.Numeric
		allocated   pgtype.Numeric
		sold        pgtype.Numeric
		completedAt pgtype.Timestamp
	)
	if err := row.Scan(&number, &price, &allocated, &sold, &stage.Configured, &stage.Active, &stage.Completed, &completedAt); err != nil {
		return nil, err
	}
	stage.Number = uint8(number)
	var err error
	if stage.PricePerToken, err = uint128FromNumeric(price); err != nil {
		return nil, errors.Wrap(err, "failed to parse price")
	}
	if stage.TokensAllocated, err = uint128FromNumeric(allocated); err != nil {
		return nil, errors.Wrap(err, "failed to parse allocation")
	}
	if stage.TokensSold, err = uint128FromNumeric(sold); err != nil {
		return nil, errors.Wrap(err, "failed to parse sold amount")
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		stage.CompletedAt = &t
	}
	return &stage, nil
}

func (r *Repository) GetStage(ctx context.Context, number uint8) (*entity.Stage, error) {
	stage, err := r.scanStage(r.q.QueryRow(ctx, selectStage+` WHERE number = $1`, int16(number)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return stage, nil
}

func (r *Repository) GetActiveStage(ctx context.Context) (*entity.Stage, error) {
	stage, err := r.scanStage(r.q.QueryRow(ctx, selectStage+` WHERE active`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return stage, nil
}

func (r *Repository) GetStages(ctx context.Context) ([]entity.Stage, error) {
	rows, err := r.q.Query(ctx, selectStage+` ORDER BY number`)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	var stages []entity.Stage
	for rows.Next() {
		stage, err := r.scanStage(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		stages = append(stages, *stage)
	}
	return stages, errors.Wrap(rows.Err(), "error during iteration")
}

func (r *Repository) UpsertStage(ctx context.Context, stage entity.Stage) error {
	price, err := numericFromUint128(stage.PricePerToken)
	if err != nil {
		return errors.Wrap(err, "failed to convert price")
	}
	allocated, err := numericFromUint128(stage.TokensAllocated)
	if err != nil {
		return errors.Wrap(err, "failed to convert allocation")
	}
	sold, err := numericFromUint128(stage.TokensSold)
	if err != nil {
		return errors.Wrap(err, "failed to convert sold amount")
	}
	var completedAt pgtype.Timestamp
	if stage.CompletedAt != nil {
		completedAt = pgtype.Timestamp{Time: stage.CompletedAt.UTC(), Valid: true}
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO presale_stages (number, price_per_token, tokens_allocated, tokens_sold, configured, active, completed, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (number) DO UPDATE SET
			price_per_token = EXCLUDED.price_per_token,
			tokens_allocated = EXCLUDED.tokens_allocated,
			tokens_sold = EXCLUDED.tokens_sold,
			configured = EXCLUDED.configured,
			active = EXCLUDED.active,
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at`,
		int16(stage.Number), price, allocated, sold, stage.Configured, stage.Active, stage.Completed, completedAt,
	)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) CreateReceipt(ctx context.Context, receipt entity.Receipt) error {
	usdt, err := numericFromUint128(receipt.UsdtPaid)
	if err != nil {
		return errors.Wrap(err, "failed to convert usdt amount")
	}
	magax, err := numericFromUint128(receipt.MagaxAllocated)
	if err != nil {
		return errors.Wrap(err, "failed to convert magax amount")
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO presale_receipts (buyer, usdt_paid, magax_allocated, stage_number, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		receipt.Buyer.String(), usdt, magax, int16(receipt.StageNumber), receipt.Timestamp.UTC(),
	)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) GetReceiptsPaginated(ctx context.Context, arg datagateway.GetReceiptsPaginatedParams) ([]entity.Receipt, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, buyer, usdt_paid, magax_allocated, stage_number, created_at
		FROM presale_receipts
		WHERE buyer = $1
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		arg.Buyer.String(), arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	receipts := make([]entity.Receipt, 0)
	for rows.Next() {
		var (
			receipt     entity.Receipt
			buyer       string
			usdt        pgtype.Numeric
			magax       pgtype.Numeric
			stageNumber int16
			createdAt   time.Time
		)
		if err := rows.Scan(&receipt.Id, &buyer, &usdt, &magax, &stageNumber, &createdAt); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		receipt.Buyer = common.Address(buyer)
		receipt.StageNumber = uint8(stageNumber)
		receipt.Timestamp = createdAt.UTC()
		if receipt.UsdtPaid, err = uint128FromNumeric(usdt); err != nil {
			return nil, errors.Wrap(err, "failed to parse usdt amount")
		}
		if receipt.MagaxAllocated, err = uint128FromNumeric(magax); err != nil {
			return nil, errors.Wrap(err, "failed to parse magax amount")
		}
		receipts = append(receipts, receipt)
	}
	return receipts, errors.Wrap(rows.Err(), "error during iteration")
}

func (r *Repository) CountReceipts(ctx context.Context, buyer common.Address) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM presale_receipts WHERE buyer = $1`, buyer.String()).Scan(&count)
	return count, errors.Wrap(err, "error during query")
}

func (r *Repository) GetBuyerSummary(ctx context.Context, buyer common.Address) (*entity.BuyerSummary, error) {
	var (
		summary    entity.BuyerSummary
		totalUsdt  pgtype.Numeric
		totalMagax pgtype.Numeric
	)
	err := r.q.QueryRow(ctx, `
		SELECT count(*), COALESCE(sum(usdt_paid), 0), COALESCE(sum(magax_allocated), 0)
		FROM presale_receipts WHERE buyer = $1`,
		buyer.String(),
	).Scan(&summary.PurchaseCount, &totalUsdt, &totalMagax)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	summary.Buyer = buyer
	if summary.TotalUSDT, err = uint128FromNumeric(totalUsdt); err != nil {
		return nil, errors.Wrap(err, "failed to parse total usdt")
	}
	if summary.TotalMAGAX, err = uint128FromNumeric(totalMagax); err != nil {
		return nil, errors.Wrap(err, "failed to parse total magax")
	}

	referral, err := r.GetReferral(ctx, buyer)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return nil, errors.WithStack(err)
	}
	if referral != nil {
		summary.Referrer = referral.Referrer
	}
	return &summary, nil
}

func (r *Repository) GetReferral(ctx context.Context, buyer common.Address) (*entity.Referral, error) {
	var (
		referrer  string
		createdAt time.Time
	)
	err := r.q.QueryRow(ctx, `SELECT referrer, created_at FROM presale_referrals WHERE buyer = $1`, buyer.String()).
		Scan(&referrer, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return &entity.Referral{
		Buyer:     buyer,
		Referrer:  common.Address(referrer),
		CreatedAt: createdAt.UTC(),
	}, nil
}

func (r *Repository) CreateReferral(ctx context.Context, referral entity.Referral) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO presale_referrals (buyer, referrer, created_at) VALUES ($1, $2, $3)`,
		referral.Buyer.String(), referral.Referrer.String(), referral.CreatedAt.UTC(),
	)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) IncrementReferralCount(ctx context.Context, referrer common.Address) (uint32, error) {
	var total int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO presale_referral_counts (referrer, total_referrals) VALUES ($1, 1)
		ON CONFLICT (referrer) DO UPDATE SET total_referrals = presale_referral_counts.total_referrals + 1
		RETURNING total_referrals`,
		referrer.String(),
	).Scan(&total)
	return uint32(total), errors.Wrap(err, "error during query")
}

func (r *Repository) HasRole(ctx context.Context, role entity.Role, addr common.Address) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM presale_role_members WHERE role = $1 AND address = $2)`,
		role.String(), addr.String(),
	).Scan(&exists)
	return exists, errors.Wrap(err, "error during query")
}

func (r *Repository) GrantRole(ctx context.Context, arg datagateway.GrantRoleParams) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO presale_role_members (role, address, granted_by) VALUES ($1, $2, $3)
		ON CONFLICT (role, address) DO NOTHING`,
		arg.Role.String(), arg.Address.String(), arg.GrantedBy.String(),
	)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) RevokeRole(ctx context.Context, role entity.Role, addr common.Address) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM presale_role_members WHERE role = $1 AND address = $2`,
		role.String(), addr.String(),
	)
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) GetPendingOperation(ctx context.Context, opHash string) (*entity.PendingOperation, error) {
	var (
		op         entity.PendingOperation
		confirmers []string
		createdAt  time.Time
	)
	err := r.q.QueryRow(ctx, `
		SELECT op_hash, kind, params, confirmers, executed, created_at
		FROM presale_pending_operations WHERE op_hash = $1`,
		opHash,
	).Scan(&op.OpHash, &op.Kind, &op.Params, &confirmers, &op.Executed, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	op.Confirmers = lo.Map(confirmers, func(addr string, _ int) common.Address { return common.Address(addr) })
	op.CreatedAt = createdAt.UTC()
	return &op, nil
}

func (r *Repository) CreatePendingOperation(ctx context.Context, op entity.PendingOperation) error {
	params := op.Params
	if params == nil {
		params = []byte("{}")
	}
	confirmers := lo.Map(op.Confirmers, func(addr common.Address, _ int) string { return addr.String() })
	_, err := r.q.Exec(ctx, `
		INSERT INTO presale_pending_operations (op_hash, kind, params, confirmers, executed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		op.OpHash, op.Kind, []byte(params), confirmers, op.Executed, op.CreatedAt.UTC(),
	)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) UpdatePendingOperation(ctx context.Context, op entity.PendingOperation) error {
	confirmers := lo.Map(op.Confirmers, func(addr common.Address, _ int) string { return addr.String() })
	_, err := r.q.Exec(ctx, `
		UPDATE presale_pending_operations SET confirmers = $2, executed = $3 WHERE op_hash = $1`,
		op.OpHash, confirmers, op.Executed,
	)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) AddEvent(ctx context.Context, arg datagateway.AddEventParams) error {
	payload := []byte("{}")
	if arg.Payload != nil {
		var err error
		if payload, err = json.Marshal(arg.Payload); err != nil {
			return errors.Wrap(err, "failed to marshal event payload")
		}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO presale_events (kind, actor, payload) VALUES ($1, $2, $3)`,
		arg.Kind, arg.Actor.String(), payload,
	)
	return errors.Wrap(err, "error during exec")
}

func (r *Repository) GetEvents(ctx context.Context, arg datagateway.GetEventsParams) ([]entity.Event, error) {
	actor := arg.Actor.String()
	if arg.Actor.IsZero() {
		actor = ""
	}
	rows, err := r.q.Query(ctx, `
		SELECT seq, kind, actor, payload, created_at
		FROM presale_events
		WHERE ($1 = '' OR kind = $1) AND ($2 = '' OR actor = $2)
		ORDER BY seq DESC
		LIMIT $3 OFFSET $4`,
		arg.Kind, actor, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	events := make([]entity.Event, 0)
	for rows.Next() {
		var (
			event     entity.Event
			actor     string
			createdAt time.Time
		)
		if err := rows.Scan(&event.Seq, &event.Kind, &actor, &event.Payload, &createdAt); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		event.Actor = common.Address(actor)
		event.CreatedAt = createdAt.UTC()
		events = append(events, event)
	}
	return events, errors.Wrap(rows.Err(), "error during iteration")
}
