package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/internal/postgres"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/datagateway"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/internal/entity"
)

var _ datagateway.PresaleDataGateway = (*Repository)(nil)

type Repository struct {
	db postgres.DB
	// q is the active query target: the pool, or the open transaction.
	q  postgres.Queryable
	tx pgx.Tx
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{db: db, q: db}
}

// SeedDefaultAdmin grants DEFAULT_ADMIN to the configured bootstrap address
// if no admin exists yet. Called once on module start.
func (r *Repository) SeedDefaultAdmin(ctx context.Context, admin common.Address) error {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM presale_role_members WHERE role = $1`, entity.RoleDefaultAdmin).Scan(&count)
	if err != nil {
		return errors.Wrap(err, "error during query")
	}
	if count > 0 {
		return nil
	}
	return r.GrantRole(ctx, datagateway.GrantRoleParams{
		Role:      entity.RoleDefaultAdmin,
		Address:   admin,
		GrantedBy: admin,
	})
}
