package presale

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/common"
	"github.com/moonShotMAGAX1/presale-ledger/internal/config"
	"github.com/moonShotMAGAX1/presale-ledger/internal/postgres"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/api/httphandler"
	repository "github.com/moonShotMAGAX1/presale-ledger/modules/presale/repository/postgres"
	"github.com/moonShotMAGAX1/presale-ledger/modules/presale/usecase"
	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger"
	"github.com/samber/do/v2"
)

const Version = "v0.1.0"

// New wires the presale module: Postgres pool, repository, usecase and the
// HTTP API, using dependencies from the injector.
func New(injector do.Injector) (*usecase.Usecase, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)

	pg, err := postgres.NewPool(ctx, conf.Modules.Presale.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "can't create Postgres connection pool")
	}
	var cleanupFuncs []func(context.Context) error
	cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
		pg.Close()
		return nil
	})
	repo := repository.NewRepository(pg)

	if conf.Modules.Presale.Admin != "" {
		admin, err := common.ParseAddress(conf.Modules.Presale.Admin)
		if err != nil {
			return nil, errors.Wrap(err, "invalid admin address in config")
		}
		if err := repo.SeedDefaultAdmin(ctx, admin); err != nil {
			return nil, errors.Wrap(err, "can't seed default admin")
		}
	}

	presaleUsecase := usecase.New(repo, cleanupFuncs)

	httpServer := do.MustInvoke[*fiber.App](injector)
	presaleHandler := httphandler.New(presaleUsecase, repo)
	if err := presaleHandler.Mount(httpServer); err != nil {
		return nil, errors.Wrap(err, "can't mount presale API")
	}
	logger.InfoContext(ctx, "Mounted presale HTTP handler")

	logger.InfoContext(ctx, "Presale module started.")
	return presaleUsecase, nil
}
