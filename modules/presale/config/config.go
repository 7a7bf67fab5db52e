package config

import "github.com/moonShotMAGAX1/presale-ledger/internal/postgres"

type Config struct {
	Postgres postgres.Config `mapstructure:"postgres"`

	// Admin is the address seeded as DEFAULT_ADMIN on first start.
	Admin string `mapstructure:"admin"`
}
