package database

import (
	"context"
	"fmt"

	"investmentapp/src/config"
	"investmentapp/src/repositories"
	"investmentapp/src/repositories/memory"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DSN builds the connection string from the SQL config unless one is given.
func DSN(cfg *config.Config) string {
	dsn := cfg.Databases.SQL.ConnectionString
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Databases.SQL.Host,
			cfg.Databases.SQL.Username,
			cfg.Databases.SQL.Password,
			cfg.Databases.SQL.Database,
			cfg.Databases.SQL.Port)
	}
	return dsn
}

func SetupDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.Databases.SQL.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Databases.SQL.MaxConns
	}
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// NewStore opens the entity store selected by databases.sql.driver. The
// returned close func releases its connections.
func NewStore(ctx context.Context, cfg *config.Config) (*repositories.Store, func(), error) {
	switch cfg.Databases.SQL.Driver {
	case DriverMemory:
		return memory.NewStore(), func() {}, nil
	case DriverPostgres, "":
		pool, err := SetupDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewPostgresStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported sql driver %q", cfg.Databases.SQL.Driver)
	}
}
