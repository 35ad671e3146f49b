package bootstrap

import (
	"context"
	"log/slog"

	"circulation-engine/internal/infra/db"
	"circulation-engine/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, closePool, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			slog.Info("database connected", "host", cfg.DB.Host, "db", cfg.DB.DBName, "max_conns", pool.Config().MaxConns)
			return nil
		},
		OnStop: func(_ context.Context) error {
			stat := pool.Stat()
			slog.Info("closing database pool", "acquired", stat.AcquiredConns(), "total", stat.TotalConns())
			closePool()
			return nil
		},
	})

	return pool, nil
}
