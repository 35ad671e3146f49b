package components

import (
	"circulation-engine/internal/infra/analytics"
	"circulation-engine/internal/infra/repository"
	"circulation-engine/internal/infra/uow"
	"circulation-engine/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// UnitOfWork
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Analytics events
		fx.Annotate(
			repository.NewEventRepository,
			fx.As(new(analytics.EventWriter)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) repository.DBTX {
	return pool
}
