package repository

import (
	"context"
	"log/slog"

	"circulation-engine/internal/infra"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	tblLibraries          = "libraries"
	tblPatrons            = "patrons"
	tblPools              = "license_pools"
	tblDeliveryMechanisms = "license_pool_delivery_mechanisms"
	tblLoans              = "loans"
	tblHolds              = "holds"
	tblEvents             = "circulation_events"
)

var dialect = goqu.Dialect("postgres")

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

func build(logger *slog.Logger, ds sqlBuilder, msg string) (string, []any, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, infra.WrapRepoErr(logger, infra.KindDBFailure, "failed to build query: "+msg, err)
	}
	return query, args, nil
}

func execStmt(ctx context.Context, logger *slog.Logger, db DBTX, ds sqlBuilder, msg string) (int64, error) {
	query, args, err := build(logger, ds, msg)
	if err != nil {
		return 0, err
	}
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return 0, infra.WrapPgErr(logger, msg, err)
	}
	return tag.RowsAffected(), nil
}

// execOne fails with KindNotFound when the statement touched no row.
func execOne(ctx context.Context, logger *slog.Logger, db DBTX, ds sqlBuilder, msg string) error {
	n, err := execStmt(ctx, logger, db, ds, msg)
	if err != nil {
		return err
	}
	if n == 0 {
		return infra.WrapRepoErr(logger, infra.KindNotFound, msg, nil)
	}
	return nil
}
