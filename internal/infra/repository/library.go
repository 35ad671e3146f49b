package repository

import (
	"context"
	"log/slog"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/infra"
	"circulation-engine/internal/pkg/pgconv"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type LibraryRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewLibraryRepository(db DBTX) *LibraryRepository {
	return &LibraryRepository{db: db, logger: slog.Default()}
}

func (r *LibraryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domcirc.Library, error) {
	ds := dialect.From(tblLibraries).Prepared(true).
		Select("id", "name", "short_name", "loan_limit", "hold_limit", "max_outstanding_fines_cents").
		Where(goqu.Ex{"id": id})
	query, args, err := build(r.logger, ds, "find library")
	if err != nil {
		return nil, err
	}

	var (
		libID     uuid.UUID
		name      string
		shortName string
		loanLimit pgtype.Int4
		holdLimit pgtype.Int4
		maxFines  pgtype.Int8
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(&libID, &name, &shortName, &loanLimit, &holdLimit, &maxFines)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "find library", err)
	}

	return domcirc.ReconstructLibrary(
		libID, name, shortName,
		pgconv.IntPtrFromPgtype(loanLimit),
		pgconv.IntPtrFromPgtype(holdLimit),
		pgconv.Int64PtrFromPgtype(maxFines),
	), nil
}

func (r *LibraryRepository) Create(ctx context.Context, lib *domcirc.Library) error {
	ds := dialect.Insert(tblLibraries).Prepared(true).Rows(goqu.Record{
		"id":                          lib.ID(),
		"name":                        lib.Name(),
		"short_name":                  lib.ShortName(),
		"loan_limit":                  lib.LoanLimit(),
		"hold_limit":                  lib.HoldLimit(),
		"max_outstanding_fines_cents": lib.MaxOutstandingFines(),
	})
	_, err := execStmt(ctx, r.logger, r.db, ds, "create library")
	return err
}
