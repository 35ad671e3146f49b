package repository

import (
	"context"
	"log/slog"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/infra"
	"circulation-engine/internal/pkg/pgconv"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type HoldRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewHoldRepository(db DBTX) *HoldRepository {
	return &HoldRepository{db: db, logger: slog.Default()}
}

func selectHolds() *goqu.SelectDataset {
	return dialect.From(tblHolds).Prepared(true).
		Select("id", "patron_id", "license_pool_id", "start_at", "end_at", "position", "external_identifier")
}

func scanHold(row pgx.CollectableRow) (*domcirc.Hold, error) {
	var (
		id, patronID, poolID uuid.UUID
		start, end           pgtype.Timestamptz
		position             pgtype.Int4
		externalID           string
	)
	if err := row.Scan(&id, &patronID, &poolID, &start, &end, &position, &externalID); err != nil {
		return nil, err
	}
	return domcirc.ReconstructHold(
		id, patronID, poolID,
		pgconv.TimePtrFromPgtype(start), pgconv.TimePtrFromPgtype(end),
		pgconv.IntPtrFromPgtype(position),
		externalID,
	), nil
}

func (r *HoldRepository) query(ctx context.Context, ds *goqu.SelectDataset, msg string) ([]*domcirc.Hold, error) {
	query, args, err := build(r.logger, ds, msg)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, msg, err)
	}
	holds, err := pgx.CollectRows(rows, scanHold)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, msg, err)
	}
	return holds, nil
}

func (r *HoldRepository) FindFor(ctx context.Context, patronID, poolID uuid.UUID) (*domcirc.Hold, error) {
	holds, err := r.query(ctx, selectHolds().Where(goqu.Ex{"patron_id": patronID, "license_pool_id": poolID}), "find hold")
	if err != nil {
		return nil, err
	}
	if len(holds) == 0 {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "hold not found", nil)
	}
	return holds[0], nil
}

func (r *HoldRepository) ListByPatron(ctx context.Context, patronID uuid.UUID) ([]*domcirc.Hold, error) {
	return r.query(ctx, selectHolds().Where(goqu.Ex{"patron_id": patronID}).Order(goqu.I("start_at").Asc()), "list holds")
}

func (r *HoldRepository) Create(ctx context.Context, hold *domcirc.Hold) error {
	ds := dialect.Insert(tblHolds).Prepared(true).Rows(goqu.Record{
		"id":                  hold.ID(),
		"patron_id":           hold.PatronID(),
		"license_pool_id":     hold.PoolID(),
		"start_at":            hold.Start(),
		"end_at":              hold.End(),
		"position":            hold.Position(),
		"external_identifier": hold.ExternalIdentifier(),
	})
	_, err := execStmt(ctx, r.logger, r.db, ds, "create hold")
	return err
}

func (r *HoldRepository) Update(ctx context.Context, hold *domcirc.Hold) error {
	ds := dialect.Update(tblHolds).Prepared(true).
		Set(goqu.Record{
			"start_at":            hold.Start(),
			"end_at":              hold.End(),
			"position":            hold.Position(),
			"external_identifier": hold.ExternalIdentifier(),
		}).
		Where(goqu.Ex{"id": hold.ID()})
	return execOne(ctx, r.logger, r.db, ds, "update hold")
}

func (r *HoldRepository) Delete(ctx context.Context, holdID uuid.UUID) error {
	ds := dialect.Delete(tblHolds).Prepared(true).Where(goqu.Ex{"id": holdID})
	_, err := execStmt(ctx, r.logger, r.db, ds, "delete hold")
	return err
}
