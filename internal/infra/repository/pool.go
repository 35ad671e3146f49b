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

var poolColumns = []any{
	"id", "collection_id", "data_source_name", "identifier_type", "identifier",
	"open_access", "self_hosted",
	"licenses_owned", "licenses_available", "licenses_reserved", "patrons_in_hold_queue",
	"last_checked",
}

type LicensePoolRepository struct {
	db         DBTX
	logger     *slog.Logger
	mechanisms *DeliveryMechanismRepository
}

func NewLicensePoolRepository(db DBTX) *LicensePoolRepository {
	return &LicensePoolRepository{
		db:         db,
		logger:     slog.Default(),
		mechanisms: NewDeliveryMechanismRepository(db),
	}
}

func (r *LicensePoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*domcirc.LicensePool, error) {
	pools, err := r.find(ctx, goqu.Ex{"id": id}, "find license pool")
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "license pool not found", nil)
	}
	return pools[0], nil
}

func (r *LicensePoolRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domcirc.LicensePool, error) {
	out := make(map[uuid.UUID]*domcirc.LicensePool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	pools, err := r.find(ctx, goqu.Ex{"id": ids}, "find license pools")
	if err != nil {
		return nil, err
	}
	for _, p := range pools {
		out[p.ID()] = p
	}
	return out, nil
}

func (r *LicensePoolRepository) FindByIdentifier(ctx context.Context, collectionID uuid.UUID, identifier domcirc.Identifier) (*domcirc.LicensePool, error) {
	pools, err := r.find(ctx, goqu.Ex{
		"collection_id":   collectionID,
		"identifier_type": identifier.Type,
		"identifier":      identifier.Value,
	}, "find license pool by identifier")
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "license pool not found", nil)
	}
	return pools[0], nil
}

type poolRow struct {
	id, collectionID uuid.UUID
	dataSource       string
	identifierType   string
	identifier       string
	openAccess       bool
	selfHosted       bool
	availability     domcirc.Availability
	lastChecked      pgtype.Timestamptz
}

func (r *LicensePoolRepository) find(ctx context.Context, where goqu.Ex, msg string) ([]*domcirc.LicensePool, error) {
	ds := dialect.From(tblPools).Prepared(true).Select(poolColumns...).Where(where)
	query, args, err := build(r.logger, ds, msg)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, msg, err)
	}
	scanned, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (poolRow, error) {
		var p poolRow
		err := row.Scan(
			&p.id, &p.collectionID, &p.dataSource, &p.identifierType, &p.identifier,
			&p.openAccess, &p.selfHosted,
			&p.availability.LicensesOwned, &p.availability.LicensesAvailable,
			&p.availability.LicensesReserved, &p.availability.PatronsInHoldQueue,
			&p.lastChecked,
		)
		return p, err
	})
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, msg, err)
	}
	if len(scanned) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(scanned))
	for _, p := range scanned {
		ids = append(ids, p.id)
	}
	mechs, err := r.mechanisms.ListByPools(ctx, ids)
	if err != nil {
		return nil, err
	}

	pools := make([]*domcirc.LicensePool, 0, len(scanned))
	for _, p := range scanned {
		pools = append(pools, domcirc.ReconstructLicensePool(
			p.id, p.collectionID,
			p.dataSource, domcirc.NewIdentifier(p.identifierType, p.identifier),
			p.openAccess, p.selfHosted,
			p.availability, mechs[p.id],
			pgconv.TimePtrFromPgtype(p.lastChecked),
		))
	}
	return pools, nil
}

func (r *LicensePoolRepository) Create(ctx context.Context, pool *domcirc.LicensePool) error {
	a := pool.Availability()
	ds := dialect.Insert(tblPools).Prepared(true).Rows(goqu.Record{
		"id":                    pool.ID(),
		"collection_id":         pool.CollectionID(),
		"data_source_name":      pool.DataSourceName(),
		"identifier_type":       pool.Identifier().Type,
		"identifier":            pool.Identifier().Value,
		"open_access":           pool.IsOpenAccess(),
		"self_hosted":           pool.IsSelfHosted(),
		"licenses_owned":        a.LicensesOwned,
		"licenses_available":    a.LicensesAvailable,
		"licenses_reserved":     a.LicensesReserved,
		"patrons_in_hold_queue": a.PatronsInHoldQueue,
		"last_checked":          pool.LastChecked(),
	})
	if _, err := execStmt(ctx, r.logger, r.db, ds, "create license pool"); err != nil {
		return err
	}
	for _, d := range pool.DeliveryMechanisms() {
		if err := r.mechanisms.Create(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *LicensePoolRepository) UpdateAvailability(ctx context.Context, pool *domcirc.LicensePool) error {
	a := pool.Availability()
	ds := dialect.Update(tblPools).Prepared(true).
		Set(goqu.Record{
			"licenses_owned":        a.LicensesOwned,
			"licenses_available":    a.LicensesAvailable,
			"licenses_reserved":     a.LicensesReserved,
			"patrons_in_hold_queue": a.PatronsInHoldQueue,
			"last_checked":          pool.LastChecked(),
		}).
		Where(goqu.Ex{"id": pool.ID()})
	return execOne(ctx, r.logger, r.db, ds, "update license pool availability")
}
