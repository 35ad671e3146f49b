package repository

import (
	"context"
	"log/slog"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/infra"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DeliveryMechanismRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewDeliveryMechanismRepository(db DBTX) *DeliveryMechanismRepository {
	return &DeliveryMechanismRepository{db: db, logger: slog.Default()}
}

func (r *DeliveryMechanismRepository) ListByPools(ctx context.Context, poolIDs []uuid.UUID) (map[uuid.UUID][]*domcirc.LicensePoolDeliveryMechanism, error) {
	out := make(map[uuid.UUID][]*domcirc.LicensePoolDeliveryMechanism, len(poolIDs))
	if len(poolIDs) == 0 {
		return out, nil
	}

	ds := dialect.From(tblDeliveryMechanisms).Prepared(true).
		Select("id", "license_pool_id", "content_type", "drm_scheme", "rights_uri", "resource_url").
		Where(goqu.Ex{"license_pool_id": poolIDs}).
		Order(goqu.I("content_type").Asc(), goqu.I("drm_scheme").Asc())
	query, args, err := build(r.logger, ds, "list delivery mechanisms")
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "list delivery mechanisms", err)
	}
	mechs, err := pgx.CollectRows(rows, scanDeliveryMechanism)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "list delivery mechanisms", err)
	}
	for _, m := range mechs {
		out[m.PoolID()] = append(out[m.PoolID()], m)
	}
	return out, nil
}

func scanDeliveryMechanism(row pgx.CollectableRow) (*domcirc.LicensePoolDeliveryMechanism, error) {
	var (
		id, poolID             uuid.UUID
		contentType, drm       string
		rightsURI, resourceURL string
	)
	if err := row.Scan(&id, &poolID, &contentType, &drm, &rightsURI, &resourceURL); err != nil {
		return nil, err
	}
	return domcirc.ReconstructLicensePoolDeliveryMechanism(
		id, poolID,
		domcirc.DeliveryMechanism{ContentType: contentType, DRMScheme: drm},
		rightsURI, resourceURL,
	), nil
}

func (r *DeliveryMechanismRepository) Create(ctx context.Context, d *domcirc.LicensePoolDeliveryMechanism) error {
	m := d.Mechanism()
	ds := dialect.Insert(tblDeliveryMechanisms).Prepared(true).Rows(goqu.Record{
		"id":              d.ID(),
		"license_pool_id": d.PoolID(),
		"content_type":    m.ContentType,
		"drm_scheme":      m.DRMScheme,
		"rights_uri":      d.RightsURI(),
		"resource_url":    d.ResourceURL(),
	})
	_, err := execStmt(ctx, r.logger, r.db, ds, "create delivery mechanism")
	return err
}
