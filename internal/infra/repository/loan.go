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

type LoanRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewLoanRepository(db DBTX) *LoanRepository {
	return &LoanRepository{db: db, logger: slog.Default()}
}

func (r *LoanRepository) selectLoans() *goqu.SelectDataset {
	return dialect.From(goqu.T(tblLoans).As("l")).Prepared(true).
		LeftJoin(goqu.T(tblDeliveryMechanisms).As("m"), goqu.On(goqu.I("m.id").Eq(goqu.I("l.fulfillment_id")))).
		Select(
			"l.id", "l.patron_id", "l.license_pool_id", "l.start_at", "l.end_at", "l.external_identifier",
			"m.id", "m.content_type", "m.drm_scheme", "m.rights_uri", "m.resource_url",
		)
}

func scanLoan(row pgx.CollectableRow) (*domcirc.Loan, error) {
	var (
		id, patronID, poolID uuid.UUID
		start, end           pgtype.Timestamptz
		externalID           string
		mechID               pgtype.UUID
		contentType, drm     pgtype.Text
		rights, resource     pgtype.Text
	)
	err := row.Scan(&id, &patronID, &poolID, &start, &end, &externalID, &mechID, &contentType, &drm, &rights, &resource)
	if err != nil {
		return nil, err
	}

	var fulfillment *domcirc.LicensePoolDeliveryMechanism
	if mid := pgconv.UUIDPtrFromPgtype(mechID); mid != nil {
		fulfillment = domcirc.ReconstructLicensePoolDeliveryMechanism(
			*mid, poolID,
			domcirc.DeliveryMechanism{
				ContentType: pgconv.StringFromPgtype(contentType),
				DRMScheme:   pgconv.StringFromPgtype(drm),
			},
			pgconv.StringFromPgtype(rights),
			pgconv.StringFromPgtype(resource),
		)
	}

	return domcirc.ReconstructLoan(
		id, patronID, poolID,
		pgconv.TimePtrFromPgtype(start), pgconv.TimePtrFromPgtype(end),
		externalID, fulfillment,
	), nil
}

func (r *LoanRepository) query(ctx context.Context, ds *goqu.SelectDataset, msg string) ([]*domcirc.Loan, error) {
	query, args, err := build(r.logger, ds, msg)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, msg, err)
	}
	loans, err := pgx.CollectRows(rows, scanLoan)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, msg, err)
	}
	return loans, nil
}

func (r *LoanRepository) FindFor(ctx context.Context, patronID, poolID uuid.UUID) (*domcirc.Loan, error) {
	loans, err := r.query(ctx, r.selectLoans().Where(goqu.Ex{"l.patron_id": patronID, "l.license_pool_id": poolID}), "find loan")
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "loan not found", nil)
	}
	return loans[0], nil
}

func (r *LoanRepository) ListByPatron(ctx context.Context, patronID uuid.UUID) ([]*domcirc.Loan, error) {
	return r.query(ctx, r.selectLoans().Where(goqu.Ex{"l.patron_id": patronID}).Order(goqu.I("l.start_at").Asc()), "list loans")
}

func (r *LoanRepository) Create(ctx context.Context, loan *domcirc.Loan) error {
	ds := dialect.Insert(tblLoans).Prepared(true).Rows(goqu.Record{
		"id":                  loan.ID(),
		"patron_id":           loan.PatronID(),
		"license_pool_id":     loan.PoolID(),
		"start_at":            loan.Start(),
		"end_at":              loan.End(),
		"external_identifier": loan.ExternalIdentifier(),
		"fulfillment_id":      fulfillmentID(loan),
	})
	_, err := execStmt(ctx, r.logger, r.db, ds, "create loan")
	return err
}

func (r *LoanRepository) Update(ctx context.Context, loan *domcirc.Loan) error {
	ds := dialect.Update(tblLoans).Prepared(true).
		Set(goqu.Record{
			"start_at":            loan.Start(),
			"end_at":              loan.End(),
			"external_identifier": loan.ExternalIdentifier(),
			"fulfillment_id":      fulfillmentID(loan),
		}).
		Where(goqu.Ex{"id": loan.ID()})
	return execOne(ctx, r.logger, r.db, ds, "update loan")
}

func (r *LoanRepository) Delete(ctx context.Context, loanID uuid.UUID) error {
	ds := dialect.Delete(tblLoans).Prepared(true).Where(goqu.Ex{"id": loanID})
	_, err := execStmt(ctx, r.logger, r.db, ds, "delete loan")
	return err
}

func fulfillmentID(loan *domcirc.Loan) *uuid.UUID {
	if loan.Fulfillment() == nil {
		return nil
	}
	id := loan.Fulfillment().ID()
	return &id
}
