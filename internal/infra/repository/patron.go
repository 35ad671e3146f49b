package repository

import (
	"context"
	"log/slog"
	"time"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/infra"
	"circulation-engine/internal/pkg/pgconv"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var patronColumns = []any{
	"id", "library_id", "authorization_identifier", "pin_hash", "fines_cents",
	"block_reason", "authorization_expires", "last_loan_activity_sync", "created_at",
}

type PatronRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewPatronRepository(db DBTX) *PatronRepository {
	return &PatronRepository{db: db, logger: slog.Default()}
}

func (r *PatronRepository) FindByID(ctx context.Context, id uuid.UUID) (*domcirc.Patron, error) {
	return r.findOne(ctx, goqu.Ex{"id": id}, "find patron by id")
}

func (r *PatronRepository) FindByAuthorizationIdentifier(ctx context.Context, authorizationIdentifier string) (*domcirc.Patron, error) {
	return r.findOne(ctx, goqu.Ex{"authorization_identifier": authorizationIdentifier}, "find patron by authorization identifier")
}

func (r *PatronRepository) findOne(ctx context.Context, where goqu.Ex, msg string) (*domcirc.Patron, error) {
	ds := dialect.From(tblPatrons).Prepared(true).Select(patronColumns...).Where(where)
	query, args, err := build(r.logger, ds, msg)
	if err != nil {
		return nil, err
	}

	var (
		id, libraryID   uuid.UUID
		authID, pin     string
		fines           int64
		blockReason     string
		expires, synced pgtype.Timestamptz
		createdAt       time.Time
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(&id, &libraryID, &authID, &pin, &fines, &blockReason, &expires, &synced, &createdAt)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, msg, err)
	}

	return domcirc.ReconstructPatron(
		id, libraryID,
		authID, pin,
		fines, blockReason,
		pgconv.TimePtrFromPgtype(expires),
		pgconv.TimePtrFromPgtype(synced),
		createdAt,
	), nil
}

func (r *PatronRepository) Create(ctx context.Context, p *domcirc.Patron) error {
	ds := dialect.Insert(tblPatrons).Prepared(true).Rows(goqu.Record{
		"id":                       p.ID(),
		"library_id":               p.LibraryID(),
		"authorization_identifier": p.AuthorizationIdentifier(),
		"pin_hash":                 p.PinHash(),
		"fines_cents":              p.FinesCents(),
		"block_reason":             p.BlockReason(),
		"authorization_expires":    p.AuthorizationExpires(),
		"last_loan_activity_sync":  p.LastLoanActivitySync(),
		"created_at":               p.CreatedAt(),
	})
	_, err := execStmt(ctx, r.logger, r.db, ds, "create patron")
	return err
}

func (r *PatronRepository) UpdateLoanActivitySync(ctx context.Context, p *domcirc.Patron) error {
	ds := dialect.Update(tblPatrons).Prepared(true).
		Set(goqu.Record{"last_loan_activity_sync": p.LastLoanActivitySync()}).
		Where(goqu.Ex{"id": p.ID()})
	return execOne(ctx, r.logger, r.db, ds, "update patron loan activity sync")
}
