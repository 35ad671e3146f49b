package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/infra/repository"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresUoW(pool *pgxpool.Pool, logger *slog.Logger) shared.UnitOfWork {
	return &PostgresUoW{
		pool:   pool,
		logger: logger,
	}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, reads shared.CommandReads) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, newCommandReads(pgxTx)); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return newCommandReads(u.pool)
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		err = fn(ctx, &pgTx{dbtx: pgxTx})
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries && isRetryableError(err) {
				u.logger.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		u.logger.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- high bit masked above
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx repository.DBTX

	// Lazy-initialized repositories
	patronRepo    *repository.PatronRepository
	poolRepo      *repository.LicensePoolRepository
	mechanismRepo *repository.DeliveryMechanismRepository
	loanRepo      *repository.LoanRepository
	holdRepo      *repository.HoldRepository
	commandReads  shared.CommandReads
}

func (t *pgTx) Patrons() shared.PatronRepository {
	if t.patronRepo == nil {
		t.patronRepo = repository.NewPatronRepository(t.dbtx)
	}
	return t.patronRepo
}

func (t *pgTx) Pools() shared.LicensePoolRepository {
	if t.poolRepo == nil {
		t.poolRepo = repository.NewLicensePoolRepository(t.dbtx)
	}
	return t.poolRepo
}

func (t *pgTx) DeliveryMechanisms() shared.DeliveryMechanismRepository {
	if t.mechanismRepo == nil {
		t.mechanismRepo = repository.NewDeliveryMechanismRepository(t.dbtx)
	}
	return t.mechanismRepo
}

func (t *pgTx) Loans() shared.LoanRepository {
	if t.loanRepo == nil {
		t.loanRepo = repository.NewLoanRepository(t.dbtx)
	}
	return t.loanRepo
}

func (t *pgTx) Holds() shared.HoldRepository {
	if t.holdRepo == nil {
		t.holdRepo = repository.NewHoldRepository(t.dbtx)
	}
	return t.holdRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = newCommandReads(t.dbtx)
	}
	return t.commandReads
}

type commandReads struct {
	libraries *repository.LibraryRepository
	patrons   *repository.PatronRepository
	pools     *repository.LicensePoolRepository
	loans     *repository.LoanRepository
	holds     *repository.HoldRepository
}

func newCommandReads(db repository.DBTX) *commandReads {
	return &commandReads{
		libraries: repository.NewLibraryRepository(db),
		patrons:   repository.NewPatronRepository(db),
		pools:     repository.NewLicensePoolRepository(db),
		loans:     repository.NewLoanRepository(db),
		holds:     repository.NewHoldRepository(db),
	}
}

func (r *commandReads) LibraryByID(ctx context.Context, id uuid.UUID) (*domcirc.Library, error) {
	return r.libraries.FindByID(ctx, id)
}

func (r *commandReads) PatronByID(ctx context.Context, id uuid.UUID) (*domcirc.Patron, error) {
	return r.patrons.FindByID(ctx, id)
}

func (r *commandReads) PatronByAuthorizationIdentifier(ctx context.Context, authorizationIdentifier string) (*domcirc.Patron, error) {
	return r.patrons.FindByAuthorizationIdentifier(ctx, authorizationIdentifier)
}

func (r *commandReads) PoolByID(ctx context.Context, id uuid.UUID) (*domcirc.LicensePool, error) {
	return r.pools.FindByID(ctx, id)
}

func (r *commandReads) PoolsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domcirc.LicensePool, error) {
	return r.pools.FindByIDs(ctx, ids)
}

func (r *commandReads) PoolByIdentifier(ctx context.Context, collectionID uuid.UUID, identifier domcirc.Identifier) (*domcirc.LicensePool, error) {
	return r.pools.FindByIdentifier(ctx, collectionID, identifier)
}

func (r *commandReads) LoanFor(ctx context.Context, patronID, poolID uuid.UUID) (*domcirc.Loan, error) {
	return r.loans.FindFor(ctx, patronID, poolID)
}

func (r *commandReads) HoldFor(ctx context.Context, patronID, poolID uuid.UUID) (*domcirc.Hold, error) {
	return r.holds.FindFor(ctx, patronID, poolID)
}

func (r *commandReads) LoansByPatron(ctx context.Context, patronID uuid.UUID) ([]*domcirc.Loan, error) {
	return r.loans.ListByPatron(ctx, patronID)
}

func (r *commandReads) HoldsByPatron(ctx context.Context, patronID uuid.UUID) ([]*domcirc.Hold, error) {
	return r.holds.ListByPatron(ctx, patronID)
}
