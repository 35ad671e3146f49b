package circulation

import (
	"context"
	"log/slog"
	"time"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/infra"
	"circulation-engine/internal/pkg/clock"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/usecase/remote"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type Config struct {
	FanoutLimit             int
	VendorTimeout           time.Duration
	RecentLoanGrace         time.Duration
	PlaceholderLoanDuration time.Duration
	LoanActivityMaxAge      time.Duration
	SignedURLTTL            time.Duration
}

func DefaultConfig() Config {
	return Config{
		FanoutLimit:             8,
		VendorTimeout:           20 * time.Second,
		RecentLoanGrace:         time.Minute,
		PlaceholderLoanDuration: time.Hour,
		LoanActivityMaxAge:      15 * time.Minute,
		SignedURLTTL:            time.Hour,
	}
}

type BorrowRequest struct {
	PatronID    uuid.UUID
	PIN         string
	PoolID      uuid.UUID
	Mechanism   *domcirc.DeliveryMechanism
	NotifyEmail string
}

// BorrowResult carries exactly one of Loan or Hold.
type BorrowResult struct {
	Loan  *domcirc.Loan
	Hold  *domcirc.Hold
	IsNew bool
}

type FulfillRequest struct {
	PatronID  uuid.UUID
	PIN       string
	PoolID    uuid.UUID
	Mechanism *domcirc.DeliveryMechanism
	Part      string
	PartURL   func(part string) string
}

// Activity is the merged result of asking every vendor for a patron's loans
// and holds. Complete is false when any vendor failed to answer.
type Activity struct {
	Loans    []*domcirc.LoanInfo
	Holds    []*domcirc.HoldInfo
	Complete bool
}

type Bookshelf struct {
	Loans []*domcirc.Loan
	Holds []*domcirc.Hold
	Pools map[uuid.UUID]*domcirc.LicensePool
	// Synced is false when the bookshelf was served from local rows.
	Synced bool
}

// Engine is the only component that mutates local loans and holds on
// behalf of circulation actions.
type Engine interface {
	Borrow(ctx context.Context, req BorrowRequest) (*BorrowResult, error)
	Fulfill(ctx context.Context, req FulfillRequest) (*domcirc.FulfillmentInfo, error)
	RevokeLoan(ctx context.Context, patronID uuid.UUID, pin string, poolID uuid.UUID) (bool, error)
	ReleaseHold(ctx context.Context, patronID uuid.UUID, pin string, poolID uuid.UUID) (bool, error)
	CanRevokeHold(ctx context.Context, patronID, poolID uuid.UUID) (bool, error)
	CanFulfillWithoutLoan(ctx context.Context, patronID, poolID uuid.UUID, mechanism *domcirc.DeliveryMechanism) (bool, error)
	EnforceLimits(ctx context.Context, patronID, poolID uuid.UUID) error
	PatronActivity(ctx context.Context, patron *domcirc.Patron, pin string) (*Activity, error)
	SyncBookshelf(ctx context.Context, patronID uuid.UUID, pin string, force bool) (*Bookshelf, error)
	RefreshAvailability(ctx context.Context, poolID uuid.UUID) (*domcirc.LicensePool, error)
}

type engine struct {
	uow       shared.UnitOfWork
	registry  *remote.Registry
	analytics shared.Analytics
	signer    shared.URLSigner
	clock     clock.Clock
	logger    *slog.Logger
	cfg       Config
}

func NewEngine(
	uow shared.UnitOfWork,
	registry *remote.Registry,
	analytics shared.Analytics,
	signer shared.URLSigner,
	clk clock.Clock,
	logger *slog.Logger,
	cfg Config,
) Engine {
	if cfg.FanoutLimit <= 0 {
		cfg.FanoutLimit = 1
	}
	return &engine{
		uow:       uow,
		registry:  registry,
		analytics: analytics,
		signer:    signer,
		clock:     clk,
		logger:    logger.With("component", "circulation"),
		cfg:       cfg,
	}
}

type subject struct {
	patron  *domcirc.Patron
	library *domcirc.Library
	pool    *domcirc.LicensePool
}

func (e *engine) load(ctx context.Context, patronID, poolID uuid.UUID) (*subject, error) {
	reads := e.uow.CommandReads()

	patron, err := reads.PatronByID(ctx, patronID)
	if err != nil {
		return nil, notFoundAs(err, errs.ErrPatronNotFound)
	}
	lib, err := reads.LibraryByID(ctx, patron.LibraryID())
	if err != nil {
		return nil, notFoundAs(err, errs.ErrLibraryNotFound)
	}
	pool, err := reads.PoolByID(ctx, poolID)
	if err != nil {
		return nil, notFoundAs(err, errs.ErrPoolNotFound)
	}
	return &subject{patron: patron, library: lib, pool: pool}, nil
}

func notFoundAs(err, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, sentinel)
	}
	return err
}

// loanFor returns nil without error when the patron has no loan.
func loanFor(ctx context.Context, reads shared.CommandReads, patronID, poolID uuid.UUID) (*domcirc.Loan, error) {
	loan, err := reads.LoanFor(ctx, patronID, poolID)
	if infra.IsKind(err, infra.KindNotFound) {
		return nil, nil
	}
	return loan, err
}

func holdFor(ctx context.Context, reads shared.CommandReads, patronID, poolID uuid.UUID) (*domcirc.Hold, error) {
	hold, err := reads.HoldFor(ctx, patronID, poolID)
	if infra.IsKind(err, infra.KindNotFound) {
		return nil, nil
	}
	return hold, err
}

func (e *engine) collect(ctx context.Context, s *subject, name string) {
	if e.analytics == nil {
		return
	}
	e.analytics.Collect(ctx, shared.Event{
		LibraryID:  s.library.ID(),
		PoolID:     s.pool.ID(),
		Name:       name,
		OccurredAt: e.clock.Now(),
	})
}

// clearSyncMarker forces the next bookshelf request to ask the vendors.
func clearSyncMarker(ctx context.Context, tx shared.Tx, patron *domcirc.Patron) error {
	patron.ClearLoanActivitySync()
	return tx.Patrons().UpdateLoanActivitySync(ctx, patron)
}

// updateAvailability asks the vendor for fresh counters and stores them.
func (e *engine) updateAvailability(ctx context.Context, provider remote.Provider, pool *domcirc.LicensePool) error {
	if err := provider.UpdateAvailability(ctx, pool); err != nil {
		return err
	}
	return e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Pools().UpdateAvailability(ctx, pool)
	})
}

// refreshAvailability is updateAvailability on a path that is already
// failing; its own errors are only logged.
func (e *engine) refreshAvailability(ctx context.Context, provider remote.Provider, pool *domcirc.LicensePool) {
	if err := e.updateAvailability(ctx, provider, pool); err != nil {
		e.logger.Warn("availability refresh failed",
			"pool_id", pool.ID().String(),
			"collection_id", pool.CollectionID().String(),
			"error", err.Error())
	}
}

func (e *engine) RefreshAvailability(ctx context.Context, poolID uuid.UUID) (*domcirc.LicensePool, error) {
	pool, err := e.uow.CommandReads().PoolByID(ctx, poolID)
	if err != nil {
		return nil, notFoundAs(err, errs.ErrPoolNotFound)
	}
	if pool.IsLocal() {
		return pool, nil
	}
	provider, ok := e.registry.Provider(pool.CollectionID())
	if !ok {
		return nil, errs.Mark(errs.Newf("collection %s", pool.CollectionID()), errs.ErrCollectionNotConfigured)
	}
	if err := e.updateAvailability(ctx, provider, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// lockTo binds loan to mechanism inside tx, storing the pool mechanism
// first when the pool did not know it yet.
func lockTo(ctx context.Context, tx shared.Tx, pool *domcirc.LicensePool, loan *domcirc.Loan, info domcirc.DeliveryMechanismInfo) error {
	d := pool.DeliveryMechanism(info.Mechanism())
	if d == nil {
		d = domcirc.NewLicensePoolDeliveryMechanism(pool.ID(), info.Mechanism(), info.RightsURI, info.ResourceURL)
		if err := tx.DeliveryMechanisms().Create(ctx, d); err != nil {
			return err
		}
		pool.AddDeliveryMechanism(d)
	}
	loan.LockTo(d)
	return nil
}
