package circulation

import (
	"context"
	"time"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/infra"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// activityKey identifies a title within one vendor collection. Two
// collections may license the same identifier independently.
type activityKey struct {
	collectionID uuid.UUID
	identifier   domcirc.Identifier
}

func (e *engine) SyncBookshelf(ctx context.Context, patronID uuid.UUID, pin string, force bool) (*Bookshelf, error) {
	patron, err := e.uow.CommandReads().PatronByID(ctx, patronID)
	if err != nil {
		return nil, notFoundAs(err, errs.ErrPatronNotFound)
	}
	if !force && patron.LoanActivityFresh(e.clock.Now(), e.cfg.LoanActivityMaxAge) {
		return e.bookshelf(ctx, patronID, false)
	}

	activity, err := e.PatronActivity(ctx, patron, pin)
	if err != nil {
		return nil, err
	}

	err = e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return e.reconcile(ctx, tx, patronID, activity)
	})
	if err != nil {
		return nil, err
	}
	return e.bookshelf(ctx, patronID, true)
}

func (e *engine) bookshelf(ctx context.Context, patronID uuid.UUID, synced bool) (*Bookshelf, error) {
	shelf := &Bookshelf{Synced: synced}
	err := e.uow.WithinReadOnly(ctx, func(ctx context.Context, reads shared.CommandReads) error {
		var err error
		if shelf.Loans, err = reads.LoansByPatron(ctx, patronID); err != nil {
			return err
		}
		if shelf.Holds, err = reads.HoldsByPatron(ctx, patronID); err != nil {
			return err
		}
		shelf.Pools, err = reads.PoolsByIDs(ctx, poolIDs(shelf.Loans, shelf.Holds))
		return err
	})
	if err != nil {
		return nil, err
	}
	return shelf, nil
}

type reconciler struct {
	e      *engine
	tx     shared.Tx
	patron *domcirc.Patron
	now    time.Time
	pools  map[uuid.UUID]*domcirc.LicensePool
	loans  map[activityKey]*domcirc.Loan
	holds  map[activityKey]*domcirc.Hold
	seen   map[activityKey]bool
}

// reconcile makes the patron's local rows match activity. Rows the vendors
// did not report are only deleted when every vendor answered.
func (e *engine) reconcile(ctx context.Context, tx shared.Tx, patronID uuid.UUID, activity *Activity) error {
	reads := tx.Reads()
	patron, err := reads.PatronByID(ctx, patronID)
	if err != nil {
		return err
	}
	loans, err := reads.LoansByPatron(ctx, patronID)
	if err != nil {
		return err
	}
	holds, err := reads.HoldsByPatron(ctx, patronID)
	if err != nil {
		return err
	}
	pools, err := reads.PoolsByIDs(ctx, poolIDs(loans, holds))
	if err != nil {
		return err
	}

	r := &reconciler{
		e:      e,
		tx:     tx,
		patron: patron,
		now:    e.clock.Now(),
		pools:  pools,
		loans:  make(map[activityKey]*domcirc.Loan, len(loans)),
		holds:  make(map[activityKey]*domcirc.Hold, len(holds)),
		seen:   make(map[activityKey]bool),
	}
	for _, l := range loans {
		if p, ok := pools[l.PoolID()]; ok {
			r.loans[keyOf(p)] = l
		}
	}
	for _, h := range holds {
		if p, ok := pools[h.PoolID()]; ok {
			r.holds[keyOf(p)] = h
		}
	}

	for _, info := range activity.Loans {
		if err := r.recordLoan(ctx, info); err != nil {
			return err
		}
	}
	for _, info := range activity.Holds {
		if err := r.recordHold(ctx, info); err != nil {
			return err
		}
	}

	if !activity.Complete {
		e.logger.Info("skipping reap after incomplete patron activity", "patron_id", patronID.String())
		return nil
	}
	if err := r.reap(ctx); err != nil {
		return err
	}
	patron.MarkLoanActivitySynced(r.now)
	return tx.Patrons().UpdateLoanActivitySync(ctx, patron)
}

func (r *reconciler) recordLoan(ctx context.Context, info *domcirc.LoanInfo) error {
	pool, err := r.pool(ctx, info.CollectionID, info.DataSourceName, info.Identifier)
	if err != nil {
		return err
	}
	k := keyOf(pool)
	r.seen[k] = true

	loan, exists := r.loans[k]
	if exists {
		loan.Refresh(info.Start, info.End, info.ExternalIdentifier)
	} else {
		loan = domcirc.NewLoan(r.patron.ID(), pool.ID(), info.Start, info.End, info.ExternalIdentifier)
	}
	if info.LockedTo != nil {
		if err := lockTo(ctx, r.tx, pool, loan, *info.LockedTo); err != nil {
			return err
		}
	}
	if exists {
		err = r.tx.Loans().Update(ctx, loan)
	} else {
		err = r.tx.Loans().Create(ctx, loan)
		r.loans[k] = loan
	}
	if err != nil {
		return err
	}

	if hold, ok := r.holds[k]; ok {
		if err := r.tx.Holds().Delete(ctx, hold.ID()); err != nil {
			return err
		}
		delete(r.holds, k)
	}
	return nil
}

func (r *reconciler) recordHold(ctx context.Context, info *domcirc.HoldInfo) error {
	k := activityKey{collectionID: info.CollectionID, identifier: info.Identifier}
	// A vendor reporting both for one title means the hold just became a loan.
	if r.seen[k] {
		return nil
	}
	pool, err := r.pool(ctx, info.CollectionID, info.DataSourceName, info.Identifier)
	if err != nil {
		return err
	}

	if loan, ok := r.loans[k]; ok {
		if loan.CreatedWithin(r.now, r.e.cfg.RecentLoanGrace) {
			return nil
		}
		if err := r.tx.Loans().Delete(ctx, loan.ID()); err != nil {
			return err
		}
		delete(r.loans, k)
	}
	r.seen[k] = true

	if hold, ok := r.holds[k]; ok {
		hold.Refresh(info.Start, info.End, info.Position, info.ExternalIdentifier)
		return r.tx.Holds().Update(ctx, hold)
	}
	hold := domcirc.NewHold(r.patron.ID(), pool.ID(), info.Start, info.End, info.Position, info.ExternalIdentifier)
	r.holds[k] = hold
	return r.tx.Holds().Create(ctx, hold)
}

func (r *reconciler) reap(ctx context.Context) error {
	for k, loan := range r.loans {
		if r.seen[k] || !r.reapable(r.pools[loan.PoolID()]) {
			continue
		}
		if loan.CreatedWithin(r.now, r.e.cfg.RecentLoanGrace) {
			r.e.logger.Debug("keeping recent loan missing from patron activity",
				"loan_id", loan.ID().String(),
				"pool_id", loan.PoolID().String())
			continue
		}
		r.e.logger.Info("reaping loan", "loan_id", loan.ID().String(), "pool_id", loan.PoolID().String())
		if err := r.tx.Loans().Delete(ctx, loan.ID()); err != nil {
			return err
		}
	}
	for k, hold := range r.holds {
		if r.seen[k] || !r.reapable(r.pools[hold.PoolID()]) {
			continue
		}
		r.e.logger.Info("reaping hold", "hold_id", hold.ID().String(), "pool_id", hold.PoolID().String())
		if err := r.tx.Holds().Delete(ctx, hold.ID()); err != nil {
			return err
		}
	}
	return nil
}

// reapable limits reaping to rows some configured vendor would have reported.
func (r *reconciler) reapable(pool *domcirc.LicensePool) bool {
	if pool == nil || pool.IsLocal() {
		return false
	}
	if _, ok := r.e.registry.Provider(pool.CollectionID()); !ok {
		return false
	}
	c, ok := r.e.registry.Collection(pool.CollectionID())
	return ok && c.ServesLibrary(r.patron.LibraryID())
}

// pool finds or creates the pool a vendor DTO refers to.
func (r *reconciler) pool(ctx context.Context, collectionID uuid.UUID, dataSource string, identifier domcirc.Identifier) (*domcirc.LicensePool, error) {
	k := activityKey{collectionID: collectionID, identifier: identifier}
	for _, p := range r.pools {
		if keyOf(p) == k {
			return p, nil
		}
	}

	pool, err := r.tx.Reads().PoolByIdentifier(ctx, collectionID, identifier)
	switch {
	case err == nil:
	case infra.IsKind(err, infra.KindNotFound):
		pool = domcirc.NewLicensePool(collectionID, dataSource, identifier, false, false)
		if err := r.tx.Pools().Create(ctx, pool); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	r.pools[pool.ID()] = pool
	return pool, nil
}

func keyOf(p *domcirc.LicensePool) activityKey {
	return activityKey{collectionID: p.CollectionID(), identifier: p.Identifier()}
}

func poolIDs(loans []*domcirc.Loan, holds []*domcirc.Hold) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(loans)+len(holds))
	for _, l := range loans {
		ids = append(ids, l.PoolID())
	}
	for _, h := range holds {
		ids = append(ids, h.PoolID())
	}
	return ids
}
