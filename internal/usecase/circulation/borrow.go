package circulation

import (
	"context"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/usecase/remote"
	"circulation-engine/internal/usecase/shared"
)

func (e *engine) Borrow(ctx context.Context, req BorrowRequest) (*BorrowResult, error) {
	s, err := e.load(ctx, req.PatronID, req.PoolID)
	if err != nil {
		return nil, err
	}
	if err := s.patron.CanBorrow(s.library, e.clock.Now()); err != nil {
		return nil, err
	}

	if s.pool.IsLocal() {
		return e.borrowLocal(ctx, s)
	}

	provider, ok := e.registry.Provider(s.pool.CollectionID())
	if !ok {
		return nil, domcirc.NewError(domcirc.KindNoLicenses, "no vendor configured for collection "+s.pool.CollectionID().String(), nil)
	}

	var mechanism *domcirc.LicensePoolDeliveryMechanism
	if req.Mechanism != nil {
		mechanism = s.pool.DeliveryMechanism(*req.Mechanism)
	}
	if mechanism == nil && provider.Capabilities().DeliveryMechanismAtBorrow {
		return nil, domcirc.ErrDeliveryMechanismMissing
	}

	existing, err := loanFor(ctx, e.uow.CommandReads(), s.patron.ID(), s.pool.ID())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Vendors implement renewal as a second checkout. Make sure the loan
		// still exists before asking for one.
		if _, err := e.SyncBookshelf(ctx, s.patron.ID(), req.PIN, true); err != nil {
			return nil, err
		}
		if existing, err = loanFor(ctx, e.uow.CommandReads(), s.patron.ID(), s.pool.ID()); err != nil {
			return nil, err
		}
	}
	// A renewal does not add a loan, so limits only apply to new ones.
	if existing == nil {
		if err := e.enforceLimits(ctx, s, provider); err != nil {
			return nil, err
		}
	}

	now := e.clock.Now()
	var (
		loanInfo *domcirc.LoanInfo
		holdInfo *domcirc.HoldInfo
	)
	outcome, err := provider.Checkout(ctx, s.patron, req.PIN, s.pool, mechanism)
	switch {
	case err == nil:
		loanInfo, holdInfo = outcome.Loan, outcome.Hold
	case domcirc.IsKind(err, domcirc.KindAlreadyCheckedOut):
		loanInfo = domcirc.PlaceholderLoan(s.pool, now, e.cfg.PlaceholderLoanDuration)
	case domcirc.IsKind(err, domcirc.KindAlreadyOnHold):
		holdInfo = domcirc.PlaceholderHold(s.pool)
	case domcirc.IsKind(err, domcirc.KindNoAvailableCopies):
		if existing != nil {
			return nil, domcirc.NewError(domcirc.KindCannotRenew, "other patrons are waiting for this title", err)
		}
		e.refreshAvailability(ctx, provider, s.pool)
	case domcirc.IsKind(err, domcirc.KindNoLicenses):
		e.refreshAvailability(ctx, provider, s.pool)
		return nil, err
	default:
		return nil, err
	}

	if loanInfo != nil {
		loan, isNew, err := e.commitLoan(ctx, s, loanInfo)
		if err != nil {
			return nil, err
		}
		if isNew {
			e.collect(ctx, s, domcirc.EventCheckOut)
		}
		return &BorrowResult{Loan: loan, IsNew: isNew}, nil
	}

	if holdInfo == nil {
		if holdInfo, err = e.placeHold(ctx, s, provider, req); err != nil {
			return nil, err
		}
	}

	hold, isNew, err := e.commitHold(ctx, s, holdInfo)
	if err != nil {
		return nil, err
	}
	if isNew {
		e.collect(ctx, s, domcirc.EventHoldPlace)
	}
	return &BorrowResult{Hold: hold, IsNew: isNew}, nil
}

// borrowLocal records an open-access or self-hosted loan, removing any hold
// on the same pool.
func (e *engine) borrowLocal(ctx context.Context, s *subject) (*BorrowResult, error) {
	var (
		loan  *domcirc.Loan
		isNew bool
	)
	err := e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, err := loanFor(ctx, tx.Reads(), s.patron.ID(), s.pool.ID())
		if err != nil {
			return err
		}
		if existing != nil {
			loan, isNew = existing, false
		} else {
			now := e.clock.Now()
			loan, isNew = domcirc.NewLoan(s.patron.ID(), s.pool.ID(), &now, nil, ""), true
			if err := tx.Loans().Create(ctx, loan); err != nil {
				return err
			}
		}

		hold, err := holdFor(ctx, tx.Reads(), s.patron.ID(), s.pool.ID())
		if err != nil {
			return err
		}
		if hold != nil {
			if err := tx.Holds().Delete(ctx, hold.ID()); err != nil {
				return err
			}
		}
		if !isNew && hold == nil {
			return nil
		}
		return clearSyncMarker(ctx, tx, s.patron)
	})
	if err != nil {
		return nil, err
	}
	if isNew {
		e.collect(ctx, s, domcirc.EventCheckOut)
	}
	return &BorrowResult{Loan: loan, IsNew: isNew}, nil
}

func (e *engine) placeHold(ctx context.Context, s *subject, provider remote.Provider, req BorrowRequest) (*domcirc.HoldInfo, error) {
	holds, err := e.uow.CommandReads().HoldsByPatron(ctx, s.patron.ID())
	if err != nil {
		return nil, err
	}
	if s.library.AtHoldLimit(len(holds)) {
		return nil, domcirc.ErrPatronHoldLimitReached
	}

	info, err := provider.PlaceHold(ctx, s.patron, req.PIN, s.pool, req.NotifyEmail)
	if domcirc.IsKind(err, domcirc.KindAlreadyOnHold) {
		return domcirc.PlaceholderHold(s.pool), nil
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

// commitLoan records a vendor loan, removing any hold on the same pool.
func (e *engine) commitLoan(ctx context.Context, s *subject, info *domcirc.LoanInfo) (*domcirc.Loan, bool, error) {
	var (
		loan  *domcirc.Loan
		isNew bool
	)
	err := e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reads := tx.Reads()
		pool, err := reads.PoolByID(ctx, s.pool.ID())
		if err != nil {
			return err
		}

		existing, err := loanFor(ctx, reads, s.patron.ID(), pool.ID())
		if err != nil {
			return err
		}
		isNew = existing == nil
		if isNew {
			loan = domcirc.NewLoan(s.patron.ID(), pool.ID(), info.Start, info.End, info.ExternalIdentifier)
		} else {
			loan = existing
			loan.Refresh(info.Start, info.End, info.ExternalIdentifier)
		}
		if info.LockedTo != nil {
			if err := lockTo(ctx, tx, pool, loan, *info.LockedTo); err != nil {
				return err
			}
		}
		if isNew {
			err = tx.Loans().Create(ctx, loan)
		} else {
			err = tx.Loans().Update(ctx, loan)
		}
		if err != nil {
			return err
		}

		hold, err := holdFor(ctx, reads, s.patron.ID(), pool.ID())
		if err != nil {
			return err
		}
		if hold != nil {
			if err := tx.Holds().Delete(ctx, hold.ID()); err != nil {
				return err
			}
		}
		return clearSyncMarker(ctx, tx, s.patron)
	})
	if err != nil {
		return nil, false, err
	}
	return loan, isNew, nil
}

// commitHold records a vendor hold, removing any loan on the same pool.
func (e *engine) commitHold(ctx context.Context, s *subject, info *domcirc.HoldInfo) (*domcirc.Hold, bool, error) {
	var (
		hold  *domcirc.Hold
		isNew bool
	)
	err := e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reads := tx.Reads()
		existing, err := holdFor(ctx, reads, s.patron.ID(), s.pool.ID())
		if err != nil {
			return err
		}
		isNew = existing == nil
		if isNew {
			hold = domcirc.NewHold(s.patron.ID(), s.pool.ID(), info.Start, info.End, info.Position, info.ExternalIdentifier)
			err = tx.Holds().Create(ctx, hold)
		} else {
			hold = existing
			hold.Refresh(info.Start, info.End, info.Position, info.ExternalIdentifier)
			err = tx.Holds().Update(ctx, hold)
		}
		if err != nil {
			return err
		}

		loan, err := loanFor(ctx, reads, s.patron.ID(), s.pool.ID())
		if err != nil {
			return err
		}
		if loan != nil {
			if err := tx.Loans().Delete(ctx, loan.ID()); err != nil {
				return err
			}
		}
		return clearSyncMarker(ctx, tx, s.patron)
	})
	if err != nil {
		return nil, false, err
	}
	return hold, isNew, nil
}
