package circulation

import (
	"context"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

func (e *engine) RevokeLoan(ctx context.Context, patronID uuid.UUID, pin string, poolID uuid.UUID) (bool, error) {
	s, err := e.load(ctx, patronID, poolID)
	if err != nil {
		return false, err
	}

	if !s.pool.IsLocal() {
		provider, ok := e.registry.Provider(s.pool.CollectionID())
		if !ok {
			return false, domcirc.NewError(domcirc.KindCannotReturn, "no vendor configured for collection "+s.pool.CollectionID().String(), nil)
		}
		err := provider.Checkin(ctx, s.patron, pin, s.pool)
		if err != nil && !domcirc.IsKind(err, domcirc.KindNotCheckedOut) {
			return false, err
		}
	}

	err = e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		loan, err := loanFor(ctx, tx.Reads(), s.patron.ID(), s.pool.ID())
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
		return false, err
	}

	e.collect(ctx, s, domcirc.EventCheckIn)
	return true, nil
}

func (e *engine) ReleaseHold(ctx context.Context, patronID uuid.UUID, pin string, poolID uuid.UUID) (bool, error) {
	s, err := e.load(ctx, patronID, poolID)
	if err != nil {
		return false, err
	}

	if !s.pool.IsLocal() {
		provider, ok := e.registry.Provider(s.pool.CollectionID())
		if !ok {
			return false, domcirc.NewError(domcirc.KindCannotReleaseHold, "no vendor configured for collection "+s.pool.CollectionID().String(), nil)
		}
		hold, err := holdFor(ctx, e.uow.CommandReads(), s.patron.ID(), s.pool.ID())
		if err != nil {
			return false, err
		}
		if hold != nil && hold.IsReserved() && !provider.Capabilities().CanRevokeHoldWhenReserved {
			return false, domcirc.NewError(domcirc.KindCannotReleaseHold, "a copy is already reserved for the patron", nil)
		}
		err = provider.ReleaseHold(ctx, s.patron, pin, s.pool)
		if err != nil && !domcirc.IsKind(err, domcirc.KindNotOnHold) {
			return false, err
		}
	}

	err = e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		hold, err := holdFor(ctx, tx.Reads(), s.patron.ID(), s.pool.ID())
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
		return false, err
	}

	e.collect(ctx, s, domcirc.EventHoldRelease)
	return true, nil
}

// CanRevokeHold reports whether the patron may release their hold on the
// pool through this system.
func (e *engine) CanRevokeHold(ctx context.Context, patronID, poolID uuid.UUID) (bool, error) {
	s, err := e.load(ctx, patronID, poolID)
	if err != nil {
		return false, err
	}
	hold, err := holdFor(ctx, e.uow.CommandReads(), s.patron.ID(), s.pool.ID())
	if err != nil || hold == nil {
		return false, err
	}
	if s.pool.IsOpenAccess() {
		return false, nil
	}
	provider, ok := e.registry.Provider(s.pool.CollectionID())
	if !ok {
		return false, nil
	}
	return provider.Capabilities().CanRevokeHoldWhenReserved || !hold.IsReserved(), nil
}
