package circulation

import (
	"context"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/usecase/remote"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

func (e *engine) Fulfill(ctx context.Context, req FulfillRequest) (*domcirc.FulfillmentInfo, error) {
	if req.Mechanism == nil {
		return nil, domcirc.ErrDeliveryMechanismMissing
	}
	s, err := e.load(ctx, req.PatronID, req.PoolID)
	if err != nil {
		return nil, err
	}

	mechanism := s.pool.DeliveryMechanism(*req.Mechanism)
	provider, hasProvider := e.registry.Provider(s.pool.CollectionID())

	loan, err := loanFor(ctx, e.uow.CommandReads(), s.patron.ID(), s.pool.ID())
	if err != nil {
		return nil, err
	}
	if loan == nil && !e.canFulfillWithoutLoan(s.patron, s.pool, mechanism) {
		// The loan may have been made outside this system.
		if !s.pool.IsLocal() && hasProvider {
			if _, err := e.SyncBookshelf(ctx, s.patron.ID(), req.PIN, true); err != nil {
				return nil, err
			}
			if loan, err = loanFor(ctx, e.uow.CommandReads(), s.patron.ID(), s.pool.ID()); err != nil {
				return nil, err
			}
		}
		if loan == nil {
			return nil, domcirc.ErrNoActiveLoan
		}
	}

	if loan != nil && loan.Fulfillment() != nil {
		locked := loan.Fulfillment().Mechanism()
		if !locked.CompatibleWith(*req.Mechanism, s.pool.IsOpenAccess()) {
			return nil, domcirc.NewError(domcirc.KindDeliveryMechanismConflict,
				"loan is locked to "+locked.String()+", cannot fulfill as "+req.Mechanism.String(), nil)
		}
	}

	var info *domcirc.FulfillmentInfo
	if s.pool.IsLocal() {
		info, err = e.fulfillLocal(s.pool, mechanism)
	} else {
		info, err = e.fulfillRemote(ctx, s, provider, hasProvider, mechanism, req)
	}
	if err != nil {
		return nil, err
	}

	if loan != nil && loan.Fulfillment() == nil && !req.Mechanism.IsStreaming() {
		if err := e.lockLoan(ctx, s, loan.ID(), *req.Mechanism, mechanism); err != nil {
			return nil, err
		}
	}

	e.collect(ctx, s, domcirc.EventFulfill)
	return info, nil
}

// fulfillLocal serves open-access and self-hosted titles from the pool's
// own delivery resources.
func (e *engine) fulfillLocal(pool *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism) (*domcirc.FulfillmentInfo, error) {
	if mechanism == nil || mechanism.ResourceURL() == "" {
		return nil, domcirc.ErrFormatNotAvailable
	}

	link := mechanism.ResourceURL()
	if coll, ok := e.registry.Collection(pool.CollectionID()); ok && coll.SignedURLs && e.signer != nil {
		signed, err := e.signer.Sign(link, e.cfg.SignedURLTTL)
		if err != nil {
			return nil, errs.Wrap(err, "sign fulfillment url")
		}
		link = signed
	}

	return domcirc.NewFulfillmentInfo(pool, domcirc.FulfillmentContent{
		ContentLink: link,
		ContentType: mechanism.Mechanism().ContentType,
	}), nil
}

func (e *engine) fulfillRemote(
	ctx context.Context,
	s *subject,
	provider remote.Provider,
	hasProvider bool,
	mechanism *domcirc.LicensePoolDeliveryMechanism,
	req FulfillRequest,
) (*domcirc.FulfillmentInfo, error) {
	if !hasProvider {
		return nil, domcirc.NewError(domcirc.KindCannotFulfill, "no vendor configured for collection "+s.pool.CollectionID().String(), nil)
	}
	if mechanism == nil {
		// The vendor may offer formats this pool has not recorded yet.
		mechanism = domcirc.NewLicensePoolDeliveryMechanism(s.pool.ID(), *req.Mechanism, "", "")
	}

	info, err := provider.Fulfill(ctx, s.patron, req.PIN, s.pool, mechanism, remote.FulfillOptions{
		Part:    req.Part,
		PartURL: req.PartURL,
	})
	if err != nil {
		return nil, err
	}
	if info.IsEmpty() {
		return nil, domcirc.ErrNoAcceptableFormat
	}
	return info, nil
}

func (e *engine) lockLoan(ctx context.Context, s *subject, loanID uuid.UUID, requested domcirc.DeliveryMechanism, known *domcirc.LicensePoolDeliveryMechanism) error {
	return e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reads := tx.Reads()
		pool, err := reads.PoolByID(ctx, s.pool.ID())
		if err != nil {
			return err
		}
		loan, err := loanFor(ctx, reads, s.patron.ID(), pool.ID())
		if err != nil {
			return err
		}
		if loan == nil || loan.ID() != loanID || loan.Fulfillment() != nil {
			return nil
		}

		info := domcirc.DeliveryMechanismInfo{ContentType: requested.ContentType, DRMScheme: requested.DRMScheme}
		if known != nil {
			info.RightsURI = known.RightsURI()
			info.ResourceURL = known.ResourceURL()
		}
		if err := lockTo(ctx, tx, pool, loan, info); err != nil {
			return err
		}
		return tx.Loans().Update(ctx, loan)
	})
}

func (e *engine) canFulfillWithoutLoan(patron *domcirc.Patron, pool *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism) bool {
	if mechanism == nil {
		return false
	}
	if pool.IsOpenAccess() {
		return true
	}
	provider, ok := e.registry.Provider(pool.CollectionID())
	if !ok {
		return false
	}
	f, ok := provider.(remote.LoanlessFulfiller)
	return ok && f.CanFulfillWithoutLoan(patron, pool, mechanism)
}

func (e *engine) CanFulfillWithoutLoan(ctx context.Context, patronID, poolID uuid.UUID, mechanism *domcirc.DeliveryMechanism) (bool, error) {
	if mechanism == nil {
		return false, nil
	}
	s, err := e.load(ctx, patronID, poolID)
	if err != nil {
		return false, err
	}
	return e.canFulfillWithoutLoan(s.patron, s.pool, s.pool.DeliveryMechanism(*mechanism)), nil
}
