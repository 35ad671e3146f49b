package circulation

import (
	"context"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/usecase/remote"

	"github.com/google/uuid"
)

func (e *engine) EnforceLimits(ctx context.Context, patronID, poolID uuid.UUID) error {
	s, err := e.load(ctx, patronID, poolID)
	if err != nil {
		return err
	}
	if s.pool.IsLocal() {
		return nil
	}
	provider, ok := e.registry.Provider(s.pool.CollectionID())
	if !ok {
		return domcirc.ErrNoLicenses
	}
	return e.enforceLimits(ctx, s, provider)
}

// enforceLimits only asks the vendor for availability when the answer
// depends on it: under both limits everything is allowed, at both limits
// the loan limit is reported.
func (e *engine) enforceLimits(ctx context.Context, s *subject, provider remote.Provider) error {
	usage, err := e.usage(ctx, s.patron.ID())
	if err != nil {
		return err
	}

	needsAvailability, err := domcirc.PreflightLimits(s.library, usage)
	if err != nil || !needsAvailability {
		return err
	}

	if err := e.updateAvailability(ctx, provider, s.pool); err != nil {
		return err
	}
	return domcirc.LimitsForAvailability(s.library, usage, s.pool)
}

func (e *engine) usage(ctx context.Context, patronID uuid.UUID) (domcirc.Usage, error) {
	reads := e.uow.CommandReads()
	loans, err := reads.LoansByPatron(ctx, patronID)
	if err != nil {
		return domcirc.Usage{}, err
	}
	holds, err := reads.HoldsByPatron(ctx, patronID)
	if err != nil {
		return domcirc.Usage{}, err
	}

	ids := make([]uuid.UUID, 0, len(loans))
	for _, l := range loans {
		ids = append(ids, l.PoolID())
	}
	pools, err := reads.PoolsByIDs(ctx, ids)
	if err != nil {
		return domcirc.Usage{}, err
	}
	return domcirc.CountUsage(loans, holds, pools), nil
}
