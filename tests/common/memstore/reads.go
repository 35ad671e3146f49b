//go:build unit

package memstore

import (
	"context"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// reads serves one state without locking: a transaction's working copy or
// a read-only snapshot.
type reads struct {
	st *state
}

func (r *reads) LibraryByID(_ context.Context, id uuid.UUID) (*domcirc.Library, error) {
	if l, ok := r.st.libraries[id]; ok {
		return l, nil
	}
	return nil, notFound("library")
}

func (r *reads) PatronByID(_ context.Context, id uuid.UUID) (*domcirc.Patron, error) {
	if p, ok := r.st.patrons[id]; ok {
		return clonePatron(p), nil
	}
	return nil, notFound("patron")
}

func (r *reads) PatronByAuthorizationIdentifier(_ context.Context, authorizationIdentifier string) (*domcirc.Patron, error) {
	for _, p := range r.st.patrons {
		if p.AuthorizationIdentifier() == authorizationIdentifier {
			return clonePatron(p), nil
		}
	}
	return nil, notFound("patron")
}

func (r *reads) PoolByID(_ context.Context, id uuid.UUID) (*domcirc.LicensePool, error) {
	if p, ok := r.st.pools[id]; ok {
		return clonePool(p), nil
	}
	return nil, notFound("license pool")
}

func (r *reads) PoolsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domcirc.LicensePool, error) {
	out := make(map[uuid.UUID]*domcirc.LicensePool, len(ids))
	for _, id := range ids {
		if p, ok := r.st.pools[id]; ok {
			out[id] = clonePool(p)
		}
	}
	return out, nil
}

func (r *reads) PoolByIdentifier(_ context.Context, collectionID uuid.UUID, identifier domcirc.Identifier) (*domcirc.LicensePool, error) {
	for _, p := range r.st.pools {
		if p.CollectionID() == collectionID && p.Identifier() == identifier {
			return clonePool(p), nil
		}
	}
	return nil, notFound("license pool")
}

func (r *reads) LoanFor(_ context.Context, patronID, poolID uuid.UUID) (*domcirc.Loan, error) {
	if l := r.st.loanFor(patronID, poolID); l != nil {
		return cloneLoan(l), nil
	}
	return nil, notFound("loan")
}

func (r *reads) HoldFor(_ context.Context, patronID, poolID uuid.UUID) (*domcirc.Hold, error) {
	if h := r.st.holdFor(patronID, poolID); h != nil {
		return cloneHold(h), nil
	}
	return nil, notFound("hold")
}

func (r *reads) LoansByPatron(_ context.Context, patronID uuid.UUID) ([]*domcirc.Loan, error) {
	var out []*domcirc.Loan
	for _, l := range r.st.loans {
		if l.PatronID() == patronID {
			out = append(out, cloneLoan(l))
		}
	}
	return out, nil
}

func (r *reads) HoldsByPatron(_ context.Context, patronID uuid.UUID) ([]*domcirc.Hold, error) {
	var out []*domcirc.Hold
	for _, h := range r.st.holds {
		if h.PatronID() == patronID {
			out = append(out, cloneHold(h))
		}
	}
	return out, nil
}

// liveReads reads committed state under the store lock.
type liveReads struct {
	s *Store
}

func (l *liveReads) with(fn func(r *reads)) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	fn(&reads{st: l.s.state})
}

func (l *liveReads) LibraryByID(ctx context.Context, id uuid.UUID) (lib *domcirc.Library, err error) {
	l.with(func(r *reads) { lib, err = r.LibraryByID(ctx, id) })
	return
}

func (l *liveReads) PatronByID(ctx context.Context, id uuid.UUID) (p *domcirc.Patron, err error) {
	l.with(func(r *reads) { p, err = r.PatronByID(ctx, id) })
	return
}

func (l *liveReads) PatronByAuthorizationIdentifier(ctx context.Context, authorizationIdentifier string) (p *domcirc.Patron, err error) {
	l.with(func(r *reads) { p, err = r.PatronByAuthorizationIdentifier(ctx, authorizationIdentifier) })
	return
}

func (l *liveReads) PoolByID(ctx context.Context, id uuid.UUID) (p *domcirc.LicensePool, err error) {
	l.with(func(r *reads) { p, err = r.PoolByID(ctx, id) })
	return
}

func (l *liveReads) PoolsByIDs(ctx context.Context, ids []uuid.UUID) (m map[uuid.UUID]*domcirc.LicensePool, err error) {
	l.with(func(r *reads) { m, err = r.PoolsByIDs(ctx, ids) })
	return
}

func (l *liveReads) PoolByIdentifier(ctx context.Context, collectionID uuid.UUID, identifier domcirc.Identifier) (p *domcirc.LicensePool, err error) {
	l.with(func(r *reads) { p, err = r.PoolByIdentifier(ctx, collectionID, identifier) })
	return
}

func (l *liveReads) LoanFor(ctx context.Context, patronID, poolID uuid.UUID) (loan *domcirc.Loan, err error) {
	l.with(func(r *reads) { loan, err = r.LoanFor(ctx, patronID, poolID) })
	return
}

func (l *liveReads) HoldFor(ctx context.Context, patronID, poolID uuid.UUID) (h *domcirc.Hold, err error) {
	l.with(func(r *reads) { h, err = r.HoldFor(ctx, patronID, poolID) })
	return
}

func (l *liveReads) LoansByPatron(ctx context.Context, patronID uuid.UUID) (out []*domcirc.Loan, err error) {
	l.with(func(r *reads) { out, err = r.LoansByPatron(ctx, patronID) })
	return
}

func (l *liveReads) HoldsByPatron(ctx context.Context, patronID uuid.UUID) (out []*domcirc.Hold, err error) {
	l.with(func(r *reads) { out, err = r.HoldsByPatron(ctx, patronID) })
	return
}

var (
	_ shared.CommandReads = (*reads)(nil)
	_ shared.CommandReads = (*liveReads)(nil)
)
