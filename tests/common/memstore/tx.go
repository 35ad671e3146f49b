//go:build unit

package memstore

import (
	"context"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type tx struct {
	st *state
}

func (t *tx) Patrons() shared.PatronRepository                       { return patronRepo{t.st} }
func (t *tx) Pools() shared.LicensePoolRepository                    { return poolRepo{t.st} }
func (t *tx) DeliveryMechanisms() shared.DeliveryMechanismRepository { return mechanismRepo{t.st} }
func (t *tx) Loans() shared.LoanRepository                           { return loanRepo{t.st} }
func (t *tx) Holds() shared.HoldRepository                           { return holdRepo{t.st} }
func (t *tx) Reads() shared.CommandReads                             { return &reads{st: t.st} }

type patronRepo struct{ st *state }

func (r patronRepo) Create(_ context.Context, p *domcirc.Patron) error {
	if _, ok := r.st.patrons[p.ID()]; ok {
		return duplicate("patron")
	}
	r.st.patrons[p.ID()] = clonePatron(p)
	return nil
}

func (r patronRepo) UpdateLoanActivitySync(_ context.Context, p *domcirc.Patron) error {
	if _, ok := r.st.patrons[p.ID()]; !ok {
		return notFound("patron")
	}
	r.st.patrons[p.ID()] = clonePatron(p)
	return nil
}

type poolRepo struct{ st *state }

func (r poolRepo) Create(_ context.Context, p *domcirc.LicensePool) error {
	for _, existing := range r.st.pools {
		if existing.CollectionID() == p.CollectionID() && existing.Identifier() == p.Identifier() {
			return duplicate("license pool")
		}
	}
	r.st.pools[p.ID()] = clonePool(p)
	return nil
}

func (r poolRepo) UpdateAvailability(_ context.Context, p *domcirc.LicensePool) error {
	stored, ok := r.st.pools[p.ID()]
	if !ok {
		return notFound("license pool")
	}
	last := p.LastChecked()
	if last == nil {
		return nil
	}
	stored.UpdateAvailability(p.Availability(), *last)
	return nil
}

type mechanismRepo struct{ st *state }

func (r mechanismRepo) Create(_ context.Context, d *domcirc.LicensePoolDeliveryMechanism) error {
	pool, ok := r.st.pools[d.PoolID()]
	if !ok {
		return notFound("license pool")
	}
	if pool.DeliveryMechanism(d.Mechanism()) != nil {
		return duplicate("delivery mechanism")
	}
	pool.AddDeliveryMechanism(d)
	return nil
}

type loanRepo struct{ st *state }

func (r loanRepo) Create(_ context.Context, l *domcirc.Loan) error {
	if r.st.loanFor(l.PatronID(), l.PoolID()) != nil {
		return duplicate("loan")
	}
	r.st.loans[l.ID()] = cloneLoan(l)
	return nil
}

func (r loanRepo) Update(_ context.Context, l *domcirc.Loan) error {
	if _, ok := r.st.loans[l.ID()]; !ok {
		return notFound("loan")
	}
	r.st.loans[l.ID()] = cloneLoan(l)
	return nil
}

func (r loanRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.st.loans[id]; !ok {
		return notFound("loan")
	}
	delete(r.st.loans, id)
	return nil
}

type holdRepo struct{ st *state }

func (r holdRepo) Create(_ context.Context, h *domcirc.Hold) error {
	if r.st.holdFor(h.PatronID(), h.PoolID()) != nil {
		return duplicate("hold")
	}
	r.st.holds[h.ID()] = cloneHold(h)
	return nil
}

func (r holdRepo) Update(_ context.Context, h *domcirc.Hold) error {
	if _, ok := r.st.holds[h.ID()]; !ok {
		return notFound("hold")
	}
	r.st.holds[h.ID()] = cloneHold(h)
	return nil
}

func (r holdRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.st.holds[id]; !ok {
		return notFound("hold")
	}
	delete(r.st.holds, id)
	return nil
}
