//go:build unit

// Package memstore is an in-memory shared.UnitOfWork. A failed Within
// leaves the store exactly as it was.
package memstore

import (
	"context"
	"io"
	"log/slog"
	"sync"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/infra"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type state struct {
	libraries map[uuid.UUID]*domcirc.Library
	patrons   map[uuid.UUID]*domcirc.Patron
	pools     map[uuid.UUID]*domcirc.LicensePool
	loans     map[uuid.UUID]*domcirc.Loan
	holds     map[uuid.UUID]*domcirc.Hold
}

func newState() *state {
	return &state{
		libraries: map[uuid.UUID]*domcirc.Library{},
		patrons:   map[uuid.UUID]*domcirc.Patron{},
		pools:     map[uuid.UUID]*domcirc.LicensePool{},
		loans:     map[uuid.UUID]*domcirc.Loan{},
		holds:     map[uuid.UUID]*domcirc.Hold{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, l := range s.libraries {
		c.libraries[id] = l
	}
	for id, p := range s.patrons {
		c.patrons[id] = clonePatron(p)
	}
	for id, p := range s.pools {
		c.pools[id] = clonePool(p)
	}
	for id, l := range s.loans {
		c.loans[id] = cloneLoan(l)
	}
	for id, h := range s.holds {
		c.holds[id] = cloneHold(h)
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state

	// FailCommit makes the next Within return this error after running fn.
	FailCommit error
	Commits    int
	Rollbacks  int
}

func New() *Store {
	return &Store{state: newState()}
}

var _ shared.UnitOfWork = (*Store)(nil)

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	work := s.state.clone()
	s.mu.Unlock()

	if err := fn(ctx, &tx{st: work}); err != nil {
		s.mu.Lock()
		s.Rollbacks++
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailCommit; err != nil {
		s.FailCommit = nil
		s.Rollbacks++
		return err
	}
	s.state = work
	s.Commits++
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, reads shared.CommandReads) error) error {
	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()
	return fn(ctx, &reads{st: snapshot})
}

func (s *Store) CommandReads() shared.CommandReads {
	return &liveReads{s: s}
}

// Seeding and inspection helpers for tests.

func (s *Store) AddLibrary(l *domcirc.Library) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.libraries[l.ID()] = l
}

func (s *Store) AddPatron(p *domcirc.Patron) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.patrons[p.ID()] = clonePatron(p)
}

func (s *Store) AddPool(p *domcirc.LicensePool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.pools[p.ID()] = clonePool(p)
}

func (s *Store) AddLoan(l *domcirc.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.loans[l.ID()] = cloneLoan(l)
}

func (s *Store) AddHold(h *domcirc.Hold) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.holds[h.ID()] = cloneHold(h)
}

func (s *Store) Patron(id uuid.UUID) *domcirc.Patron {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.state.patrons[id]; ok {
		return clonePatron(p)
	}
	return nil
}

func (s *Store) Pool(id uuid.UUID) *domcirc.LicensePool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.state.pools[id]; ok {
		return clonePool(p)
	}
	return nil
}

func (s *Store) Pools() []*domcirc.LicensePool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domcirc.LicensePool, 0, len(s.state.pools))
	for _, p := range s.state.pools {
		out = append(out, clonePool(p))
	}
	return out
}

func (s *Store) Loans() []*domcirc.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domcirc.Loan, 0, len(s.state.loans))
	for _, l := range s.state.loans {
		out = append(out, cloneLoan(l))
	}
	return out
}

func (s *Store) Holds() []*domcirc.Hold {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domcirc.Hold, 0, len(s.state.holds))
	for _, h := range s.state.holds {
		out = append(out, cloneHold(h))
	}
	return out
}

func (s *Store) LoanFor(patronID, poolID uuid.UUID) *domcirc.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l := s.state.loanFor(patronID, poolID); l != nil {
		return cloneLoan(l)
	}
	return nil
}

func (s *Store) HoldFor(patronID, poolID uuid.UUID) *domcirc.Hold {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h := s.state.holdFor(patronID, poolID); h != nil {
		return cloneHold(h)
	}
	return nil
}

func (s *state) loanFor(patronID, poolID uuid.UUID) *domcirc.Loan {
	for _, l := range s.loans {
		if l.PatronID() == patronID && l.PoolID() == poolID {
			return l
		}
	}
	return nil
}

func (s *state) holdFor(patronID, poolID uuid.UUID) *domcirc.Hold {
	for _, h := range s.holds {
		if h.PatronID() == patronID && h.PoolID() == poolID {
			return h
		}
	}
	return nil
}

func notFound(what string) error {
	return infra.NotFound(what + " not found")
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func duplicate(what string) error {
	return infra.WrapRepoErr(quiet, infra.KindDuplicateKey, what+" already exists", nil)
}
