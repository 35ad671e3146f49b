package circulation

import (
	"github.com/google/uuid"
)

type Library struct {
	id                  uuid.UUID
	name                string
	shortName           string
	loanLimit           *int
	holdLimit           *int
	maxOutstandingFines *int64
}

func NewLibrary(name, shortName string, loanLimit, holdLimit *int, maxOutstandingFines *int64) *Library {
	return &Library{
		id:                  uuid.New(),
		name:                name,
		shortName:           shortName,
		loanLimit:           loanLimit,
		holdLimit:           holdLimit,
		maxOutstandingFines: maxOutstandingFines,
	}
}

func ReconstructLibrary(id uuid.UUID, name, shortName string, loanLimit, holdLimit *int, maxOutstandingFines *int64) *Library {
	return &Library{
		id:                  id,
		name:                name,
		shortName:           shortName,
		loanLimit:           loanLimit,
		holdLimit:           holdLimit,
		maxOutstandingFines: maxOutstandingFines,
	}
}

// AtLoanLimit reports whether n loans already exhaust the loan limit.
// A nil limit means unlimited.
func (l *Library) AtLoanLimit(n int) bool {
	return l.loanLimit != nil && n >= *l.loanLimit
}

func (l *Library) AtHoldLimit(n int) bool {
	return l.holdLimit != nil && n >= *l.holdLimit
}

func (l *Library) ID() uuid.UUID               { return l.id }
func (l *Library) Name() string                { return l.name }
func (l *Library) ShortName() string           { return l.shortName }
func (l *Library) LoanLimit() *int             { return l.loanLimit }
func (l *Library) HoldLimit() *int             { return l.holdLimit }
func (l *Library) MaxOutstandingFines() *int64 { return l.maxOutstandingFines }
