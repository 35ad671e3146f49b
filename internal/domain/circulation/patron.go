package circulation

import (
	"time"

	"github.com/google/uuid"
)

type Patron struct {
	id                      uuid.UUID
	libraryID               uuid.UUID
	authorizationIdentifier string
	pinHash                 string
	finesCents              int64
	blockReason             string
	authorizationExpires    *time.Time
	lastLoanActivitySync    *time.Time
	createdAt               time.Time
}

func NewPatron(libraryID uuid.UUID, authorizationIdentifier, pinHash string, now time.Time) *Patron {
	return &Patron{
		id:                      uuid.New(),
		libraryID:               libraryID,
		authorizationIdentifier: authorizationIdentifier,
		pinHash:                 pinHash,
		createdAt:               now,
	}
}

func ReconstructPatron(
	id, libraryID uuid.UUID,
	authorizationIdentifier, pinHash string,
	finesCents int64,
	blockReason string,
	authorizationExpires, lastLoanActivitySync *time.Time,
	createdAt time.Time,
) *Patron {
	return &Patron{
		id:                      id,
		libraryID:               libraryID,
		authorizationIdentifier: authorizationIdentifier,
		pinHash:                 pinHash,
		finesCents:              finesCents,
		blockReason:             blockReason,
		authorizationExpires:    authorizationExpires,
		lastLoanActivitySync:    lastLoanActivitySync,
		createdAt:               createdAt,
	}
}

// CanBorrow checks borrowing privileges. It never touches a vendor.
func (p *Patron) CanBorrow(lib *Library, now time.Time) error {
	if p.authorizationExpires != nil && !now.Before(*p.authorizationExpires) {
		return ErrAuthorizationExpired
	}
	if p.blockReason != "" {
		return NewError(KindAuthorizationBlocked, "borrowing privileges are blocked: "+p.blockReason, nil)
	}
	if lib != nil && lib.maxOutstandingFines != nil && p.finesCents > *lib.maxOutstandingFines {
		return ErrOutstandingFines
	}
	return nil
}

// LoanActivityFresh reports whether the last complete sync is recent enough
// to serve the bookshelf from local rows.
func (p *Patron) LoanActivityFresh(now time.Time, maxAge time.Duration) bool {
	if p.lastLoanActivitySync == nil {
		return false
	}
	return now.Sub(*p.lastLoanActivitySync) < maxAge
}

func (p *Patron) MarkLoanActivitySynced(at time.Time) {
	t := at
	p.lastLoanActivitySync = &t
}

func (p *Patron) ClearLoanActivitySync() {
	p.lastLoanActivitySync = nil
}

func (p *Patron) ID() uuid.UUID                    { return p.id }
func (p *Patron) LibraryID() uuid.UUID             { return p.libraryID }
func (p *Patron) AuthorizationIdentifier() string  { return p.authorizationIdentifier }
func (p *Patron) PinHash() string                  { return p.pinHash }
func (p *Patron) FinesCents() int64                { return p.finesCents }
func (p *Patron) BlockReason() string              { return p.blockReason }
func (p *Patron) AuthorizationExpires() *time.Time { return p.authorizationExpires }
func (p *Patron) LastLoanActivitySync() *time.Time { return p.lastLoanActivitySync }
func (p *Patron) CreatedAt() time.Time             { return p.createdAt }
