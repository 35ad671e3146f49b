//go:build unit || e2e

package builder

import (
	"time"

	domcirc "circulation-engine/internal/domain/circulation"

	"github.com/google/uuid"
)

type LibraryBuilder struct {
	ID                  uuid.UUID
	Name                string
	ShortName           string
	LoanLimit           *int
	HoldLimit           *int
	MaxOutstandingFines *int64
}

func NewLibraryBuilder() *LibraryBuilder {
	return &LibraryBuilder{
		ID:        uuid.New(),
		Name:      "Springfield Public Library",
		ShortName: "SPL",
	}
}

func (b *LibraryBuilder) WithLimits(loans, holds int) *LibraryBuilder {
	b.LoanLimit = &loans
	b.HoldLimit = &holds
	return b
}

func (b *LibraryBuilder) WithMaxFines(cents int64) *LibraryBuilder {
	b.MaxOutstandingFines = &cents
	return b
}

func (b *LibraryBuilder) Build() *domcirc.Library {
	return domcirc.ReconstructLibrary(b.ID, b.Name, b.ShortName, b.LoanLimit, b.HoldLimit, b.MaxOutstandingFines)
}

type PatronBuilder struct {
	ID                      uuid.UUID
	LibraryID               uuid.UUID
	AuthorizationIdentifier string
	PinHash                 string
	FinesCents              int64
	BlockReason             string
	AuthorizationExpires    *time.Time
	LastLoanActivitySync    *time.Time
	CreatedAt               time.Time
}

func NewPatronBuilder(libraryID uuid.UUID) *PatronBuilder {
	return &PatronBuilder{
		ID:                      uuid.New(),
		LibraryID:               libraryID,
		AuthorizationIdentifier: "23333000000001",
		CreatedAt:               time.Now(),
	}
}

func (b *PatronBuilder) With(mutate func(*PatronBuilder)) *PatronBuilder {
	mutate(b)
	return b
}

func (b *PatronBuilder) Build() *domcirc.Patron {
	return domcirc.ReconstructPatron(
		b.ID, b.LibraryID,
		b.AuthorizationIdentifier, b.PinHash,
		b.FinesCents, b.BlockReason,
		b.AuthorizationExpires, b.LastLoanActivitySync,
		b.CreatedAt,
	)
}

type PoolBuilder struct {
	ID                 uuid.UUID
	CollectionID       uuid.UUID
	DataSourceName     string
	Identifier         domcirc.Identifier
	OpenAccess         bool
	SelfHosted         bool
	Availability       domcirc.Availability
	DeliveryMechanisms []*domcirc.LicensePoolDeliveryMechanism
}

func NewPoolBuilder(collectionID uuid.UUID) *PoolBuilder {
	return &PoolBuilder{
		ID:             uuid.New(),
		CollectionID:   collectionID,
		DataSourceName: "Overdrive",
		Identifier:     domcirc.NewIdentifier(domcirc.IdentifierOverdrive, uuid.NewString()),
		Availability: domcirc.Availability{
			LicensesOwned:     1,
			LicensesAvailable: 1,
		},
	}
}

func (b *PoolBuilder) With(mutate func(*PoolBuilder)) *PoolBuilder {
	mutate(b)
	return b
}

func (b *PoolBuilder) OpenAccessPool() *PoolBuilder {
	b.OpenAccess = true
	b.DataSourceName = "Project Gutenberg"
	return b
}

func (b *PoolBuilder) Unavailable() *PoolBuilder {
	b.Availability.LicensesAvailable = 0
	b.Availability.PatronsInHoldQueue = 1
	return b
}

// WithMechanism attaches a delivery mechanism to the pool being built.
func (b *PoolBuilder) WithMechanism(contentType, drm, resourceURL string) *PoolBuilder {
	b.DeliveryMechanisms = append(b.DeliveryMechanisms, domcirc.NewLicensePoolDeliveryMechanism(
		b.ID,
		domcirc.DeliveryMechanism{ContentType: contentType, DRMScheme: drm},
		"",
		resourceURL,
	))
	return b
}

func (b *PoolBuilder) Build() *domcirc.LicensePool {
	return domcirc.ReconstructLicensePool(
		b.ID, b.CollectionID,
		b.DataSourceName, b.Identifier,
		b.OpenAccess, b.SelfHosted,
		b.Availability, b.DeliveryMechanisms, nil,
	)
}

type LoanBuilder struct {
	ID                 uuid.UUID
	PatronID           uuid.UUID
	PoolID             uuid.UUID
	Start              *time.Time
	End                *time.Time
	ExternalIdentifier string
	Fulfillment        *domcirc.LicensePoolDeliveryMechanism
}

func NewLoanBuilder(patronID, poolID uuid.UUID, now time.Time) *LoanBuilder {
	start := now.Add(-24 * time.Hour)
	end := now.Add(13 * 24 * time.Hour)
	return &LoanBuilder{
		ID:       uuid.New(),
		PatronID: patronID,
		PoolID:   poolID,
		Start:    &start,
		End:      &end,
	}
}

func (b *LoanBuilder) StartedAt(t time.Time) *LoanBuilder {
	b.Start = &t
	return b
}

func (b *LoanBuilder) Indefinite() *LoanBuilder {
	b.End = nil
	return b
}

func (b *LoanBuilder) LockedTo(d *domcirc.LicensePoolDeliveryMechanism) *LoanBuilder {
	b.Fulfillment = d
	return b
}

func (b *LoanBuilder) Build() *domcirc.Loan {
	return domcirc.ReconstructLoan(b.ID, b.PatronID, b.PoolID, b.Start, b.End, b.ExternalIdentifier, b.Fulfillment)
}

type HoldBuilder struct {
	ID                 uuid.UUID
	PatronID           uuid.UUID
	PoolID             uuid.UUID
	Start              *time.Time
	End                *time.Time
	Position           *int
	ExternalIdentifier string
}

func NewHoldBuilder(patronID, poolID uuid.UUID, now time.Time) *HoldBuilder {
	start := now.Add(-time.Hour)
	pos := 3
	return &HoldBuilder{
		ID:       uuid.New(),
		PatronID: patronID,
		PoolID:   poolID,
		Start:    &start,
		Position: &pos,
	}
}

func (b *HoldBuilder) AtPosition(pos int) *HoldBuilder {
	b.Position = &pos
	return b
}

func (b *HoldBuilder) Build() *domcirc.Hold {
	return domcirc.ReconstructHold(b.ID, b.PatronID, b.PoolID, b.Start, b.End, b.Position, b.ExternalIdentifier)
}
