package shared

import (
	"context"

	domcirc "circulation-engine/internal/domain/circulation"

	"github.com/google/uuid"
)

// UnitOfWork scopes local mutations: fn's writes commit together when it
// returns nil and roll back together otherwise.
type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, reads CommandReads) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Patrons() PatronRepository
	Pools() LicensePoolRepository
	DeliveryMechanisms() DeliveryMechanismRepository
	Loans() LoanRepository
	Holds() HoldRepository
	Reads() CommandReads
}

// CommandReads returns infra.KindNotFound repository errors for missing rows.
type CommandReads interface {
	LibraryByID(ctx context.Context, id uuid.UUID) (*domcirc.Library, error)
	PatronByID(ctx context.Context, id uuid.UUID) (*domcirc.Patron, error)
	PatronByAuthorizationIdentifier(ctx context.Context, authorizationIdentifier string) (*domcirc.Patron, error)
	PoolByID(ctx context.Context, id uuid.UUID) (*domcirc.LicensePool, error)
	PoolsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domcirc.LicensePool, error)
	PoolByIdentifier(ctx context.Context, collectionID uuid.UUID, identifier domcirc.Identifier) (*domcirc.LicensePool, error)
	LoanFor(ctx context.Context, patronID, poolID uuid.UUID) (*domcirc.Loan, error)
	HoldFor(ctx context.Context, patronID, poolID uuid.UUID) (*domcirc.Hold, error)
	LoansByPatron(ctx context.Context, patronID uuid.UUID) ([]*domcirc.Loan, error)
	HoldsByPatron(ctx context.Context, patronID uuid.UUID) ([]*domcirc.Hold, error)
}

type PatronRepository interface {
	Create(ctx context.Context, p *domcirc.Patron) error
	UpdateLoanActivitySync(ctx context.Context, p *domcirc.Patron) error
}

type LicensePoolRepository interface {
	Create(ctx context.Context, pool *domcirc.LicensePool) error
	UpdateAvailability(ctx context.Context, pool *domcirc.LicensePool) error
}

type DeliveryMechanismRepository interface {
	Create(ctx context.Context, d *domcirc.LicensePoolDeliveryMechanism) error
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domcirc.Loan) error
	Update(ctx context.Context, loan *domcirc.Loan) error
	Delete(ctx context.Context, loanID uuid.UUID) error
}

type HoldRepository interface {
	Create(ctx context.Context, hold *domcirc.Hold) error
	Update(ctx context.Context, hold *domcirc.Hold) error
	Delete(ctx context.Context, holdID uuid.UUID) error
}
