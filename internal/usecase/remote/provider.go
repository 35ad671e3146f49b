package remote

import (
	"context"

	domcirc "circulation-engine/internal/domain/circulation"

	"github.com/google/uuid"
)

// Capabilities are the declarative flags a vendor integration advertises.
type Capabilities struct {
	// DeliveryMechanismAtBorrow: the format must be chosen when borrowing
	// rather than when fulfilling.
	DeliveryMechanismAtBorrow bool
	// CanRevokeHoldWhenReserved: a hold may be released after a copy has
	// been set aside for the patron.
	CanRevokeHoldWhenReserved bool
}

// FulfillOptions carries vendor-specific partial fulfillment parameters.
// The engine passes them through without interpreting them.
type FulfillOptions struct {
	Part    string
	PartURL func(part string) string
}

// Provider is one vendor collection's circulation API. Implementations map
// their wire errors into the domcirc error taxonomy.
type Provider interface {
	CollectionID() uuid.UUID
	Capabilities() Capabilities

	// Checkout may answer with a hold instead of a loan.
	Checkout(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism) (domcirc.CheckoutOutcome, error)
	PlaceHold(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool, notifyEmail string) (*domcirc.HoldInfo, error)
	ReleaseHold(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool) error
	Checkin(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool) error
	Fulfill(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism, opts FulfillOptions) (*domcirc.FulfillmentInfo, error)
	PatronActivity(ctx context.Context, patron *domcirc.Patron, pin string) ([]domcirc.ActivityItem, error)
	// UpdateAvailability refreshes pool's counters in place.
	UpdateAvailability(ctx context.Context, pool *domcirc.LicensePool) error
}

// LoanlessFulfiller is implemented by providers that can fulfill some
// titles without a local loan (e.g. an on-demand audiobook sample).
type LoanlessFulfiller interface {
	CanFulfillWithoutLoan(patron *domcirc.Patron, pool *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism) bool
}
