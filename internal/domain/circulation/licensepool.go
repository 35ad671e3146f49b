package circulation

import (
	"time"

	"github.com/google/uuid"
)

// Availability is a snapshot of a pool's license counters as reported by
// its vendor.
type Availability struct {
	LicensesOwned      int
	LicensesAvailable  int
	LicensesReserved   int
	PatronsInHoldQueue int
}

type LicensePool struct {
	id                 uuid.UUID
	collectionID       uuid.UUID
	dataSourceName     string
	identifier         Identifier
	openAccess         bool
	selfHosted         bool
	availability       Availability
	deliveryMechanisms []*LicensePoolDeliveryMechanism
	lastChecked        *time.Time
}

func NewLicensePool(collectionID uuid.UUID, dataSourceName string, identifier Identifier, openAccess, selfHosted bool) *LicensePool {
	return &LicensePool{
		id:             uuid.New(),
		collectionID:   collectionID,
		dataSourceName: dataSourceName,
		identifier:     identifier,
		openAccess:     openAccess,
		selfHosted:     selfHosted,
	}
}

func ReconstructLicensePool(
	id, collectionID uuid.UUID,
	dataSourceName string,
	identifier Identifier,
	openAccess, selfHosted bool,
	availability Availability,
	deliveryMechanisms []*LicensePoolDeliveryMechanism,
	lastChecked *time.Time,
) *LicensePool {
	return &LicensePool{
		id:                 id,
		collectionID:       collectionID,
		dataSourceName:     dataSourceName,
		identifier:         identifier,
		openAccess:         openAccess,
		selfHosted:         selfHosted,
		availability:       availability,
		deliveryMechanisms: deliveryMechanisms,
		lastChecked:        lastChecked,
	}
}

// IsLocal reports whether the pool is served without a vendor round trip.
func (p *LicensePool) IsLocal() bool {
	return p.openAccess || p.selfHosted
}

// HasCopiesAvailable is always true for open-access pools.
func (p *LicensePool) HasCopiesAvailable() bool {
	return p.openAccess || p.availability.LicensesAvailable > 0
}

func (p *LicensePool) UpdateAvailability(a Availability, now time.Time) {
	if a.LicensesAvailable < 0 {
		a.LicensesAvailable = 0
	}
	if a.LicensesReserved < 0 {
		a.LicensesReserved = 0
	}
	p.availability = a
	t := now
	p.lastChecked = &t
}

// DeliveryMechanism returns the pool's delivery mechanism matching m, if any.
func (p *LicensePool) DeliveryMechanism(m DeliveryMechanism) *LicensePoolDeliveryMechanism {
	for _, d := range p.deliveryMechanisms {
		if d.mechanism.Equal(m) {
			return d
		}
	}
	return nil
}

// DeliveryMechanismByID returns the pool's delivery mechanism with the given id, if any.
func (p *LicensePool) DeliveryMechanismByID(id uuid.UUID) *LicensePoolDeliveryMechanism {
	for _, d := range p.deliveryMechanisms {
		if d.id == id {
			return d
		}
	}
	return nil
}

// AddDeliveryMechanism attaches d unless an equal mechanism is already known,
// in which case the known one is returned.
func (p *LicensePool) AddDeliveryMechanism(d *LicensePoolDeliveryMechanism) *LicensePoolDeliveryMechanism {
	if existing := p.DeliveryMechanism(d.mechanism); existing != nil {
		return existing
	}
	p.deliveryMechanisms = append(p.deliveryMechanisms, d)
	return d
}

func (p *LicensePool) ID() uuid.UUID              { return p.id }
func (p *LicensePool) CollectionID() uuid.UUID    { return p.collectionID }
func (p *LicensePool) DataSourceName() string     { return p.dataSourceName }
func (p *LicensePool) Identifier() Identifier     { return p.identifier }
func (p *LicensePool) IsOpenAccess() bool         { return p.openAccess }
func (p *LicensePool) IsSelfHosted() bool         { return p.selfHosted }
func (p *LicensePool) Availability() Availability { return p.availability }
func (p *LicensePool) LastChecked() *time.Time    { return p.lastChecked }
func (p *LicensePool) DeliveryMechanisms() []*LicensePoolDeliveryMechanism {
	return p.deliveryMechanisms
}
