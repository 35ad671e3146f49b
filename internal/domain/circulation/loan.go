package circulation

import (
	"time"

	"github.com/google/uuid"
)

type Loan struct {
	id                 uuid.UUID
	patronID           uuid.UUID
	poolID             uuid.UUID
	start              *time.Time
	end                *time.Time
	externalIdentifier string
	fulfillment        *LicensePoolDeliveryMechanism
}

func NewLoan(patronID, poolID uuid.UUID, start, end *time.Time, externalIdentifier string) *Loan {
	return &Loan{
		id:                 uuid.New(),
		patronID:           patronID,
		poolID:             poolID,
		start:              start,
		end:                end,
		externalIdentifier: externalIdentifier,
	}
}

func ReconstructLoan(
	id, patronID, poolID uuid.UUID,
	start, end *time.Time,
	externalIdentifier string,
	fulfillment *LicensePoolDeliveryMechanism,
) *Loan {
	return &Loan{
		id:                 id,
		patronID:           patronID,
		poolID:             poolID,
		start:              start,
		end:                end,
		externalIdentifier: externalIdentifier,
		fulfillment:        fulfillment,
	}
}

// Refresh overwrites the loan period with what the vendor reported.
func (l *Loan) Refresh(start, end *time.Time, externalIdentifier string) {
	l.start = start
	l.end = end
	if externalIdentifier != "" {
		l.externalIdentifier = externalIdentifier
	}
}

// IsIndefinite is true for loans without an end (open-access loans).
func (l *Loan) IsIndefinite() bool {
	return l.end == nil
}

// CreatedWithin reports whether the loan started less than grace ago. Loans
// without a start are treated as old.
func (l *Loan) CreatedWithin(now time.Time, grace time.Duration) bool {
	if l.start == nil {
		return false
	}
	return now.Sub(*l.start) < grace
}

// LockTo binds the loan to d. Streaming mechanisms are never locked in.
func (l *Loan) LockTo(d *LicensePoolDeliveryMechanism) bool {
	if d == nil || d.mechanism.IsStreaming() {
		return false
	}
	l.fulfillment = d
	return true
}

func (l *Loan) ID() uuid.UUID                              { return l.id }
func (l *Loan) PatronID() uuid.UUID                        { return l.patronID }
func (l *Loan) PoolID() uuid.UUID                          { return l.poolID }
func (l *Loan) Start() *time.Time                          { return l.start }
func (l *Loan) End() *time.Time                            { return l.end }
func (l *Loan) ExternalIdentifier() string                 { return l.externalIdentifier }
func (l *Loan) Fulfillment() *LicensePoolDeliveryMechanism { return l.fulfillment }
