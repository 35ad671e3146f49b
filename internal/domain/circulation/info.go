package circulation

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryMechanismInfo is what a vendor reports a loan to be locked to.
type DeliveryMechanismInfo struct {
	ContentType string
	DRMScheme   string
	RightsURI   string
	ResourceURL string
}

func (i DeliveryMechanismInfo) Mechanism() DeliveryMechanism {
	return DeliveryMechanism{ContentType: i.ContentType, DRMScheme: i.DRMScheme}
}

// ActivityItem is either a *LoanInfo or a *HoldInfo.
type ActivityItem interface {
	activityItem()
	Key() Identifier
	Collection() uuid.UUID
}

// LoanInfo describes a loan as a vendor sees it, independent of local storage.
type LoanInfo struct {
	CollectionID       uuid.UUID
	DataSourceName     string
	Identifier         Identifier
	Start              *time.Time
	End                *time.Time
	ExternalIdentifier string
	LockedTo           *DeliveryMechanismInfo
}

func (*LoanInfo) activityItem()           {}
func (i *LoanInfo) Key() Identifier       { return i.Identifier }
func (i *LoanInfo) Collection() uuid.UUID { return i.CollectionID }

// HoldInfo describes a hold as a vendor sees it. A nil Position means the
// patron's place in line is unknown.
type HoldInfo struct {
	CollectionID       uuid.UUID
	DataSourceName     string
	Identifier         Identifier
	Start              *time.Time
	End                *time.Time
	Position           *int
	ExternalIdentifier string
}

func (*HoldInfo) activityItem()           {}
func (i *HoldInfo) Key() Identifier       { return i.Identifier }
func (i *HoldInfo) Collection() uuid.UUID { return i.CollectionID }

// CheckoutOutcome is the result of a vendor checkout: exactly one of Loan
// or Hold is set. Some vendors answer a checkout of an unavailable title by
// placing a hold.
type CheckoutOutcome struct {
	Loan *LoanInfo
	Hold *HoldInfo
}

func LoanOutcome(l *LoanInfo) CheckoutOutcome {
	return CheckoutOutcome{Loan: l}
}

func HoldOutcome(h *HoldInfo) CheckoutOutcome {
	return CheckoutOutcome{Hold: h}
}

func (o CheckoutOutcome) IsLoan() bool {
	return o.Loan != nil
}

func (o CheckoutOutcome) IsHold() bool {
	return o.Loan == nil && o.Hold != nil
}

// PlaceholderLoan stands in for a loan the vendor says exists but did not
// describe. The real period arrives with the next sync.
func PlaceholderLoan(pool *LicensePool, now time.Time, d time.Duration) *LoanInfo {
	start := now
	end := now.Add(d)
	return &LoanInfo{
		CollectionID:   pool.CollectionID(),
		DataSourceName: pool.DataSourceName(),
		Identifier:     pool.Identifier(),
		Start:          &start,
		End:            &end,
	}
}

// PlaceholderHold stands in for a hold the vendor says exists.
func PlaceholderHold(pool *LicensePool) *HoldInfo {
	return &HoldInfo{
		CollectionID:   pool.CollectionID(),
		DataSourceName: pool.DataSourceName(),
		Identifier:     pool.Identifier(),
	}
}
