package circulation

import (
	"github.com/google/uuid"
)

// Usage is what a patron currently holds against the library's limits.
type Usage struct {
	Loans int
	Holds int
}

// CountUsage counts the loans and holds that apply to limits. Open-access
// loans and loans without an end never count toward the loan limit.
func CountUsage(loans []*Loan, holds []*Hold, pools map[uuid.UUID]*LicensePool) Usage {
	u := Usage{Holds: len(holds)}
	for _, l := range loans {
		if l.IsIndefinite() {
			continue
		}
		if p, ok := pools[l.PoolID()]; ok && p.IsOpenAccess() {
			continue
		}
		u.Loans++
	}
	return u
}

// PreflightLimits decides what can be decided without asking the vendor.
// needsAvailability is true when the applicable limit depends on whether
// the pool currently has a copy free.
func PreflightLimits(lib *Library, u Usage) (needsAvailability bool, err error) {
	atLoan := lib.AtLoanLimit(u.Loans)
	atHold := lib.AtHoldLimit(u.Holds)
	switch {
	case !atLoan && !atHold:
		return false, nil
	case atLoan && atHold:
		return false, ErrPatronLoanLimitReached
	default:
		return true, nil
	}
}

// LimitsForAvailability applies the limits once the pool's availability is fresh.
func LimitsForAvailability(lib *Library, u Usage, pool *LicensePool) error {
	if pool.HasCopiesAvailable() {
		if lib.AtLoanLimit(u.Loans) {
			return ErrPatronLoanLimitReached
		}
		return nil
	}
	if lib.AtHoldLimit(u.Holds) {
		return ErrPatronHoldLimitReached
	}
	return nil
}
