package response

import (
	"encoding/base64"
	"time"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/usecase/circulation"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type MechanismResponse struct {
	ContentType string `json:"content_type"`
	DRMScheme   string `json:"drm_scheme,omitempty"`
}

type PoolResponse struct {
	ID                 uuid.UUID  `json:"id"`
	CollectionID       uuid.UUID  `json:"collection_id"`
	DataSourceName     string     `json:"data_source"`
	IdentifierType     string     `json:"identifier_type"`
	Identifier         string     `json:"identifier"`
	IsOpenAccess       bool       `json:"open_access"`
	IsSelfHosted       bool       `json:"self_hosted"`
	LicensesOwned      int        `json:"licenses_owned"`
	LicensesAvailable  int        `json:"licenses_available"`
	PatronsInHoldQueue int        `json:"patrons_in_hold_queue"`
	LastChecked        *time.Time `json:"last_checked,omitempty"`
}

type LoanResponse struct {
	ID                 uuid.UUID          `json:"id"`
	PoolID             uuid.UUID          `json:"pool_id"`
	Start              *time.Time         `json:"start,omitempty"`
	End                *time.Time         `json:"end,omitempty"`
	ExternalIdentifier string             `json:"external_identifier,omitempty"`
	Mechanism          *MechanismResponse `json:"delivery_mechanism,omitempty"`
	Pool               *PoolResponse      `json:"pool,omitempty"`
}

type HoldResponse struct {
	ID                 uuid.UUID     `json:"id"`
	PoolID             uuid.UUID     `json:"pool_id"`
	Start              *time.Time    `json:"start,omitempty"`
	End                *time.Time    `json:"end,omitempty"`
	Position           *int          `json:"position,omitempty"`
	ExternalIdentifier string        `json:"external_identifier,omitempty"`
	Reserved           bool          `json:"reserved"`
	Pool               *PoolResponse `json:"pool,omitempty"`
}

// BorrowResponse carries either a loan or a hold.
type BorrowResponse struct {
	Loan  *LoanResponse `json:"loan,omitempty"`
	Hold  *HoldResponse `json:"hold,omitempty"`
	IsNew bool          `json:"is_new"`
}

type FulfillmentResponse struct {
	ContentLink    string     `json:"content_link,omitempty"`
	ContentType    string     `json:"content_type"`
	Content        string     `json:"content,omitempty"`
	ContentExpires *time.Time `json:"content_expires,omitempty"`
}

type BookshelfResponse struct {
	Loans  []*LoanResponse `json:"loans"`
	Holds  []*HoldResponse `json:"holds"`
	Synced bool            `json:"synced"`
}

type BoolResponse struct {
	Result bool `json:"result"`
}

func FromPool(pool *domcirc.LicensePool) (*PoolResponse, error) {
	if pool == nil {
		return nil, nil
	}
	res := &PoolResponse{}
	if err := copier.Copy(res, pool); err != nil {
		return nil, errs.Wrap(err, "copy pool")
	}
	id := pool.Identifier()
	res.IdentifierType = id.Type
	res.Identifier = id.Value
	a := pool.Availability()
	res.LicensesOwned = a.LicensesOwned
	res.LicensesAvailable = a.LicensesAvailable
	res.PatronsInHoldQueue = a.PatronsInHoldQueue
	return res, nil
}

func FromLoan(loan *domcirc.Loan, pool *domcirc.LicensePool) (*LoanResponse, error) {
	res := &LoanResponse{}
	if err := copier.Copy(res, loan); err != nil {
		return nil, errs.Wrap(err, "copy loan")
	}
	if lpdm := loan.Fulfillment(); lpdm != nil {
		m := lpdm.Mechanism()
		res.Mechanism = &MechanismResponse{ContentType: m.ContentType, DRMScheme: m.DRMScheme}
	}
	p, err := FromPool(pool)
	if err != nil {
		return nil, err
	}
	res.Pool = p
	return res, nil
}

func FromHold(hold *domcirc.Hold, pool *domcirc.LicensePool) (*HoldResponse, error) {
	res := &HoldResponse{}
	if err := copier.Copy(res, hold); err != nil {
		return nil, errs.Wrap(err, "copy hold")
	}
	res.Reserved = hold.IsReserved()
	p, err := FromPool(pool)
	if err != nil {
		return nil, err
	}
	res.Pool = p
	return res, nil
}

func FromBorrowResult(r *circulation.BorrowResult) (*BorrowResponse, error) {
	res := &BorrowResponse{IsNew: r.IsNew}
	var err error
	if r.Loan != nil {
		if res.Loan, err = FromLoan(r.Loan, nil); err != nil {
			return nil, err
		}
	}
	if r.Hold != nil {
		if res.Hold, err = FromHold(r.Hold, nil); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func FromFulfillment(c domcirc.FulfillmentContent) *FulfillmentResponse {
	res := &FulfillmentResponse{
		ContentLink:    c.ContentLink,
		ContentType:    c.ContentType,
		ContentExpires: c.ContentExpires,
	}
	if len(c.Content) > 0 {
		res.Content = base64.StdEncoding.EncodeToString(c.Content)
	}
	return res
}

func FromBookshelf(b *circulation.Bookshelf) (*BookshelfResponse, error) {
	res := &BookshelfResponse{
		Loans:  make([]*LoanResponse, 0, len(b.Loans)),
		Holds:  make([]*HoldResponse, 0, len(b.Holds)),
		Synced: b.Synced,
	}
	for _, l := range b.Loans {
		item, err := FromLoan(l, b.Pools[l.PoolID()])
		if err != nil {
			return nil, err
		}
		res.Loans = append(res.Loans, item)
	}
	for _, h := range b.Holds {
		item, err := FromHold(h, b.Pools[h.PoolID()])
		if err != nil {
			return nil, err
		}
		res.Holds = append(res.Holds, item)
	}
	return res, nil
}
