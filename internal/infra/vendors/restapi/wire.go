package restapi

import (
	"time"

	domcirc "circulation-engine/internal/domain/circulation"

	"github.com/google/uuid"
)

type mechanismJSON struct {
	ContentType string `json:"content_type"`
	DRMScheme   string `json:"drm_scheme,omitempty"`
	RightsURI   string `json:"rights_uri,omitempty"`
	ResourceURL string `json:"resource_url,omitempty"`
}

type loanJSON struct {
	IdentifierType string         `json:"identifier_type"`
	Identifier     string         `json:"identifier"`
	Start          *time.Time     `json:"start"`
	End            *time.Time     `json:"end"`
	ExternalID     string         `json:"external_id"`
	LockedTo       *mechanismJSON `json:"locked_to"`
}

type holdJSON struct {
	IdentifierType string     `json:"identifier_type"`
	Identifier     string     `json:"identifier"`
	Start          *time.Time `json:"start"`
	End            *time.Time `json:"end"`
	Position       *int       `json:"position"`
	ExternalID     string     `json:"external_id"`
}

type checkoutRequest struct {
	ContentType string `json:"content_type,omitempty"`
	DRMScheme   string `json:"drm_scheme,omitempty"`
}

type checkoutResponse struct {
	Loan *loanJSON `json:"loan"`
	Hold *holdJSON `json:"hold"`
}

type holdRequest struct {
	NotifyEmail string `json:"notify_email,omitempty"`
}

type fulfillRequest struct {
	ContentType string `json:"content_type"`
	DRMScheme   string `json:"drm_scheme,omitempty"`
	Part        string `json:"part,omitempty"`
	PartURL     string `json:"part_url,omitempty"`
}

type fulfillResponse struct {
	ContentLink    string     `json:"content_link"`
	ContentType    string     `json:"content_type"`
	Content        []byte     `json:"content"`
	ContentExpires *time.Time `json:"content_expires"`
	// FetchURL is set when the vendor prepares the content lazily.
	FetchURL string `json:"fetch_url"`
}

type activityResponse struct {
	Loans []loanJSON `json:"loans"`
	Holds []holdJSON `json:"holds"`
}

type availabilityResponse struct {
	LicensesOwned      int `json:"licenses_owned"`
	LicensesAvailable  int `json:"licenses_available"`
	LicensesReserved   int `json:"licenses_reserved"`
	PatronsInHoldQueue int `json:"patrons_in_hold_queue"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (l loanJSON) toDomain(collectionID uuid.UUID, dataSource string) *domcirc.LoanInfo {
	info := &domcirc.LoanInfo{
		CollectionID:       collectionID,
		DataSourceName:     dataSource,
		Identifier:         domcirc.NewIdentifier(l.IdentifierType, l.Identifier),
		Start:              utc(l.Start),
		End:                utc(l.End),
		ExternalIdentifier: l.ExternalID,
	}
	if l.LockedTo != nil {
		info.LockedTo = &domcirc.DeliveryMechanismInfo{
			ContentType: l.LockedTo.ContentType,
			DRMScheme:   l.LockedTo.DRMScheme,
			RightsURI:   l.LockedTo.RightsURI,
			ResourceURL: l.LockedTo.ResourceURL,
		}
	}
	return info
}

func (h holdJSON) toDomain(collectionID uuid.UUID, dataSource string) *domcirc.HoldInfo {
	return &domcirc.HoldInfo{
		CollectionID:       collectionID,
		DataSourceName:     dataSource,
		Identifier:         domcirc.NewIdentifier(h.IdentifierType, h.Identifier),
		Start:              utc(h.Start),
		End:                utc(h.End),
		Position:           h.Position,
		ExternalIdentifier: h.ExternalID,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
