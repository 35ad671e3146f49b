//go:build unit

package memstore

import (
	domcirc "circulation-engine/internal/domain/circulation"
)

func clonePatron(p *domcirc.Patron) *domcirc.Patron {
	return domcirc.ReconstructPatron(
		p.ID(), p.LibraryID(),
		p.AuthorizationIdentifier(), p.PinHash(),
		p.FinesCents(), p.BlockReason(),
		p.AuthorizationExpires(), p.LastLoanActivitySync(),
		p.CreatedAt(),
	)
}

func clonePool(p *domcirc.LicensePool) *domcirc.LicensePool {
	mechs := append([]*domcirc.LicensePoolDeliveryMechanism(nil), p.DeliveryMechanisms()...)
	return domcirc.ReconstructLicensePool(
		p.ID(), p.CollectionID(),
		p.DataSourceName(), p.Identifier(),
		p.IsOpenAccess(), p.IsSelfHosted(),
		p.Availability(), mechs, p.LastChecked(),
	)
}

func cloneLoan(l *domcirc.Loan) *domcirc.Loan {
	return domcirc.ReconstructLoan(l.ID(), l.PatronID(), l.PoolID(), l.Start(), l.End(), l.ExternalIdentifier(), l.Fulfillment())
}

func cloneHold(h *domcirc.Hold) *domcirc.Hold {
	return domcirc.ReconstructHold(h.ID(), h.PatronID(), h.PoolID(), h.Start(), h.End(), h.Position(), h.ExternalIdentifier())
}
