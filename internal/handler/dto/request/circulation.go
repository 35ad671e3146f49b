package request

import (
	domcirc "circulation-engine/internal/domain/circulation"
)

// BorrowRequest is optional: an empty body borrows without choosing a
// delivery mechanism up front.
type BorrowRequest struct {
	ContentType string `json:"content_type"`
	DRMScheme   string `json:"drm_scheme"`
	NotifyEmail string `json:"notify_email" binding:"omitempty,email"`
}

func (r *BorrowRequest) Mechanism() *domcirc.DeliveryMechanism {
	if r.ContentType == "" {
		return nil
	}
	return &domcirc.DeliveryMechanism{ContentType: r.ContentType, DRMScheme: r.DRMScheme}
}

type FulfillRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	DRMScheme   string `json:"drm_scheme"`
	Part        string `json:"part"`
}

func (r *FulfillRequest) Mechanism() *domcirc.DeliveryMechanism {
	return &domcirc.DeliveryMechanism{ContentType: r.ContentType, DRMScheme: r.DRMScheme}
}

type MechanismQuery struct {
	ContentType string `form:"content_type" binding:"required"`
	DRMScheme   string `form:"drm_scheme"`
}

func (q *MechanismQuery) Mechanism() *domcirc.DeliveryMechanism {
	return &domcirc.DeliveryMechanism{ContentType: q.ContentType, DRMScheme: q.DRMScheme}
}

type BookshelfQuery struct {
	Force bool `form:"force"`
}
