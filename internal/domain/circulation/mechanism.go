package circulation

import (
	"strings"

	"github.com/google/uuid"
)

const (
	DRMNone        = ""
	DRMAdobe       = "application/vnd.adobe.adept+xml"
	DRMLCP         = "application/vnd.readium.lcp.license.v1.0+json"
	DRMBearerToken = "application/vnd.librarysimplified.bearer-token+json"

	// StreamingProfile marks a content type as a streaming (in-browser) format.
	StreamingProfile = "profile=streaming-media"

	RightsOpenAccess = "http://librarysimplified.org/terms/rights-status/generic-open-access"
)

// DeliveryMechanism is a format plus the DRM it is wrapped in.
type DeliveryMechanism struct {
	ContentType string
	DRMScheme   string
}

func (m DeliveryMechanism) IsStreaming() bool {
	return strings.Contains(m.ContentType, StreamingProfile)
}

func (m DeliveryMechanism) Equal(other DeliveryMechanism) bool {
	return m.ContentType == other.ContentType && m.DRMScheme == other.DRMScheme
}

func (m DeliveryMechanism) String() string {
	if m.DRMScheme == DRMNone {
		return m.ContentType
	}
	return m.ContentType + " (" + m.DRMScheme + ")"
}

// CompatibleWith reports whether a loan locked to m may be fulfilled as other.
// Streaming formats never conflict with anything. For open-access pools the
// DRM scheme is irrelevant, only the content type has to match.
func (m DeliveryMechanism) CompatibleWith(other DeliveryMechanism, openAccess bool) bool {
	if m.Equal(other) {
		return true
	}
	if m.IsStreaming() || other.IsStreaming() {
		return true
	}
	return openAccess && m.ContentType == other.ContentType
}

// LicensePoolDeliveryMechanism is one way a particular pool can be delivered.
type LicensePoolDeliveryMechanism struct {
	id          uuid.UUID
	poolID      uuid.UUID
	mechanism   DeliveryMechanism
	rightsURI   string
	resourceURL string
}

func NewLicensePoolDeliveryMechanism(poolID uuid.UUID, mechanism DeliveryMechanism, rightsURI, resourceURL string) *LicensePoolDeliveryMechanism {
	return &LicensePoolDeliveryMechanism{
		id:          uuid.New(),
		poolID:      poolID,
		mechanism:   mechanism,
		rightsURI:   rightsURI,
		resourceURL: resourceURL,
	}
}

func ReconstructLicensePoolDeliveryMechanism(id, poolID uuid.UUID, mechanism DeliveryMechanism, rightsURI, resourceURL string) *LicensePoolDeliveryMechanism {
	return &LicensePoolDeliveryMechanism{
		id:          id,
		poolID:      poolID,
		mechanism:   mechanism,
		rightsURI:   rightsURI,
		resourceURL: resourceURL,
	}
}

func (d *LicensePoolDeliveryMechanism) ID() uuid.UUID                { return d.id }
func (d *LicensePoolDeliveryMechanism) PoolID() uuid.UUID            { return d.poolID }
func (d *LicensePoolDeliveryMechanism) Mechanism() DeliveryMechanism { return d.mechanism }
func (d *LicensePoolDeliveryMechanism) RightsURI() string            { return d.rightsURI }
func (d *LicensePoolDeliveryMechanism) ResourceURL() string          { return d.resourceURL }
