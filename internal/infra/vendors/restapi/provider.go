// Package restapi talks to vendors exposing the JSON circulation API:
// title-scoped checkout, hold, fulfillment and availability resources plus
// a patron activity listing.
package restapi

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/usecase/remote"

	"github.com/google/uuid"
)

const Protocol = "restapi"

const defaultTimeout = 20 * time.Second

type Config struct {
	CollectionID uuid.UUID
	Name         string
	DataSource   string
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	Capabilities remote.Capabilities
	// LoanlessContentTypes can be fulfilled without a loan, e.g. previews.
	LoanlessContentTypes []string
}

type Provider struct {
	cfg    Config
	base   *url.URL
	client *http.Client
	clock  func() time.Time
}

func New(cfg Config, client *http.Client) (*Provider, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errs.Newf("collection %s: invalid base url %q", cfg.CollectionID, cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Name == "" {
		cfg.Name = cfg.CollectionID.String()
	}
	return &Provider{cfg: cfg, base: base, client: client, clock: time.Now}, nil
}

func (p *Provider) CollectionID() uuid.UUID {
	return p.cfg.CollectionID
}

func (p *Provider) Capabilities() remote.Capabilities {
	return p.cfg.Capabilities
}

func (p *Provider) Checkout(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism) (domcirc.CheckoutOutcome, error) {
	var body checkoutRequest
	if mechanism != nil {
		body.ContentType = mechanism.Mechanism().ContentType
		body.DRMScheme = mechanism.Mechanism().DRMScheme
	}

	var resp checkoutResponse
	err := p.do(ctx, call{method: http.MethodPost, path: titlePath(pool, "checkout"), patron: patron, pin: pin, body: body}, &resp)
	if err != nil {
		return domcirc.CheckoutOutcome{}, err
	}
	switch {
	case resp.Loan != nil:
		return domcirc.LoanOutcome(resp.Loan.toDomain(p.cfg.CollectionID, p.cfg.DataSource)), nil
	case resp.Hold != nil:
		return domcirc.HoldOutcome(resp.Hold.toDomain(p.cfg.CollectionID, p.cfg.DataSource)), nil
	default:
		return domcirc.CheckoutOutcome{}, domcirc.NewError(domcirc.KindRemoteInitiatedServerError, p.cfg.Name+" returned neither loan nor hold", nil)
	}
}

func (p *Provider) PlaceHold(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool, notifyEmail string) (*domcirc.HoldInfo, error) {
	var resp holdJSON
	err := p.do(ctx, call{method: http.MethodPost, path: titlePath(pool, "hold"), patron: patron, pin: pin, body: holdRequest{NotifyEmail: notifyEmail}}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toDomain(p.cfg.CollectionID, p.cfg.DataSource), nil
}

func (p *Provider) ReleaseHold(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool) error {
	return p.do(ctx, call{method: http.MethodDelete, path: titlePath(pool, "hold"), patron: patron, pin: pin}, nil)
}

func (p *Provider) Checkin(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool) error {
	return p.do(ctx, call{method: http.MethodDelete, path: titlePath(pool, "checkout"), patron: patron, pin: pin}, nil)
}

func (p *Provider) Fulfill(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism, opts remote.FulfillOptions) (*domcirc.FulfillmentInfo, error) {
	if mechanism == nil {
		return nil, domcirc.ErrDeliveryMechanismMissing
	}
	m := mechanism.Mechanism()
	body := fulfillRequest{ContentType: m.ContentType, DRMScheme: m.DRMScheme, Part: opts.Part}
	if opts.Part != "" && opts.PartURL != nil {
		body.PartURL = opts.PartURL(opts.Part)
	}

	var resp fulfillResponse
	err := p.do(ctx, call{method: http.MethodPost, path: titlePath(pool, "fulfillment"), patron: patron, pin: pin, body: body}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ContentType == "" {
		resp.ContentType = m.ContentType
	}

	if resp.FetchURL != "" {
		target, err := p.base.Parse(resp.FetchURL)
		if err != nil {
			return nil, domcirc.NewError(domcirc.KindRemoteInitiatedServerError, "bad fetch url", err)
		}
		return domcirc.NewDeferredFulfillmentInfo(pool, resp.ContentType, func(ctx context.Context) (domcirc.FulfillmentContent, error) {
			var fetched fulfillResponse
			if err := p.send(ctx, http.MethodGet, target, patron, pin, nil, &fetched); err != nil {
				return domcirc.FulfillmentContent{}, err
			}
			return fetched.content(), nil
		}), nil
	}
	return domcirc.NewFulfillmentInfo(pool, resp.content()), nil
}

func (r fulfillResponse) content() domcirc.FulfillmentContent {
	return domcirc.FulfillmentContent{
		ContentLink:    r.ContentLink,
		ContentType:    r.ContentType,
		Content:        r.Content,
		ContentExpires: utc(r.ContentExpires),
	}
}

func (p *Provider) PatronActivity(ctx context.Context, patron *domcirc.Patron, pin string) ([]domcirc.ActivityItem, error) {
	var resp activityResponse
	if err := p.do(ctx, call{method: http.MethodGet, path: "patrons/me/activity", patron: patron, pin: pin}, &resp); err != nil {
		return nil, err
	}

	items := make([]domcirc.ActivityItem, 0, len(resp.Loans)+len(resp.Holds))
	for _, l := range resp.Loans {
		items = append(items, l.toDomain(p.cfg.CollectionID, p.cfg.DataSource))
	}
	for _, h := range resp.Holds {
		items = append(items, h.toDomain(p.cfg.CollectionID, p.cfg.DataSource))
	}
	return items, nil
}

func (p *Provider) UpdateAvailability(ctx context.Context, pool *domcirc.LicensePool) error {
	var resp availabilityResponse
	if err := p.do(ctx, call{method: http.MethodGet, path: titlePath(pool, "availability")}, &resp); err != nil {
		return err
	}
	pool.UpdateAvailability(domcirc.Availability{
		LicensesOwned:      resp.LicensesOwned,
		LicensesAvailable:  resp.LicensesAvailable,
		LicensesReserved:   resp.LicensesReserved,
		PatronsInHoldQueue: resp.PatronsInHoldQueue,
	}, p.clock().UTC())
	return nil
}

func (p *Provider) CanFulfillWithoutLoan(_ *domcirc.Patron, _ *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism) bool {
	if mechanism == nil {
		return false
	}
	return slices.Contains(p.cfg.LoanlessContentTypes, mechanism.Mechanism().ContentType)
}
