package vendor

import (
	"context"
	"log/slog"
	"time"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/usecase/remote"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricDuration = "circulation.provider.duration"
	metricFailures = "circulation.provider.failures"
)

// Metrics holds the instruments shared by every instrumented provider.
type Metrics struct {
	duration metric.Float64Histogram
	failures metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	duration, err := meter.Float64Histogram(metricDuration,
		metric.WithDescription("Vendor call duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter(metricFailures,
		metric.WithDescription("Vendor calls that returned an error"),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{duration: duration, failures: failures}, nil
}

type instrumented struct {
	inner      remote.Provider
	collection remote.Collection
	metrics    *Metrics
	logger     *slog.Logger
}

type instrumentedLoanless struct {
	*instrumented
	loanless remote.LoanlessFulfiller
}

func (p *instrumentedLoanless) CanFulfillWithoutLoan(patron *domcirc.Patron, pool *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism) bool {
	return p.loanless.CanFulfillWithoutLoan(patron, pool, mechanism)
}

// Instrument records duration and failures of every call to p. The result
// still implements remote.LoanlessFulfiller when p does.
func Instrument(p remote.Provider, c remote.Collection, m *Metrics, logger *slog.Logger) remote.Provider {
	base := &instrumented{
		inner:      p,
		collection: c,
		metrics:    m,
		logger:     logger.With("collection_id", c.ID.String(), "protocol", c.Protocol),
	}
	if lf, ok := p.(remote.LoanlessFulfiller); ok {
		return &instrumentedLoanless{instrumented: base, loanless: lf}
	}
	return base
}

func (p *instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("collection", p.collection.Name),
		attribute.String("protocol", p.collection.Protocol),
	)
	p.metrics.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	if err == nil {
		return
	}
	p.metrics.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("collection", p.collection.Name),
		attribute.String("kind", string(domcirc.KindOf(err))),
	))

	// expected answers are part of normal circulation
	switch domcirc.KindOf(err) {
	case domcirc.KindAlreadyCheckedOut, domcirc.KindAlreadyOnHold, domcirc.KindNotCheckedOut, domcirc.KindNotOnHold:
		p.logger.Debug("vendor call returned expected condition", "operation", op, "error", err.Error())
	default:
		p.logger.Warn("vendor call failed", "operation", op, "error", err.Error())
	}
}

func (p *instrumented) CollectionID() uuid.UUID {
	return p.inner.CollectionID()
}

func (p *instrumented) Capabilities() remote.Capabilities {
	return p.inner.Capabilities()
}

func (p *instrumented) Checkout(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism) (out domcirc.CheckoutOutcome, err error) {
	defer func(start time.Time) { p.observe(ctx, "checkout", start, err) }(time.Now())
	return p.inner.Checkout(ctx, patron, pin, pool, mechanism)
}

func (p *instrumented) PlaceHold(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool, notifyEmail string) (h *domcirc.HoldInfo, err error) {
	defer func(start time.Time) { p.observe(ctx, "place_hold", start, err) }(time.Now())
	return p.inner.PlaceHold(ctx, patron, pin, pool, notifyEmail)
}

func (p *instrumented) ReleaseHold(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool) (err error) {
	defer func(start time.Time) { p.observe(ctx, "release_hold", start, err) }(time.Now())
	return p.inner.ReleaseHold(ctx, patron, pin, pool)
}

func (p *instrumented) Checkin(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool) (err error) {
	defer func(start time.Time) { p.observe(ctx, "checkin", start, err) }(time.Now())
	return p.inner.Checkin(ctx, patron, pin, pool)
}

func (p *instrumented) Fulfill(ctx context.Context, patron *domcirc.Patron, pin string, pool *domcirc.LicensePool, mechanism *domcirc.LicensePoolDeliveryMechanism, opts remote.FulfillOptions) (f *domcirc.FulfillmentInfo, err error) {
	defer func(start time.Time) { p.observe(ctx, "fulfill", start, err) }(time.Now())
	return p.inner.Fulfill(ctx, patron, pin, pool, mechanism, opts)
}

func (p *instrumented) PatronActivity(ctx context.Context, patron *domcirc.Patron, pin string) (items []domcirc.ActivityItem, err error) {
	defer func(start time.Time) { p.observe(ctx, "patron_activity", start, err) }(time.Now())
	return p.inner.PatronActivity(ctx, patron, pin)
}

func (p *instrumented) UpdateAvailability(ctx context.Context, pool *domcirc.LicensePool) (err error) {
	defer func(start time.Time) { p.observe(ctx, "update_availability", start, err) }(time.Now())
	return p.inner.UpdateAvailability(ctx, pool)
}
