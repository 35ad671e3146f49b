package bootstrap

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
)

const instrumentationName = "circulation-engine"

// TelemetryModule exposes the global meter. Until an exporter registers a
// MeterProvider the instruments are no-ops.
var TelemetryModule = fx.Module("telemetry",
	fx.Provide(
		NewMeter,
	),
)

func NewMeter() metric.Meter {
	return otel.Meter(instrumentationName)
}
