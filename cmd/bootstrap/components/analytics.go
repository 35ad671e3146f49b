package components

import (
	"context"
	"log/slog"

	"circulation-engine/internal/infra/analytics"
	"circulation-engine/internal/pkg/config"
	"circulation-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var AnalyticsModule = fx.Module("analytics",
	fx.Provide(
		NewDispatcher,
		func(d *analytics.Dispatcher) shared.Analytics { return d },
	),
)

func NewDispatcher(lc fx.Lifecycle, writer analytics.EventWriter, cfg config.Config, logger *slog.Logger) *analytics.Dispatcher {
	d := analytics.NewDispatcher(writer, logger, cfg.Analytics.Buffer)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			d.Start()
			return nil
		},
		OnStop: d.Stop,
	})
	return d
}
