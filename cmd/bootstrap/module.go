package bootstrap

import (
	"circulation-engine/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// CoreModule is everything except the HTTP layer. The operator CLI runs on it.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	TelemetryModule,
	components.PersistenceModule,
	components.VendorModule,
	components.AnalyticsModule,
	components.UseCaseModule,
)

var Module = fx.Options(
	CoreModule,
	JWTModule,
	components.AuthModule,
	components.HandlerModule,
)
