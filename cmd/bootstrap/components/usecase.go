package components

import (
	"log/slog"

	"circulation-engine/internal/infra/signer"
	"circulation-engine/internal/pkg/clock"
	"circulation-engine/internal/pkg/config"
	"circulation-engine/internal/usecase/circulation"
	"circulation-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCirculationModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewURLSigner,
)

var usecaseCirculationModule = fx.Module("usecase/circulation",
	fx.Provide(
		NewEngineConfig,
		circulation.NewEngine,
	),
)

// NewURLSigner returns nil when no secret is configured; collections that
// ask for signed links then get them unsigned.
func NewURLSigner(cfg config.Config, clk clock.Clock, logger *slog.Logger) (shared.URLSigner, error) {
	if cfg.Signing.Secret == "" {
		logger.Warn("URL_SIGNING_SECRET is not set, self-hosted links will not be signed")
		return nil, nil
	}
	s, err := signer.NewURLSigner(cfg.Signing.Secret, clk)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func NewEngineConfig(cfg config.Config) circulation.Config {
	c := circulation.DefaultConfig()
	cc := cfg.Circulation
	if cc.FanoutLimit > 0 {
		c.FanoutLimit = cc.FanoutLimit
	}
	if cc.VendorTimeout > 0 {
		c.VendorTimeout = cc.VendorTimeout
	}
	if cc.RecentLoanGrace > 0 {
		c.RecentLoanGrace = cc.RecentLoanGrace
	}
	if cc.PlaceholderLoanDuration > 0 {
		c.PlaceholderLoanDuration = cc.PlaceholderLoanDuration
	}
	if cc.LoanActivityMaxAge > 0 {
		c.LoanActivityMaxAge = cc.LoanActivityMaxAge
	}
	if cfg.Signing.TTL > 0 {
		c.SignedURLTTL = cfg.Signing.TTL
	}
	return c
}
