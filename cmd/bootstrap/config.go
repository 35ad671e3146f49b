package bootstrap

import (
	"time"

	"circulation-engine/internal/pkg/config"
	"circulation-engine/internal/pkg/errs"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		NewConfig,
	),
)

// NewConfig loads the environment and rejects settings the engine cannot
// run with, so a bad deploy fails at startup instead of on the first sync.
func NewConfig() (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Config{}, err
	}

	circ := cfg.Circulation
	if circ.FanoutLimit < 1 {
		return config.Config{}, errs.Newf("FANOUT_LIMIT must be positive, got %d", circ.FanoutLimit)
	}
	for name, d := range map[string]time.Duration{
		"VENDOR_TIMEOUT":            circ.VendorTimeout,
		"PLACEHOLDER_LOAN_DURATION": circ.PlaceholderLoanDuration,
		"LOAN_ACTIVITY_MAX_AGE":     circ.LoanActivityMaxAge,
	} {
		if d <= 0 {
			return config.Config{}, errs.Newf("%s must be positive, got %s", name, d)
		}
	}
	return cfg, nil
}
