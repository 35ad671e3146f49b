package components

import (
	"log/slog"
	"net/http"

	"circulation-engine/internal/infra/vendors"
	"circulation-engine/internal/pkg/config"
	"circulation-engine/internal/usecase/remote"

	"go.uber.org/fx"
)

var VendorModule = fx.Module("vendor",
	fx.Provide(
		NewHTTPClient,
		NewCollectionsFile,
		vendor.NewMetrics,
		NewRegistry,
	),
)

// NewHTTPClient is shared by every vendor. Per-call deadlines come from the
// engine's context, the client timeout is only a backstop.
func NewHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{Timeout: 2 * cfg.Circulation.VendorTimeout}
}

func NewCollectionsFile(cfg config.Config) (*vendor.CollectionsFile, error) {
	return vendor.LoadCollections(cfg.Circulation.CollectionsFile)
}

func NewRegistry(file *vendor.CollectionsFile, client *http.Client, metrics *vendor.Metrics, logger *slog.Logger) (*remote.Registry, error) {
	return vendor.BuildRegistry(file, vendor.DefaultFactories(client), metrics, logger)
}
