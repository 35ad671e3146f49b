package vendor

import (
	"log/slog"
	"net/http"

	"circulation-engine/internal/infra/vendors/restapi"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/usecase/remote"
)

var ErrUnknownProtocol = errs.New("unknown collection protocol")

// Factory builds the provider for one configured collection.
type Factory func(c CollectionConfig) (remote.Provider, error)

func DefaultFactories(client *http.Client) map[string]Factory {
	return map[string]Factory{
		restapi.Protocol: func(c CollectionConfig) (remote.Provider, error) {
			return restapi.New(restapi.Config{
				CollectionID: c.ID,
				Name:         c.Name,
				DataSource:   c.DataSource,
				BaseURL:      c.BaseURL,
				APIKey:       c.APIKey,
				Timeout:      c.Timeout,
				Capabilities: remote.Capabilities{
					DeliveryMechanismAtBorrow: c.DeliveryMechanismAtBorrow,
					CanRevokeHoldWhenReserved: c.CanRevokeHoldWhenReserved,
				},
				LoanlessContentTypes: c.LoanlessContentTypes,
			}, client)
		},
	}
}

// BuildRegistry creates one provider per vendor collection, wrapped with
// metrics when metrics is non-nil.
func BuildRegistry(file *CollectionsFile, factories map[string]Factory, metrics *Metrics, logger *slog.Logger) (*remote.Registry, error) {
	entries := make([]remote.Entry, 0, len(file.Collections))
	for _, c := range file.Collections {
		collection := remote.Collection{
			ID:         c.ID,
			Name:       c.Name,
			Protocol:   c.Protocol,
			DataSource: c.DataSource,
			LibraryIDs: c.Libraries,
			SignedURLs: c.SignedURLs,
		}
		if c.Protocol == ProtocolLocal {
			entries = append(entries, remote.Entry{Collection: collection})
			continue
		}

		factory, ok := factories[c.Protocol]
		if !ok {
			return nil, errs.Wrapf(ErrUnknownProtocol, "collection %s: %q", c.ID, c.Protocol)
		}
		provider, err := factory(c)
		if err != nil {
			return nil, errs.Wrapf(err, "collection %s", c.ID)
		}
		if metrics != nil {
			provider = Instrument(provider, collection, metrics, logger)
		}
		entries = append(entries, remote.Entry{Collection: collection, Provider: provider})
		logger.Info("vendor collection registered",
			"collection_id", c.ID.String(),
			"name", c.Name,
			"protocol", c.Protocol,
			"libraries", len(c.Libraries))
	}
	return remote.NewRegistry(entries...)
}
