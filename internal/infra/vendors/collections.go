package vendor

import (
	"os"
	"time"

	"circulation-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ProtocolLocal marks open access and self hosted collections. They are
// registered without a provider.
const ProtocolLocal = "local"

var ErrInvalidCollections = errs.New("invalid collections file")

type CollectionsFile struct {
	Collections []CollectionConfig `yaml:"collections"`
}

// CollectionConfig is one vendor connection as written in the collections
// YAML file.
type CollectionConfig struct {
	ID         uuid.UUID     `yaml:"id"`
	Name       string        `yaml:"name"`
	Protocol   string        `yaml:"protocol"`
	DataSource string        `yaml:"data_source"`
	Libraries  []uuid.UUID   `yaml:"libraries"`
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	SignedURLs bool          `yaml:"signed_urls"`

	DeliveryMechanismAtBorrow bool     `yaml:"delivery_mechanism_at_borrow"`
	CanRevokeHoldWhenReserved bool     `yaml:"can_revoke_hold_when_reserved"`
	LoanlessContentTypes      []string `yaml:"loanless_content_types"`
}

func LoadCollections(path string) (*CollectionsFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, "read collections file %s", path)
	}
	return ParseCollections(raw)
}

func ParseCollections(raw []byte) (*CollectionsFile, error) {
	var f CollectionsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "decode collections"), ErrInvalidCollections)
	}

	seen := make(map[uuid.UUID]struct{}, len(f.Collections))
	for i, c := range f.Collections {
		switch {
		case c.ID == uuid.Nil:
			return nil, errs.Mark(errs.Newf("collection #%d has no id", i), ErrInvalidCollections)
		case c.Protocol == "":
			return nil, errs.Mark(errs.Newf("collection %s has no protocol", c.ID), ErrInvalidCollections)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, errs.Mark(errs.Newf("collection %s listed twice", c.ID), ErrInvalidCollections)
		}
		seen[c.ID] = struct{}{}
	}
	return &f, nil
}
