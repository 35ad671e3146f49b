package remote

import (
	"slices"

	"circulation-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrDuplicateCollection = errs.New("collection registered twice")

// Collection is a library's connection to one vendor catalog.
type Collection struct {
	ID         uuid.UUID
	Name       string
	Protocol   string
	DataSource string
	LibraryIDs []uuid.UUID
	SignedURLs bool
}

func (c Collection) ServesLibrary(libraryID uuid.UUID) bool {
	return slices.Contains(c.LibraryIDs, libraryID)
}

type Entry struct {
	Collection Collection
	Provider   Provider
}

// Registry maps collections to their providers. It is built once and
// read-only afterwards.
type Registry struct {
	entries map[uuid.UUID]Entry
	order   []uuid.UUID
}

func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[uuid.UUID]Entry, len(entries))}
	for _, e := range entries {
		if _, ok := r.entries[e.Collection.ID]; ok {
			return nil, errs.Wrapf(ErrDuplicateCollection, "collection %s", e.Collection.ID)
		}
		r.entries[e.Collection.ID] = e
		r.order = append(r.order, e.Collection.ID)
	}
	return r, nil
}

// Provider returns the provider for a collection. Collections without a
// vendor (open access, self hosted) have none.
func (r *Registry) Provider(collectionID uuid.UUID) (Provider, bool) {
	e, ok := r.entries[collectionID]
	if !ok || e.Provider == nil {
		return nil, false
	}
	return e.Provider, true
}

func (r *Registry) Collection(collectionID uuid.UUID) (Collection, bool) {
	e, ok := r.entries[collectionID]
	return e.Collection, ok
}

// ForLibrary returns the vendor providers of every collection the library
// subscribes to, in registration order.
func (r *Registry) ForLibrary(libraryID uuid.UUID) []Provider {
	var out []Provider
	for _, id := range r.order {
		e := r.entries[id]
		if e.Provider != nil && e.Collection.ServesLibrary(libraryID) {
			out = append(out, e.Provider)
		}
	}
	return out
}

func (r *Registry) Collections() []Collection {
	out := make([]Collection, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].Collection)
	}
	return out
}
