package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one circulation analytics event.
type Event struct {
	LibraryID  uuid.UUID
	PoolID     uuid.UUID
	Name       string
	OccurredAt time.Time
}

// Analytics collects events. Implementations must not block the caller and
// must not fail the operation that produced the event.
type Analytics interface {
	Collect(ctx context.Context, e Event)
}

// URLSigner signs links to protected storage.
type URLSigner interface {
	Sign(rawURL string, ttl time.Duration) (string, error)
}
