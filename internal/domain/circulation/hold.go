package circulation

import (
	"time"

	"github.com/google/uuid"
)

type Hold struct {
	id                 uuid.UUID
	patronID           uuid.UUID
	poolID             uuid.UUID
	start              *time.Time
	end                *time.Time
	position           *int
	externalIdentifier string
}

func NewHold(patronID, poolID uuid.UUID, start, end *time.Time, position *int, externalIdentifier string) *Hold {
	return &Hold{
		id:                 uuid.New(),
		patronID:           patronID,
		poolID:             poolID,
		start:              start,
		end:                end,
		position:           position,
		externalIdentifier: externalIdentifier,
	}
}

func ReconstructHold(
	id, patronID, poolID uuid.UUID,
	start, end *time.Time,
	position *int,
	externalIdentifier string,
) *Hold {
	return &Hold{
		id:                 id,
		patronID:           patronID,
		poolID:             poolID,
		start:              start,
		end:                end,
		position:           position,
		externalIdentifier: externalIdentifier,
	}
}

func (h *Hold) Refresh(start, end *time.Time, position *int, externalIdentifier string) {
	h.start = start
	h.end = end
	h.position = position
	if externalIdentifier != "" {
		h.externalIdentifier = externalIdentifier
	}
}

// IsReserved is true once the hold reaches position 0: a copy is set
// aside for the patron.
func (h *Hold) IsReserved() bool {
	return h.position != nil && *h.position == 0
}

func (h *Hold) ID() uuid.UUID              { return h.id }
func (h *Hold) PatronID() uuid.UUID        { return h.patronID }
func (h *Hold) PoolID() uuid.UUID          { return h.poolID }
func (h *Hold) Start() *time.Time          { return h.start }
func (h *Hold) End() *time.Time            { return h.end }
func (h *Hold) Position() *int             { return h.position }
func (h *Hold) ExternalIdentifier() string { return h.externalIdentifier }
