package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// EventRecord is a stored circulation analytics event.
type EventRecord struct {
	ID         string
	LibraryID  uuid.UUID
	PoolID     uuid.UUID
	Name       string
	OccurredAt time.Time
	Payload    []byte
}

type EventRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{db: db, logger: slog.Default()}
}

func (r *EventRepository) InsertBatch(ctx context.Context, events []EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, goqu.Record{
			"id":              e.ID,
			"library_id":      e.LibraryID,
			"license_pool_id": e.PoolID,
			"event_name":      e.Name,
			"occurred_at":     e.OccurredAt,
			"payload":         goqu.L("?::jsonb", string(e.Payload)),
		})
	}
	ds := dialect.Insert(tblEvents).Prepared(true).Rows(rows...).OnConflict(goqu.DoNothing())
	_, err := execStmt(ctx, r.logger, r.db, ds, "insert circulation events")
	return err
}
