//go:build unit

package analytics_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"circulation-engine/internal/infra/analytics"
	"circulation-engine/internal/infra/repository"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu      sync.Mutex
	records []repository.EventRecord
}

func (w *recordingWriter) InsertBatch(_ context.Context, events []repository.EventRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, events...)
	return nil
}

func (w *recordingWriter) all() []repository.EventRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]repository.EventRecord(nil), w.records...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEvent(name string) shared.Event {
	return shared.Event{
		LibraryID:  uuid.New(),
		PoolID:     uuid.New(),
		Name:       name,
		OccurredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDispatcher_WritesCollectedEventsOnStop(t *testing.T) {
	w := &recordingWriter{}
	d := analytics.NewDispatcher(w, discardLogger(), 8)
	d.Start()

	e := newEvent("circulation_manager_check_out")
	d.Collect(context.Background(), e)
	d.Collect(context.Background(), newEvent("circulation_manager_fulfill"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	records := w.all()
	require.Len(t, records, 2)
	assert.Equal(t, e.Name, records[0].Name)
	assert.Equal(t, e.PoolID, records[0].PoolID)
	assert.Len(t, records[0].ID, 26)
	assert.NotEqual(t, records[0].ID, records[1].ID)

	var body map[string]any
	require.NoError(t, jsoniter.Unmarshal(records[0].Payload, &body))
	assert.Equal(t, e.Name, body["event"])
	assert.Equal(t, e.LibraryID.String(), body["library_id"])
}

func TestDispatcher_DropsWhenBufferFull(t *testing.T) {
	w := &recordingWriter{}
	d := analytics.NewDispatcher(w, discardLogger(), 1)

	// not started yet: the second event has nowhere to go
	d.Collect(context.Background(), newEvent("first"))
	d.Collect(context.Background(), newEvent("second"))

	d.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	records := w.all()
	require.Len(t, records, 1)
	assert.Equal(t, "first", records[0].Name)
}

func TestDispatcher_CollectAfterStopIsIgnored(t *testing.T) {
	w := &recordingWriter{}
	d := analytics.NewDispatcher(w, discardLogger(), 4)
	d.Start()
	require.NoError(t, d.Stop(context.Background()))

	assert.NotPanics(t, func() {
		d.Collect(context.Background(), newEvent("late"))
	})
	assert.Empty(t, w.all())
}
