package analytics

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"sync"
	"time"

	"circulation-engine/internal/infra/repository"
	"circulation-engine/internal/usecase/shared"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"
)

const (
	maxBatch     = 64
	writeTimeout = 5 * time.Second
)

type EventWriter interface {
	InsertBatch(ctx context.Context, events []repository.EventRecord) error
}

type payload struct {
	LibraryID  uuid.UUID `json:"library_id"`
	PoolID     uuid.UUID `json:"license_pool_id"`
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Dispatcher stores analytics events in the background. Collect never
// blocks: events arriving while the buffer is full are dropped.
type Dispatcher struct {
	writer  EventWriter
	logger  *slog.Logger
	events  chan shared.Event
	entropy io.Reader
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(writer EventWriter, logger *slog.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	return &Dispatcher{
		writer:  writer,
		logger:  logger.With("component", "analytics"),
		events:  make(chan shared.Event, buffer),
		entropy: ulid.Monotonic(rand.Reader, 0),
		done:    make(chan struct{}),
	}
}

func (d *Dispatcher) Collect(_ context.Context, e shared.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("analytics event after shutdown dropped", "event", e.Name)
		return
	}
	select {
	case d.events <- e:
	default:
		d.logger.Warn("analytics buffer full, event dropped",
			"event", e.Name,
			"license_pool_id", e.PoolID.String())
	}
}

func (d *Dispatcher) Start() {
	go d.run()
}

// Stop flushes buffered events and waits for the writer until ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	batch := make([]shared.Event, 0, maxBatch)
	for e := range d.events {
		batch = append(batch[:0], e)
	drain:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-d.events:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		d.flush(batch)
	}
}

func (d *Dispatcher) flush(batch []shared.Event) {
	records := make([]repository.EventRecord, 0, len(batch))
	for _, e := range batch {
		body, err := jsoniter.ConfigFastest.Marshal(payload{
			LibraryID:  e.LibraryID,
			PoolID:     e.PoolID,
			Event:      e.Name,
			OccurredAt: e.OccurredAt,
		})
		if err != nil {
			d.logger.Error("analytics payload encoding failed", "event", e.Name, "error", err.Error())
			continue
		}
		records = append(records, repository.EventRecord{
			ID:         ulid.MustNew(ulid.Timestamp(e.OccurredAt), d.entropy).String(),
			LibraryID:  e.LibraryID,
			PoolID:     e.PoolID,
			Name:       e.Name,
			OccurredAt: e.OccurredAt,
			Payload:    body,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := d.writer.InsertBatch(ctx, records); err != nil {
		d.logger.Error("analytics batch write failed", "count", len(records), "error", err.Error())
	}
}
