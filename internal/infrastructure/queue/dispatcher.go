package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
	"github.com/accessdesk/project-access/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes activity entries to a fixed set of workers using
// consistent hashing on the actor, so one actor's entries are persisted in
// the order they were enqueued.
type Dispatcher struct {
	workers  []chan domain.ActivityEntry
	recorder ports.ActivityRecorder
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.ActivityRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.ActivityEntry, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ActivityEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// entries still queued at that point are discarded.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an entry to the worker responsible for its actor. It never
// blocks: when that worker's queue is full the entry is dropped and false is
// returned.
func (d *Dispatcher) Enqueue(e domain.ActivityEntry) bool {
	idx := d.shardIndex(e.Actor())
	ch := d.workers[idx]
	select {
	case ch <- e:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(ch)))
		return true
	default:
		metrics.ActivityDroppedTotal.Inc()
		d.log.Warn().Str("actor", e.Actor()).Int("worker_id", idx).Msg("activity queue full, entry dropped")
		return false
	}
}

// shardIndex maps an actor deterministically to a worker index.
func (d *Dispatcher) shardIndex(actor string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actor))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ActivityEntry) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.recorder.Record(ctx, entry); err != nil {
				d.log.Error().Err(err).
					Str("actor", entry.Actor()).
					Str("path", entry.Path).
					Int("worker_id", id).
					Msg("activity persistence failed")
			}
		}
	}
}
