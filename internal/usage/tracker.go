package usage

import (
	"context"
	"sync"
	"time"

	"tonetranslate-go/internal/constants"
	"tonetranslate-go/internal/events"
	"tonetranslate-go/internal/monitoring"

	log "github.com/sirupsen/logrus"
)

// Tracker aggregates request records in memory and flushes the delta to
// storage in the background.
type Tracker struct {
	storage Storage
	mu      sync.RWMutex
	stats   *Stats // persisted totals plus local activity
	pending *Stats // not yet flushed to storage

	loc *time.Location // daily bucket timezone

	// Background persistence
	persistInterval time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

// NewTracker creates a new usage tracker. A non-positive interval uses the default.
func NewTracker(storage Storage, persistInterval time.Duration) *Tracker {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if persistInterval <= 0 {
		persistInterval = constants.UsagePersistInterval
	}
	return &Tracker{
		storage:         storage,
		stats:           NewStats(),
		pending:         NewStats(),
		persistInterval: persistInterval,
		loc:             time.UTC,
		stopCh:          make(chan struct{}),
	}
}

// SetLocation sets the timezone used to bucket daily statistics. Call before Start.
func (t *Tracker) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	t.mu.Lock()
	t.loc = loc
	t.mu.Unlock()
}

// Start loads stored totals and starts the persistence worker.
func (t *Tracker) Start(ctx context.Context) error {
	if err := t.loadFromStorage(ctx); err != nil {
		log.WithError(err).Warn("failed to load usage statistics from storage, starting fresh")
	}
	t.wg.Add(1)
	go t.persistWorker()
	log.WithField("interval", t.persistInterval.String()).Info("usage tracker started")
	return nil
}

// Stop stops the worker and flushes what is pending.
func (t *Tracker) Stop(ctx context.Context) error {
	t.stopOnce.Do(func() { close(t.stopCh) })
	t.wg.Wait()
	if err := t.flush(ctx); err != nil {
		log.WithError(err).Error("failed to save final usage statistics")
		return err
	}
	log.Info("usage tracker stopped")
	return nil
}

// Record adds one request to the statistics.
func (t *Tracker) Record(rec RequestRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	rec.Timestamp = rec.Timestamp.In(t.loc)
	t.stats.Apply(rec)
	t.pending.Apply(rec)
}

// Subscribe feeds the tracker from translation.completed events.
func (t *Tracker) Subscribe(sub events.Subscriber) func() {
	return sub.Subscribe(events.TopicTranslationCompleted, func(_ context.Context, evt events.Event) {
		payload, ok := evt.Payload.(events.TranslationCompleted)
		if !ok {
			return
		}
		t.Record(RequestRecord{
			Timestamp: evt.Timestamp,
			Provider:  payload.Provider,
			Demo:      payload.Demo,
			Tones:     payload.Outcomes,
		})
	})
}

// GetStats returns a snapshot of current statistics
func (t *Tracker) GetStats() *Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats.Clone()
}

func (t *Tracker) persistWorker() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.persistInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), t.persistInterval)
			if err := t.flush(ctx); err != nil {
				log.WithError(err).Error("failed to persist usage statistics")
			}
			cancel()
		case <-t.stopCh:
			return
		}
	}
}

func (t *Tracker) loadFromStorage(ctx context.Context) error {
	stored, err := t.storage.LoadStats(ctx)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	stored.Merge(t.pending)
	t.stats = stored
	log.WithFields(log.Fields{
		"total_requests": stored.TotalRequests,
		"days":           len(stored.Daily),
	}).Info("loaded usage statistics from storage")
	return nil
}

// flush hands the pending delta to storage; on failure it is kept for the next try.
func (t *Tracker) flush(ctx context.Context) error {
	t.mu.Lock()
	delta := t.pending
	t.pending = NewStats()
	t.mu.Unlock()

	if delta.Empty() {
		return nil
	}
	if err := t.storage.AddStats(ctx, delta); err != nil {
		t.mu.Lock()
		t.pending.Merge(delta)
		t.mu.Unlock()
		monitoring.UsageFlushesTotal.WithLabelValues(BackendLabel(t.storage), "error").Inc()
		return err
	}
	monitoring.UsageFlushesTotal.WithLabelValues(BackendLabel(t.storage), "ok").Inc()
	return nil
}
