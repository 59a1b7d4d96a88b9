package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bshishov/timelinewiki/internal/core/domain"
	"github.com/bshishov/timelinewiki/internal/core/ports"
	"github.com/bshishov/timelinewiki/internal/logger"
)

// OutboxDispatcher delivers committed change envelopes to a ChangePublisher.
// Failed deliveries are retried with backoff until maxRetry, then dead-lettered.
type OutboxDispatcher struct {
	repo      ports.OutboxRepository
	publisher ports.ChangePublisher
	log       *logger.Logger
	interval  time.Duration
	batchSize int
	maxRetry  int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	dispatchSuccessTotal atomic.Int64
	dispatchFailureTotal atomic.Int64
	dispatchDeadTotal    atomic.Int64
}

type OutboxDispatcherMetrics struct {
	DispatchSuccessTotal int64
	DispatchFailureTotal int64
	DispatchDeadTotal    int64
}

func NewOutboxDispatcher(repo ports.OutboxRepository, publisher ports.ChangePublisher, log *logger.Logger, interval time.Duration, batchSize int) *OutboxDispatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OutboxDispatcher{repo: repo, publisher: publisher, log: log, interval: interval, batchSize: batchSize, maxRetry: 5}
}

func (d *OutboxDispatcher) Start(parent context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.wg.Add(1)
	go d.loop(ctx)
}

func (d *OutboxDispatcher) Close() error {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
	return nil
}

func (d *OutboxDispatcher) loop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if err := d.dispatchBatch(ctx); err != nil && ctx.Err() == nil {
			d.log.Error().Err(err).Msg("outbox dispatch batch failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *OutboxDispatcher) dispatchBatch(ctx context.Context) error {
	entries, err := d.repo.FetchPending(ctx, d.batchSize)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		var change domain.ChangeEnvelope
		if err := json.Unmarshal(entry.PayloadJSON, &change); err != nil {
			if markErr := d.markFailure(ctx, entry, fmt.Sprintf("decode payload: %v", err)); markErr != nil {
				return markErr
			}
			continue
		}

		if err := d.publisher.Publish(ctx, entry.Topic, change); err != nil {
			if markErr := d.markFailure(ctx, entry, err.Error()); markErr != nil {
				return markErr
			}
			continue
		}

		if err := d.repo.MarkDispatched(ctx, entry.ID); err != nil {
			return err
		}
		d.dispatchSuccessTotal.Add(1)
		outboxDispatchTotal.WithLabelValues("success").Inc()
	}

	return nil
}

func (d *OutboxDispatcher) markFailure(ctx context.Context, entry domain.OutboxEntry, errMsg string) error {
	attempts := entry.Attempts + 1
	if attempts >= d.maxRetry {
		if err := d.repo.MarkDead(ctx, entry.ID, attempts, errMsg); err != nil {
			return err
		}
		d.dispatchDeadTotal.Add(1)
		outboxDispatchTotal.WithLabelValues("dead").Inc()
		d.log.Error().
			Int64("outbox_id", entry.ID).
			Str("change_id", entry.ChangeID).
			Int("attempts", attempts).
			Str("error", errMsg).
			Msg("change dead-lettered")
		return nil
	}
	next := time.Now().UTC().Add(backoffDuration(attempts)).Format(time.RFC3339Nano)
	if err := d.repo.MarkFailed(ctx, entry.ID, attempts, next, errMsg); err != nil {
		return err
	}
	d.dispatchFailureTotal.Add(1)
	outboxDispatchTotal.WithLabelValues("failure").Inc()
	d.log.Warn().
		Int64("outbox_id", entry.ID).
		Str("change_id", entry.ChangeID).
		Int("attempts", attempts).
		Str("error", errMsg).
		Msg("change delivery failed")
	return nil
}

func (d *OutboxDispatcher) Metrics() OutboxDispatcherMetrics {
	return OutboxDispatcherMetrics{
		DispatchSuccessTotal: d.dispatchSuccessTotal.Load(),
		DispatchFailureTotal: d.dispatchFailureTotal.Load(),
		DispatchDeadTotal:    d.dispatchDeadTotal.Load(),
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	d := time.Duration(attempt*attempt) * time.Second
	if d > 5*time.Minute {
		return 5 * time.Minute
	}
	return d
}
