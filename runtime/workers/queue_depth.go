package workers

import (
	"chirp-hub/observability"
	"context"
	"log/slog"
	"time"
)

// QueueProbe reads the fill level of a buffered queue.
type QueueProbe interface {
	Len() int
	Cap() int
}

// QueueDepthWorker periodically reports how full the event queue is.
// Reading the length of a channel never blocks, so sampling does not slow
// publishers down. A nearly full queue means Publish is about to block.
type QueueDepthWorker struct {
	log       *slog.Logger
	queue     QueueProbe
	metrics   *observability.Metrics
	interval  time.Duration
	threshold int
}

// NewQueueDepthWorker warns once the queue is at least thresholdPercent full.
func NewQueueDepthWorker(log *slog.Logger, queue QueueProbe, metrics *observability.Metrics,
	interval time.Duration, thresholdPercent int) *QueueDepthWorker {
	return &QueueDepthWorker{
		log:       log,
		queue:     queue,
		metrics:   metrics,
		interval:  interval,
		threshold: thresholdPercent,
	}
}

func (w *QueueDepthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Sample()
		}
	}
}

// Sample exports the current length and reports whether the queue is under pressure.
func (w *QueueDepthWorker) Sample() bool {
	length, capacity := w.queue.Len(), w.queue.Cap()
	w.metrics.EventQueueLength.Set(float64(length))
	if capacity == 0 || length*100 < capacity*w.threshold {
		return false
	}
	w.log.Warn("Event queue under pressure", "length", length, "capacity", capacity)
	return true
}
