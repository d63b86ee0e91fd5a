package workers

import (
	"chirp-hub/contract"
	"chirp-hub/domain/chat"
	"chirp-hub/observability"
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentProbes = 64

// HeartbeatMonitor probes every session each interval and evicts the ones
// whose last liveness is older than pongTimeout or whose probe fails.
type HeartbeatMonitor struct {
	log         *slog.Logger
	sessions    contract.ISessionRegistry
	interval    time.Duration
	pongTimeout time.Duration
	now         func() time.Time
}

func NewHeartbeatMonitor(log *slog.Logger, sessions contract.ISessionRegistry,
	interval, pongTimeout time.Duration) *HeartbeatMonitor {
	return &HeartbeatMonitor{
		log:         log,
		sessions:    sessions,
		interval:    interval,
		pongTimeout: pongTimeout,
		now:         time.Now,
	}
}

func (w *HeartbeatMonitor) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat monitor", "interval", w.interval, "pong_timeout", w.pongTimeout)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Sweep(ctx, w.now())
		}
	}
}

// Sweep runs one probe cycle against a snapshot of the registry and returns the evicted sessions.
// No lock is held while probing.
func (w *HeartbeatMonitor) Sweep(ctx context.Context, now time.Time) []chat.SessionID {
	var (
		mu      sync.Mutex
		evicted []chat.SessionID
		g       errgroup.Group
	)
	g.SetLimit(maxConcurrentProbes)

	evict := func(s chat.Session, cause string, err error) {
		if !w.sessions.Evict(s.ID, chat.CloseLivenessTimeout, observability.EvictLiveness) {
			return
		}
		w.log.Warn("Session evicted", "session_id", s.ID, "user_id", s.UserID, "cause", cause, "error", err)
		mu.Lock()
		evicted = append(evicted, s.ID)
		mu.Unlock()
	}

	for _, s := range w.sessions.Snapshot() {
		if now.Sub(s.LastLiveness) > w.pongTimeout {
			evict(s, "pong timeout", nil)
			continue
		}
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, w.interval)
			defer cancel()
			if err := s.Transport.Ping(probeCtx); err != nil {
				evict(s, "probe failed", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return evicted
}
