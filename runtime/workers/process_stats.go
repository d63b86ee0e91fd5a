package workers

import (
	"chirp-hub/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// SessionCounter is satisfied by the membership index.
type SessionCounter interface {
	SessionCount() int
}

// ProcessStatsWorker periodically logs and exports the hub process footprint.
type ProcessStatsWorker struct {
	log      *slog.Logger
	sessions SessionCounter
	metrics  *observability.Metrics
	interval time.Duration
}

func NewProcessStatsWorker(log *slog.Logger, sessions SessionCounter,
	metrics *observability.Metrics, interval time.Duration) *ProcessStatsWorker {
	return &ProcessStatsWorker{log: log, sessions: sessions, metrics: metrics, interval: interval}
}

func (w *ProcessStatsWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.collect(p); err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
			}
		}
	}
}

func (w *ProcessStatsWorker) collect(p *process.Process) error {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return err
	}
	w.metrics.ProcessRSSBytes.Set(float64(memInfo.RSS))
	w.metrics.ProcessCPUPercent.Set(cpuPercent)
	w.log.Debug("Process stats",
		"rss_bytes", memInfo.RSS,
		"cpu_percent", cpuPercent,
		"sessions", w.sessions.SessionCount(),
	)
	return nil
}
