package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"gaming-hub/observability"
)

// HeartbeatWorker periodically logs the process's own CPU and memory usage
// plus the hub's delivery counters. It is the cheap always-on health signal;
// anything fancier belongs to an external scraper.
type HeartbeatWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitor *observability.Monitor, interval time.Duration) *HeartbeatWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HeartbeatWorker{log: log, monitor: monitor, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			stats := w.monitor.Snapshot()
			w.log.Info("heartbeat",
				"pid", os.Getpid(),
				"status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"connections", stats.Connections,
				"messages_sent", stats.MessagesSent,
				"delivered_durable", stats.DeliveredDurable,
				"delivered_live", stats.DeliveredLive,
				"frames_dropped", stats.FramesDropped)
		}
	}
}

// selfStats retrieves memory, CPU and OS status for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
