// Package observability aggregates live delivery counters for the hub.
// Counters are cheap atomics; a snapshot is taken on demand by the stats
// endpoint and the heartbeat worker. All methods tolerate a nil receiver so
// callers never have to guard the wiring.
package observability

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Stats is one point-in-time view of the hub.
type Stats struct {
	Connections      int64  `json:"connections"`
	PeakConnections  int64  `json:"peak_connections"`
	MessagesSent     uint64 `json:"messages_sent"`
	DeliveredLive    uint64 `json:"delivered_live"`
	DeliveredDurable uint64 `json:"delivered_durable"`
	FramesDropped    uint64 `json:"frames_dropped"`
	AllocMemMb       uint64 `json:"alloc_mem_mb"`
	NumGC            uint32 `json:"num_gc"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
}

type Monitor struct {
	startedAt time.Time

	connections     int64
	peakConnections int64

	messagesSent     uint64
	deliveredLive    uint64
	deliveredDurable uint64
	framesDropped    uint64
}

func NewMonitor() *Monitor {
	return &Monitor{startedAt: time.Now()}
}

func (m *Monitor) ConnectionOpened() {
	if m == nil {
		return
	}
	current := atomic.AddInt64(&m.connections, 1)
	for {
		peak := atomic.LoadInt64(&m.peakConnections)
		if current <= peak || atomic.CompareAndSwapInt64(&m.peakConnections, peak, current) {
			return
		}
	}
}

func (m *Monitor) ConnectionClosed() {
	if m == nil {
		return
	}
	atomic.AddInt64(&m.connections, -1)
}

func (m *Monitor) IncrMessagesSent() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.messagesSent, 1)
}

func (m *Monitor) IncrDeliveredLive() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.deliveredLive, 1)
}

func (m *Monitor) IncrDeliveredDurable() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.deliveredDurable, 1)
}

func (m *Monitor) IncrFramesDropped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.framesDropped, 1)
}

func (m *Monitor) Snapshot() Stats {
	if m == nil {
		return Stats{}
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Stats{
		Connections:      atomic.LoadInt64(&m.connections),
		PeakConnections:  atomic.LoadInt64(&m.peakConnections),
		MessagesSent:     atomic.LoadUint64(&m.messagesSent),
		DeliveredLive:    atomic.LoadUint64(&m.deliveredLive),
		DeliveredDurable: atomic.LoadUint64(&m.deliveredDurable),
		FramesDropped:    atomic.LoadUint64(&m.framesDropped),
		AllocMemMb:       mem.Alloc / 1024 / 1024,
		NumGC:            mem.NumGC,
		UptimeSeconds:    int64(time.Since(m.startedAt).Seconds()),
	}
}
