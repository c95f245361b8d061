package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitor_TracksPeakConnections(t *testing.T) {
	req := require.New(t)
	m := NewMonitor()

	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()

	stats := m.Snapshot()
	req.EqualValues(2, stats.Connections)
	req.EqualValues(3, stats.PeakConnections)
}

func TestMonitor_ConcurrentCounters(t *testing.T) {
	req := require.New(t)
	m := NewMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrMessagesSent()
			m.IncrDeliveredDurable()
			m.ConnectionOpened()
		}()
	}
	wg.Wait()

	stats := m.Snapshot()
	req.EqualValues(50, stats.MessagesSent)
	req.EqualValues(50, stats.DeliveredDurable)
	req.EqualValues(50, stats.Connections)
	req.EqualValues(50, stats.PeakConnections)
}

func TestMonitor_NilReceiverIsSafe(t *testing.T) {
	var m *Monitor
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.IncrMessagesSent()
	m.IncrDeliveredLive()
	m.IncrDeliveredDurable()
	m.IncrFramesDropped()
	require.Zero(t, m.Snapshot())
}
