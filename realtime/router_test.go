package realtime

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Unsubscribed_Connection_Receives_Nothing_Further(t *testing.T) {
	req := require.New(t)
	r := NewRouter(slog.Default())
	c := &recordingConn{}

	r.Subscribe(c, "session:42")
	r.Publish("session:42", []byte("e1"))
	r.Unsubscribe(c, "session:42")
	r.Publish("session:42", []byte("e2"))

	req.Equal([]string{"e1"}, c.received())
}

func Test_Publish_Preserves_Order_Per_Subscriber(t *testing.T) {
	req := require.New(t)
	r := NewRouter(slog.Default())
	c := &recordingConn{}

	r.Subscribe(c, "user:alice")
	for i := 0; i < 20; i++ {
		r.Publish("user:alice", []byte(fmt.Sprintf("e%d", i)))
	}

	got := c.received()
	req.Len(got, 20)
	for i, payload := range got {
		req.Equal(fmt.Sprintf("e%d", i), payload)
	}
}

func Test_Publish_Without_Subscribers_Drops_Event(t *testing.T) {
	req := require.New(t)
	r := NewRouter(slog.Default())

	// Must not panic nor leak a topic entry.
	r.Publish("session:ghost", []byte("e1"))

	c := &recordingConn{}
	r.Subscribe(c, "session:ghost")
	r.Publish("session:ghost", []byte("e2"))
	req.Equal([]string{"e2"}, c.received())
}

func Test_UnsubscribeAll_Clears_Every_Topic(t *testing.T) {
	req := require.New(t)
	r := NewRouter(slog.Default())
	c := &recordingConn{}
	other := &recordingConn{}

	r.Subscribe(c, "user:alice")
	r.Subscribe(c, "session:1")
	r.Subscribe(other, "session:1")

	r.UnsubscribeAll(c)
	r.Publish("user:alice", []byte("e1"))
	r.Publish("session:1", []byte("e2"))

	req.Empty(c.received())
	req.Equal([]string{"e2"}, other.received())
}

func Test_Concurrent_Publish_Distinct_Topics(t *testing.T) {
	req := require.New(t)
	r := NewRouter(slog.Default())

	const topics = 20
	conns := make([]*recordingConn, topics)
	for i := range conns {
		conns[i] = &recordingConn{}
		r.Subscribe(conns[i], fmt.Sprintf("session:%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < topics; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				r.Publish(fmt.Sprintf("session:%d", i), []byte(fmt.Sprintf("e%d", j)))
			}
		}(i)
	}
	wg.Wait()

	for i, c := range conns {
		got := c.received()
		req.Len(got, 10, "topic %d", i)
		for j, payload := range got {
			req.Equal(fmt.Sprintf("e%d", j), payload)
		}
	}
}
