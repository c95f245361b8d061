package realtime

import (
	"fmt"
	"log/slog"
	"sync"

	"gaming-hub/contract"
)

// Topic name helpers. Private topics carry per-user delivery, session topics
// carry room-style fan-out, and PresenceTopic is the global broadcast channel
// every identified connection joins.
const PresenceTopic = "presence"

func UserTopic(userID string) string       { return "user:" + userID }
func SessionTopic(sessionID string) string { return "session:" + sessionID }

// Router fans events out to the connections subscribed to a topic.
//
// It provides best-effort delivery with no durability or retries: an event
// published to a topic with zero subscribers is dropped. Router is not a
// message broker.
//
// Per topic, each publish delivers under the topic lock, so a subscriber
// receives events in publish order (FIFO) and an unsubscribe that completes
// before a publish starts excludes that connection from it. No ordering is
// guaranteed across different topics.
//
// Router is safe for concurrent use by multiple goroutines; distinct topics
// do not contend.
type Router struct {
	log *slog.Logger

	mu     sync.RWMutex
	topics map[string]*topic
	byConn map[contract.Conn]map[string]struct{}
}

type topic struct {
	mu   sync.Mutex
	subs map[contract.Conn]struct{}
}

func NewRouter(log *slog.Logger) *Router {
	return &Router{
		log:    log,
		topics: make(map[string]*topic),
		byConn: make(map[contract.Conn]map[string]struct{}),
	}
}

// Subscribe adds c to the topic, creating the topic on the fly.
func (r *Router) Subscribe(c contract.Conn, name string) {
	r.mu.Lock()
	t, ok := r.topics[name]
	if !ok {
		t = &topic{subs: make(map[contract.Conn]struct{})}
		r.topics[name] = t
	}
	if _, ok := r.byConn[c]; !ok {
		r.byConn[c] = make(map[string]struct{})
	}
	r.byConn[c][name] = struct{}{}
	r.mu.Unlock()

	t.mu.Lock()
	t.subs[c] = struct{}{}
	t.mu.Unlock()
}

// Unsubscribe removes c from the topic. Once it returns, no later Publish on
// that topic will deliver to c. Empty topics are removed entirely so the map
// does not leak over time.
func (r *Router) Unsubscribe(c contract.Conn, name string) {
	r.mu.Lock()
	t, ok := r.topics[name]
	if !ok {
		r.mu.Unlock()
		return
	}
	if names, exists := r.byConn[c]; exists {
		delete(names, name)
		if len(names) == 0 {
			delete(r.byConn, c)
		}
	}
	r.mu.Unlock()

	t.mu.Lock()
	delete(t.subs, c)
	empty := len(t.subs) == 0
	t.mu.Unlock()

	if empty {
		r.mu.Lock()
		// Re-check under the map lock: someone may have subscribed meanwhile.
		if cur, ok := r.topics[name]; ok && cur == t {
			t.mu.Lock()
			if len(t.subs) == 0 {
				delete(r.topics, name)
			}
			t.mu.Unlock()
		}
		r.mu.Unlock()
	}
}

// UnsubscribeAll drops every subscription held by c. Called on disconnect.
func (r *Router) UnsubscribeAll(c contract.Conn) {
	r.mu.RLock()
	names := make([]string, 0, len(r.byConn[c]))
	for name := range r.byConn[c] {
		names = append(names, name)
	}
	r.mu.RUnlock()

	for _, name := range names {
		r.Unsubscribe(c, name)
	}
}

// Publish fans payload out to every connection subscribed to the topic at
// the moment of the call. Sends go through each connection's own queue and
// never block the publisher.
func (r *Router) Publish(name string, payload []byte) {
	r.mu.RLock()
	t, ok := r.topics[name]
	r.mu.RUnlock()
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for c := range t.subs {
		if err := c.Send(payload); err != nil {
			r.log.Warn(fmt.Sprintf("Dropping event on topic %s", name), "err", err)
		}
	}
}
