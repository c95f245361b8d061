// Package realtime holds the in-memory presence and fan-out layers. Nothing
// here is durable; both structures are rebuilt empty on process restart.
package realtime

import (
	"hash/fnv"
	"log/slog"
	"sync"

	"gaming-hub/contract"
)

const presenceShards = 32

// OfflineFunc is invoked exactly once when a user's live-connection count
// transitions from 1 to 0.
type OfflineFunc func(userID string)

// Presence maps user ids to their set of live connections. The map is
// sharded by user id so traffic on distinct users does not contend.
// Connections for one user accumulate; a second connect from the same
// identity never displaces the first.
type Presence struct {
	log       *slog.Logger
	onOffline OfflineFunc
	shards    [presenceShards]presenceShard

	mu     sync.Mutex
	owners map[contract.Conn]string // handle -> user id, for disconnect by handle
}

type presenceShard struct {
	mu    sync.RWMutex
	users map[string]map[contract.Conn]struct{}
}

func NewPresence(log *slog.Logger, onOffline OfflineFunc) *Presence {
	p := &Presence{
		log:       log,
		onOffline: onOffline,
		owners:    make(map[contract.Conn]string),
	}
	for i := range p.shards {
		p.shards[i].users = make(map[string]map[contract.Conn]struct{})
	}
	return p
}

func (p *Presence) shard(userID string) *presenceShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &p.shards[h.Sum32()%presenceShards]
}

// Connect registers a live connection for userID. The shard entry is written
// before the owner mapping so a Disconnect racing on the same handle always
// finds the shard entry it has to remove.
func (p *Presence) Connect(userID string, c contract.Conn) {
	s := p.shard(userID)
	s.mu.Lock()
	set, ok := s.users[userID]
	if !ok {
		set = make(map[contract.Conn]struct{})
		s.users[userID] = set
	}
	set[c] = struct{}{}
	s.mu.Unlock()

	p.mu.Lock()
	p.owners[c] = userID
	p.mu.Unlock()

	p.log.Debug("connection registered", "user_id", userID)
}

// Disconnect removes the connection by handle, whichever user it belongs to.
// The offline signal fires only when the user's last connection goes away.
func (p *Presence) Disconnect(c contract.Conn) {
	p.mu.Lock()
	userID, ok := p.owners[c]
	if ok {
		delete(p.owners, c)
	}
	p.mu.Unlock()
	if !ok {
		return
	}

	s := p.shard(userID)
	s.mu.Lock()
	wentOffline := false
	if set, exists := s.users[userID]; exists {
		delete(set, c)
		if len(set) == 0 {
			delete(s.users, userID)
			wentOffline = true
		}
	}
	s.mu.Unlock()

	if wentOffline {
		p.log.Debug("user went offline", "user_id", userID)
		if p.onOffline != nil {
			p.onOffline(userID)
		}
	}
}

// LiveConnections returns a snapshot of the user's live connection handles.
func (p *Presence) LiveConnections(userID string) []contract.Conn {
	s := p.shard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.users[userID]
	if !ok {
		return nil
	}
	conns := make([]contract.Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}
