//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
)

// Conn is a live client connection handle. Send queues an encoded event for
// delivery to that client; it must never block the caller. A full outbound
// queue drops the event (best-effort delivery only).
type Conn interface {
	Send(payload []byte) error
}

// PresenceRegistry tracks which connections are currently live for each
// user. A user may hold several connections at once (multiple open clients).
type PresenceRegistry interface {
	Connect(userID string, c Conn)
	Disconnect(c Conn)
	LiveConnections(userID string) []Conn
}

// Router is a topic-based fan-out layer over live connections. Events
// published to a topic with no subscribers are dropped; durability is the
// store's responsibility, not the router's.
type Router interface {
	Subscribe(c Conn, topic string)
	Unsubscribe(c Conn, topic string)
	UnsubscribeAll(c Conn)
	Publish(topic string, payload []byte)
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
