// Package notify turns domain events into durable notifications and triggers
// best-effort real-time delivery.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gaming-hub/contract"
	"gaming-hub/domain"
	"gaming-hub/domain/event"
	"gaming-hub/observability"
	"gaming-hub/realtime"
	"gaming-hub/repositories"
)

// Event is a domain occurrence that materially affects users other than the
// actor. One notification is produced per recipient.
type Event struct {
	Type         domain.NotificationType
	SenderID     string // empty for system notifications
	RecipientIDs []string
	Title        string
	Message      string
	SessionID    string // optional related session
}

type IDispatcher interface {
	Dispatch(ctx context.Context, evt Event) error
}

type Dispatcher struct {
	log           *slog.Logger
	notifications repositories.INotificationRepository
	presence      contract.PresenceRegistry
	router        contract.Router
	monitor       *observability.Monitor
}

func NewDispatcher(log *slog.Logger, notifications repositories.INotificationRepository,
	presence contract.PresenceRegistry, router contract.Router,
	monitor *observability.Monitor) *Dispatcher {
	return &Dispatcher{
		log:           log,
		notifications: notifications,
		presence:      presence,
		router:        router,
		monitor:       monitor,
	}
}

// Dispatch persists one notification per recipient, then pushes a
// notification:received event to each recipient's private topic if they have
// any live connection. Durability takes priority: the record is written
// before any delivery attempt, and delivery failures never surface to the
// caller. Recipients are independent; a failure for one never blocks the
// rest.
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) error {
	var errs []error
	for _, recipientID := range evt.RecipientIDs {
		notification := &domain.Notification{
			ID:               uuid.NewString(),
			RecipientID:      recipientID,
			SenderID:         evt.SenderID,
			Type:             evt.Type,
			Title:            evt.Title,
			Message:          evt.Message,
			RelatedSessionID: evt.SessionID,
			CreatedAt:        time.Now().UTC(),
		}

		if err := d.notifications.Create(ctx, notification); err != nil {
			d.log.Error("failed to persist notification",
				"recipient_id", recipientID,
				"type", evt.Type,
				"err", err)
			errs = append(errs, fmt.Errorf("recipient %s: %w", recipientID, err))
			continue
		}
		d.monitor.IncrDeliveredDurable()

		d.deliver(notification)
	}
	return errors.Join(errs...)
}

// deliver is the best-effort live push. No live connection means the
// notification simply waits in the store until the user fetches it.
func (d *Dispatcher) deliver(n *domain.Notification) {
	if len(d.presence.LiveConnections(n.RecipientID)) == 0 {
		return
	}

	payload, err := event.Encode(event.NotificationReceived, n)
	if err != nil {
		d.log.Error("failed to encode notification event", "notification_id", n.ID, "err", err)
		return
	}
	d.router.Publish(realtime.UserTopic(n.RecipientID), payload)
	d.monitor.IncrDeliveredLive()
}
