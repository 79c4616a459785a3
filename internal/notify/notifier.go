// Package notify persists notifications and pushes them to recipients
// best-effort. Delivery failures never propagate into the operation that
// triggered the notification.
package notify

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/pipcrest/tradejournal/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// Dispatcher stores a notification row and sends an FCM push to the
// recipient's per-user topic. It implements social.Notifier.
type Dispatcher struct {
	repo      repositories.NotificationRepository
	messaging *messaging.Client
	log       *logrus.Logger
}

// NewDispatcher creates a Dispatcher. messaging may be nil, in which case
// only the notification row is written.
func NewDispatcher(repo repositories.NotificationRepository, messagingClient *messaging.Client, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, messaging: messagingClient, log: log}
}

// Notify persists the notification and pushes it. The row write is the
// primary effect; a push failure is logged and swallowed.
func (d *Dispatcher) Notify(ctx context.Context, n models.Notification) error {
	if err := d.repo.CreateNotification(&n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if d.messaging == nil {
		return nil
	}
	msg := &messaging.Message{
		Topic: "user-" + n.RecipientID,
		Notification: &messaging.Notification{
			Title: pushTitle(n.Type),
			Body:  n.Message,
		},
		Data: map[string]string{
			"type":        n.Type,
			"actor_id":    n.ActorID,
			"target_id":   n.TargetID,
			"target_type": n.TargetType,
		},
	}
	if _, err := d.messaging.Send(ctx, msg); err != nil {
		d.log.WithError(err).WithField("recipient", n.RecipientID).Warn("push delivery failed")
	}
	return nil
}

func pushTitle(notifType string) string {
	switch notifType {
	case models.NotificationFriendRequest:
		return "New friend request"
	case models.NotificationRequestAccepted:
		return "Friend request accepted"
	case models.NotificationComment:
		return "New comment"
	case models.NotificationReaction:
		return "New reaction"
	default:
		return "Notification"
	}
}
