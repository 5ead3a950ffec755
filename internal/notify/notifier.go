package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/safesight/safesight-backend/internal/detection"
	"github.com/safesight/safesight-backend/internal/shared"
)

// Notifier publishes safety events to the groups that need to see them.
// Delivery is fire-and-forget: a failed group publish is logged and the
// remaining groups still receive the event.
type Notifier struct {
	hub    *Hub
	logger *slog.Logger
}

func NewNotifier(hub *Hub, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		hub:    hub,
		logger: logger.With("component", "notifier"),
	}
}

// SendViolationNotification alerts the worker's private group plus the admin
// and monitoring feeds.
func (n *Notifier) SendViolationNotification(ctx context.Context, alert ViolationAlert) {
	if alert.NotificationID == "" {
		alert.NotificationID = shared.NewID("notif_")
	}
	if alert.Message == "" {
		alert.Message = violationMessage(alert.WorkerName, alert.MissingPPE)
	}

	env := Envelope{
		Type:      TypeViolationNotice,
		Data:      alert,
		Timestamp: time.Now().UTC(),
	}

	n.publishAll(ctx, env, violationGroups(alert.WorkerID))
}

// SendAlertResolved tells the admin and monitoring feeds a violation was
// closed. The worker's private group is not notified.
func (n *Notifier) SendAlertResolved(ctx context.Context, resolved ResolvedAlert) {
	env := Envelope{
		Type:      TypeViolationResolved,
		Data:      resolved,
		Timestamp: time.Now().UTC(),
	}

	n.publishAll(ctx, env, []string{GroupAdmins, GroupMonitoring})
}

// SendSystemAlert broadcasts to the admin and monitoring feeds.
func (n *Notifier) SendSystemAlert(ctx context.Context, alert SystemAlert) {
	env := Envelope{
		Type:      TypeSystemAlert,
		Data:      alert,
		Timestamp: time.Now().UTC(),
	}

	n.publishAll(ctx, env, []string{GroupAdmins, GroupMonitoring})
}

func (n *Notifier) publishAll(ctx context.Context, env Envelope, groups []string) {
	for _, group := range groups {
		if err := n.hub.Publish(ctx, group, env); err != nil {
			n.logger.Error("notification publish failed", "group", group, "type", env.Type, "error", err)
		}
	}
}

func violationGroups(workerID *string) []string {
	groups := make([]string, 0, 3)
	if workerID != nil && *workerID != "" {
		groups = append(groups, WorkerGroup(*workerID))
	}
	return append(groups, GroupAdmins, GroupMonitoring)
}

func violationMessage(workerName string, missing []detection.PPEType) string {
	subject := workerName
	if subject == "" {
		subject = "Unidentified worker"
	}

	items := make([]string, len(missing))
	for i, t := range missing {
		items[i] = string(t)
	}
	return fmt.Sprintf("%s is missing required PPE: %s", subject, strings.Join(items, ", "))
}
