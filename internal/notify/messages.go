package notify

import (
	"time"

	"github.com/safesight/safesight-backend/internal/detection"
	"github.com/safesight/safesight-backend/internal/shared"
)

const (
	TypeConnected         = "connected"
	TypeViolationNotice   = "violation_notification"
	TypeViolationResolved = "violation_resolved"
	TypeSystemAlert       = "system_alert"
	TypePing              = "ping"
	TypePong              = "pong"
	TypeMarkRead          = "mark_read"
)

const (
	GroupAdmins     = "admins"
	GroupMonitoring = "monitoring"
)

// Envelope is the wire shape of every notification pushed to clients.
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ViolationAlert is the payload of a violation_notification message. Each
// event carries its own notification id, distinct from the persisted
// violation record id.
type ViolationAlert struct {
	NotificationID string              `json:"notification_id"`
	ViolationID    string              `json:"violation_id"`
	WorkerID       *string             `json:"worker_id"`
	WorkerName     string              `json:"worker_name,omitempty"`
	MissingPPE     []detection.PPEType `json:"missing_ppe"`
	RequiredPPE    []detection.PPEType `json:"required_ppe"`
	Severity       string              `json:"severity"`
	ImageURL       *string             `json:"image_url"`
	Message        string              `json:"message"`
}

// ResolvedAlert is the payload of a violation_resolved message.
type ResolvedAlert struct {
	ViolationID string  `json:"violation_id"`
	WorkerID    *string `json:"worker_id"`
	ResolvedBy  string  `json:"resolved_by,omitempty"`
}

// SystemAlert is the payload of a system_alert broadcast.
type SystemAlert struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// WorkerGroup returns the private notification group of one worker.
func WorkerGroup(workerID string) string {
	return "worker_" + workerID
}

// GroupsForRole maps a client's role to the groups it may subscribe to.
// Workers only see their own private group; every monitoring role sees the
// shared admin and monitoring feeds.
func GroupsForRole(role shared.Role, workerID string) []string {
	if role == shared.RoleWorker {
		if workerID == "" {
			return nil
		}
		return []string{WorkerGroup(workerID)}
	}
	if role.Monitoring() {
		return []string{GroupAdmins, GroupMonitoring}
	}
	return nil
}

// CalculateSeverity grades a violation for notification purposes: high when
// at least half the required items are missing, low otherwise. No required
// items means nothing can be missing, so low.
func CalculateSeverity(missing, required []detection.PPEType) string {
	if len(required) == 0 {
		return "low"
	}
	if float64(len(missing))/float64(len(required)) >= 0.5 {
		return "high"
	}
	return "low"
}
