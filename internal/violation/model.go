package violation

import (
	"time"

	"github.com/safesight/safesight-backend/internal/detection"
	"github.com/safesight/safesight-backend/internal/shared"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// DetectionRecord is one person observed in one frame.
type DetectionRecord struct {
	ID       string  `gorm:"primaryKey" json:"id"`
	FrameID  string  `gorm:"index" json:"frame_id"`
	WorkerID *string `gorm:"index" json:"worker_id"`

	OverallStatus detection.OverallStatus `gorm:"index" json:"overall_status"`
	DetectedPPE   shared.StringSlice      `gorm:"type:json" json:"detected_ppe"`
	MissingPPE    shared.StringSlice      `gorm:"type:json" json:"missing_ppe"`
	BoundingBox   shared.Float64Slice     `gorm:"type:json" json:"bounding_box"`
	Confidence    float64                 `json:"confidence"`

	CreatedAt time.Time `json:"created_at"`
}

// ViolationRecord is one non-compliance event raised for a person.
type ViolationRecord struct {
	ID         string  `gorm:"primaryKey" json:"id"`
	FrameID    string  `gorm:"index" json:"frame_id"`
	WorkerID   *string `gorm:"index" json:"worker_id"`
	WorkerName string  `json:"worker_name,omitempty"`

	MissingPPE shared.StringSlice `gorm:"type:json" json:"missing_ppe"`
	Severity   detection.Severity `gorm:"index" json:"severity"`
	Status     Status             `gorm:"index;default:'active'" json:"status"`

	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
