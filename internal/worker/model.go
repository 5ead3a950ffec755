package worker

import (
	"time"

	"github.com/safesight/safesight-backend/internal/detection"
	"github.com/safesight/safesight-backend/internal/shared"
)

type Worker struct {
	ID         string      `gorm:"primaryKey" json:"id"`
	EmployeeID string      `gorm:"uniqueIndex;not null" json:"employee_id"`
	Name       string      `gorm:"not null" json:"name"`
	Department string      `json:"department,omitempty"`
	Role       shared.Role `gorm:"default:'worker'" json:"role"`

	FaceEncoding   shared.Float64Slice `gorm:"type:json" json:"-"`
	FacePhotoValid bool                `gorm:"default:false" json:"face_photo_valid"`

	RequiredPPE shared.StringSlice `gorm:"type:json" json:"required_ppe"`
	IsActive    bool               `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequiredPPETypes converts the stored strings into the detection taxonomy.
func (w *Worker) RequiredPPETypes() []detection.PPEType {
	types := make([]detection.PPEType, len(w.RequiredPPE))
	for i, s := range w.RequiredPPE {
		types[i] = detection.PPEType(s)
	}
	return types
}
