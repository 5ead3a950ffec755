package violation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/safesight/safesight-backend/internal/shared"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&DetectionRecord{}, &ViolationRecord{})
}

func (s *Store) AppendDetection(ctx context.Context, r *DetectionRecord) error {
	if r.ID == "" {
		r.ID = shared.NewID("det_")
	}
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *Store) AppendViolation(ctx context.Context, r *ViolationRecord) error {
	if r.ID == "" {
		r.ID = shared.NewID("vio_")
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	return s.db.WithContext(ctx).Create(r).Error
}

// ViolationFilter narrows ListViolations. Zero values mean "any".
type ViolationFilter struct {
	WorkerID string
	Status   Status
	Severity string
	From     *time.Time
	To       *time.Time
	Limit    int
}

func (s *Store) ListViolations(ctx context.Context, f ViolationFilter) ([]*ViolationRecord, error) {
	q := s.db.WithContext(ctx).Model(&ViolationRecord{})

	if f.WorkerID != "" {
		q = q.Where("worker_id = ?", f.WorkerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var records []*ViolationRecord
	err := q.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

func (s *Store) GetViolation(ctx context.Context, id string) (*ViolationRecord, error) {
	var r ViolationRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &r, err
}

// Resolve marks an active violation resolved. Resolving twice is a conflict.
func (s *Store) Resolve(ctx context.Context, id, resolvedBy string) (*ViolationRecord, error) {
	r, err := s.GetViolation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == StatusResolved {
		return nil, shared.ErrConflict
	}

	now := time.Now().UTC()
	r.Status = StatusResolved
	r.ResolvedAt = &now
	r.ResolvedBy = resolvedBy

	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ListDetections(ctx context.Context, limit int) ([]*DetectionRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var records []*DetectionRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// ActiveCount returns the number of unresolved violations.
func (s *Store) ActiveCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&ViolationRecord{}).
		Where("status = ?", StatusActive).Count(&count).Error
	return count, err
}
