package worker

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"gorm.io/gorm"

	"github.com/safesight/safesight-backend/internal/identity"
	"github.com/safesight/safesight-backend/internal/shared"
)

const embeddingCollection = "worker_faces"

// Store persists workers in Postgres and mirrors face encodings into Qdrant
// for similarity search. The Qdrant client may be nil; embedding operations
// then report it as unconfigured.
type Store struct {
	db     *gorm.DB
	qdrant *qdrant.Client
}

func NewStore(db *gorm.DB, qdrantClient *qdrant.Client) *Store {
	return &Store{
		db:     db,
		qdrant: qdrantClient,
	}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Worker{})
}

func (s *Store) Create(ctx context.Context, w *Worker) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(w).Error; err != nil {
		return err
	}
	return s.mirrorEmbedding(ctx, w)
}

func (s *Store) GetByID(ctx context.Context, id string) (*Worker, error) {
	var w Worker
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &w, err
}

func (s *Store) GetByEmployeeID(ctx context.Context, employeeID string) (*Worker, error) {
	var w Worker
	err := s.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &w, err
}

func (s *Store) List(ctx context.Context, activeOnly bool) ([]*Worker, error) {
	var workers []*Worker
	q := s.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("name").Find(&workers).Error
	return workers, err
}

func (s *Store) Update(ctx context.Context, w *Worker) error {
	if err := s.db.WithContext(ctx).Save(w).Error; err != nil {
		return err
	}
	return s.mirrorEmbedding(ctx, w)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&Worker{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	if s.qdrant != nil {
		_ = s.DeleteEmbedding(ctx, id)
	}
	return nil
}

// GalleryEntries returns the enrollment data for every active worker with a
// valid face photo, in the shape the in-memory gallery loads.
func (s *Store) GalleryEntries(ctx context.Context) ([]identity.Entry, error) {
	var workers []*Worker
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND face_photo_valid = ?", true, true).
		Find(&workers).Error
	if err != nil {
		return nil, err
	}

	entries := make([]identity.Entry, 0, len(workers))
	for _, w := range workers {
		entries = append(entries, identity.Entry{
			WorkerID: w.ID,
			Name:     w.Name,
			Encoding: w.FaceEncoding,
		})
	}
	return entries, nil
}

func (s *Store) mirrorEmbedding(ctx context.Context, w *Worker) error {
	if s.qdrant == nil || !w.FacePhotoValid || len(w.FaceEncoding) == 0 {
		return nil
	}
	return s.UpsertEmbedding(ctx, w.ID, w.FaceEncoding)
}

func (s *Store) UpsertEmbedding(ctx context.Context, workerID string, encoding []float64) error {
	if s.qdrant == nil {
		return errors.New("qdrant client not configured")
	}

	_, err := s.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: embeddingCollection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(workerID),
				Vectors: qdrant.NewVectors(toFloat32(encoding)...),
			},
		},
	})
	return err
}

func (s *Store) DeleteEmbedding(ctx context.Context, workerID string) error {
	if s.qdrant == nil {
		return errors.New("qdrant client not configured")
	}

	_, err := s.qdrant.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: embeddingCollection,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(workerID)),
	})
	return err
}

// SearchByEmbedding finds the workers whose stored encodings are closest to
// the query encoding.
func (s *Store) SearchByEmbedding(ctx context.Context, encoding []float64, limit int) ([]*Worker, error) {
	if s.qdrant == nil {
		return nil, errors.New("qdrant client not configured")
	}

	results, err := s.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: embeddingCollection,
		Query:          qdrant.NewQuery(toFloat32(encoding)...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.Id != nil {
			if id := r.Id.GetUuid(); id != "" {
				ids = append(ids, id)
			}
		}
	}

	if len(ids) == 0 {
		return []*Worker{}, nil
	}

	var workers []*Worker
	err = s.db.WithContext(ctx).Where("id IN ?", ids).Find(&workers).Error
	return workers, err
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
