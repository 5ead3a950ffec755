package worker

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/safesight/safesight-backend/internal/identity"
	"github.com/safesight/safesight-backend/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	store := NewStore(db, nil)
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func testEncoding() shared.Float64Slice {
	enc := make(shared.Float64Slice, identity.EncodingSize)
	for i := range enc {
		enc[i] = 0.5
	}
	return enc
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	w := &Worker{
		EmployeeID:     "EMP-001",
		Name:           "Dana Reyes",
		Department:     "Assembly",
		Role:           shared.RoleWorker,
		FaceEncoding:   testEncoding(),
		FacePhotoValid: true,
		RequiredPPE:    shared.StringSlice{"hardHat", "vest"},
		IsActive:       true,
	}
	if err := store.Create(ctx, w); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if w.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := store.GetByID(ctx, w.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Dana Reyes" || len(got.FaceEncoding) != identity.EncodingSize {
		t.Errorf("unexpected worker: %+v", got)
	}
	if len(got.RequiredPPE) != 2 {
		t.Errorf("required PPE not round-tripped: %v", got.RequiredPPE)
	}

	byEmp, err := store.GetByEmployeeID(ctx, "EMP-001")
	if err != nil || byEmp.ID != w.ID {
		t.Errorf("GetByEmployeeID = %v, %v", byEmp, err)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetByID(context.Background(), "nope"); err != shared.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDuplicateEmployeeID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, &Worker{EmployeeID: "EMP-001", Name: "A"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := store.Create(ctx, &Worker{EmployeeID: "EMP-001", Name: "B"}); err == nil {
		t.Error("expected unique constraint violation")
	}
}

func TestStoreListActiveOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Create(ctx, &Worker{EmployeeID: "EMP-001", Name: "Active", IsActive: true})
	store.Create(ctx, &Worker{EmployeeID: "EMP-002", Name: "Gone", IsActive: false})

	all, err := store.List(ctx, false)
	if err != nil || len(all) != 2 {
		t.Fatalf("List all = %d, %v", len(all), err)
	}

	active, err := store.List(ctx, true)
	if err != nil || len(active) != 1 || active[0].Name != "Active" {
		t.Fatalf("List active = %v, %v", active, err)
	}
}

func TestStoreUpdateAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	w := &Worker{EmployeeID: "EMP-001", Name: "Before", IsActive: true}
	store.Create(ctx, w)

	w.Name = "After"
	if err := store.Update(ctx, w); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := store.GetByID(ctx, w.ID)
	if got.Name != "After" {
		t.Errorf("name = %s", got.Name)
	}

	if err := store.Delete(ctx, w.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, w.ID); err != shared.ErrNotFound {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestStoreGalleryEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Create(ctx, &Worker{
		EmployeeID: "EMP-001", Name: "Enrolled",
		FaceEncoding: testEncoding(), FacePhotoValid: true, IsActive: true,
	})
	store.Create(ctx, &Worker{
		EmployeeID: "EMP-002", Name: "No photo", IsActive: true,
	})
	store.Create(ctx, &Worker{
		EmployeeID: "EMP-003", Name: "Inactive",
		FaceEncoding: testEncoding(), FacePhotoValid: true, IsActive: false,
	})

	entries, err := store.GalleryEntries(ctx)
	if err != nil {
		t.Fatalf("GalleryEntries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Enrolled" {
		t.Fatalf("expected only the enrolled active worker, got %v", entries)
	}
	if len(entries[0].Encoding) != identity.EncodingSize {
		t.Errorf("encoding size = %d", len(entries[0].Encoding))
	}
}

func TestStoreEmbeddingOpsWithoutQdrant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertEmbedding(ctx, "w1", testEncoding()); err == nil {
		t.Error("expected error without qdrant client")
	}
	if _, err := store.SearchByEmbedding(ctx, testEncoding(), 5); err == nil {
		t.Error("expected error without qdrant client")
	}
}
