package violation

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/safesight/safesight-backend/internal/detection"
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

	store := NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func strPtr(s string) *string { return &s }

func TestStoreAppendAndListViolations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []*ViolationRecord{
		{WorkerID: strPtr("w1"), Severity: detection.SeverityCritical, MissingPPE: shared.StringSlice{"hardHat"}},
		{WorkerID: strPtr("w1"), Severity: detection.SeverityLow, MissingPPE: shared.StringSlice{"gloves"}},
		{WorkerID: strPtr("w2"), Severity: detection.SeverityCritical, MissingPPE: shared.StringSlice{"steelToedBoots"}},
	}
	for _, r := range records {
		if err := store.AppendViolation(ctx, r); err != nil {
			t.Fatalf("AppendViolation failed: %v", err)
		}
		if r.ID == "" || r.Status != StatusActive {
			t.Fatalf("unexpected record after append: %+v", r)
		}
	}

	all, err := store.ListViolations(ctx, ViolationFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("list all = %d, %v", len(all), err)
	}

	byWorker, _ := store.ListViolations(ctx, ViolationFilter{WorkerID: "w1"})
	if len(byWorker) != 2 {
		t.Errorf("worker filter = %d records", len(byWorker))
	}

	bySeverity, _ := store.ListViolations(ctx, ViolationFilter{Severity: string(detection.SeverityCritical)})
	if len(bySeverity) != 2 {
		t.Errorf("severity filter = %d records", len(bySeverity))
	}

	future := time.Now().Add(time.Hour)
	none, _ := store.ListViolations(ctx, ViolationFilter{From: &future})
	if len(none) != 0 {
		t.Errorf("future from filter = %d records", len(none))
	}
}

func TestStoreResolve(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := &ViolationRecord{WorkerID: strPtr("w1"), Severity: detection.SeverityHigh}
	store.AppendViolation(ctx, r)

	resolved, err := store.Resolve(ctx, r.ID, "supervisor-3")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Status != StatusResolved || resolved.ResolvedAt == nil || resolved.ResolvedBy != "supervisor-3" {
		t.Errorf("unexpected resolved record: %+v", resolved)
	}

	if _, err := store.Resolve(ctx, r.ID, "again"); err != shared.ErrConflict {
		t.Errorf("double resolve = %v, want ErrConflict", err)
	}
	if _, err := store.Resolve(ctx, "vio_missing", "x"); err != shared.ErrNotFound {
		t.Errorf("missing resolve = %v, want ErrNotFound", err)
	}
}

func TestStoreActiveCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := &ViolationRecord{Severity: detection.SeverityLow}
	b := &ViolationRecord{Severity: detection.SeverityLow}
	store.AppendViolation(ctx, a)
	store.AppendViolation(ctx, b)
	store.Resolve(ctx, a.ID, "x")

	count, err := store.ActiveCount(ctx)
	if err != nil || count != 1 {
		t.Errorf("ActiveCount = %d, %v", count, err)
	}
}

func TestStoreDetectionRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := &DetectionRecord{
		FrameID:       "frame-1",
		WorkerID:      strPtr("w1"),
		OverallStatus: detection.OverallPartial,
		DetectedPPE:   shared.StringSlice{"hardHat"},
		MissingPPE:    shared.StringSlice{"vest"},
		BoundingBox:   shared.Float64Slice{0.1, 0.2, 0.3, 0.4},
		Confidence:    0.91,
	}
	if err := store.AppendDetection(ctx, r); err != nil {
		t.Fatalf("AppendDetection failed: %v", err)
	}

	records, err := store.ListDetections(ctx, 10)
	if err != nil || len(records) != 1 {
		t.Fatalf("ListDetections = %d, %v", len(records), err)
	}
	got := records[0]
	if got.FrameID != "frame-1" || len(got.BoundingBox) != 4 || got.MissingPPE[0] != "vest" {
		t.Errorf("unexpected record: %+v", got)
	}
}
