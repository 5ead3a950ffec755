package violation

import (
	"context"
	"log/slog"

	"github.com/safesight/safesight-backend/internal/detection"
	"github.com/safesight/safesight-backend/internal/notify"
	"github.com/safesight/safesight-backend/internal/shared"
	"github.com/safesight/safesight-backend/internal/worker"
)

// Reporter persists frame outcomes and raises notifications for
// non-compliant persons. It runs off the session's hot path; every failure
// is logged and swallowed so reporting can never break a stream.
type Reporter struct {
	store    *Store
	workers  *worker.Store
	notifier *notify.Notifier
	logger   *slog.Logger
}

func NewReporter(store *Store, workers *worker.Store, notifier *notify.Notifier, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		store:    store,
		workers:  workers,
		notifier: notifier,
		logger:   logger.With("component", "violation-reporter"),
	}
}

func (r *Reporter) Report(ctx context.Context, result detection.Result, required []detection.PPEType) {
	for _, person := range result.Detections {
		r.recordDetection(ctx, result.FrameID, person)

		if person.OverallStatus == detection.OverallCompliant {
			continue
		}
		r.raiseViolation(ctx, result.FrameID, person, required)
	}
}

func (r *Reporter) recordDetection(ctx context.Context, frameID string, person detection.PersonDetection) {
	detected := make(shared.StringSlice, 0, len(person.PPEStatus))
	missing := make(shared.StringSlice, 0, len(person.PPEStatus))
	for _, s := range person.PPEStatus {
		if s.Status == detection.StatusCompliant {
			detected = append(detected, string(s.Type))
		} else {
			missing = append(missing, string(s.Type))
		}
	}

	record := &DetectionRecord{
		FrameID:       frameID,
		WorkerID:      person.WorkerID,
		OverallStatus: person.OverallStatus,
		DetectedPPE:   detected,
		MissingPPE:    missing,
		BoundingBox: shared.Float64Slice{
			person.BoundingBox.X, person.BoundingBox.Y,
			person.BoundingBox.Width, person.BoundingBox.Height,
		},
		Confidence: person.Confidence,
	}

	if err := r.store.AppendDetection(ctx, record); err != nil {
		r.logger.Error("failed to record detection", "error", err, "frame_id", frameID)
	}
}

func (r *Reporter) raiseViolation(ctx context.Context, frameID string, person detection.PersonDetection, required []detection.PPEType) {
	missing := person.MissingPPE()
	if len(missing) == 0 {
		// Non-compliant with nothing missing happens when no PPE is
		// required; there is no violation to persist or announce.
		return
	}
	workerName := r.lookupName(ctx, person.WorkerID)

	record := &ViolationRecord{
		FrameID:    frameID,
		WorkerID:   person.WorkerID,
		WorkerName: workerName,
		MissingPPE: toStrings(missing),
		Severity:   detection.ViolationSeverity(missing),
	}
	if err := r.store.AppendViolation(ctx, record); err != nil {
		r.logger.Error("failed to record violation", "error", err, "frame_id", frameID)
		return
	}

	r.notifier.SendViolationNotification(ctx, notify.ViolationAlert{
		ViolationID: record.ID,
		WorkerID:    person.WorkerID,
		WorkerName:  workerName,
		MissingPPE:  missing,
		RequiredPPE: required,
		Severity:    notify.CalculateSeverity(missing, required),
	})
}

func (r *Reporter) lookupName(ctx context.Context, workerID *string) string {
	if workerID == nil || r.workers == nil {
		return ""
	}
	w, err := r.workers.GetByID(ctx, *workerID)
	if err != nil {
		return ""
	}
	return w.Name
}

func toStrings(types []detection.PPEType) shared.StringSlice {
	out := make(shared.StringSlice, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
