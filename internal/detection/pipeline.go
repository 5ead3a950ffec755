package detection

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Resolver attaches a worker identity to a detected person, or nil when the
// face is absent or no gallery entry is close enough.
type Resolver interface {
	ResolveWorker(ctx context.Context, frame []byte, personBox PixelBox, imgWidth, imgHeight int) *string
}

// Pipeline runs the full per-frame flow: inference, PPE association,
// compliance classification and identity resolution.
type Pipeline struct {
	detector *Client
	resolver Resolver
	logger   *slog.Logger
}

func NewPipeline(detector *Client, resolver Resolver, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		detector: detector,
		resolver: resolver,
		logger:   logger.With("component", "detection-pipeline"),
	}
}

// Process analyzes one frame. It never fails: inference errors degrade to an
// empty result so a bad frame cannot take down the session.
func (p *Pipeline) Process(ctx context.Context, frame []byte, required []PPEType, confidenceThreshold float64) Result {
	result := Result{
		FrameID:    uuid.NewString(),
		Detections: []PersonDetection{},
	}

	detections, imgWidth, imgHeight := p.detector.Detect(ctx, frame, confidenceThreshold)
	if len(detections) == 0 || imgWidth <= 0 || imgHeight <= 0 {
		return result
	}

	for _, d := range detections {
		if d.ClassID != personClassID {
			continue
		}

		associated := Associate(d.Box, detections)
		statuses, overall := Classify(associated, required)

		var workerID *string
		if p.resolver != nil {
			workerID = p.resolver.ResolveWorker(ctx, frame, d.Box, imgWidth, imgHeight)
		}

		person := PersonDetection{
			WorkerID:      workerID,
			BoundingBox:   NormalizeBox(d.Box, imgWidth, imgHeight),
			PPEStatus:     statuses,
			OverallStatus: overall,
			Confidence:    d.Confidence,
		}

		result.Detections = append(result.Detections, person)
		result.Detected++
		if overall == OverallCompliant {
			result.Compliant++
		} else {
			result.NonCompliant++
		}
	}

	return result
}
