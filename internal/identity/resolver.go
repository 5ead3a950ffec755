package identity

import (
	"context"
	"log/slog"

	"github.com/safesight/safesight-backend/internal/detection"
)

// Resolver turns a detected person into a known worker by cropping the face
// region, encoding it and matching against the gallery. Every failure mode
// degrades to an anonymous person; identity is best-effort on the hot path.
type Resolver struct {
	encoder *Encoder
	gallery *Gallery
	logger  *slog.Logger
}

func NewResolver(encoder *Encoder, gallery *Gallery, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		encoder: encoder,
		gallery: gallery,
		logger:  logger.With("component", "identity-resolver"),
	}
}

func (r *Resolver) ResolveWorker(ctx context.Context, frame []byte, personBox detection.PixelBox, imgWidth, imgHeight int) *string {
	if r.gallery.Size() == 0 {
		return nil
	}

	crop, err := CropFace(frame, personBox)
	if err != nil {
		r.logger.Debug("face crop failed", "error", err)
		return nil
	}

	encoding, err := r.encoder.Encode(ctx, crop)
	if err != nil {
		r.logger.Warn("face encoding failed", "error", err)
		return nil
	}
	if encoding == nil {
		return nil
	}

	match := r.gallery.Resolve(encoding)
	if match == nil {
		return nil
	}

	r.logger.Debug("worker resolved", "worker_id", match.WorkerID, "distance", match.Distance)
	return &match.WorkerID
}
