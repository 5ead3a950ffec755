package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/safesight/safesight-backend/internal/detection"
)

// Reporter handles the aftermath of a frame with non-compliant persons:
// record persistence and notification fan-out. Implementations must tolerate
// concurrent calls; the session invokes them fire-and-forget.
type Reporter interface {
	Report(ctx context.Context, result detection.Result, required []detection.PPEType)
}

// Session is the per-connection protocol state machine for the detection
// channel. All methods are driven by the connection's reader goroutine;
// Config is additionally safe for concurrent snapshots.
type Session struct {
	ID string

	pipeline *detection.Pipeline
	pool     *detection.Pool
	logger   *slog.Logger

	mu           sync.Mutex
	config       Config
	frameCounter uint64
}

func NewSession(pipeline *detection.Pipeline, pool *detection.Pool, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()

	return &Session{
		ID:       id,
		pipeline: pipeline,
		pool:     pool,
		logger:   logger.With("session_id", id),
		config:   DefaultConfig(),
	}
}

// Config returns a snapshot of the current session settings.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.config
	cfg.RequiredPPE = append([]detection.PPEType(nil), s.config.RequiredPPE...)
	return cfg
}

// FrameCount returns how many frames the session has accepted.
func (s *Session) FrameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCounter
}

// ConnectedMessage is the acknowledgement sent right after the upgrade.
func (s *Session) ConnectedMessage() any {
	return connectedMessage{
		Type:      TypeConnected,
		SessionID: s.ID,
		Config:    s.Config(),
		Timestamp: time.Now().UTC(),
	}
}

// HandleControl dispatches one inbound text message and returns the response
// to send. Protocol errors never close the session.
func (s *Session) HandleControl(raw []byte) any {
	var msg controlMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errorMessage{Type: TypeError, Message: "Invalid JSON format"}
	}

	switch msg.Type {
	case TypeConfig:
		return s.applyConfig(msg)
	case TypePing:
		return pongMessage{Type: TypePong}
	default:
		return errorMessage{
			Type:    TypeError,
			Message: fmt.Sprintf("Unknown message type: %s", msg.Type),
		}
	}
}

func (s *Session) applyConfig(msg controlMessage) any {
	s.mu.Lock()
	if msg.RequiredPPE != nil {
		s.config.RequiredPPE = append([]detection.PPEType(nil), (*msg.RequiredPPE)...)
	}
	if msg.ConfidenceThreshold != nil {
		s.config.ConfidenceThreshold = *msg.ConfidenceThreshold
	}
	cfg := s.config
	cfg.RequiredPPE = append([]detection.PPEType(nil), s.config.RequiredPPE...)
	s.mu.Unlock()

	s.logger.Info("session config updated",
		"required_ppe", cfg.RequiredPPE,
		"confidence_threshold", cfg.ConfidenceThreshold)

	return configUpdatedMessage{
		Type:      TypeConfigUpdated,
		Config:    cfg,
		Timestamp: time.Now().UTC(),
	}
}

// HandleFrame processes one binary frame through the inference pool and
// returns the message to send plus the raw result for violation reporting.
// The call blocks until the frame's task completes, which keeps detection
// messages in frame order.
func (s *Session) HandleFrame(ctx context.Context, frame []byte) (any, *detection.Result, []detection.PPEType) {
	s.mu.Lock()
	s.frameCounter++
	frameNumber := s.frameCounter
	required := append([]detection.PPEType(nil), s.config.RequiredPPE...)
	threshold := s.config.ConfidenceThreshold
	s.mu.Unlock()

	done := make(chan detection.Result, 1)
	err := s.pool.Submit(func() {
		done <- s.pipeline.Process(ctx, frame, required, threshold)
	})
	if err != nil {
		s.logger.Warn("frame rejected", "frame_number", frameNumber, "error", err)
		return errorMessage{
			Type:        TypeError,
			FrameNumber: &frameNumber,
			Message:     frameErrorText(err),
		}, nil, nil
	}

	result := <-done

	return detectionMessage{
		Type:         TypeDetection,
		FrameID:      result.FrameID,
		FrameNumber:  frameNumber,
		Detected:     result.Detected,
		Compliant:    result.Compliant,
		NonCompliant: result.NonCompliant,
		Detections:   result.Detections,
		Timestamp:    time.Now().UTC(),
	}, &result, required
}

func frameErrorText(err error) string {
	if errors.Is(err, detection.ErrPoolSaturated) {
		return "Detection queue is full, frame dropped"
	}
	return "Frame processing unavailable"
}
