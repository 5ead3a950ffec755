package stream

import (
	"time"

	"github.com/safesight/safesight-backend/internal/detection"
)

const (
	TypeConnected     = "connected"
	TypeConfig        = "config"
	TypeConfigUpdated = "config_updated"
	TypePing          = "ping"
	TypePong          = "pong"
	TypeDetection     = "detection"
	TypeError         = "error"
)

// Config is a session's detection settings. Updates apply to frames received
// after the update, never retroactively.
type Config struct {
	RequiredPPE         []detection.PPEType `json:"required_ppe"`
	ConfidenceThreshold float64             `json:"confidence_threshold"`
}

func DefaultConfig() Config {
	return Config{
		RequiredPPE: []detection.PPEType{
			detection.PPEHardHat,
			detection.PPEVest,
			detection.PPEGloves,
			detection.PPESteelToedBoots,
		},
		ConfidenceThreshold: 0.5,
	}
}

// controlMessage is the inbound JSON shape. Optional fields stay nil when the
// client omits them, so partial config updates leave the rest untouched.
type controlMessage struct {
	Type                string               `json:"type"`
	RequiredPPE         *[]detection.PPEType `json:"required_ppe"`
	ConfidenceThreshold *float64             `json:"confidence_threshold"`
}

type connectedMessage struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Config    Config    `json:"config"`
	Timestamp time.Time `json:"timestamp"`
}

type configUpdatedMessage struct {
	Type      string    `json:"type"`
	Config    Config    `json:"config"`
	Timestamp time.Time `json:"timestamp"`
}

type pongMessage struct {
	Type string `json:"type"`
}

type errorMessage struct {
	Type        string  `json:"type"`
	FrameNumber *uint64 `json:"frame_number,omitempty"`
	Message     string  `json:"message"`
}

type detectionMessage struct {
	Type         string                      `json:"type"`
	FrameID      string                      `json:"frame_id"`
	FrameNumber  uint64                      `json:"frame_number"`
	Detected     int                         `json:"detected"`
	Compliant    int                         `json:"compliant"`
	NonCompliant int                         `json:"non_compliant"`
	Detections   []detection.PersonDetection `json:"detections"`
	Timestamp    time.Time                   `json:"timestamp"`
}
