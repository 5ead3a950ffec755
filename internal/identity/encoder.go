package identity

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type EncoderConfig struct {
	EncoderURL string
	Timeout    time.Duration
}

// Encoder talks to the face encoding sidecar. Given a face crop it returns a
// 128-dimensional encoding, or found=false when no face is visible.
type Encoder struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewEncoder(cfg EncoderConfig, logger *slog.Logger) *Encoder {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Encoder{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.EncoderURL,
		logger:     logger.With("component", "encoder-client"),
	}
}

type encodeRequest struct {
	Image string `json:"image"`
}

type encodeResponse struct {
	Found    bool      `json:"found"`
	Encoding []float64 `json:"encoding"`
}

// Encode computes the face encoding for a JPEG image. It returns nil when no
// face is found or the sidecar fails.
func (e *Encoder) Encode(ctx context.Context, image []byte) ([]float64, error) {
	body, err := json.Marshal(encodeRequest{Image: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/v1/encode", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create encode request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("encoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("encoder returned status %d", resp.StatusCode)
	}

	var encodeResp encodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&encodeResp); err != nil {
		return nil, fmt.Errorf("failed to decode encoder response: %w", err)
	}

	if !encodeResp.Found {
		return nil, nil
	}
	if len(encodeResp.Encoding) != EncodingSize {
		return nil, fmt.Errorf("encoder returned %d-dimensional encoding, expected %d",
			len(encodeResp.Encoding), EncodingSize)
	}

	return encodeResp.Encoding, nil
}

// IsAvailable probes the sidecar health endpoint.
func (e *Encoder) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+"/v1/health", nil)
	if err != nil {
		return false
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
