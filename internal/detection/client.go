package detection

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type ClientConfig struct {
	DetectorURL string
	Timeout     time.Duration
}

// Client talks to the PPE inference sidecar. The sidecar loads the model
// once; this client is shared and safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.DetectorURL,
		logger:     logger.With("component", "detector-client"),
	}
}

type detectRequest struct {
	Image               string  `json:"image"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

type detectResponse struct {
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Detections []RawDetection `json:"detections"`
}

// Detect runs inference on the given image bytes. Any failure (corrupt
// image, sidecar error, timeout) yields an empty detection list and a log
// entry; it never surfaces an error to the pipeline.
func (c *Client) Detect(ctx context.Context, image []byte, confidenceThreshold float64) ([]RawDetection, int, int) {
	if len(image) == 0 {
		c.logger.Warn("empty frame, skipping inference")
		return nil, 0, 0
	}

	reqBody := detectRequest{
		Image:               base64.StdEncoding.EncodeToString(image),
		ConfidenceThreshold: confidenceThreshold,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		c.logger.Error("marshal detect request failed", "error", err)
		return nil, 0, 0
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/detect", bytes.NewReader(body))
	if err != nil {
		c.logger.Error("create detect request failed", "error", err)
		return nil, 0, 0
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("detector request failed", "error", err)
		return nil, 0, 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("detector returned non-OK status", "status", resp.StatusCode)
		return nil, 0, 0
	}

	var detectResp detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&detectResp); err != nil {
		c.logger.Error("decode detector response failed", "error", err)
		return nil, 0, 0
	}

	return detectResp.Detections, detectResp.Width, detectResp.Height
}

// IsAvailable probes the sidecar health endpoint.
func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
