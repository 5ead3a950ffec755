package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/safesight/safesight-backend/internal/detection"
)

func newTestEncoder(t *testing.T, resp encodeResponse) *Encoder {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/encode":
			json.NewEncoder(w).Encode(resp)
		case "/v1/health":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return NewEncoder(EncoderConfig{EncoderURL: srv.URL}, nil)
}

func TestEncoderEncode(t *testing.T) {
	enc := newTestEncoder(t, encodeResponse{Found: true, Encoding: makeEncoding(0.3)})

	got, err := enc.Encode(context.Background(), []byte("jpeg"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(got) != EncodingSize {
		t.Errorf("expected %d dims, got %d", EncodingSize, len(got))
	}
	if !enc.IsAvailable(context.Background()) {
		t.Error("expected encoder available")
	}
}

func TestEncoderNoFaceFound(t *testing.T) {
	enc := newTestEncoder(t, encodeResponse{Found: false})

	got, err := enc.Encode(context.Background(), []byte("jpeg"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil encoding when no face found, got %v", got)
	}
}

func TestEncoderWrongDimensionality(t *testing.T) {
	enc := newTestEncoder(t, encodeResponse{Found: true, Encoding: make([]float64, 12)})

	if _, err := enc.Encode(context.Background(), []byte("jpeg")); err == nil {
		t.Error("expected error for undersized encoding")
	}
}

func TestResolverEndToEnd(t *testing.T) {
	base := makeEncoding(0.25)
	enc := newTestEncoder(t, encodeResponse{Found: true, Encoding: base})

	gallery := NewGallery(DefaultMatchThreshold, nil)
	gallery.AddWorker("wrk_77", "Sam", encodingAtDistance(base, 0.2))

	resolver := NewResolver(enc, gallery, nil)
	frame := testFrame(t, 320, 240)
	box := detection.PixelBox{X1: 40, Y1: 20, X2: 160, Y2: 220}

	id := resolver.ResolveWorker(context.Background(), frame, box, 320, 240)
	if id == nil || *id != "wrk_77" {
		t.Fatalf("expected wrk_77, got %v", id)
	}
}

func TestResolverSkipsEmptyGallery(t *testing.T) {
	enc := NewEncoder(EncoderConfig{EncoderURL: "http://127.0.0.1:1"}, nil)
	resolver := NewResolver(enc, NewGallery(DefaultMatchThreshold, nil), nil)

	frame := testFrame(t, 320, 240)
	if id := resolver.ResolveWorker(context.Background(), frame, detection.PixelBox{X1: 0, Y1: 0, X2: 100, Y2: 200}, 320, 240); id != nil {
		t.Errorf("expected nil with empty gallery, got %v", id)
	}
}
