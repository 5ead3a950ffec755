package identity

import (
	"fmt"
	"sync"
	"testing"
)

func makeEncoding(fill float64) []float64 {
	enc := make([]float64, EncodingSize)
	for i := range enc {
		enc[i] = fill
	}
	return enc
}

// encodingAtDistance returns a vector exactly d away from base.
func encodingAtDistance(base []float64, d float64) []float64 {
	enc := make([]float64, EncodingSize)
	copy(enc, base)
	enc[0] += d
	return enc
}

func TestGalleryResolveStrictThreshold(t *testing.T) {
	g := NewGallery(DefaultMatchThreshold, nil)
	base := makeEncoding(0.1)
	if !g.AddWorker("wrk_1", "Dana", base) {
		t.Fatal("enrollment failed")
	}

	if m := g.Resolve(encodingAtDistance(base, 0.59)); m == nil || m.WorkerID != "wrk_1" {
		t.Errorf("expected match at distance 0.59, got %v", m)
	}
	if m := g.Resolve(encodingAtDistance(base, 0.6)); m != nil {
		t.Errorf("distance exactly at threshold must not match, got %v", m)
	}
	if m := g.Resolve(encodingAtDistance(base, 0.61)); m != nil {
		t.Errorf("distance above threshold must not match, got %v", m)
	}
}

func TestGalleryResolvePicksClosest(t *testing.T) {
	g := NewGallery(DefaultMatchThreshold, nil)
	base := makeEncoding(0.2)
	g.AddWorker("wrk_far", "Far", encodingAtDistance(base, 0.5))
	g.AddWorker("wrk_near", "Near", encodingAtDistance(base, 0.1))

	m := g.Resolve(base)
	if m == nil || m.WorkerID != "wrk_near" {
		t.Fatalf("expected wrk_near, got %v", m)
	}
}

func TestGalleryEmptyAndBadInput(t *testing.T) {
	g := NewGallery(DefaultMatchThreshold, nil)

	if m := g.Resolve(makeEncoding(0)); m != nil {
		t.Errorf("empty gallery must not match, got %v", m)
	}
	if g.AddWorker("wrk_1", "Dana", make([]float64, 64)) {
		t.Error("wrong dimensionality must be rejected")
	}
	if g.Size() != 0 {
		t.Errorf("rejected enrollment must leave gallery empty, size=%d", g.Size())
	}
	if m := g.Resolve(make([]float64, 64)); m != nil {
		t.Errorf("wrong-size query must not match, got %v", m)
	}
}

func TestGalleryAddWorkerReplacesExisting(t *testing.T) {
	g := NewGallery(DefaultMatchThreshold, nil)
	g.AddWorker("wrk_1", "Dana", makeEncoding(0.1))
	g.AddWorker("wrk_1", "Dana", makeEncoding(0.9))

	if g.Size() != 1 {
		t.Fatalf("expected 1 entry after re-enrollment, got %d", g.Size())
	}
	if m := g.Resolve(makeEncoding(0.9)); m == nil || m.WorkerID != "wrk_1" {
		t.Errorf("expected match against replaced encoding, got %v", m)
	}
}

func TestGalleryRetrainAll(t *testing.T) {
	g := NewGallery(DefaultMatchThreshold, nil)
	g.AddWorker("wrk_old", "Old", makeEncoding(0.1))

	n := g.RetrainAll([]Entry{
		{WorkerID: "wrk_a", Name: "A", Encoding: makeEncoding(0.2)},
		{WorkerID: "wrk_bad", Name: "Bad", Encoding: make([]float64, 3)},
		{WorkerID: "wrk_b", Name: "B", Encoding: makeEncoding(0.4)},
	})

	if n != 2 || g.Size() != 2 {
		t.Fatalf("expected 2 valid entries, got n=%d size=%d", n, g.Size())
	}
	if m := g.Resolve(makeEncoding(0.1)); m != nil && m.WorkerID == "wrk_old" {
		t.Error("retrain must drop entries absent from the new set")
	}
}

func TestGalleryConcurrentResolveAndRetrain(t *testing.T) {
	g := NewGallery(DefaultMatchThreshold, nil)
	g.AddWorker("wrk_1", "Dana", makeEncoding(0.1))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.Resolve(makeEncoding(0.1))
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				g.RetrainAll([]Entry{
					{WorkerID: fmt.Sprintf("wrk_%d", i), Name: "W", Encoding: makeEncoding(float64(j) * 0.01)},
				})
			}
		}(i)
	}
	wg.Wait()

	if g.Size() != 1 {
		t.Errorf("expected 1 entry after concurrent retrains, got %d", g.Size())
	}
}
