package identity

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

// EncodingSize is the dimensionality of a face encoding vector.
const EncodingSize = 128

// DefaultMatchThreshold is the euclidean distance below which a face is
// considered the same person. A distance equal to the threshold is a miss.
const DefaultMatchThreshold = 0.6

// Entry is one enrolled worker in the gallery.
type Entry struct {
	WorkerID string
	Name     string
	Encoding []float64
}

// Match is a successful gallery lookup.
type Match struct {
	WorkerID string
	Name     string
	Distance float64
}

type snapshot struct {
	entries []Entry
}

// Gallery is the in-memory face index used on the hot path. Lookups read an
// immutable snapshot without locking; mutations build a new snapshot and swap
// it in, serialized by mu.
type Gallery struct {
	current   atomic.Pointer[snapshot]
	mu        sync.Mutex
	threshold float64
	logger    *slog.Logger
}

func NewGallery(threshold float64, logger *slog.Logger) *Gallery {
	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	g := &Gallery{
		threshold: threshold,
		logger:    logger.With("component", "face-gallery"),
	}
	g.current.Store(&snapshot{})
	return g
}

// Resolve returns the closest enrolled worker strictly under the match
// threshold, or nil when the gallery is empty or nothing is close enough.
func (g *Gallery) Resolve(encoding []float64) *Match {
	if len(encoding) != EncodingSize {
		return nil
	}

	snap := g.current.Load()
	if len(snap.entries) == 0 {
		return nil
	}

	best := math.Inf(1)
	var bestEntry *Entry
	for i := range snap.entries {
		d := euclidean(encoding, snap.entries[i].Encoding)
		if d < best {
			best = d
			bestEntry = &snap.entries[i]
		}
	}

	if bestEntry == nil || best >= g.threshold {
		return nil
	}

	return &Match{
		WorkerID: bestEntry.WorkerID,
		Name:     bestEntry.Name,
		Distance: best,
	}
}

// AddWorker enrolls or replaces one worker's encoding. It returns false when
// the encoding has the wrong dimensionality, leaving the gallery unchanged.
func (g *Gallery) AddWorker(workerID, name string, encoding []float64) bool {
	if len(encoding) != EncodingSize {
		g.logger.Warn("rejecting encoding with wrong dimensionality",
			"worker_id", workerID, "size", len(encoding))
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	old := g.current.Load()
	entries := make([]Entry, 0, len(old.entries)+1)
	for _, e := range old.entries {
		if e.WorkerID != workerID {
			entries = append(entries, e)
		}
	}
	entries = append(entries, Entry{WorkerID: workerID, Name: name, Encoding: encoding})

	g.current.Store(&snapshot{entries: entries})
	g.logger.Info("worker enrolled", "worker_id", workerID, "gallery_size", len(entries))
	return true
}

// RemoveWorker drops a worker's enrollment if present.
func (g *Gallery) RemoveWorker(workerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	old := g.current.Load()
	entries := make([]Entry, 0, len(old.entries))
	for _, e := range old.entries {
		if e.WorkerID != workerID {
			entries = append(entries, e)
		}
	}
	g.current.Store(&snapshot{entries: entries})
}

// RetrainAll atomically replaces the whole gallery. In-flight lookups keep
// reading the snapshot they started with.
func (g *Gallery) RetrainAll(entries []Entry) int {
	valid := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if len(e.Encoding) == EncodingSize {
			valid = append(valid, e)
		}
	}

	g.mu.Lock()
	g.current.Store(&snapshot{entries: valid})
	g.mu.Unlock()

	g.logger.Info("gallery retrained", "entries", len(valid), "skipped", len(entries)-len(valid))
	return len(valid)
}

// Size returns the number of enrolled workers.
func (g *Gallery) Size() int {
	return len(g.current.Load().entries)
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
