package detection

import "time"

// PPEType is the app-facing name of a protective equipment item.
type PPEType string

const (
	PPEHardHat        PPEType = "hardHat"
	PPEVest           PPEType = "vest"
	PPEGloves         PPEType = "gloves"
	PPESteelToedBoots PPEType = "steelToedBoots"
	PPESafetyGlasses  PPEType = "safetyGlasses"
	PPEEarProtection  PPEType = "earProtection"
)

// Model class taxonomy. Class 2 is the person anchor class; ids outside the
// map are dropped.
const personClassID = 2

var classTaxonomy = map[int]PPEType{
	0: PPEGloves,
	1: PPEHardHat,
	3: PPESteelToedBoots,
	4: PPEVest,
}

// unsupportedPPE lists types the app knows about but the model cannot detect.
var unsupportedPPE = map[PPEType]bool{
	PPESafetyGlasses: true,
	PPEEarProtection: true,
}

// Unsupported reports whether the model taxonomy covers the given type.
func Unsupported(t PPEType) bool {
	return unsupportedPPE[t]
}

type ItemStatus string

const (
	StatusCompliant    ItemStatus = "compliant"
	StatusNonCompliant ItemStatus = "nonCompliant"
)

type OverallStatus string

const (
	OverallCompliant    OverallStatus = "compliant"
	OverallPartial      OverallStatus = "partial"
	OverallNonCompliant OverallStatus = "nonCompliant"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// PixelBox is a detection rectangle in pixel coordinates.
type PixelBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (b PixelBox) Area() float64 {
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}

// IntersectionArea returns the overlap area with other, zero when disjoint.
func (b PixelBox) IntersectionArea(other PixelBox) float64 {
	w := min(b.X2, other.X2) - max(b.X1, other.X1)
	h := min(b.Y2, other.Y2) - max(b.Y1, other.Y1)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// RawDetection is one labeled box from the inference sidecar.
type RawDetection struct {
	ClassID    int      `json:"class_id"`
	Confidence float64  `json:"confidence"`
	Box        PixelBox `json:"box"`
}

// BoundingBox is normalized to [0,1] relative to the image dimensions.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NormalizeBox converts a pixel box into image-relative coordinates.
func NormalizeBox(b PixelBox, imgWidth, imgHeight int) BoundingBox {
	return BoundingBox{
		X:      b.X1 / float64(imgWidth),
		Y:      b.Y1 / float64(imgHeight),
		Width:  (b.X2 - b.X1) / float64(imgWidth),
		Height: (b.Y2 - b.Y1) / float64(imgHeight),
	}
}

// PPEStatus is the per-item compliance entry for one person.
type PPEStatus struct {
	Type         PPEType    `json:"type"`
	Status       ItemStatus `json:"status"`
	LastDetected *time.Time `json:"lastDetected"`
}

// PersonDetection is the assembled result for a single person in a frame.
type PersonDetection struct {
	WorkerID      *string       `json:"workerId"`
	BoundingBox   BoundingBox   `json:"boundingBox"`
	PPEStatus     []PPEStatus   `json:"ppeStatus"`
	OverallStatus OverallStatus `json:"overallStatus"`
	Confidence    float64       `json:"confidence"`
}

// MissingPPE lists the non-compliant types in required order.
func (p PersonDetection) MissingPPE() []PPEType {
	var missing []PPEType
	for _, s := range p.PPEStatus {
		if s.Status != StatusCompliant {
			missing = append(missing, s.Type)
		}
	}
	return missing
}

// Result is the complete detection output for one frame.
type Result struct {
	FrameID      string            `json:"frameId"`
	Detected     int               `json:"detected"`
	Compliant    int               `json:"compliant"`
	NonCompliant int               `json:"nonCompliant"`
	Detections   []PersonDetection `json:"detections"`
}
