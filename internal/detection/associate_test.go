package detection

import "testing"

func TestAssociateRequiresPositiveIntersection(t *testing.T) {
	person := PixelBox{X1: 0, Y1: 0, X2: 100, Y2: 200}

	detections := []RawDetection{
		{ClassID: 1, Confidence: 0.9, Box: PixelBox{X1: 100, Y1: 0, X2: 150, Y2: 50}},
		{ClassID: 4, Confidence: 0.9, Box: PixelBox{X1: 300, Y1: 300, X2: 350, Y2: 350}},
	}

	associated := Associate(person, detections)
	if len(associated) != 0 {
		t.Fatalf("expected no associations, got %v", associated)
	}
}

func TestAssociateKeepsHighestConfidence(t *testing.T) {
	person := PixelBox{X1: 0, Y1: 0, X2: 100, Y2: 200}

	detections := []RawDetection{
		{ClassID: 1, Confidence: 0.4, Box: PixelBox{X1: 10, Y1: 0, X2: 60, Y2: 30}},
		{ClassID: 1, Confidence: 0.8, Box: PixelBox{X1: 30, Y1: 0, X2: 80, Y2: 30}},
	}

	associated := Associate(person, detections)
	got, ok := associated[PPEHardHat]
	if !ok {
		t.Fatal("expected hardHat association")
	}
	if got.Confidence != 0.8 {
		t.Errorf("expected confidence 0.8, got %v", got.Confidence)
	}
}

func TestAssociateSkipsPersonAndUnknownClasses(t *testing.T) {
	person := PixelBox{X1: 0, Y1: 0, X2: 100, Y2: 200}

	detections := []RawDetection{
		{ClassID: personClassID, Confidence: 0.95, Box: person},
		{ClassID: 42, Confidence: 0.9, Box: PixelBox{X1: 10, Y1: 10, X2: 50, Y2: 50}},
	}

	associated := Associate(person, detections)
	if len(associated) != 0 {
		t.Fatalf("expected no associations, got %v", associated)
	}
}

func TestAssociateSharedItemAssociatesWithBothPersons(t *testing.T) {
	left := PixelBox{X1: 0, Y1: 0, X2: 100, Y2: 200}
	right := PixelBox{X1: 80, Y1: 0, X2: 180, Y2: 200}
	vest := RawDetection{ClassID: 4, Confidence: 0.7, Box: PixelBox{X1: 70, Y1: 50, X2: 110, Y2: 120}}

	detections := []RawDetection{vest}

	if _, ok := Associate(left, detections)[PPEVest]; !ok {
		t.Error("expected vest associated with left person")
	}
	if _, ok := Associate(right, detections)[PPEVest]; !ok {
		t.Error("expected vest associated with right person")
	}
}
