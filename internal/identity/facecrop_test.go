package identity

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/safesight/safesight-backend/internal/detection"
)

func TestFaceRegionGeometry(t *testing.T) {
	box := detection.PixelBox{X1: 100, Y1: 50, X2: 300, Y2: 450}
	region := FaceRegion(box, 640, 480)

	// Width 200, pad 30 on each side; top half of height 400.
	want := image.Rect(70, 50, 330, 250)
	if region != want {
		t.Errorf("expected %v, got %v", want, region)
	}
}

func TestFaceRegionClampsToImageBounds(t *testing.T) {
	box := detection.PixelBox{X1: -10, Y1: -20, X2: 650, Y2: 500}
	region := FaceRegion(box, 640, 480)

	if region.Min.X != 0 || region.Min.Y != 0 {
		t.Errorf("expected origin clamp, got %v", region.Min)
	}
	if region.Max.X != 640 {
		t.Errorf("expected right edge clamped to 640, got %d", region.Max.X)
	}
	if region.Max.Y > 480 {
		t.Errorf("expected bottom within image, got %d", region.Max.Y)
	}
}

func testFrame(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test frame: %v", err)
	}
	return buf.Bytes()
}

func TestCropFaceProducesExpectedDimensions(t *testing.T) {
	frame := testFrame(t, 640, 480)
	box := detection.PixelBox{X1: 100, Y1: 50, X2: 300, Y2: 450}

	crop, err := CropFace(frame, box)
	if err != nil {
		t.Fatalf("CropFace failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(crop))
	if err != nil {
		t.Fatalf("decode crop: %v", err)
	}
	if img.Bounds().Dx() != 260 || img.Bounds().Dy() != 200 {
		t.Errorf("expected 260x200 crop, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCropFaceDownscalesLargeCrops(t *testing.T) {
	frame := testFrame(t, 2000, 1500)
	box := detection.PixelBox{X1: 0, Y1: 0, X2: 1600, Y2: 1500}

	crop, err := CropFace(frame, box)
	if err != nil {
		t.Fatalf("CropFace failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(crop))
	if err != nil {
		t.Fatalf("decode crop: %v", err)
	}
	if img.Bounds().Dx() > maxCropDimension || img.Bounds().Dy() > maxCropDimension {
		t.Errorf("crop not downscaled: %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCropFaceRejectsGarbage(t *testing.T) {
	if _, err := CropFace([]byte("not an image"), detection.PixelBox{X1: 0, Y1: 0, X2: 10, Y2: 10}); err == nil {
		t.Error("expected decode error for garbage input")
	}
}
