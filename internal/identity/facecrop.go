package identity

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/safesight/safesight-backend/internal/detection"
)

const (
	// Faces sit in the upper half of a standing person's box.
	faceHeightRatio = 0.5
	// Horizontal padding keeps turned heads inside the crop.
	faceWidthPadding = 0.15
	// Crops larger than this are downscaled before encoding.
	maxCropDimension = 512
)

// FaceRegion computes the face crop rectangle for a person box: the top half
// of the box, widened by 15% on each side and clamped to the image bounds.
func FaceRegion(box detection.PixelBox, imgWidth, imgHeight int) image.Rectangle {
	width := box.X2 - box.X1
	pad := width * faceWidthPadding

	x1 := int(box.X1 - pad)
	x2 := int(box.X2 + pad)
	y1 := int(box.Y1)
	y2 := int(box.Y1 + (box.Y2-box.Y1)*faceHeightRatio)

	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > imgWidth {
		x2 = imgWidth
	}
	if y2 > imgHeight {
		y2 = imgHeight
	}

	return image.Rect(x1, y1, x2, y2)
}

// CropFace extracts the face region from a frame as JPEG bytes, downscaling
// large crops so the encoder sidecar gets a bounded payload.
func CropFace(frame []byte, box detection.PixelBox) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	bounds := img.Bounds()
	region := FaceRegion(box, bounds.Dx(), bounds.Dy())
	if region.Empty() {
		return nil, fmt.Errorf("face region is empty for box %+v", box)
	}

	crop := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	xdraw.Copy(crop, image.Point{}, img, region, xdraw.Src, nil)

	out := scaleDown(crop)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode face crop: %w", err)
	}
	return buf.Bytes(), nil
}

func scaleDown(img *image.RGBA) image.Image {
	b := img.Bounds()
	longest := b.Dx()
	if b.Dy() > longest {
		longest = b.Dy()
	}
	if longest <= maxCropDimension {
		return img
	}

	scale := float64(maxCropDimension) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0,
		int(float64(b.Dx())*scale), int(float64(b.Dy())*scale)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
