package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pupil-detect-mcp/internal/geometry"
)

// EncodedImage is an image encoded as base64 PNG for MCP responses.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropROI copies the ROI of img into a new zero-origin image.
//
// ROI coordinates are absolute in img's coordinate space. The ROI must lie
// inside img's bounds.
func CropROI(img image.Image, roi geometry.ROI) (*image.NRGBA, error) {
	if err := roi.Validate(img.Bounds()); err != nil {
		return nil, fmt.Errorf("crop: %w", err)
	}
	return imaging.Crop(img, roi.Rect()), nil
}

// ToGray converts img to a zero-origin 8-bit grayscale image using the
// ITU-R BT.601 luminance weights (0.299*R + 0.587*G + 0.114*B). Gray input is
// copied as is.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	}

	// Grayscale writes the luminance to all three channels.
	lum := imaging.Grayscale(img)
	for y := 0; y < b.Dy(); y++ {
		src := lum.Pix[y*lum.Stride:]
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			row[x] = src[x*4]
		}
	}
	return dst
}

// EncodePNG encodes img as base64 PNG, resized by scale when scale is
// positive and not 1.
func EncodePNG(img image.Image, scale float64) (*EncodedImage, error) {
	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(img.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(img.Bounds().Dy())*scale))
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
