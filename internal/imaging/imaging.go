package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"itemViewerBack/internal/models"
)

// MaxFileSize is the largest accepted upload per image.
const MaxFileSize = 5 << 20

// MaxDimension is the largest width or height kept for stored images.
const MaxDimension = 1600

// JPEGQuality is the compression quality for re-encoded images.
const JPEGQuality = 85

// AcceptedMIME lists the accepted input types.
var AcceptedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type ProcessResult struct {
	Data []byte
	MIME string
}

// Process validates an uploaded image by sniffing and decoding it. Images
// within MaxDimension are returned unchanged; larger ones are downscaled and
// re-encoded as JPEG.
func Process(data []byte) (*ProcessResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", models.ErrUnsupportedImage)
	}
	if len(data) > MaxFileSize {
		return nil, models.ErrImageTooLarge
	}

	detected := http.DetectContentType(data)
	if !AcceptedMIME[detected] {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedImage, detected)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding header: %v", models.ErrUnsupportedImage, err)
	}
	if cfg.Width <= MaxDimension && cfg.Height <= MaxDimension {
		return &ProcessResult{Data: data, MIME: detected}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", models.ErrUnsupportedImage, err)
	}
	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return &ProcessResult{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// downscale resizes img so neither side exceeds maxDim, keeping the aspect
// ratio.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
