package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // artwork requested with {f}=webp
)

// ImageService resizes and re-encodes artwork.
//
// Example usage:
//
//	svc := NewImageService()
//	out, ext, err := svc.Process(ctx, data, ImageOptions{MaxSize: 1000, JPEG: true})
type ImageService struct {
	quality int
}

// ImageOptions select what Process does to an image.
type ImageOptions struct {
	// MaxSize bounds both edges; zero keeps the original size.
	MaxSize int

	// JPEG forces JPEG output. Otherwise PNG input stays PNG and
	// everything else becomes JPEG.
	JPEG bool
}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{quality: 90}
}

// Process decodes data, scales it down to fit opts.MaxSize and encodes the
// result. It returns the encoded bytes and the matching file extension.
//
// Catalog artwork templates ask the server for a given size already, so
// scaling is only needed when a dictionary carries its own larger size.
func (s *ImageService) Process(ctx context.Context, data []byte, opts ImageOptions) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}

	if opts.MaxSize > 0 {
		img = s.fit(img, opts.MaxSize, opts.MaxSize)
	}

	var buf bytes.Buffer
	if format == "png" && !opts.JPEG {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ".png", nil
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), ".jpg", nil
}

// fit scales img down with Catmull-Rom when it exceeds the bounds.
func (s *ImageService) fit(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxWidth && height <= maxHeight {
		return img
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		width = max(1, int(float64(maxHeight)*ratio))
		height = maxHeight
	} else {
		height = max(1, int(float64(maxWidth)/ratio))
		width = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
