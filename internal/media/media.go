// Package media normalizes uploaded images before they are stored.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

var ErrNotImage = errors.New("content is not a decodable image")

// Variant is the target shape of a stored image.
type Variant struct {
	Width  int
	Height int
	// Crop fills the exact size centred on the image; otherwise the image
	// is only scaled down to fit.
	Crop bool
}

var (
	PostImage    = Variant{Width: 960, Height: 960}
	ProfilePhoto = Variant{Width: 300, Height: 300, Crop: true}
)

const jpegQuality = 85

// Image is an encoded image ready for storage.
type Image struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Normalize decodes r, applies v and re-encodes in the format named by ext.
// EXIF orientation is applied so the stored pixels are upright.
func Normalize(r io.Reader, ext string, v Variant) (*Image, error) {
	format, err := imaging.FormatFromExtension(strings.TrimPrefix(ext, "."))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, ext)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	if v.Crop {
		img = imaging.Fill(img, v.Width, v.Height, imaging.Center, imaging.Lanczos)
	} else {
		img = imaging.Fit(img, v.Width, v.Height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	b := img.Bounds()
	return &Image{
		Data:        buf.Bytes(),
		ContentType: contentType(format),
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

func contentType(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.PNG:
		return "image/png"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}
