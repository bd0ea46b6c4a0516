package worker

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

const jpegQuality = 85

// decodeImage reads an original, honouring EXIF orientation.
func decodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// thumbnail scales src down to width, keeping the aspect ratio, and encodes
// it as JPEG. Originals narrower than width keep their own width.
func thumbnail(src image.Image, width int) ([]byte, error) {
	if w := src.Bounds().Dx(); width > w {
		width = w
	}
	resized := imaging.Resize(src, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode %dpx thumbnail: %w", width, err)
	}
	return buf.Bytes(), nil
}
