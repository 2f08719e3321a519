package cropfill

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// encode serializes img in the given format. Quality applies to JPEG only,
// PNG and GIF are lossless. A zero-length result is reported as
// ErrEmptyEncodeResult and any partial output is dropped with the buffer.
func encode(img image.Image, format imaging.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case imaging.JPEG:
		err = imaging.Encode(&buf, img, format, imaging.JPEGQuality(quality))
	case imaging.PNG, imaging.GIF:
		err = imaging.Encode(&buf, img, format)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %v: %w", format, err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyEncodeResult
	}

	return buf.Bytes(), nil
}
