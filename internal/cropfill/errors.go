package cropfill

import "errors"

var (
	ErrFileNotFound        = errors.New("image file not found")
	ErrInvalidImageData    = errors.New("no usable image data in file")
	ErrUnsupportedFormat   = errors.New("unsupported image format")
	ErrQualityUnsupported  = errors.New("quality is only defined for JPEG images")
	ErrInvalidQuality      = errors.New("quality must be in range 1-100")
	ErrMissingDimensions   = errors.New("at least one target dimension must be provided")
	ErrZeroSourceDimension = errors.New("source image has a zero dimension")
	ErrEmptyEncodeResult   = errors.New("encoder produced no output")
)

// ResizeError wraps any failure inside the resize pipeline. The original
// error stays reachable through Unwrap for errors.Is/As inspection.
type ResizeError struct {
	Summary string
	Cause   error
}

func (e *ResizeError) Error() string {
	return e.Summary + ": " + e.Cause.Error()
}

func (e *ResizeError) Unwrap() error {
	return e.Cause
}

func resizeFailed(summary string, cause error) *ResizeError {
	return &ResizeError{Summary: summary, Cause: cause}
}
