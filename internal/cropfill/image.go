// Package cropfill loads a raster image from a file and produces aspect-fill
// resized copies: the requested box is filled exactly by cropping excess
// source content instead of letterboxing or stretching. Supported formats are
// JPEG, PNG and GIF; the output format always matches the source.
package cropfill

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// DefaultQuality is used for JPEG encoding when no override is given.
const DefaultQuality = 80

// Image is a decoded source picture. It is immutable after Load and
// exclusively owns its pixel buffer; Resize only reads it, so sequential
// and concurrent Resize calls against one Image are independent.
type Image struct {
	path   string
	width  int
	height int
	format imaging.Format
	src    image.Image
}

// Options are per-call encode options. The zero value (or a nil *Options)
// means defaults. Quality is JPEG-only: requesting it for PNG/GIF fails with
// ErrQualityUnsupported.
type Options struct {
	Quality int
}

// Load reads the file at path, sniffs its format from the content (the file
// name extension is ignored) and fully decodes the pixel data.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidImageData, path)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidImageData, path)
	}

	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	switch format {
	case imaging.JPEG, imaging.PNG, imaging.GIF:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidImageData, path)
	}

	return &Image{
		path:   path,
		width:  cfg.Width,
		height: cfg.Height,
		format: format,
		src:    src,
	}, nil
}

func (im *Image) Width() int { return im.width }

func (im *Image) Height() int { return im.height }

func (im *Image) Format() imaging.Format { return im.format }

func (im *Image) Path() string { return im.path }

// Resize produces a re-encoded copy of the source that fills a width x height
// box, cropping the source as needed to preserve its aspect ratio. A zero
// width or height is derived from the source aspect; both zero is an error.
// Every failure inside the pipeline comes back as a *ResizeError whose cause
// chain keeps the original error.
func (im *Image) Resize(width, height int, opts *Options) ([]byte, error) {
	quality, err := im.resolveQuality(opts)
	if err != nil {
		return nil, resizeFailed("validate encode options", err)
	}

	crop, dstW, dstH, err := computeGeometry(float64(im.width), float64(im.height), width, height)
	if err != nil {
		return nil, resizeFailed(fmt.Sprintf("compute crop geometry for %dx%d", width, height), err)
	}

	// Crop and resample allocate fresh buffers, the source pixels are never
	// touched.
	cropped := imaging.Crop(im.src, crop.rect())
	resampled := imaging.Resize(cropped, dstW, dstH, imaging.Lanczos)

	out, err := encode(resampled, im.format, quality)
	if err != nil {
		return nil, resizeFailed(fmt.Sprintf("encode %dx%d result", dstW, dstH), err)
	}
	return out, nil
}

func (im *Image) resolveQuality(opts *Options) (int, error) {
	if opts == nil || opts.Quality == 0 {
		return DefaultQuality, nil
	}
	if im.format != imaging.JPEG {
		return 0, ErrQualityUnsupported
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidQuality, opts.Quality)
	}
	return opts.Quality, nil
}
