package cropfill

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// writeTestImage encodes a gradient picture to a file and returns its path.
// The gradient keeps JPEG output size sensitive to the quality setting.
func writeTestImage(t *testing.T, name string, w, h int, format imaging.Format) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func decodeConfig(t *testing.T, data []byte) (image.Config, string) {
	t.Helper()

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg, name
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		format     imaging.Format
		fileName   string
		wantFormat imaging.Format
	}{
		{name: "jpeg", format: imaging.JPEG, fileName: "pic.jpg", wantFormat: imaging.JPEG},
		{name: "png", format: imaging.PNG, fileName: "pic.png", wantFormat: imaging.PNG},
		{name: "gif", format: imaging.GIF, fileName: "pic.gif", wantFormat: imaging.GIF},
		{
			// Content sniffing wins over a lying extension.
			name: "gif disguised as jpg", format: imaging.GIF, fileName: "pic.jpg", wantFormat: imaging.GIF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestImage(t, tt.fileName, 80, 60, tt.format)

			im, err := Load(path)
			require.NoError(t, err)
			require.Equal(t, 80, im.Width())
			require.Equal(t, 60, im.Height())
			require.Equal(t, tt.wantFormat, im.Format())
			require.Equal(t, path, im.Path())
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoad_InvalidImageData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.jpg")
	require.NoError(t, os.WriteFile(path, []byte("plain text, no pixels"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidImageData)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeTestImage(t, "pic.bmp", 40, 40, imaging.BMP)

	_, err := Load(path)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestResize_DerivedDimensions(t *testing.T) {
	path := writeTestImage(t, "pic.png", 800, 600, imaging.PNG)
	im, err := Load(path)
	require.NoError(t, err)

	tests := []struct {
		name   string
		width  int
		height int
		wantW  int
		wantH  int
	}{
		{name: "width only", width: 400, wantW: 400, wantH: 300},
		{name: "height only", height: 300, wantW: 400, wantH: 300},
		{name: "square box", width: 400, height: 400, wantW: 400, wantH: 400},
		{name: "explicit box", width: 200, height: 120, wantW: 200, wantH: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := im.Resize(tt.width, tt.height, nil)
			require.NoError(t, err)

			cfg, name := decodeConfig(t, out)
			require.Equal(t, tt.wantW, cfg.Width)
			require.Equal(t, tt.wantH, cfg.Height)
			require.Equal(t, "png", name)
		})
	}
}

func TestResize_MissingDimensions(t *testing.T) {
	path := writeTestImage(t, "pic.jpg", 100, 100, imaging.JPEG)
	im, err := Load(path)
	require.NoError(t, err)

	_, err = im.Resize(0, 0, nil)
	require.ErrorIs(t, err, ErrMissingDimensions)

	var rerr *ResizeError
	require.ErrorAs(t, err, &rerr)
	require.ErrorIs(t, rerr.Cause, ErrMissingDimensions)
}

func TestResize_FormatPreserved(t *testing.T) {
	for _, format := range []imaging.Format{imaging.JPEG, imaging.PNG, imaging.GIF} {
		t.Run(format.String(), func(t *testing.T) {
			path := writeTestImage(t, "pic.img", 300, 200, format)
			im, err := Load(path)
			require.NoError(t, err)

			out, err := im.Resize(150, 100, nil)
			require.NoError(t, err)

			reloaded, err := imaging.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			require.Equal(t, 150, reloaded.Bounds().Dx())
			require.Equal(t, 100, reloaded.Bounds().Dy())

			_, name := decodeConfig(t, out)
			wantName := map[imaging.Format]string{
				imaging.JPEG: "jpeg",
				imaging.PNG:  "png",
				imaging.GIF:  "gif",
			}[format]
			require.Equal(t, wantName, name)
		})
	}
}

func TestResize_QualityOnNonJPEG(t *testing.T) {
	path := writeTestImage(t, "pic.png", 100, 100, imaging.PNG)
	im, err := Load(path)
	require.NoError(t, err)

	_, err = im.Resize(50, 50, &Options{Quality: 90})
	require.ErrorIs(t, err, ErrQualityUnsupported)
}

func TestResize_QualityOutOfRange(t *testing.T) {
	path := writeTestImage(t, "pic.jpg", 100, 100, imaging.JPEG)
	im, err := Load(path)
	require.NoError(t, err)

	_, err = im.Resize(50, 50, &Options{Quality: 150})
	require.ErrorIs(t, err, ErrInvalidQuality)
}

func TestResize_QualityAffectsSizeNotDimensions(t *testing.T) {
	path := writeTestImage(t, "pic.jpg", 400, 300, imaging.JPEG)
	im, err := Load(path)
	require.NoError(t, err)

	low, err := im.Resize(200, 150, &Options{Quality: 10})
	require.NoError(t, err)
	high, err := im.Resize(200, 150, &Options{Quality: 95})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(high), len(low))

	for _, out := range [][]byte{low, high} {
		cfg, _ := decodeConfig(t, out)
		require.Equal(t, 200, cfg.Width)
		require.Equal(t, 150, cfg.Height)
	}
}

func TestResize_SourceUntouched(t *testing.T) {
	path := writeTestImage(t, "pic.png", 200, 100, imaging.PNG)
	im, err := Load(path)
	require.NoError(t, err)

	first, err := im.Resize(100, 100, nil)
	require.NoError(t, err)
	second, err := im.Resize(100, 100, nil)
	require.NoError(t, err)

	// Same input, same geometry, same pixels: resize reads the source
	// buffer without mutating it.
	require.Equal(t, first, second)
	require.Equal(t, 200, im.Width())
	require.Equal(t, 100, im.Height())
}
