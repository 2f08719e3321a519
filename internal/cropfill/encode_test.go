package cropfill

import (
	"image"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	for _, format := range []imaging.Format{imaging.JPEG, imaging.PNG, imaging.GIF} {
		t.Run(format.String(), func(t *testing.T) {
			out, err := encode(img, format, DefaultQuality)
			require.NoError(t, err)
			require.NotEmpty(t, out)
		})
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	_, err := encode(img, imaging.Format(-1), DefaultQuality)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
