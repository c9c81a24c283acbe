//go:build opencv

package opencv

import (
	"image"
	"image/color"
	"testing"

	"imagepad/imageprocessor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResamplerRegistered(t *testing.T) {
	r, err := imageprocessor.GetResampler(Name)
	require.NoError(t, err)
	assert.IsType(t, Resampler{}, r)
}

func TestResampleKeepsGrayscale(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 40, 30))
	for i := range src.Pix {
		src.Pix[i] = uint8(i % 251)
	}

	out, err := Resampler{}.Resample(src, 20, 15)
	require.NoError(t, err)
	assert.IsType(t, &image.Gray{}, out)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 15, out.Bounds().Dy())
}

func TestResampleColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 33, 17))
	for y := 0; y < 17; y++ {
		for x := 0; x < 33; x++ {
			src.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}

	out, err := Resampler{}.Resample(src, 16, 8)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), out.Bounds())

	r, _, _, _ := out.At(8, 4).RGBA()
	assert.InDelta(t, 200, r>>8, 2)
}
