package imageprocessor

import (
	"image"
	"image/color"
	"reflect"

	"golang.org/x/image/draw"
)

// newLike allocates a zeroed image with the same pixel model as src.
// Models that cannot be drawn into (YCbCr, custom types) return false.
func newLike(src image.Image, r image.Rectangle) (draw.Image, bool) {
	switch m := src.(type) {
	case *image.Gray:
		return image.NewGray(r), true
	case *image.Gray16:
		return image.NewGray16(r), true
	case *image.Alpha:
		return image.NewAlpha(r), true
	case *image.Alpha16:
		return image.NewAlpha16(r), true
	case *image.RGBA:
		return image.NewRGBA(r), true
	case *image.NRGBA:
		return image.NewNRGBA(r), true
	case *image.RGBA64:
		return image.NewRGBA64(r), true
	case *image.NRGBA64:
		return image.NewNRGBA64(r), true
	case *image.CMYK:
		return image.NewCMYK(r), true
	case *image.Paletted:
		palette := make(color.Palette, len(m.Palette))
		copy(palette, m.Palette)
		return image.NewPaletted(r, palette), true
	default:
		return nil, false
	}
}

// conformModel converts a resampled image back to the pixel model of the
// image it was produced from, so a grayscale or paletted file keeps its
// mode when it is written back.
func conformModel(src, resampled image.Image) image.Image {
	if reflect.TypeOf(src) == reflect.TypeOf(resampled) {
		return resampled
	}
	if _, ok := src.(*image.YCbCr); ok {
		return resampled
	}
	return redraw(src, resampled)
}

func redraw(model, img image.Image) image.Image {
	b := img.Bounds()
	dst, ok := newLike(model, image.Rect(0, 0, b.Dx(), b.Dy()))
	if !ok {
		return img
	}
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// toNRGBA converts an image whose model has no flat byte layout
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
