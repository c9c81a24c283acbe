package imageprocessor

import "image"

// padTo4 rounds n up to the next multiple of 4
func padTo4(n int) int {
	if n%4 == 0 {
		return n
	}
	return n + (4 - n%4)
}

// PaddedSize returns the dimensions an image is padded to
func PaddedSize(width, height int) (int, int) {
	return padTo4(width), padTo4(height)
}

// raster is the flat byte layout shared by the standard library image types
type raster struct {
	pix    []byte
	stride int
	bpp    int
}

func rasterOf(img image.Image) (raster, bool) {
	switch m := img.(type) {
	case *image.Gray:
		return raster{m.Pix, m.Stride, 1}, true
	case *image.Alpha:
		return raster{m.Pix, m.Stride, 1}, true
	case *image.Paletted:
		return raster{m.Pix, m.Stride, 1}, true
	case *image.Gray16:
		return raster{m.Pix, m.Stride, 2}, true
	case *image.Alpha16:
		return raster{m.Pix, m.Stride, 2}, true
	case *image.RGBA:
		return raster{m.Pix, m.Stride, 4}, true
	case *image.NRGBA:
		return raster{m.Pix, m.Stride, 4}, true
	case *image.CMYK:
		return raster{m.Pix, m.Stride, 4}, true
	case *image.RGBA64:
		return raster{m.Pix, m.Stride, 8}, true
	case *image.NRGBA64:
		return raster{m.Pix, m.Stride, 8}, true
	default:
		return raster{}, false
	}
}

// PadToMultipleOf4 grows img so both dimensions are multiples of 4 by
// repeating the last column to the right and then the last row downwards.
// When no padding is needed img itself is returned and padded is false.
// The result keeps the pixel model of img; YCbCr and other models without a
// flat byte layout are converted to NRGBA first.
func PadToMultipleOf4(img image.Image) (result image.Image, padded bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	nw, nh := PaddedSize(w, h)
	if (nw == w && nh == h) || w == 0 || h == 0 {
		return img, false
	}

	src, ok := rasterOf(img)
	if !ok {
		img = toNRGBA(img)
		src, _ = rasterOf(img)
	}

	out, _ := newLike(img, image.Rect(0, 0, nw, nh))
	dst, _ := rasterOf(out)
	replicateEdges(dst, src, w, h, nw, nh)
	return out, true
}

// replicateEdges copies the w x h source into the top-left of dst, fills
// columns w..nw-1 of every row with that row's last pixel, then fills rows
// h..nh-1 with copies of the (already widened) last row. The corner region
// therefore repeats the bottom-right source pixel.
func replicateEdges(dst, src raster, w, h, nw, nh int) {
	bpp := src.bpp
	rowBytes := w * bpp
	fullBytes := nw * bpp

	for y := 0; y < h; y++ {
		row := dst.pix[y*dst.stride : y*dst.stride+fullBytes]
		copy(row[:rowBytes], src.pix[y*src.stride:y*src.stride+rowBytes])

		last := row[rowBytes-bpp : rowBytes]
		for x := w; x < nw; x++ {
			copy(row[x*bpp:(x+1)*bpp], last)
		}
	}

	lastRow := dst.pix[(h-1)*dst.stride : (h-1)*dst.stride+fullBytes]
	for y := h; y < nh; y++ {
		copy(dst.pix[y*dst.stride:y*dst.stride+fullBytes], lastRow)
	}
}
