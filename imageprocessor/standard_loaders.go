package imageprocessor

import (
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// EncodeOptions controls the quality settings used when re-encoding
type EncodeOptions struct {
	JPEGQuality    int
	PNGCompression png.CompressionLevel
}

// DefaultEncodeOptions returns the encoder settings used when none are configured
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		JPEGQuality:    95,
		PNGCompression: png.DefaultCompression,
	}
}

// StandardImageCodec handles PNG and JPEG through the imaging package
type StandardImageCodec struct {
	format  FormatType
	target  imaging.Format
	options []imaging.EncodeOption
}

// NewJPEGCodec creates a codec for JPEG files
func NewJPEGCodec(opts EncodeOptions) *StandardImageCodec {
	return &StandardImageCodec{
		format:  FormatJPEG,
		target:  imaging.JPEG,
		options: []imaging.EncodeOption{imaging.JPEGQuality(opts.JPEGQuality)},
	}
}

// NewPNGCodec creates a codec for PNG files
func NewPNGCodec(opts EncodeOptions) *StandardImageCodec {
	return &StandardImageCodec{
		format:  FormatPNG,
		target:  imaging.PNG,
		options: []imaging.EncodeOption{imaging.PNGCompressionLevel(opts.PNGCompression)},
	}
}

// Format reports the container format handled by the codec
func (c *StandardImageCodec) Format() FormatType {
	return c.format
}

// Decode reads an image without applying any orientation changes, so the
// pixel model of the file is kept as decoded.
func (c *StandardImageCodec) Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode %s", c.format)
	}
	return img, nil
}

// Encode writes img in the codec's format
func (c *StandardImageCodec) Encode(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, c.target, c.options...); err != nil {
		return errors.Wrapf(err, "cannot encode %s", c.format)
	}
	return nil
}

// BMPImageCodec handles Windows bitmaps
type BMPImageCodec struct{}

// NewBMPCodec creates a codec for BMP files
func NewBMPCodec() *BMPImageCodec {
	return &BMPImageCodec{}
}

// Format reports the container format handled by the codec
func (c *BMPImageCodec) Format() FormatType {
	return FormatBMP
}

// Decode reads a BMP image
func (c *BMPImageCodec) Decode(r io.Reader) (image.Image, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode bmp")
	}
	return img, nil
}

// Encode writes img as a BMP image
func (c *BMPImageCodec) Encode(w io.Writer, img image.Image) error {
	if err := bmp.Encode(w, img); err != nil {
		return errors.Wrap(err, "cannot encode bmp")
	}
	return nil
}
