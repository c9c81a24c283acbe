// Package imageprocessor decodes, resamples, pads and re-encodes image files in place.
package imageprocessor

import (
	"image"
	"io"
)

// ImageCodec is the interface that all format codecs must implement
type ImageCodec interface {
	// Format reports the container format handled by the codec
	Format() FormatType

	// Decode reads an image in the codec's format
	Decode(r io.Reader) (image.Image, error)

	// Encode writes img in the codec's format
	Encode(w io.Writer, img image.Image) error
}
