package imageprocessor

import (
	"image"
	"math"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// DefaultResampler is the resampler used when none is configured
const DefaultResampler = "lanczos3"

// Resampler scales an image to an exact size
type Resampler interface {
	Resample(img image.Image, width, height int) (image.Image, error)
}

// ResamplerFunc adapts a function to the Resampler interface
type ResamplerFunc func(img image.Image, width, height int) (image.Image, error)

// Resample calls f(img, width, height)
func (f ResamplerFunc) Resample(img image.Image, width, height int) (image.Image, error) {
	return f(img, width, height)
}

var (
	resamplers = map[string]Resampler{
		"lanczos3": ResamplerFunc(resampleLanczos3),
		"lanczos":  ResamplerFunc(resampleImaging),
	}
	resamplersMu sync.RWMutex
)

// RegisterResampler makes a resampler available under name. Backends that
// need cgo register themselves from their own package.
func RegisterResampler(name string, r Resampler) {
	resamplersMu.Lock()
	defer resamplersMu.Unlock()

	resamplers[name] = r
}

// GetResampler returns the resampler registered under name
func GetResampler(name string) (Resampler, error) {
	resamplersMu.RLock()
	defer resamplersMu.RUnlock()

	r, ok := resamplers[name]
	if !ok {
		return nil, errors.Errorf("unknown resampler %q", name)
	}
	return r, nil
}

// ResamplerNames lists the registered resamplers, sorted
func ResamplerNames() []string {
	resamplersMu.RLock()
	defer resamplersMu.RUnlock()

	names := make([]string, 0, len(resamplers))
	for name := range resamplers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScaledSize returns floor(width*scale) x floor(height*scale)
func ScaledSize(width, height int, scale float64) (int, int) {
	w := int(math.Floor(float64(width) * scale))
	h := int(math.Floor(float64(height) * scale))
	return w, h
}

// resampleLanczos3 keeps Gray, Gray16, RGBA, RGBA64 and YCbCr inputs in their own model
func resampleLanczos3(img image.Image, width, height int) (image.Image, error) {
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3), nil
}

// resampleImaging always produces NRGBA; the caller conforms it back
func resampleImaging(img image.Image, width, height int) (image.Image, error) {
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}
