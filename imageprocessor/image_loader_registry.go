package imageprocessor

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ImageCodecRegistry maps file extensions to codecs
type ImageCodecRegistry struct {
	codecs map[string]ImageCodec
	mutex  sync.RWMutex
}

// NewImageCodecRegistry creates a registry with codecs for every supported extension
func NewImageCodecRegistry(opts EncodeOptions) *ImageCodecRegistry {
	registry := &ImageCodecRegistry{
		codecs: make(map[string]ImageCodec),
	}

	jpegCodec := NewJPEGCodec(opts)
	registry.RegisterCodec(".jpg", jpegCodec)
	registry.RegisterCodec(".jpeg", jpegCodec)
	registry.RegisterCodec(".png", NewPNGCodec(opts))
	registry.RegisterCodec(".bmp", NewBMPCodec())

	return registry
}

// RegisterCodec registers a codec for a specific file extension
func (r *ImageCodecRegistry) RegisterCodec(ext string, codec ImageCodec) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.codecs[strings.ToLower(ext)] = codec
}

// GetCodec returns the codec registered for the path's extension, or nil
func (r *ImageCodecRegistry) GetCodec(path string) ImageCodec {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.codecs[strings.ToLower(filepath.Ext(path))]
}

// CanLoadFile checks if a codec is registered for the file's extension
func (r *ImageCodecRegistry) CanLoadFile(path string) bool {
	return r.GetCodec(path) != nil
}

// LoadImage decodes the file at path
func (r *ImageCodecRegistry) LoadImage(path string) (image.Image, error) {
	codec := r.GetCodec(path)
	if codec == nil {
		return nil, errors.Errorf("no codec registered for %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open image")
	}
	defer f.Close()

	return codec.Decode(f)
}

// SaveImage encodes img in the format of path and overwrites the file.
// The image is fully encoded before the file is touched, so an encoder
// failure leaves the original intact.
func (r *ImageCodecRegistry) SaveImage(path string, img image.Image) error {
	codec := r.GetCodec(path)
	if codec == nil {
		return errors.Errorf("no codec registered for %s", path)
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, img); err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(path, buf.Bytes(), mode); err != nil {
		return errors.Wrap(err, "cannot write image")
	}
	return nil
}
