package imageprocessor

import (
	"runtime/debug"

	"imagepad/logging"
	"imagepad/types"

	"github.com/pkg/errors"
)

// Options configures an ImageProcessor
type Options struct {
	Resampler string
	Encode    EncodeOptions
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Resampler: DefaultResampler,
		Encode:    DefaultEncodeOptions(),
	}
}

// ImageProcessor transforms image files in place
type ImageProcessor struct {
	registry  *ImageCodecRegistry
	resampler Resampler
	name      string
}

// NewImageProcessor creates a new ImageProcessor instance
func NewImageProcessor(opts Options) (*ImageProcessor, error) {
	if opts.Resampler == "" {
		opts.Resampler = DefaultResampler
	}
	resampler, err := GetResampler(opts.Resampler)
	if err != nil {
		return nil, err
	}

	return &ImageProcessor{
		registry:  NewImageCodecRegistry(opts.Encode),
		resampler: resampler,
		name:      opts.Resampler,
	}, nil
}

// CanProcess checks if a codec exists for the file's extension
func (p *ImageProcessor) CanProcess(path string) bool {
	return p.registry.CanLoadFile(path)
}

// Transform loads the image at path, downscales it when params.Scale < 1,
// pads it to multiple-of-4 dimensions when params.ForcePad is set, and
// overwrites the file in its original format. A file the transform leaves
// unchanged is not rewritten. Every failure is returned as a
// *types.ProcessingError.
func (p *ImageProcessor) Transform(path string, params types.ProcessingParameters) (report types.TransformReport, err error) {
	stage := types.OutcomeDecodeError

	// Use defer to recover from any panics inside codecs or resamplers
	defer func() {
		if r := recover(); r != nil {
			logging.LogError("Panic while processing %s: %v\nStack trace: %s", path, r, string(debug.Stack()))
			err = &types.ProcessingError{Kind: stage, Path: path, Err: errors.Errorf("panic: %v", r)}
		}
	}()

	img, err := p.registry.LoadImage(path)
	if err != nil {
		return report, types.NewDecodeError(path, err)
	}

	stage = types.OutcomeEncodeOrWrite

	b := img.Bounds()
	report.SourceWidth, report.SourceHeight = b.Dx(), b.Dy()

	if params.Scale < 1.0 {
		w, h := ScaledSize(b.Dx(), b.Dy(), params.Scale)
		if w <= 0 || h <= 0 {
			return report, types.NewDegenerateSizeError(path, b.Dx(), b.Dy(), params.Scale)
		}

		resampled, err := p.resampler.Resample(img, w, h)
		if err != nil {
			return report, types.NewEncodeOrWriteError(path, errors.Wrapf(err, "%s resample failed", p.name))
		}
		img = conformModel(img, resampled)
		report.Resized = true
	}

	if params.ForcePad {
		img, report.Padded = PadToMultipleOf4(img)
	}

	b = img.Bounds()
	report.Width, report.Height = b.Dx(), b.Dy()

	if !report.Resized && !report.Padded {
		logging.DebugLog("Unchanged, not rewriting: %s (%dx%d)", path, report.Width, report.Height)
		return report, nil
	}

	if err := p.registry.SaveImage(path, img); err != nil {
		return report, types.NewEncodeOrWriteError(path, err)
	}
	report.Written = true

	logging.DebugLog("Transformed %s: %dx%d -> %dx%d (resized=%v, padded=%v)",
		path, report.SourceWidth, report.SourceHeight, report.Width, report.Height, report.Resized, report.Padded)

	return report, nil
}
