//go:build opencv

package opencv

import (
	"image"

	"imagepad/imageprocessor"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Name is the resampler name the backend registers under
const Name = "opencv"

func init() {
	imageprocessor.RegisterResampler(Name, Resampler{})
}

// Resampler scales images with cv::resize and INTER_LANCZOS4
type Resampler struct{}

// Resample converts img to a Mat, resizes it and converts it back.
// Grayscale images stay single channel; everything else goes through RGBA.
func (Resampler) Resample(img image.Image, width, height int) (image.Image, error) {
	var src gocv.Mat
	var err error

	if gray, ok := img.(*image.Gray); ok {
		src, err = gocv.ImageGrayToMatGray(gray)
	} else {
		src, err = gocv.ImageToMatRGBA(img)
	}
	if err != nil {
		return nil, errors.Wrap(err, "cannot convert image to Mat")
	}
	defer src.Close()

	if src.Empty() {
		return nil, errors.New("empty Mat after conversion")
	}

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.Resize(src, &dst, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLanczos4)
	if dst.Empty() {
		return nil, errors.New("resize produced an empty Mat")
	}

	out, err := dst.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "cannot convert Mat to image")
	}
	return out, nil
}
