// Package opencv registers an OpenCV Lanczos4 resampler under the name
// "opencv". It is compiled only with the opencv build tag, since it needs
// OpenCV and cgo:
//
//	go build -tags opencv
package opencv
