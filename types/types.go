package types

import (
	"math"
	"time"
)

// ProcessingParameters holds the settings applied to every file of a batch
type ProcessingParameters struct {
	Scale    float64 `json:"scale" yaml:"scale"`
	ForcePad bool    `json:"force_pad" yaml:"force_pad"`
}

// Validate checks that the scale is a finite number in (0, 1]
func (p ProcessingParameters) Validate() error {
	if math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) {
		return &ValidationError{Field: "scale", Reason: "must be a finite number"}
	}
	if p.Scale <= 0 || p.Scale > 1 {
		return &ValidationError{Field: "scale", Reason: "must be between 0 (exclusive) and 1 (inclusive)"}
	}
	return nil
}

// Outcome is the per-file result of a transform
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeDecodeError
	OutcomeDegenerateSize
	OutcomeEncodeOrWrite
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDecodeError:
		return "decode_error"
	case OutcomeDegenerateSize:
		return "degenerate_size"
	case OutcomeEncodeOrWrite:
		return "encode_or_write_error"
	default:
		return "unknown"
	}
}

// ParseOutcome is the inverse of Outcome.String
func ParseOutcome(s string) Outcome {
	switch s {
	case "decode_error":
		return OutcomeDecodeError
	case "degenerate_size":
		return OutcomeDegenerateSize
	case "encode_or_write_error":
		return OutcomeEncodeOrWrite
	default:
		return OutcomeSuccess
	}
}

// TransformReport describes what a transform did to one file
type TransformReport struct {
	SourceWidth  int  `json:"source_width"`
	SourceHeight int  `json:"source_height"`
	Width        int  `json:"width"`
	Height       int  `json:"height"`
	Resized      bool `json:"resized"`
	Padded       bool `json:"padded"`
	Written      bool `json:"written"`
}

// FileResult holds the outcome of processing a single image
type FileResult struct {
	Path    string          `json:"path"`
	Outcome Outcome         `json:"outcome"`
	Message string          `json:"message,omitempty"`
	Report  TransformReport `json:"report"`
}

// Success reports whether the file was processed without error
func (r FileResult) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// BatchSummary aggregates the results of a batch run
type BatchSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []FileResult  `json:"results"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Failures returns the results of the files that could not be processed
func (s BatchSummary) Failures() []FileResult {
	var failed []FileResult
	for _, r := range s.Results {
		if !r.Success() {
			failed = append(failed, r)
		}
	}
	return failed
}
