package scanner

import (
	"sync"

	"imagepad/types"
)

// Transformer processes one image file in place
type Transformer interface {
	Transform(path string, params types.ProcessingParameters) (types.TransformReport, error)
}

// FileStats classifies the files of a collection by format
type FileStats struct {
	TotalFiles int
	PNGFiles   int
	JPEGFiles  int
	BMPFiles   int
}

// task is one unit of work handed to the worker pool
type task struct {
	path    string
	params  types.ProcessingParameters
	results chan<- types.FileResult
}

// ResultTracker aggregates per-file results into a batch summary
type ResultTracker struct {
	mu        sync.Mutex
	total     int
	succeeded int
	failed    int
	results   []types.FileResult
}
