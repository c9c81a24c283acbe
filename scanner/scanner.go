package scanner

import (
	"sync"
	"time"

	"imagepad/imageprocessor"
	"imagepad/logging"
	"imagepad/signalhandler"
	"imagepad/types"

	"github.com/pkg/errors"
)

// Runner dispatches batches of transforms onto a fixed pool of workers.
// The pool is started once and reused by every Run until Close.
type Runner struct {
	transformer Transformer
	workers     int
	tasks       chan task
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewRunner starts workers goroutines that process files with transformer.
// workers <= 0 selects signalhandler.GetOptimalProcs().
func NewRunner(transformer Transformer, workers int) *Runner {
	if workers <= 0 {
		workers = signalhandler.GetOptimalProcs()
	}

	r := &Runner{
		transformer: transformer,
		workers:     workers,
		tasks:       make(chan task),
	}

	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker()
	}
	return r
}

// Workers returns the pool size
func (r *Runner) Workers() int {
	return r.workers
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for t := range r.tasks {
		t.results <- r.process(t.path, t.params)
	}
}

// process runs one transform and converts its error into a result
func (r *Runner) process(path string, params types.ProcessingParameters) types.FileResult {
	report, err := r.transformer.Transform(path, params)
	result := types.FileResult{
		Path:    path,
		Outcome: types.OutcomeOf(err),
		Report:  report,
	}
	if err != nil {
		result.Message = err.Error()
	}
	return result
}

// Run validates params, transforms every path on the pool and blocks until
// all of them have finished. Per-file failures are reported in the summary;
// only a *types.ValidationError is returned as an error, and in that case no
// file has been touched. Submitting the same path twice in one batch races
// on the file and is left to the caller to avoid.
func (r *Runner) Run(paths []string, params types.ProcessingParameters) (types.BatchSummary, error) {
	if err := params.Validate(); err != nil {
		return types.BatchSummary{}, err
	}
	if len(paths) == 0 {
		return types.BatchSummary{}, types.ErrNoInput
	}

	startTime := time.Now()
	tracker := NewResultTracker(len(paths))
	results := make(chan types.FileResult, len(paths))

	go func() {
		for _, p := range paths {
			r.tasks <- task{path: p, params: params, results: results}
		}
	}()

	for range paths {
		tracker.Record(<-results)
	}

	summary := tracker.Summary(time.Since(startTime))
	logging.DebugLog("Batch of %d finished: %d succeeded, %d failed",
		summary.Total, summary.Succeeded, summary.Failed)
	return summary, nil
}

// Close stops the workers once the tasks already submitted have drained.
// Run must not be called after Close.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.tasks)
	})
	r.wg.Wait()
}

// Run processes paths with the default image processor on a pool sized to
// the number of CPUs.
func Run(paths []string, params types.ProcessingParameters) (types.BatchSummary, error) {
	if err := params.Validate(); err != nil {
		return types.BatchSummary{}, err
	}
	if len(paths) == 0 {
		return types.BatchSummary{}, types.ErrNoInput
	}

	processor, err := imageprocessor.NewImageProcessor(imageprocessor.DefaultOptions())
	if err != nil {
		return types.BatchSummary{}, errors.Wrap(err, "cannot create image processor")
	}

	runner := NewRunner(processor, 0)
	defer runner.Close()

	return runner.Run(paths, params)
}
