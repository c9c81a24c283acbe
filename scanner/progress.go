package scanner

import (
	"fmt"
	"time"

	"imagepad/logging"
	"imagepad/types"
)

// NewResultTracker creates a tracker for a batch of total files
func NewResultTracker(total int) *ResultTracker {
	return &ResultTracker{
		total:   total,
		results: make([]types.FileResult, 0, total),
	}
}

// Record updates the tracker state with one result and logs it
func (p *ResultTracker) Record(result types.FileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if result.Success() {
		p.succeeded++
		logging.LogImageProcessed(result.Path, true, "")
	} else {
		p.failed++
		logging.LogImageProcessed(result.Path, false, result.Message)
	}
	p.results = append(p.results, result)
}

// Summary returns the aggregate of everything recorded so far
func (p *ResultTracker) Summary(elapsed time.Duration) types.BatchSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := make([]types.FileResult, len(p.results))
	copy(results, p.results)

	return types.BatchSummary{
		Total:     p.total,
		Succeeded: p.succeeded,
		Failed:    p.failed,
		Results:   results,
		Elapsed:   elapsed,
	}
}

// PrintStartupInfo displays information about the batch before starting
func PrintStartupInfo(stats FileStats, params types.ProcessingParameters, workers int) {
	fmt.Printf("Starting image processing...\nTotal image files to process: %d (PNG: %d, JPEG: %d, BMP: %d)\n",
		stats.TotalFiles, stats.PNGFiles, stats.JPEGFiles, stats.BMPFiles)
	fmt.Printf("Scale: %g, pad to multiple of 4: %v, workers: %d\n", params.Scale, params.ForcePad, workers)

	logging.DebugLog("Found %d image files to process (%d PNG, %d JPEG, %d BMP)",
		stats.TotalFiles, stats.PNGFiles, stats.JPEGFiles, stats.BMPFiles)
}

// PrintCompletionStats displays statistics after the batch completes
func PrintCompletionStats(summary types.BatchSummary) {
	logging.DebugLog("Batch completed in %v. Total: %d, Succeeded: %d, Failed: %d",
		summary.Elapsed, summary.Total, summary.Succeeded, summary.Failed)

	fmt.Println("\nProcessing complete.")
	fmt.Printf("Processed %d images in %v.\n", summary.Total, summary.Elapsed.Round(time.Millisecond))
	fmt.Printf("Succeeded: %d, failed: %d\n", summary.Succeeded, summary.Failed)

	if summary.Failed > 0 {
		fmt.Printf("Encountered %d errors during processing:\n", summary.Failed)
		for _, r := range summary.Failures() {
			fmt.Printf("  %s: %s\n", r.Path, r.Message)
		}
	}
}
