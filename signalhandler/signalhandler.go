package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupHandler calls stop on the first SIGINT or SIGTERM. Work already
// handed to the pool is not interrupted; a second signal exits immediately.
func SetupHandler(stop func()) {
	// Create a channel to receive OS signals
	sigChan := make(chan os.Signal, 2)

	// Register for specific signals
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Handle signals in a separate goroutine
	go func() {
		<-sigChan
		if stop != nil {
			stop()
		}
		<-sigChan
		os.Exit(130)
	}()
}

// GetOptimalProcs returns the number of worker goroutines for the pool:
// one per detected CPU, never fewer than one.
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()
	if numCPU < 1 {
		numCPU = 1
	}
	return numCPU
}
