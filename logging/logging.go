package logging

import (
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	logger    *log.Logger
	logFile   *os.File
	mu        sync.Mutex
	isSetup   bool
	debugMode bool
)

// SetupLogger initializes the logger with the specified log file
func SetupLogger(logFilePath string) error {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		return nil
	}

	var err error
	logFile, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return errors.Wrap(err, "failed to open log file")
	}

	logger = log.New(logFile, "", log.LstdFlags)
	logger.Printf("--- imagepad log started at %s ---\n", time.Now().Format(time.RFC3339))

	isSetup = true
	return nil
}

// SetOutput sends all log output to w. Used by the CLI to tee the log file
// with stderr, and by tests to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	logger = log.New(w, "", log.LstdFlags)
}

// SetDebug toggles DebugLog output
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()

	debugMode = enabled
}

// DebugEnabled reports whether debug logging is on
func DebugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()

	return debugMode
}

// CloseLogger closes the log file
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logger.Printf("--- imagepad log closed at %s ---\n", time.Now().Format(time.RFC3339))
		logFile.Close()
		logFile = nil
		logger = nil
		isSetup = false
	}
}

// printf writes through the configured logger, falling back to the standard
// logger when none is set. Caller must hold mu.
func printf(format string, args ...interface{}) {
	if logger != nil {
		logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	printf("INFO: "+format, args...)
}

// DebugLog logs a message if debug mode is enabled
func DebugLog(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if debugMode {
		printf("DEBUG: "+format, args...)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	printf("ERROR: "+format, args...)
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	printf("WARNING: "+format, args...)
}

// LogImageProcessed logs the outcome of a single image
func LogImageProcessed(path string, success bool, errMsg string) {
	mu.Lock()
	defer mu.Unlock()

	if success {
		printf("PROCESSED: %s", path)
	} else {
		printf("FAILED: %s - Error: %s", path, errMsg)
	}
}
