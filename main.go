package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"imagepad/config"
	"imagepad/database"
	"imagepad/imageprocessor"
	"imagepad/logging"
	"imagepad/scanner"
	"imagepad/signalhandler"
	"imagepad/types"
	"imagepad/utils"
	"imagepad/watcher"

	"github.com/pkg/errors"
)

func main() {
	args := utils.ParseArguments(os.Args[1:])

	if _, ok := args.Flags["help"]; ok || args.Command == "" {
		utils.PrintUsage()
		if args.Command == "" {
			os.Exit(1)
		}
		return
	}

	var err error
	switch args.Command {
	case "process":
		err = handleProcessCommand(args)
	case "scan":
		err = handleScanCommand(args)
	case "watch":
		err = handleWatchCommand(args)
	case "history":
		err = handleHistoryCommand(args)
	}

	logging.CloseLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if types.IsValidationError(err) {
			utils.PrintUsage()
		}
		os.Exit(1)
	}
}

// loadConfig builds the configuration from the optional --config file and
// the command-line flags, then sets up logging accordingly
func loadConfig(args utils.Arguments) (*config.Config, error) {
	cfg := config.Default()
	if path, ok := args.Flags["config"]; ok && path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyArguments(args.Flags); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.SetDebug(cfg.Debug)
	if cfg.LogFile != "" {
		if cfg.Debug {
			// Use MultiWriter to write logs to both stderr and file
			logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				return nil, errors.Wrap(err, "failed to open log file")
			}
			logging.SetOutput(io.MultiWriter(os.Stderr, logFile))
		} else if err := logging.SetupLogger(cfg.LogFile); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		}
		logging.DebugLog("Debug mode enabled. Logging to: %s", cfg.LogFile)
	}

	return cfg, nil
}

// openJournal initializes the journal with retry logic, since another
// imagepad process may hold the file briefly
func openJournal(path string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		db, err = database.InitDatabase(path)
		if err == nil {
			return db, nil
		}
		if i < maxRetries-1 {
			logging.LogWarning("Error initializing journal (attempt %d/%d): %v - retrying...",
				i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		}
	}
	return nil, errors.Wrapf(err, "error initializing journal after %d attempts", maxRetries)
}

func recordBatch(journalPath string, params types.ProcessingParameters, summary types.BatchSummary, started time.Time) {
	if journalPath == "" {
		return
	}

	db, err := openJournal(journalPath)
	if err != nil {
		logging.LogError("%v", err)
		return
	}
	defer db.Close()

	id, err := database.StoreBatch(db, params, summary, started)
	if err != nil {
		logging.LogError("Cannot record batch: %v", err)
		return
	}
	fmt.Printf("Batch recorded as %s in %s\n", id, journalPath)
}

func newRunner(cfg *config.Config) (*scanner.Runner, error) {
	processor, err := imageprocessor.NewImageProcessor(cfg.ProcessorOptions())
	if err != nil {
		return nil, errors.Wrap(err, "cannot create image processor")
	}
	return scanner.NewRunner(processor, cfg.Workers), nil
}

func handleProcessCommand(args utils.Arguments) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	params := cfg.Parameters()

	// Reject bad parameters before walking the inputs
	if err := params.Validate(); err != nil {
		return err
	}

	paths := scanner.Collect(args.Paths)
	if len(paths) == 0 {
		return types.ErrNoInput
	}

	runner, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	scanner.PrintStartupInfo(scanner.CountImages(paths), params, runner.Workers())

	started := time.Now()
	summary, err := runner.Run(paths, params)
	if err != nil {
		return err
	}

	scanner.PrintCompletionStats(summary)
	recordBatch(cfg.Journal, params, summary, started)
	return nil
}

func handleScanCommand(args utils.Arguments) error {
	if len(args.Paths) == 0 {
		return &types.ValidationError{Field: "paths", Reason: "scan needs at least one path"}
	}

	paths := scanner.Collect(args.Paths)
	for _, p := range paths {
		fmt.Println(p)
	}

	stats := scanner.CountImages(paths)
	fmt.Printf("\n%d image files (PNG: %d, JPEG: %d, BMP: %d)\n",
		stats.TotalFiles, stats.PNGFiles, stats.JPEGFiles, stats.BMPFiles)
	return nil
}

func handleWatchCommand(args utils.Arguments) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	params := cfg.Parameters()

	if len(args.Paths) == 0 {
		return &types.ValidationError{Field: "paths", Reason: "watch needs at least one directory"}
	}

	runner, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	w, err := watcher.NewWatcher(runner, params)
	if err != nil {
		return err
	}
	if err := w.Start(args.Paths); err != nil {
		w.Stop()
		return err
	}

	stop := make(chan struct{})
	signalhandler.SetupHandler(func() { close(stop) })

	fmt.Printf("Watching %d folder(s) with scale %g, pad %v. Press Ctrl+C to stop.\n",
		len(args.Paths), params.Scale, params.ForcePad)

	started := time.Now()
	tracker := scanner.NewResultTracker(0)
	results := w.Results()

	go func() {
		<-stop
		if err := w.Stop(); err != nil {
			logging.LogWarning("%v", err)
		}
	}()

	for result := range results {
		tracker.Record(result)
		if result.Success() {
			fmt.Printf("Processed %s (%dx%d -> %dx%d)\n", result.Path,
				result.Report.SourceWidth, result.Report.SourceHeight,
				result.Report.Width, result.Report.Height)
		} else {
			fmt.Printf("Failed %s: %s\n", result.Path, result.Message)
		}
	}

	summary := tracker.Summary(time.Since(started))
	summary.Total = len(summary.Results)
	scanner.PrintCompletionStats(summary)
	if summary.Total > 0 {
		recordBatch(cfg.Journal, params, summary, started)
	}
	return nil
}

func handleHistoryCommand(args utils.Arguments) error {
	journalPath := utils.GetDefaultJournalPath()
	if path, ok := args.Flags["journal"]; ok && path != "" {
		journalPath = path
	} else if path, ok := args.Flags["config"]; ok && path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if cfg.Journal != "" {
			journalPath = cfg.Journal
		}
	}

	if _, err := os.Stat(journalPath); os.IsNotExist(err) {
		return errors.Errorf("journal does not exist: %s. Run process with --journal first.", journalPath)
	}

	db, err := database.OpenDatabase(journalPath)
	if err != nil {
		return errors.Wrap(err, "error opening journal")
	}
	defer db.Close()

	if batchID, ok := args.Flags["batch"]; ok && batchID != "" {
		files, err := database.GetBatchFiles(db, batchID)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Printf("No files recorded for batch %s\n", batchID)
			return nil
		}
		for _, f := range files {
			line := fmt.Sprintf("%-22s %s %dx%d -> %dx%d", f.Outcome, f.Path,
				f.SourceWidth, f.SourceHeight, f.Width, f.Height)
			if f.Message != "" {
				line += " (" + f.Message + ")"
			}
			fmt.Println(line)
		}
		return nil
	}

	batches, err := database.ListBatches(db, utils.ParseLimit(args.Flags["limit"], 10))
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		fmt.Println("No batches recorded.")
		return nil
	}

	for _, b := range batches {
		fmt.Printf("%s  %s  scale=%g pad=%v  total=%d succeeded=%d failed=%d  (%v)\n",
			b.ID, b.StartedAt.Local().Format(time.DateTime), b.Scale, b.ForcePad,
			b.Total, b.Succeeded, b.Failed, time.Duration(b.ElapsedMS)*time.Millisecond)
	}
	return nil
}
