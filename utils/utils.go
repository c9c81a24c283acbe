package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"imagepad/imageprocessor"
	"imagepad/types"
)

// Commands lists the subcommands understood by the CLI
var Commands = []string{"process", "scan", "watch", "history"}

// booleanFlags never consume the following argument as their value
var booleanFlags = map[string]bool{
	"pad":   true,
	"debug": true,
	"help":  true,
}

// Arguments is the parsed command line
type Arguments struct {
	Command string
	Flags   map[string]string
	Paths   []string
}

// ParseArguments converts command-line arguments (without the program name)
// into a command, a map of flags and values, and the remaining paths.
// A bare "--" ends flag parsing.
func ParseArguments(argv []string) Arguments {
	args := Arguments{Flags: make(map[string]string)}

	// First, identify the command
	commandIndex := -1
	for i, arg := range argv {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		for _, c := range Commands {
			if arg == c {
				args.Command = arg
				commandIndex = i
			}
		}
		break
	}

	flagsDone := false
	for i := 0; i < len(argv); i++ {
		if i == commandIndex {
			continue
		}

		arg := argv[i]

		if flagsDone || !strings.HasPrefix(arg, "--") {
			args.Paths = append(args.Paths, arg)
			continue
		}

		if arg == "--" {
			flagsDone = true
			continue
		}

		// Handle flags with equals sign (--key=value)
		if strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			args.Flags[strings.TrimPrefix(parts[0], "--")] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		flagName := strings.TrimPrefix(arg, "--")
		if booleanFlags[flagName] || i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "--") {
			args.Flags[flagName] = "true"
		} else {
			args.Flags[flagName] = argv[i+1]
			i++ // Skip the value in the next iteration
		}
	}

	return args
}

// GetDefaultJournalPath returns the default path for the journal file
func GetDefaultJournalPath() string {
	// Get the executable path
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "imagepad.db"
	}

	return filepath.Join(filepath.Dir(exePath), "imagepad.db")
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s process [--scale=F] [--pad] [--workers=N] [--resampler=NAME] [--quality=N] [--png-compression=LEVEL]\n", os.Args[0])
	fmt.Printf("          [--config=FILE] [--journal=PATH] [--debug] [--logfile=PATH] PATH...\n")
	fmt.Printf("  %s scan PATH...\n", os.Args[0])
	fmt.Printf("  %s watch [same flags as process] DIR...\n", os.Args[0])
	fmt.Printf("  %s history [--journal=PATH] [--limit=N] [--batch=ID]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --scale           : Resize factor in (0, 1] (default: 1, no resize)\n")
	fmt.Printf("  --pad             : Pad width and height up to a multiple of 4 by repeating edge pixels\n")
	fmt.Printf("  --workers         : Number of parallel workers (default: number of CPUs)\n")
	fmt.Printf("  --resampler       : One of %s (default: %s)\n",
		strings.Join(imageprocessor.ResamplerNames(), ", "), imageprocessor.DefaultResampler)
	fmt.Printf("  --quality         : JPEG quality 1-100 (default: 95)\n")
	fmt.Printf("  --png-compression : default, none, fast or best\n")
	fmt.Printf("  --config          : YAML file with default values; flags win\n")
	fmt.Printf("  --journal         : Record batches in this SQLite file (history default: %s)\n", GetDefaultJournalPath())
	fmt.Printf("  --limit           : Number of batches listed by history (default: 10)\n")
	fmt.Printf("  --batch           : Show the files of one batch\n")
	fmt.Printf("  --debug           : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile         : Also write the log to this file\n")
	fmt.Printf("\nSupported formats: %s\n", strings.Join(imageprocessor.GetSupportedExtensions(), " "))
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s process --scale=0.5 --pad /path/to/images extra.png\n", os.Args[0])
	fmt.Printf("  %s watch --pad --journal=runs.db /path/to/dropbox\n", os.Args[0])
}

// ParseScale parses and validates the scale value from string
func ParseScale(scaleStr string) (float64, error) {
	scale, err := strconv.ParseFloat(strings.TrimSpace(scaleStr), 64)
	if err != nil {
		return 0, &types.ValidationError{Field: "scale", Reason: fmt.Sprintf("not a number: %q", scaleStr)}
	}
	if err := (types.ProcessingParameters{Scale: scale}).Validate(); err != nil {
		return 0, err
	}
	return scale, nil
}

// ParseLimit parses a positive row limit, falling back to def
func ParseLimit(limitStr string, def int) int {
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}
