package scanner

import (
	"os"
	"path/filepath"

	"imagepad/imageprocessor"
	"imagepad/logging"
)

// IsImageFile checks if a file extension belongs to a processable image
func IsImageFile(path string) bool {
	return imageprocessor.IsImageFile(path)
}

// Collect resolves files and directories into the list of image files to
// process. Directories are walked recursively and contribute their image
// files in walk order; image files are appended as given; everything else
// is skipped. Duplicates across inputs are kept.
func Collect(paths []string) []string {
	var images []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			logging.DebugLog("Skipping %s: %v", path, err)
			continue
		}

		if !info.IsDir() {
			if IsImageFile(path) {
				images = append(images, path)
			}
			continue
		}

		filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				// Skip entries that can't be accessed
				logging.DebugLog("Error accessing path %s: %v", p, err)
				return nil
			}
			if !fi.IsDir() && IsImageFile(p) {
				images = append(images, p)
			}
			return nil
		})
	}

	return images
}

// CountImages classifies collected image paths by format
func CountImages(paths []string) FileStats {
	stats := FileStats{TotalFiles: len(paths)}
	for _, p := range paths {
		switch imageprocessor.GetFileFormat(p) {
		case imageprocessor.FormatPNG:
			stats.PNGFiles++
		case imageprocessor.FormatJPEG:
			stats.JPEGFiles++
		case imageprocessor.FormatBMP:
			stats.BMPFiles++
		}
	}
	return stats
}
