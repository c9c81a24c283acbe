package watcher

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"imagepad/imageprocessor"
	"imagepad/scanner"
	"imagepad/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 5), G: uint8(y * 5), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func pngSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func newTestWatcher(t *testing.T, runner Batcher, params types.ProcessingParameters) *Watcher {
	t.Helper()
	w, err := NewWatcher(runner, params)
	require.NoError(t, err)
	w.debounce = testDebounce
	return w
}

func waitResult(t *testing.T, results <-chan types.FileResult) types.FileResult {
	t.Helper()
	select {
	case r, ok := <-results:
		require.True(t, ok, "results closed early")
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a result")
		return types.FileResult{}
	}
}

func assertNoResult(t *testing.T, results <-chan types.FileResult, wait time.Duration) {
	t.Helper()
	select {
	case r := <-results:
		t.Fatalf("unexpected result for %s", r.Path)
	case <-time.After(wait):
	}
}

type fakeBatcher struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeBatcher) Run(paths []string, params types.ProcessingParameters) (types.BatchSummary, error) {
	f.mu.Lock()
	f.paths = append(f.paths, paths...)
	f.mu.Unlock()

	summary := types.BatchSummary{Total: len(paths), Succeeded: len(paths)}
	for _, p := range paths {
		summary.Results = append(summary.Results, types.FileResult{Path: p})
	}
	return summary, nil
}

func (f *fakeBatcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func TestNewWatcherRejectsInvalidParameters(t *testing.T) {
	_, err := NewWatcher(&fakeBatcher{}, types.ProcessingParameters{Scale: 0})
	assert.True(t, types.IsValidationError(err))
}

func TestStartRejectsMissingDirectory(t *testing.T) {
	w := newTestWatcher(t, &fakeBatcher{}, types.ProcessingParameters{Scale: 1})
	defer w.Stop()

	err := w.Start([]string{filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestWatcherProcessesNewImageOnce(t *testing.T) {
	dir := t.TempDir()

	processor, err := imageprocessor.NewImageProcessor(imageprocessor.DefaultOptions())
	require.NoError(t, err)
	runner := scanner.NewRunner(processor, 2)
	defer runner.Close()

	w := newTestWatcher(t, runner, types.ProcessingParameters{Scale: 0.5, ForcePad: true})
	require.NoError(t, w.Start([]string{dir}))

	path := filepath.Join(dir, "drop.png")
	writePNG(t, path, 40, 30)

	result := waitResult(t, w.Results())
	assert.Equal(t, path, result.Path)
	assert.Equal(t, types.OutcomeSuccess, result.Outcome)
	assert.True(t, result.Report.Written)

	// Our own write must not trigger a second pass
	assertNoResult(t, w.Results(), 10*testDebounce)

	require.NoError(t, w.Stop())
	width, height := pngSize(t, path)
	assert.Equal(t, 20, width)
	assert.Equal(t, 16, height)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	batcher := &fakeBatcher{}

	w := newTestWatcher(t, batcher, types.ProcessingParameters{Scale: 1})
	require.NoError(t, w.Start([]string{dir}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".partial.png"), []byte("x"), 0644))
	target := filepath.Join(dir, "real.png")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	result := waitResult(t, w.Results())
	assert.Equal(t, target, result.Path)
	assertNoResult(t, w.Results(), 5*testDebounce)

	require.NoError(t, w.Stop())
	assert.Equal(t, []string{target}, batcher.calls())
}

func TestWatcherFollowsNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	batcher := &fakeBatcher{}

	w := newTestWatcher(t, batcher, types.ProcessingParameters{Scale: 1})
	require.NoError(t, w.Start([]string{dir}))
	defer w.Stop()

	sub := filepath.Join(dir, "incoming")
	require.NoError(t, os.Mkdir(sub, 0755))
	target := filepath.Join(sub, "late.jpg")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	result := waitResult(t, w.Results())
	assert.Equal(t, target, result.Path)
}

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	batcher := &fakeBatcher{}

	w := newTestWatcher(t, batcher, types.ProcessingParameters{Scale: 1})
	w.debounce = 200 * time.Millisecond
	require.NoError(t, w.Start([]string{dir}))

	target := filepath.Join(dir, "burst.bmp")
	f, err := os.Create(target)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.Write([]byte("chunk"))
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	waitResult(t, w.Results())
	assertNoResult(t, w.Results(), 400*time.Millisecond)

	require.NoError(t, w.Stop())
	assert.Len(t, batcher.calls(), 1)
}

func TestStopClosesResults(t *testing.T) {
	w := newTestWatcher(t, &fakeBatcher{}, types.ProcessingParameters{Scale: 1})
	require.NoError(t, w.Start([]string{t.TempDir()}))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	_, ok := <-w.Results()
	assert.False(t, ok)
}

func TestStopWithoutStart(t *testing.T) {
	w := newTestWatcher(t, &fakeBatcher{}, types.ProcessingParameters{Scale: 1})
	require.NoError(t, w.Stop())
}
