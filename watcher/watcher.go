package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"imagepad/logging"
	"imagepad/scanner"
	"imagepad/types"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// DefaultDebounce is how long a file must stay quiet before it is processed
const DefaultDebounce = 500 * time.Millisecond

// Batcher runs a batch of transforms. *scanner.Runner satisfies it.
type Batcher interface {
	Run(paths []string, params types.ProcessingParameters) (types.BatchSummary, error)
}

// stamp identifies the version of a file we wrote ourselves
type stamp struct {
	size    int64
	modTime time.Time
}

// Watcher processes image files as they appear in a set of directory trees
type Watcher struct {
	runner   Batcher
	params   types.ProcessingParameters
	debounce time.Duration
	watcher  *fsnotify.Watcher
	results  chan types.FileResult

	mu      sync.Mutex
	pending map[string]*time.Timer
	stamps  map[string]stamp
	locks   map[string]*sync.Mutex
	started bool
	stopped bool

	wg       sync.WaitGroup
	done     chan struct{}
	loopDone chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher that sends new images through runner.
// params are validated here so a bad value fails before anything is watched.
func NewWatcher(runner Batcher, params types.ProcessingParameters) (*Watcher, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	return &Watcher{
		runner:   runner,
		params:   params,
		debounce: DefaultDebounce,
		watcher:  fsWatcher,
		results:  make(chan types.FileResult, 64),
		pending:  make(map[string]*time.Timer),
		stamps:   make(map[string]stamp),
		locks:    make(map[string]*sync.Mutex),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}, nil
}

// Start watches every directory under dirs, including ones created later.
// Images already present are left alone.
func (w *Watcher) Start(dirs []string) error {
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return errors.Wrapf(err, "cannot watch %s", dir)
		}
		if !info.IsDir() {
			return errors.Errorf("cannot watch %s: not a directory", dir)
		}
		if err := w.addTree(dir); err != nil {
			return err
		}
		logging.LogInfo("Watching folder: %s", dir)
	}

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()

	go w.processEvents()
	return nil
}

// Results delivers one result per processed file. It is closed by Stop.
func (w *Watcher) Results() <-chan types.FileResult {
	return w.results
}

// Stop cancels pending files, waits for the ones being processed and
// closes Results
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		started := w.started
		for path, t := range w.pending {
			if t.Stop() {
				w.wg.Done()
			}
			delete(w.pending, path)
		}
		w.mu.Unlock()

		close(w.done)
		err = w.watcher.Close()
		if started {
			<-w.loopDone
		}
		w.wg.Wait()
		close(w.results)
	})
	return errors.Wrap(err, "failed to close fsnotify watcher")
}

func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logging.DebugLog("Error accessing path %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch folder %s", path)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer close(w.loopDone)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.LogWarning("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logging.LogWarning("%v", err)
			}
			// Files may have landed before the directory was added
			for _, p := range scanner.Collect([]string{event.Name}) {
				w.schedule(p)
			}
			return
		}
	}

	if !scanner.IsImageFile(event.Name) {
		return
	}
	// Editors and copy tools often write hidden temp files first
	if filepath.Base(event.Name)[0] == '.' {
		return
	}
	w.schedule(event.Name)
}

// schedule (re)starts the debounce timer for path. Every live timer holds
// one count on wg until it fires or is stopped.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if t, ok := w.pending[path]; ok && t.Stop() {
		w.wg.Done()
	}

	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		stopped := w.stopped
		w.mu.Unlock()

		if !stopped {
			w.handleFile(path)
		}
	})
	w.pending[path] = timer
}

func (w *Watcher) pathLock(path string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	l, ok := w.locks[path]
	if !ok {
		l = &sync.Mutex{}
		w.locks[path] = l
	}
	return l
}

func (s stamp) matches(other stamp) bool {
	return s.size == other.size && s.modTime.Equal(other.modTime)
}

func statStamp(path string) (stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return stamp{}, err
	}
	return stamp{size: info.Size(), modTime: info.ModTime()}, nil
}

// handleFile processes one settled file unless it is our own output
func (w *Watcher) handleFile(path string) {
	l := w.pathLock(path)
	l.Lock()
	defer l.Unlock()

	current, err := statStamp(path)
	if err != nil {
		logging.DebugLog("Skipping %s: %v", path, err)
		return
	}

	w.mu.Lock()
	own, ok := w.stamps[path]
	w.mu.Unlock()
	if ok && own.matches(current) {
		logging.DebugLog("Ignoring our own write to %s", path)
		return
	}

	summary, err := w.runner.Run([]string{path}, w.params)
	if err != nil {
		logging.LogError("Cannot process %s: %v", path, err)
		return
	}

	for _, result := range summary.Results {
		if result.Report.Written {
			if s, err := statStamp(result.Path); err == nil {
				w.mu.Lock()
				w.stamps[result.Path] = s
				w.mu.Unlock()
			}
		}

		select {
		case w.results <- result:
		case <-w.done:
		}
	}
}
