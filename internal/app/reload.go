package app

import (
	"os"
	"sync"
	"time"
)

// FileWatcher polls a file's modification time and invokes a callback when
// it changes. The watch loop uses it to pick up calibration edits made by
// other invocations of the tool.
type FileWatcher struct {
	path          string
	checkInterval time.Duration
	onChange      func()

	mu       sync.Mutex
	baseline time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewFileWatcher creates a watcher for path. A missing file has a zero
// baseline, so creating it counts as a change.
func NewFileWatcher(path string, checkInterval time.Duration) *FileWatcher {
	w := &FileWatcher{
		path:          path,
		checkInterval: checkInterval,
	}
	w.baseline, _ = w.modTime()
	return w
}

// OnChange sets the callback. It runs on the watcher goroutine.
func (w *FileWatcher) OnChange(callback func()) {
	w.onChange = callback
}

// Start begins watching in a background goroutine.
func (w *FileWatcher) Start() {
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.watchLoop()
}

// Stop stops the watcher and waits for the goroutine to exit.
func (w *FileWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *FileWatcher) watchLoop() {
	defer close(w.doneCh)
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.CheckForUpdate() && w.onChange != nil {
				w.onChange()
			}
		}
	}
}

// CheckForUpdate reports whether the file changed since the last check and
// moves the baseline forward.
func (w *FileWatcher) CheckForUpdate() bool {
	mt, err := w.modTime()
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !mt.After(w.baseline) {
		return false
	}
	w.baseline = mt
	return true
}

// ResetBaseline records the current modification time, so that writes made
// by this process are not reported.
func (w *FileWatcher) ResetBaseline() {
	if mt, err := w.modTime(); err == nil {
		w.mu.Lock()
		w.baseline = mt
		w.mu.Unlock()
	}
}

// Path returns the watched path.
func (w *FileWatcher) Path() string {
	return w.path
}

func (w *FileWatcher) modTime() (time.Time, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
