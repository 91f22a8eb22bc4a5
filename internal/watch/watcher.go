// Package watch regenerates bridges when source files change. It monitors
// the scanned package roots, debounces bursts of filesystem events, and
// invokes one rescan callback per settled burst.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tickforge/bridgegen/internal/output"
)

// Watcher monitors Go source under the scanned roots and triggers a
// regeneration callback. Generated output is excluded from watching so a
// write burst from the pipeline cannot retrigger itself.
type Watcher struct {
	fsw        *fsnotify.Watcher
	debouncer  *debouncer
	roots      []string
	outputRoot string
	logger     *zap.Logger
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// New creates a watcher over roots. onChange receives the settled set of
// changed files after each debounce window.
func New(roots []string, outputRoot string, onChange func([]string) error, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		fsw:        fsw,
		roots:      roots,
		outputRoot: outputRoot,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
	w.debouncer = newDebouncer(100*time.Millisecond, func(files []string) {
		if err := onChange(files); err != nil {
			logger.Error("regeneration failed", zap.Error(err))
		}
	})
	return w, nil
}

// Start begins watching every directory under the roots.
func (w *Watcher) Start() error {
	dirs, err := w.findDirectories()
	if err != nil {
		return fmt.Errorf("find watch directories: %w", err)
	}
	for _, dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", zap.String("dir", dir))
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop halts event processing and releases the underlying watcher.
func (w *Watcher) Stop() error {
	select {
	case <-w.stopChan:
		return nil
	default:
		close(w.stopChan)
	}
	w.wg.Wait()
	w.debouncer.stop()
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("source changed", zap.String("file", event.Name))
			w.debouncer.add(event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) findDirectories() ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	for _, root := range w.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if w.shouldIgnore(path) {
				return filepath.SkipDir
			}
			if !seen[path] {
				seen[path] = true
				dirs = append(dirs, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}
	// Never watch what the pipeline writes.
	if w.outputRoot != "" && strings.HasPrefix(path, w.outputRoot) {
		return true
	}
	if base == output.GeneratedDir {
		return true
	}
	// Only Go source can change the candidate set.
	if !isDir(path) && filepath.Ext(path) != ".go" {
		return true
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// debouncer collects changed files and fires once per settled burst.
type debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
}

func newDebouncer(duration time.Duration, callback func([]string)) *debouncer {
	return &debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
		callback: callback,
	}
}

func (d *debouncer) add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.files[file] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

func (d *debouncer) flush() {
	d.mutex.Lock()
	if len(d.files) == 0 {
		d.mutex.Unlock()
		return
	}
	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	d.files = make(map[string]struct{})
	d.mutex.Unlock()

	d.callback(files)
}

func (d *debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
