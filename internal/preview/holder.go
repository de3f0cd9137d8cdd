// Package preview serves a live-reloading view of a notation file over
// HTTP. The file is re-parsed whenever it changes on disk, and the server
// exposes the formatted text, an SVG diagram, statistics, and the current
// validation report.
package preview

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/tordrt/schemadoc/internal/parser"
	"github.com/tordrt/schemadoc/internal/schema"
	"github.com/tordrt/schemadoc/internal/validator"
)

// State is one loaded snapshot of the watched file. When parsing fails,
// Doc is nil and Err carries the parse error; the previous snapshot is
// replaced either way so the browser always reflects the file on disk.
type State struct {
	Doc      *schema.Document
	Result   *validator.Result
	Err      error
	LoadedAt time.Time
}

// Holder provides thread-safe access to the current snapshot with hot
// reload support.
type Holder struct {
	mu      sync.RWMutex
	state   State
	path    string
	opts    validator.Options
	logger  zerolog.Logger
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewHolder loads the file once and returns a holder for it. An initial
// parse failure is not fatal; the error is served until the file is fixed.
func NewHolder(path string, opts validator.Options, logger zerolog.Logger) (*Holder, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	h := &Holder{
		path:   absPath,
		opts:   opts,
		logger: logger,
		stopCh: make(chan struct{}),
	}
	h.Reload()
	return h, nil
}

// Get returns the current snapshot.
func (h *Holder) Get() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Reload re-reads and re-parses the watched file.
func (h *Holder) Reload() {
	state := State{LoadedAt: time.Now()}

	text, err := os.ReadFile(h.path)
	if err != nil {
		state.Err = fmt.Errorf("read file: %w", err)
	} else {
		doc, err := parser.Parse(string(text))
		if err != nil {
			state.Err = err
		} else {
			state.Doc = doc
			result := validator.ValidateWith(doc, h.opts)
			state.Result = &result
		}
	}

	h.mu.Lock()
	h.state = state
	h.mu.Unlock()

	if state.Err != nil {
		h.logger.Warn().Err(state.Err).Str("path", h.path).Msg("reload failed, serving error")
		return
	}
	h.logger.Info().
		Str("path", h.path).
		Int("errors", len(state.Result.Errors)).
		Int("warnings", len(state.Result.Warnings)).
		Msg("schema reloaded")
}

// Watch starts watching the file for changes. The directory is watched
// rather than the file itself so atomic editor saves are picked up.
func (h *Holder) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Msg("watching schema file for changes")
	return nil
}

// Stop stops watching for file changes.
func (h *Holder) Stop() {
	close(h.stopCh)
	if h.watcher != nil {
		h.watcher.Close()
	}
}

func (h *Holder) watchLoop() {
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("schema file changed")
				h.Reload()
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}
