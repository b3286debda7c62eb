// Package watch re-runs a comparison whenever either of two files on
// disk changes, with a debounce window so editor save bursts and atomic
// rename saves collapse into one reload.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/baditaflorin/go_text_compare/internal/ports"
	"github.com/baditaflorin/go_text_compare/pkg/debounce"
)

// DefaultDebounce is the quiet window after the last file event before
// the files are re-read.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives the contents of both files after a change settles.
// When reading either file fails, err is non-nil and the contents are
// empty. The context is cancelled when a newer change supersedes this
// reload or the watcher closes.
type Handler func(ctx context.Context, a, b string, err error)

// Config holds configuration for the watcher.
type Config struct {
	Debounce time.Duration
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Debounce: DefaultDebounce,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Debounce <= 0 {
		return errors.New("debounce window must be greater than 0")
	}
	return nil
}

// Watcher watches two files and hands their contents to a handler after
// each settled change. The parent directories are watched rather than
// the files themselves, so editors that save through rename and recreate
// keep triggering events.
type Watcher struct {
	pathA   string
	pathB   string
	handler Handler
	logger  ports.Logger

	fsw       *fsnotify.Watcher
	debouncer *debounce.Debouncer
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a watcher over the two paths. The paths must exist when the
// first reload fires, but may be removed and recreated afterwards.
func New(config Config, pathA, pathB string, handler Handler, logger ports.Logger) (*Watcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, errors.New("handler must not be nil")
	}

	absA, err := filepath.Abs(pathA)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", pathA, err)
	}
	absB, err := filepath.Abs(pathB)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", pathB, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dirs := map[string]struct{}{
		filepath.Dir(absA): {},
		filepath.Dir(absB): {},
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w := &Watcher{
		pathA:   absA,
		pathB:   absB,
		handler: handler,
		logger:  logger,
		fsw:     fsw,
		done:    make(chan struct{}),
	}
	w.debouncer = debounce.New(config.Debounce, w.reload)

	return w, nil
}

// Start launches the event loop and runs one initial reload synchronously
// before returning, so callers see a first result without touching the
// files.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()

	w.logger.Info("Watching files",
		"file_a", w.pathA,
		"file_b", w.pathB,
	)

	w.debouncer.Trigger()
	w.debouncer.Flush()
}

// Close stops the event loop, cancels an in-flight reload and waits for
// it to return.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
		w.debouncer.Stop()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("File changed",
				"file", event.Name,
				"op", event.Op.String(),
			)
			w.debouncer.Trigger()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// relevant filters directory events down to the two watched files.
func (w *Watcher) relevant(name string) bool {
	p := filepath.Clean(name)
	return p == w.pathA || p == w.pathB
}

// reload runs as the debounce action once a change settles.
func (w *Watcher) reload(ctx context.Context) {
	var a, b []byte
	var g errgroup.Group
	g.Go(func() error {
		data, err := os.ReadFile(w.pathA)
		if err != nil {
			return fmt.Errorf("read %s: %w", w.pathA, err)
		}
		a = data
		return nil
	})
	g.Go(func() error {
		data, err := os.ReadFile(w.pathB)
		if err != nil {
			return fmt.Errorf("read %s: %w", w.pathB, err)
		}
		b = data
		return nil
	})
	err := g.Wait()
	if ctx.Err() != nil {
		// Superseded while reading, a fresh reload is already queued.
		return
	}
	if err != nil {
		w.handler(ctx, "", "", err)
		return
	}

	w.handler(ctx, string(a), string(b), nil)
}
