// Package watch re-runs analyses when a game's achievement log changes
// on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors per-game achievement log files and triggers a
// callback, debounced, whenever one changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	games    map[string]*gameState // keyed by absolute log path
	mu       sync.RWMutex
	debounce time.Duration

	// OnChange is invoked with the game name after its log settled.
	OnChange func(game string) error

	// OnError receives watch and callback failures.
	OnError func(game string, err error)
}

type gameState struct {
	game         string
	path         string
	lastModified time.Time
	size         int64
	processing   bool
}

// NewWatcher creates a watcher with a half-second debounce.
func NewWatcher() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsWatcher,
		games:    make(map[string]*gameState),
		debounce: 500 * time.Millisecond,
	}, nil
}

// WatchGame starts watching one game's achievement log file.
func (w *Watcher) WatchGame(game, logPath string) error {
	absPath, err := filepath.Abs(logPath)
	if err != nil {
		return fmt.Errorf("watch: resolve %s: %w", logPath, err)
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("watch: stat %s: %w", absPath, err)
	}

	w.mu.Lock()
	w.games[absPath] = &gameState{
		game:         game,
		path:         absPath,
		lastModified: stat.ModTime(),
		size:         stat.Size(),
	}
	w.mu.Unlock()

	// Watch the directory containing the file (fsnotify works better this way)
	dir := filepath.Dir(absPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	return nil
}

// Games returns the watched game names.
func (w *Watcher) Games() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.games))
	for _, s := range w.games {
		names = append(names, s.game)
	}
	return names
}

// Run starts the watch loop. Blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	debounceTimers := make(map[string]*time.Timer)
	var timerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			// Scrapers typically replace the file, so handle renames too.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			absPath, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			w.mu.RLock()
			state, isWatched := w.games[absPath]
			w.mu.RUnlock()
			if !isWatched {
				continue
			}

			// Debounce rapid changes
			timerMu.Lock()
			if timer, exists := debounceTimers[absPath]; exists {
				timer.Stop()
			}
			debounceTimers[absPath] = time.AfterFunc(w.debounce, func() {
				w.handleChange(state)
			})
			timerMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError("", err)
			}
		}
	}
}

func (w *Watcher) handleChange(state *gameState) {
	w.mu.Lock()
	if state.processing {
		w.mu.Unlock()
		return
	}
	state.processing = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		state.processing = false
		w.mu.Unlock()
	}()

	stat, err := os.Stat(state.path)
	if err != nil {
		if w.OnError != nil {
			w.OnError(state.game, err)
		}
		return
	}

	// Ignore events that did not actually change the file.
	if stat.ModTime().Equal(state.lastModified) && stat.Size() == state.size {
		return
	}

	w.mu.Lock()
	state.lastModified = stat.ModTime()
	state.size = stat.Size()
	w.mu.Unlock()

	if w.OnChange != nil {
		if err := w.OnChange(state.game); err != nil {
			if w.OnError != nil {
				w.OnError(state.game, err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// GameForFile maps an achievement log file name back to its game name,
// or "" when the name does not follow the <GAME>_achievement_logs.csv
// convention.
func GameForFile(name string) string {
	base := filepath.Base(name)
	const suffix = "_achievement_logs.csv"
	if !strings.HasSuffix(base, suffix) {
		return ""
	}
	return strings.TrimSuffix(base, suffix)
}
