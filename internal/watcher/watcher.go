// Package watcher re-syncs the corpus when files under the local
// document sources change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/logger"
)

// DefaultDebounce is how long the watcher stays quiet after the last
// file event before it triggers a sync. Editors fire bursts of events
// per save; one sync should cover the whole burst.
const DefaultDebounce = 500 * time.Millisecond

// Syncer runs one synchronisation pass over the registered sources.
type Syncer interface {
	Sync(ctx context.Context, opts domain.SyncOptions) (*domain.SyncReport, error)
}

// Options adjust watcher behaviour.
type Options struct {
	// Roots are the local files or directories to observe. Directories
	// are watched recursively.
	Roots []string

	// Debounce overrides the quiet period between the last file event
	// and the sync it triggers.
	Debounce time.Duration

	// OnReport receives the outcome of every triggered sync. Optional.
	OnReport func(report *domain.SyncReport, err error)
}

// Watcher observes local source trees and re-runs sync after changes.
// URL, github and command-loaded sources have no local footprint and
// are never watched; a manual sync still refreshes them.
type Watcher struct {
	syncer   Syncer
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onReport func(*domain.SyncReport, error)
}

// New creates a watcher over the given local roots. Roots that do not
// exist are skipped with a warning; at least one must be watchable.
func New(syncer Syncer, opts Options) (*Watcher, error) {
	if syncer == nil {
		return nil, fmt.Errorf("%w: syncer is required", domain.ErrInvalidInput)
	}
	if len(opts.Roots) == 0 {
		return nil, fmt.Errorf("%w: no local sources to watch", domain.ErrInvalidInput)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		syncer:   syncer,
		fsw:      fsw,
		debounce: opts.Debounce,
		onReport: opts.OnReport,
	}

	watched := 0
	for _, root := range opts.Roots {
		n, err := w.addTree(root)
		if err != nil {
			logger.Warn("Cannot watch %s: %v", root, err)
			continue
		}
		watched += n
	}
	if watched == 0 {
		fsw.Close()
		return nil, fmt.Errorf("%w: none of the local sources can be watched", domain.ErrNotFound)
	}

	logger.Debug("Watching %d directories across %d roots", watched, len(opts.Roots))
	return w, nil
}

// addTree registers root and every directory below it. A root that is
// a plain file is watched through its parent directory so saves that
// replace the file are still seen.
func (w *Watcher) addTree(root string) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		if err := w.fsw.Add(filepath.Dir(root)); err != nil {
			return 0, err
		}
		return 1, nil
	}

	count := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Run blocks until ctx is cancelled, triggering a sync with
// refresh=false once every burst of file events has settled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	// The timer starts disarmed; the first relevant event arms it.
	debounce := time.NewTimer(w.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			// Directories created under a watched tree join the watch,
			// otherwise files nested in them would change unseen.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(ev.Name); err != nil {
						logger.Warn("Cannot watch new directory %s: %v", ev.Name, err)
					}
				}
			}
			logger.Debug("File event: %s", ev)
			pending = true
			debounce.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			w.syncNow(ctx)
		}
	}
}

// syncNow runs one sync pass and reports its outcome.
func (w *Watcher) syncNow(ctx context.Context) {
	logger.Info("Change detected, syncing")
	report, err := w.syncer.Sync(ctx, domain.SyncOptions{})
	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, domain.ErrSyncInProgress):
		// A manual sync is running; the next event burst retries.
		logger.Debug("Sync already in progress, skipping")
		return
	case err != nil:
		logger.Warn("Watch sync failed: %v", err)
	}
	if w.onReport != nil {
		w.onReport(report, err)
	}
}

// relevant filters the event kinds that change corpus content.
func relevant(ev fsnotify.Event) bool {
	return ev.Op.Has(fsnotify.Create) ||
		ev.Op.Has(fsnotify.Write) ||
		ev.Op.Has(fsnotify.Remove) ||
		ev.Op.Has(fsnotify.Rename)
}
