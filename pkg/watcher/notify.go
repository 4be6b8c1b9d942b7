package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// runNotifyLoop sets up a recursive fsnotify subscription over root and
// runs the dispatch loop until shutdown is requested. It returns an error
// only if setup itself fails, in which case the caller falls back to
// polling; once the loop is running, internal watcher errors are reported
// as Error events and do not unwind this function.
func (h *Handle) runNotifyLoop(root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer w.Close()

	if err := addRecursive(w, root); err != nil {
		return fmt.Errorf("register watches under %s: %w", root, err)
	}

	h.watchLoop(w, root)
	return nil
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Printf("walk %s: %v", p, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := w.Add(p); addErr != nil {
			logger.Printf("watch %s: %v", p, addErr)
		}
		return nil
	})
}

func (h *Handle) watchLoop(w *fsnotify.Watcher, root string) {
	const shutdownPoll = 250 * time.Millisecond
	ticker := time.NewTicker(shutdownPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if h.shutdown.Load() {
				return
			}
		case evt, ok := <-w.Events:
			if !ok {
				h.emit(errorEvent(root, "fsnotify event channel closed", time.Now()))
				h.runPollingLoop(root, DefaultConfig)
				return
			}
			h.handleEvent(w, evt)
		case err, ok := <-w.Errors:
			if !ok {
				continue
			}
			h.emit(errorEvent(root, err.Error(), time.Now()))
			h.emit(rescanEvent(root, time.Now()))
		}
		if h.shutdown.Load() {
			return
		}
	}
}

func (h *Handle) handleEvent(w *fsnotify.Watcher, evt fsnotify.Event) {
	switch {
	case evt.Op&fsnotify.Chmod != 0 && evt.Op&^fsnotify.Chmod == 0:
		// Chmod alone carries no content-relevant information.
		return
	case evt.Op&fsnotify.Create != 0:
		h.emit(dirtyEvent(evt.Name, time.Now()))
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := addRecursive(w, evt.Name); err != nil {
				logger.Printf("watch new dir %s: %v", evt.Name, err)
			}
		}
	case evt.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0:
		h.emit(dirtyEvent(evt.Name, time.Now()))
		if evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			w.Remove(evt.Name)
		}
	}
}
