package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle collapses the burst of events editors produce for one save.
const watchSettle = 200 * time.Millisecond

// Watch reloads the file at configPath whenever it is written, created or
// replaced, and passes the result to onChange. The directory is watched so
// editors that save through a rename are still seen. A file that was moved
// away or deleted is skipped until it reappears; no default is written in
// its place. Watch blocks until ctx is done.
func Watch(ctx context.Context, configPath string, onChange func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path '%s': %w", configPath, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch config directory '%s': %w", filepath.Dir(abs), err)
	}
	log.Printf("Watching config file '%s' for changes", abs)

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				settle = time.After(watchSettle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Warning: config watcher: %v", err)
		case <-settle:
			settle = nil
			cfg, err := Reload(configPath)
			if errors.Is(err, os.ErrNotExist) {
				log.Printf("Config file '%s' is gone, keeping the current configuration", abs)
				continue
			}
			onChange(cfg, err)
		}
	}
}
