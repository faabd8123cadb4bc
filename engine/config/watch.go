package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it is written or recreated and calls fn with each configuration
// that loads cleanly. Invalid edits are logged and skipped. The directory is watched rather than
// the file so editors that replace the file on save are followed. Watch blocks until ctx is done.
//
// Parameters:
//   - ctx: cancels the watch
//   - path: the TOML file
//   - fn: called with each successfully reloaded configuration
//
// Returns:
//   - error: an error if the watcher could not be started, or nil after ctx is done
func Watch(ctx context.Context, path string, fn func(Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	log := common.Logger().With("config", abs)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != abs || e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(abs)
			if err != nil {
				log.Warn("config reload rejected", "err", err)
				continue
			}
			log.Info("config reloaded")
			fn(cfg)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("config watcher", "err", err)
		}
	}
}
