package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/gethiox/padmacro/internal/pkg/logger"
)

// DetectConfigChanges reports writes to the given config file.
// The parent directory is watched, editors often replace files instead of writing them in place.
// The returned channel is closed when ctx is done.
func DetectConfigChanges(ctx context.Context, path string) (<-chan bool, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher failed: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("resolving config path failed: %w", err)
	}

	err = watcher.Add(filepath.Dir(abs))
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching config directory failed: %w", err)
	}

	var change = make(chan bool)

	go func() {
		<-ctx.Done()
		err := watcher.Close()
		if err != nil {
			log.Info(fmt.Sprintf("closing watcher failed: %v", err), logger.Debug)
		}
	}()

	go func() {
		defer close(change)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || name != abs {
					continue
				}

				log.Info(fmt.Sprintf("config change detected: %s", event.Name), logger.Info)
				select {
				case change <- true:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Info(fmt.Sprintf("config watcher error: %v", err), logger.Warning)
			}
		}
	}()

	return change, nil
}
