package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/luki/proctemp/internal/logger"
)

// Watcher reloads the options file when it changes on disk. It watches
// the file's directory so editors that replace the file are noticed.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(Options)

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}
}

// NewWatcher creates a watcher that calls onChange with the reloaded
// options. Files that fail to parse are logged and skipped.
func NewWatcher(path string, onChange func(Options)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     path,
		watcher:  w,
		onChange: onChange,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The directory must exist.
func (fw *Watcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.running {
		return nil
	}

	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}
	fw.running = true

	log := logger.WithComponent("config-watcher")
	log.Info().Str("path", fw.path).Msg("watching config file")

	go fw.watch()
	return nil
}

// Stop stops watching and waits for the watch goroutine to exit.
func (fw *Watcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return fw.watcher.Close()
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.stopChan)
	<-fw.done
	return fw.watcher.Close()
}

func (fw *Watcher) watch() {
	defer close(fw.done)

	log := logger.WithComponent("config-watcher")
	filename := filepath.Base(fw.path)

	for {
		select {
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			opts, err := Load(fw.path)
			if err != nil {
				log.Error().Err(err).Msg("failed to reload config")
				continue
			}
			log.Info().Str("event", event.Op.String()).Msg("config reloaded")
			if fw.onChange != nil {
				fw.onChange(opts)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Str("path", fw.path).Msg("config watcher error")
		}
	}
}
