package server

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	// OpCreate indicates a new asset was created.
	OpCreate EventOp = iota
	// OpModify indicates an existing asset was modified.
	OpModify
	// OpDelete indicates an asset was deleted.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op EventOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// AssetEvent represents a change to a watched static asset.
type AssetEvent struct {
	// Path is the path to the asset that changed.
	Path string
	// Op is the operation that occurred (create, modify, delete).
	Op EventOp
}

// assetExtensions lists the file extensions that trigger reload events.
var assetExtensions = map[string]bool{
	".css":  true,
	".js":   true,
	".html": true,
}

// AssetWatcher watches a static assets directory for changes.
// It uses fsnotify for cross-platform file system event monitoring.
type AssetWatcher struct {
	watcher *fsnotify.Watcher
	events  chan AssetEvent
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	dir     string
}

// NewAssetWatcher creates a new AssetWatcher instance.
// The watcher must be started with Start() before it will emit events.
func NewAssetWatcher() (*AssetWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &AssetWatcher{
		watcher: watcher,
		events:  make(chan AssetEvent, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching the specified directory for asset changes.
// Returns an error if the directory cannot be watched.
func (aw *AssetWatcher) Start(dir string) error {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if aw.running {
		return fmt.Errorf("watcher already running")
	}

	aw.dir = dir

	if err := aw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch assets directory %s: %w", dir, err)
	}

	aw.running = true
	aw.wg.Add(1)
	go aw.processEvents()

	return nil
}

// Stop stops watching for file system events and cleans up resources.
// It blocks until the event processing goroutine has exited.
func (aw *AssetWatcher) Stop() error {
	aw.mu.Lock()
	if !aw.running {
		aw.mu.Unlock()
		return nil
	}
	aw.running = false
	aw.mu.Unlock()

	// Signal shutdown
	close(aw.done)

	// Close the underlying watcher (this will unblock the event loop)
	if err := aw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	// Wait for event processing to finish
	aw.wg.Wait()

	// Close channels
	close(aw.events)
	close(aw.errors)

	return nil
}

// Events returns the channel that emits AssetEvent notifications.
// This channel is closed when the watcher is stopped.
func (aw *AssetWatcher) Events() <-chan AssetEvent {
	return aw.events
}

// Errors returns the channel that emits error notifications.
// This channel is closed when the watcher is stopped.
func (aw *AssetWatcher) Errors() <-chan error {
	return aw.errors
}

// processEvents is the main event loop that processes fsnotify events
// and converts them to AssetEvent notifications.
func (aw *AssetWatcher) processEvents() {
	defer aw.wg.Done()

	for {
		select {
		case <-aw.done:
			return

		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}

			if assetEvent, ok := aw.convertEvent(event); ok {
				select {
				case aw.events <- assetEvent:
				case <-aw.done:
					return
				}
			}

		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}

			select {
			case aw.errors <- err:
			case <-aw.done:
				return
			}
		}
	}
}

// convertEvent converts an fsnotify event to an AssetEvent.
// Returns (AssetEvent, true) if the event should be processed,
// or (AssetEvent{}, false) if the event should be ignored.
func (aw *AssetWatcher) convertEvent(event fsnotify.Event) (AssetEvent, bool) {
	if !assetExtensions[strings.ToLower(filepath.Ext(event.Name))] {
		return AssetEvent{}, false
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		// Treat rename as delete (the new name will trigger a create)
		op = OpDelete
	default:
		// Ignore chmod and other events
		return AssetEvent{}, false
	}

	return AssetEvent{
		Path: event.Name,
		Op:   op,
	}, true
}

// IsRunning returns true if the watcher is currently running.
func (aw *AssetWatcher) IsRunning() bool {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	return aw.running
}

// WatchAssets starts an asset watcher on dir and forwards its events to
// connected WebSocket clients as reload messages. The watcher is stopped
// when the server shuts down; callers still own the returned watcher and
// may stop it earlier.
func (s *Server) WatchAssets(dir string) (*AssetWatcher, error) {
	aw, err := NewAssetWatcher()
	if err != nil {
		return nil, err
	}
	if err := aw.Start(dir); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ctx.Done():
				_ = aw.Stop()
				return
			case ev, ok := <-aw.Events():
				if !ok {
					return
				}
				s.logger.Printf("Asset %s: %s", ev.Op, ev.Path)
				raw, err := json.Marshal(ReloadData{Path: ev.Path})
				if err != nil {
					continue
				}
				s.Broadcast(Message{
					Type:      MessageTypeReload,
					Timestamp: time.Now(),
					Data:      raw,
				})
			case err, ok := <-aw.Errors():
				if !ok {
					return
				}
				s.logger.Printf("Asset watcher error: %v", err)
			}
		}
	}()

	return aw, nil
}
