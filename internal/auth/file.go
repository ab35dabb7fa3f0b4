// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/util"
)

// =============================================================================
// FILE SOURCE
// =============================================================================

// FileSource reads the token from a file, such as one kept fresh by an
// external login helper. The contents are cached and re-read whenever the
// watcher sees the file change.
type FileSource struct {
	path string

	mu     sync.RWMutex
	token  string
	loaded bool

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewFileSource creates a source for path. A leading ~ is expanded.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: util.ExpandHome(path)}
}

// FileSourceFromPath creates a source and, when watch is set, starts watching it.
func FileSourceFromPath(path string, watch bool) (*FileSource, error) {
	fs := NewFileSource(path)
	if watch {
		if err := fs.Watch(); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// Path returns the expanded file path.
func (fs *FileSource) Path() string {
	return fs.path
}

// Token returns the cached token, reading the file on first use.
func (fs *FileSource) Token(ctx context.Context) (string, error) {
	fs.mu.RLock()
	if fs.loaded {
		tok := fs.token
		fs.mu.RUnlock()
		if tok == "" {
			return "", ErrNoToken
		}
		return tok, nil
	}
	fs.mu.RUnlock()

	if err := fs.reload(); err != nil {
		return "", err
	}
	return fs.Token(ctx)
}

func (fs *FileSource) reload() error {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		fs.store("")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}
	fs.store(strings.TrimSpace(string(data)))
	return nil
}

func (fs *FileSource) store(tok string) {
	fs.mu.Lock()
	fs.token = tok
	fs.loaded = true
	fs.mu.Unlock()
}

// Invalidate drops the cached token so the next call re-reads the file.
func (fs *FileSource) Invalidate() {
	fs.mu.Lock()
	fs.loaded = false
	fs.mu.Unlock()
}

// =============================================================================
// WATCHING
// =============================================================================

// Watch starts re-reading the token whenever the file is written, created,
// renamed or removed. The parent directory is watched so atomic replacements
// by login helpers are seen.
func (fs *FileSource) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create token watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(fs.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch token dir: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	fs.watcher = watcher
	fs.cancel = cancel
	fs.done = make(chan struct{})

	go fs.processEvents(ctx)
	return nil
}

func (fs *FileSource) processEvents(ctx context.Context) {
	defer close(fs.done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(fs.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if err := fs.reload(); err != nil {
				logger.Logger.Warn().Err(err).Str("path", fs.path).Msg("TOKEN_RELOAD_FAILED")
				continue
			}
			logger.Logger.Debug().Str("op", event.Op.String()).Msg("TOKEN_RELOADED")

		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			logger.Logger.Warn().Err(err).Msg("TOKEN_WATCH_ERROR")
		}
	}
}

// Close stops watching. It is safe to call on a source that never watched.
func (fs *FileSource) Close() error {
	if fs.watcher == nil {
		return nil
	}
	fs.cancel()
	err := fs.watcher.Close()
	<-fs.done
	fs.watcher = nil
	return err
}
