// Package tail follows a growing diagnostic log and filters it live.
//
// Appended lines are fed into a live deduplication engine: accepted blocks
// are emitted as soon as they finalize, and a marker occurrence resets the
// seen-set on the fly. Unlike streaming mode there is no pending buffer,
// because a tail has no end-of-input to wait for and emitted blocks cannot
// be retracted.
package tail

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bimmerbailey/memsift/internal/config"
	"github.com/bimmerbailey/memsift/internal/dedupe"
)

// Options configures the tailer behavior.
type Options struct {
	FilePath     string          // Path to the log file
	FromStart    bool            // Process existing content before following
	FollowRotate bool            // Whether to follow through log rotations
	Filter       config.Options  // Engine options (marker, depth, ...)
	Limits       config.Limits   // Resource limits
	Emit         dedupe.EmitFunc // Called for each accepted block
}

// Tailer follows a log file through a live deduplication engine.
type Tailer struct {
	opts    Options
	engine  *dedupe.Engine
	file    *os.File
	offset  int64
	partial []byte
	watcher *fsnotify.Watcher
}

// New creates a new Tailer with the given options.
func New(opts Options) *Tailer {
	return &Tailer{
		opts:   opts,
		engine: dedupe.New(opts.Filter, opts.Limits, dedupe.ModeLive, opts.Emit),
	}
}

// Run starts the tailing process. It blocks until the context is cancelled
// or a fatal error occurs. On cancellation the in-progress block is
// finalized as if the input had ended.
func (t *Tailer) Run(ctx context.Context) error {
	if err := t.openFile(); err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer t.close()

	if t.opts.FromStart {
		if err := t.drain(); err != nil {
			return err
		}
	}

	if err := t.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	return t.watch(ctx)
}

// openFile opens the log file and positions the read offset.
func (t *Tailer) openFile() error {
	f, err := os.Open(t.opts.FilePath)
	if err != nil {
		return err
	}
	t.file = f

	if t.opts.FromStart {
		t.offset = 0
		return nil
	}
	stat, err := f.Stat()
	if err != nil {
		return err
	}
	t.offset = stat.Size()
	return nil
}

// setupWatcher initializes the fsnotify watcher.
func (t *Tailer) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	t.watcher = watcher
	return watcher.Add(t.opts.FilePath)
}

// watch monitors the file for changes and feeds new lines to the engine.
func (t *Tailer) watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return t.engine.Flush()

		case event, ok := <-t.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if err := t.handleEvent(ctx, event); err != nil {
				return err
			}

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// handleEvent processes a file system event.
func (t *Tailer) handleEvent(ctx context.Context, event fsnotify.Event) error {
	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		return t.drain()

	case event.Op&fsnotify.Remove == fsnotify.Remove || event.Op&fsnotify.Rename == fsnotify.Rename:
		return t.handleRotation(ctx)
	}
	return nil
}

// drain reads everything appended since the last offset and feeds complete
// lines to the engine. A trailing partial line is held back until its
// newline arrives.
func (t *Tailer) drain() error {
	if _, err := t.file.Seek(t.offset, io.SeekStart); err != nil {
		return err
	}
	r := bufio.NewReader(t.file)
	for {
		chunk, err := r.ReadBytes('\n')
		if len(chunk) > 0 {
			t.offset += int64(len(chunk))
			if chunk[len(chunk)-1] == '\n' {
				line := string(t.partial) + strings.TrimSuffix(string(chunk[:len(chunk)-1]), "\r")
				t.partial = t.partial[:0]
				if feedErr := t.engine.Feed(line); feedErr != nil {
					return feedErr
				}
			} else {
				t.partial = append(t.partial, chunk...)
				if len(t.partial) > t.opts.Limits.MaxLineBytes {
					return &dedupe.LimitError{Limit: dedupe.LimitLine, Max: t.opts.Limits.MaxLineBytes}
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// handleRotation handles log file rotation.
func (t *Tailer) handleRotation(ctx context.Context) error {
	if !t.opts.FollowRotate {
		fmt.Fprintf(os.Stderr, "\nFile rotated. Exiting. Use --follow-rotate to follow through rotations.\n")
		return fmt.Errorf("file rotated")
	}

	if t.file != nil {
		t.file.Close()
		t.file = nil
	}

	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return t.engine.Flush()
		case <-timeout:
			return fmt.Errorf("timeout waiting for rotated file to reappear")
		case <-ticker.C:
			f, err := os.Open(t.opts.FilePath)
			if err != nil {
				continue
			}
			t.file = f
			t.offset = 0
			t.partial = t.partial[:0]
			if err := t.watcher.Add(t.opts.FilePath); err != nil {
				return fmt.Errorf("failed to watch rotated file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "\n==> File rotated, following new file <==\n")
			return t.drain()
		}
	}
}

// close closes all resources.
func (t *Tailer) close() {
	if t.file != nil {
		t.file.Close()
	}
	if t.watcher != nil {
		t.watcher.Close()
	}
}
