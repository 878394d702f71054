package tail

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bimmerbailey/memsift/internal/config"
	"github.com/bimmerbailey/memsift/internal/dedupe"
)

func testFilterOptions() config.Options {
	return config.Options{Marker: config.DefaultMarker}
}

func TestFollowEmitsBlocksFromAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memcheck.log")
	if err := os.WriteFile(path, []byte("==1== Invalid read of size 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	tailer := New(Options{
		FilePath:  path,
		FromStart: true,
		Filter:    testFilterOptions(),
		Limits:    config.DefaultLimits(),
		Emit: func(b *dedupe.Block) error {
			out.WriteString(b.Text())
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tailer.Run(ctx) }()

	// Give the watcher time to attach before appending.
	time.Sleep(300 * time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	// The second block-start finalizes the first block; the second block
	// itself finalizes on shutdown.
	if _, err := f.WriteString("==2== LEAK SUMMARY:\n"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tailer did not stop after cancellation")
	}

	got := out.String()
	if !strings.Contains(got, "Invalid read of size 4") {
		t.Errorf("first block missing from output:\n%s", got)
	}
	if !strings.Contains(got, "LEAK SUMMARY") {
		t.Errorf("block pending at shutdown must be flushed:\n%s", got)
	}
}

func TestFollowSuppressesDuplicateBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memcheck.log")
	content := strings.Join([]string{
		"==1== Invalid read of size 4",
		"   at 0x1: f (a.c:1)",
		"==2== Invalid read of size 4",
		"   at 0x2: f (a.c:1)",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	tailer := New(Options{
		FilePath:  path,
		FromStart: true,
		Filter:    testFilterOptions(),
		Limits:    config.DefaultLimits(),
		Emit: func(b *dedupe.Block) error {
			out.WriteString(b.Text())
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tailer.Run(ctx) }()

	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tailer did not stop after cancellation")
	}

	if got := strings.Count(out.String(), "Invalid read of size 4"); got != 1 {
		t.Errorf("expected one copy of the duplicated block, got %d:\n%s", got, out.String())
	}
}

func TestFollowMissingFile(t *testing.T) {
	tailer := New(Options{
		FilePath: filepath.Join(t.TempDir(), "nope.log"),
		Filter:   testFilterOptions(),
		Limits:   config.DefaultLimits(),
		Emit:     func(*dedupe.Block) error { return nil },
	})

	if err := tailer.Run(context.Background()); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
