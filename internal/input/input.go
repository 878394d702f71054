// Package input selects and opens the filter's input source: a file path,
// the literal "-", or standard input. Gzip-compressed input is decompressed
// transparently, and the probed on-disk size drives batch vs. stream mode
// selection.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/bimmerbailey/memsift/internal/config"
)

// Mode is the processing strategy chosen for a source.
type Mode int

const (
	ModeBatch Mode = iota
	ModeStream
)

// String returns the mode name used in diagnostics.
func (m Mode) String() string {
	if m == ModeStream {
		return "stream"
	}
	return "batch"
}

// Source is an opened, readable input with enough metadata to pick a mode.
type Source struct {
	r       io.Reader
	closers []io.Closer

	// Name is the display name of the source ("stdin" or the path).
	Name string

	// Size is the probed on-disk size in bytes, or -1 when unknown (stdin).
	// For gzip input this is the compressed size; the probe only picks a
	// mode, it never bounds processing.
	Size int64
}

// Read implements io.Reader.
func (s *Source) Read(p []byte) (int, error) { return s.r.Read(p) }

// Close releases the source's underlying files.
func (s *Source) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open resolves the input argument. An empty arg or "-" selects stdin;
// anything else is validated as an existing, readable regular file.
func Open(arg string) (*Source, error) {
	if arg == "" || arg == "-" {
		src := &Source{Name: "stdin", Size: -1}
		return wrapGzip(src, os.Stdin, false)
	}

	path := filepath.Clean(arg)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read input: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot read input: %s is a directory", path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("cannot read input: %s is not a regular file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read input: %w", err)
	}

	src := &Source{Name: path, Size: info.Size()}
	return wrapGzip(src, f, true)
}

// wrapGzip sniffs the gzip magic bytes and, when present, inserts a
// decompressing reader. Rotated diagnostic logs are routinely gzipped.
func wrapGzip(src *Source, r io.Reader, closeable bool) (*Source, error) {
	if c, ok := r.(io.Closer); ok && closeable {
		src.closers = append(src.closers, c)
	}

	br := bufio.NewReader(r)
	src.r = br

	magic, err := br.Peek(2)
	if err != nil {
		// Short or empty input: not gzip, let the caller read what's there.
		return src, nil
	}
	if magic[0] != 0x1f || magic[1] != 0x8b {
		return src, nil
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return src.closeOnError(fmt.Errorf("cannot read input: bad gzip stream: %w", err))
	}
	src.closers = append(src.closers, zr)
	src.r = zr
	return src, nil
}

func (s *Source) closeOnError(err error) (*Source, error) {
	_ = s.Close()
	return nil, err
}

// ChooseMode picks the processing strategy: streaming when forced, when the
// probed size exceeds the threshold, or when the size is unknown (stdin). A
// pipe has no size to probe and may be unbounded, so it is never buffered
// whole.
func ChooseMode(size int64, forceStream bool) Mode {
	if forceStream || size < 0 {
		return ModeStream
	}
	if size > config.StreamThreshold {
		return ModeStream
	}
	return ModeBatch
}
