package input

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/bimmerbailey/memsift/internal/config"
)

func TestOpenPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memcheck.log")
	content := "==1== Invalid read of size 4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	if src.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", src.Size, len(content))
	}
	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Errorf("read %q, want %q", got, content)
	}
}

func TestOpenGzipFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memcheck.log.gz")
	content := "==1== Invalid read of size 4\n   at 0x1: main (a.c:1)\n"

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Errorf("decompressed read = %q, want %q", got, content)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		arg  string
	}{
		{"missing file", filepath.Join(dir, "nope.log")},
		{"directory", dir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Open(tt.arg)
			if err == nil {
				src.Close()
				t.Fatalf("Open(%q) succeeded, want error", tt.arg)
			}
			if !strings.Contains(err.Error(), "cannot read input") {
				t.Errorf("error %q should describe the input failure", err)
			}
		})
	}
}

func TestChooseMode(t *testing.T) {
	tests := []struct {
		name  string
		size  int64
		force bool
		want  Mode
	}{
		{"small file", 1024, false, ModeBatch},
		{"at threshold", config.StreamThreshold, false, ModeBatch},
		{"above threshold", config.StreamThreshold + 1, false, ModeStream},
		{"stdin always streams", -1, false, ModeStream},
		{"forced stream", 16, true, ModeStream},
		{"forced stream on stdin", -1, true, ModeStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChooseMode(tt.size, tt.force); got != tt.want {
				t.Errorf("ChooseMode(%d, %v) = %v, want %v", tt.size, tt.force, got, tt.want)
			}
		})
	}
}
