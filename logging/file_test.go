package logging

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileWriterAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	fw, err := NewFileWriter(dir, "meme-tui.log", 1, 2)
	if err != nil {
		t.Fatalf("new file writer: %v", err)
	}
	if _, err := fw.Write([]byte("first\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	fw, err = NewFileWriter(dir, "meme-tui.log", 1, 2)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer fw.Close()
	if _, err := fw.Write([]byte("second\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	content, err := os.ReadFile(fw.Path())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(content) != "first\nsecond\n" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestFileWriterRotatesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(dir, "ui.log", 1, 2)
	if err != nil {
		t.Fatalf("new file writer: %v", err)
	}
	defer fw.Close()
	fw.maxSize = 16

	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fw.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	for i := 0; i < 5; i++ {
		if _, err := fw.Write([]byte("0123456789abcdef\n")); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	archives, err := filepath.Glob(fw.Path() + ".*.gz")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(archives) != 2 {
		t.Fatalf("expected 2 archives after pruning, got %v", archives)
	}

	f, err := os.Open(archives[1])
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	data, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if !strings.HasPrefix(string(data), "0123456789abcdef") {
		t.Fatalf("unexpected archive content %q", data)
	}
}

func TestFileWriterRejectsWritesAfterClose(t *testing.T) {
	fw, err := NewFileWriter(t.TempDir(), "ui.log", 1, 1)
	if err != nil {
		t.Fatalf("new file writer: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := fw.Write([]byte("late")); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("expected os.ErrClosed, got %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
