package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"sportanalyzer/internal/logs"
)

func collect(t *testing.T, path string, opts logs.TailOptions) []string {
	t.Helper()
	var lines []string
	if err := logs.Tail(context.Background(), path, opts, func(line string) {
		lines = append(lines, line)
	}); err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	return lines
}

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sportanalyzer.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines := collect(t, path, logs.TailOptions{Lines: 2})
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if lines := collect(t, path, logs.TailOptions{Lines: 10}); len(lines) != 3 {
		t.Fatalf("expected all lines, got %#v", lines)
	}
	if lines := collect(t, path, logs.TailOptions{}); len(lines) != 0 {
		t.Fatalf("expected no lines with zero limit, got %#v", lines)
	}
}

func TestTailMissingFile(t *testing.T) {
	lines := collect(t, filepath.Join(t.TempDir(), "absent.log"), logs.TailOptions{Lines: 5})
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %#v", lines)
	}
}

func TestTailMatchFiltersBeforeCounting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sportanalyzer.log")
	if err := os.WriteFile(path, []byte("keep 1\ndrop\nkeep 2\ndrop\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	lines := collect(t, path, logs.TailOptions{Lines: 2, Match: func(line string) bool {
		return strings.HasPrefix(line, "keep")
	}})
	if len(lines) != 2 || lines[0] != "keep 1" || lines[1] != "keep 2" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestTailFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sportanalyzer.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var lines []string
	first := make(chan struct{})
	got := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- logs.Tail(ctx, path, logs.TailOptions{Lines: 1, Follow: true, Poll: 10 * time.Millisecond}, func(line string) {
			mu.Lock()
			lines = append(lines, line)
			n := len(lines)
			mu.Unlock()
			switch n {
			case 1:
				close(first)
			case 2:
				close(got)
			}
		})
	}()

	select {
	case <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial line")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("next\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for appended line")
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if lines[0] != "start" || lines[1] != "next" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestTailRejectsDirectory(t *testing.T) {
	err := logs.Tail(context.Background(), t.TempDir(), logs.TailOptions{Lines: 1}, func(string) {})
	if err == nil {
		t.Fatal("expected directory error")
	}
}
