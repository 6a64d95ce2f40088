package media_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"sportanalyzer/internal/config"
	"sportanalyzer/internal/media"
)

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestStatPopulatesFile(t *testing.T) {
	path := writeFile(t, "Dunk.MP4", 2048)

	file, err := media.Stat(path)
	if err != nil {
		t.Fatalf("Stat returned error: %v", err)
	}
	if file.Name != "Dunk.MP4" || file.Size != 2048 {
		t.Fatalf("unexpected file: %+v", file)
	}
	if file.Ext() != ".mp4" {
		t.Fatalf("expected lowercased extension, got %q", file.Ext())
	}
	if file.HumanSize() != "2.0 KiB" {
		t.Fatalf("unexpected human size: %q", file.HumanSize())
	}
}

func TestStatRejectsDirectoriesAndMissingFiles(t *testing.T) {
	if _, err := media.Stat(t.TempDir()); err == nil {
		t.Fatal("expected error for directory")
	}
	if _, err := media.Stat(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := media.Stat(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestAcceptedMatchesAllowlist(t *testing.T) {
	allow := config.DefaultAcceptedExtensions()
	tests := []struct {
		name string
		want bool
	}{
		{"clip.mp4", true},
		{"clip.MOV", true},
		{"clip.webm", true},
		{"clip.avi", true},
		{"clip.mkv", true},
		{"notes.txt", false},
		{"noext", false},
		{"archive.mp4.zip", false},
	}
	for _, tc := range tests {
		file := media.File{Path: "/tmp/" + tc.name, Name: tc.name}
		if got := file.Accepted(allow); got != tc.want {
			t.Fatalf("Accepted(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestOpenReadsContents(t *testing.T) {
	path := writeFile(t, "clip.mp4", 10)
	file, err := media.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	rc, err := file.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil || len(data) != 10 {
		t.Fatalf("unexpected read: %d bytes, err=%v", len(data), err)
	}

	if _, err := (media.File{}).Open(); err == nil {
		t.Fatal("expected error opening zero File")
	}
}

func TestHumanBytes(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1536:            "1.5 KiB",
		5 * 1024 * 1024: "5.0 MiB",
		3 << 30:         "3.0 GiB",
	}
	for in, want := range tests {
		if got := media.HumanBytes(in); got != want {
			t.Fatalf("HumanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
