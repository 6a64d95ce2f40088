package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// File is an opaque reference to a user-selected video.
type File struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Stat resolves path into a File. Directories are rejected.
func Stat(path string) (File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return File{}, errors.New("media stat: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("media stat: resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return File{}, fmt.Errorf("media stat: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("media stat: %s is a directory", abs)
	}
	return File{
		Path:    abs,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Ext returns the lowercased extension including the leading dot.
func (f File) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Accepted reports whether the file's container is in the allowlist.
func (f File) Accepted(extensions []string) bool {
	ext := f.Ext()
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(extensions, func(candidate string) bool {
		return strings.EqualFold(strings.TrimSpace(candidate), ext)
	})
}

// IsZero reports whether no file has been set.
func (f File) IsZero() bool {
	return f.Path == ""
}

// Open returns a reader over the file contents.
func (f File) Open() (io.ReadCloser, error) {
	if f.IsZero() {
		return nil, errors.New("media open: no file")
	}
	return os.Open(f.Path)
}

// HumanSize renders Size with binary units.
func (f File) HumanSize() string {
	return HumanBytes(f.Size)
}

// HumanBytes formats v as B, KiB, MiB, ...
func HumanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(v)/float64(div), "KMGTPE"[exp])
}
