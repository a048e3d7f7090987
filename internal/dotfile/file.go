package dotfile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/birdayz/ktopo/kdag"
)

// File writes a rendered topic graph to disk.
//
// Writes are atomic: the graph is rendered into "<path>.tmp", fsynced and
// renamed over path, so readers never observe a half written file.
type File struct {
	Path string
}

// New creates a file writer for path.
func New(path string) *File {
	return &File{Path: path}
}

// Write renders g as DOT and replaces the file with it.
func (f *File) Write(g *kdag.Graph) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmpPath := f.Path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}

	if err := g.WriteDOT(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("render graph: %w", err)
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync output: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}

	if err := os.Rename(tmpPath, f.Path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}

	// The rename is only durable once the directory entry is flushed.
	if runtime.GOOS != "windows" {
		dirFile, err := os.Open(dir)
		if err != nil {
			return fmt.Errorf("open directory for fsync: %w", err)
		}
		defer func() { _ = dirFile.Close() }()

		if err := dirFile.Sync(); err != nil {
			return fmt.Errorf("fsync directory: %w", err)
		}
	}

	return nil
}
