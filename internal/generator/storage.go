package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type writeCategory string

const (
	categoryDocument writeCategory = "document"
	categoryIndex    writeCategory = "index"
	categoryAsset    writeCategory = "asset"
)

// WriteFileRequest describes a file write routed through an ArtifactWriter.
type WriteFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Format      string
	Category    writeCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// ArtifactWriter persists generator outputs. Paths are slash or OS
// separated and relative to the writer's root.
type ArtifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteFileRequest) error
	RemoveAll(ctx context.Context, path string) error
}

// NewFilesystemWriter returns a writer rooted at root on the local disk.
func NewFilesystemWriter(root string) ArtifactWriter {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	return &filesystemWriter{root: root}
}

type filesystemWriter struct {
	root string
}

func (w *filesystemWriter) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("generator: path %q escapes output root", path)
	}
	return filepath.Join(w.root, clean), nil
}

func (w *filesystemWriter) EnsureDir(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0o755)
}

func (w *filesystemWriter) WriteFile(ctx context.Context, req WriteFileRequest) error {
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := w.resolve(req.Path)
	if err != nil {
		return err
	}
	file, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, req.Content); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func (w *filesystemWriter) RemoveAll(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	return os.RemoveAll(full)
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, WriteFileRequest) error { return nil }

func (noopWriter) RemoveAll(context.Context, string) error { return nil }
