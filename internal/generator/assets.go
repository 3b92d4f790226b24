package generator

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

type assetCopySummary struct {
	Built int
}

// copyStatic mirrors every file under staticDir into outputDir verbatim.
// A missing static directory is not an error.
func copyStatic(ctx context.Context, source fs.FS, writer ArtifactWriter, staticDir, outputDir, format string, cache map[string]struct{}) (assetCopySummary, []RenderedPage, error) {
	summary := assetCopySummary{}
	var rendered []RenderedPage

	if _, err := fs.Stat(source, staticDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return summary, nil, nil
		}
		return summary, nil, err
	}

	err := fs.WalkDir(source, staticDir, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(current, staticDir), "/")
		data, err := fs.ReadFile(source, current)
		if err != nil {
			return err
		}
		fullPath := joinOutputPath(outputDir, rel)
		if err := ensureDir(ctx, writer, cache, filepath.Dir(fullPath)); err != nil {
			return err
		}
		checksum := computeHash(data)
		req := WriteFileRequest{
			Path:        fullPath,
			Content:     bytes.NewReader(data),
			Size:        int64(len(data)),
			Format:      format,
			Category:    categoryAsset,
			ContentType: detectAssetContentType(rel),
			Checksum:    checksum,
			Metadata:    map[string]string{"asset": rel},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
		summary.Built++
		rendered = append(rendered, RenderedPage{
			Format:   format,
			Kind:     KindAsset,
			Source:   path.Join(staticDir, rel),
			Output:   fullPath,
			Checksum: checksum,
			Bytes:    len(data),
		})
		return nil
	})
	return summary, rendered, err
}

func detectAssetContentType(asset string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	switch ext {
	case "html", "htm":
		return "text/html; charset=utf-8"
	case "gmi", "gemini":
		return "text/gemini; charset=utf-8"
	case "xml":
		return "application/xml"
	case "txt":
		return "text/plain; charset=utf-8"
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
