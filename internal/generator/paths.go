package generator

import (
	"path/filepath"
	"strings"
)

// formatRoot is the output directory of one format, e.g. target/html.
func formatRoot(targetDir, suffix string) string {
	return filepath.Join(targetDir, suffix)
}

func joinOutputPath(base string, rel string) string {
	rel = filepath.FromSlash(strings.TrimLeft(rel, "/"))
	if strings.TrimSpace(base) == "" {
		return rel
	}
	return filepath.Join(base, rel)
}
