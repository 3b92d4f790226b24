package descriptor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrPageViewsFormat is returned for lines that are not `path:count`.
var ErrPageViewsFormat = errors.New("descriptor: page views line must be path:count")

// PageViews maps a document's relative_dir_path to its view count.
type PageViews map[string]int

// Lookup returns the count recorded for path, or zero.
func (p PageViews) Lookup(path string) int {
	if p == nil {
		return 0
	}
	return p[path]
}

// ParsePageViews reads `path:count` lines. Blank lines are skipped. The
// count is taken after the last colon so paths may contain colons.
func ParsePageViews(r io.Reader) (PageViews, error) {
	views := PageViews{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		idx := strings.LastIndex(line, ":")
		if idx <= 0 {
			return nil, fmt.Errorf("%w: line %d", ErrPageViewsFormat, lineNo)
		}
		count, err := strconv.Atoi(strings.TrimSpace(line[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrPageViewsFormat, lineNo, err)
		}
		views[strings.TrimSpace(line[:idx])] = count
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// LoadPageViews reads the page views file at path.
func LoadPageViews(path string) (PageViews, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("descriptor: open page views: %w", err)
	}
	defer file.Close()
	return ParsePageViews(file)
}
