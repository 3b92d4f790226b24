package indexes

import (
	"errors"
	"fmt"
	"maps"
	"sort"

	goerrors "github.com/goliatone/go-errors"
)

const unresolvedInlineCode = "INLINE_REFERENCE_UNRESOLVED"

var (
	// ErrUnresolvedInlineReference is returned when a value list inlines a
	// value index output that was never generated.
	ErrUnresolvedInlineReference = errors.New("indexes: unresolved inline reference")
	// ErrDuplicateOutput is returned when a pool key is written twice.
	ErrDuplicateOutput = errors.New("indexes: output already generated")
)

// ValueIndexKey names the pool entry of a value index for one value.
func ValueIndexKey(taxonomyID, indexID, normalizedValue string) string {
	return taxonomyID + "_" + indexID + "_" + normalizedValue
}

// ValueListKey names the pool entry of a value list.
func ValueListKey(taxonomyID, listID string) string {
	return taxonomyID + "_" + listID
}

// Pool is the append-only table of generated variable outputs for one
// format run.
type Pool struct {
	entries map[string]string
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{entries: map[string]string{}}
}

// Put stores content under key. Existing entries are never replaced.
func (p *Pool) Put(key, content string) error {
	if _, exists := p.entries[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateOutput, key)
	}
	p.entries[key] = content
	return nil
}

// Get returns the entry stored under key.
func (p *Pool) Get(key string) (string, error) {
	if content, ok := p.entries[key]; ok {
		return content, nil
	}
	return "", goerrors.Wrap(fmt.Errorf("%w: %s", ErrUnresolvedInlineReference, key), goerrors.CategoryNotFound, "inlined index output "+key+" has not been generated").
		WithTextCode(unresolvedInlineCode).
		WithMetadata(map[string]any{"key": key})
}

// Snapshot returns a copy of the entries, suitable for a scope layer.
func (p *Pool) Snapshot() map[string]string {
	return maps.Clone(p.entries)
}

// Keys returns the stored keys sorted.
func (p *Pool) Keys() []string {
	keys := make([]string, 0, len(p.entries))
	for key := range p.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len reports the number of entries.
func (p *Pool) Len() int {
	return len(p.entries)
}
