// Package taxonomy partitions descriptors into taxonomy value buckets and
// resolves the template each document renders with.
package taxonomy

import (
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-picogen/internal/descriptor"
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
)

// Bucket holds the documents that share one taxonomy value.
type Bucket struct {
	Value      string
	Normalized string
	Documents  []*descriptor.Descriptor
}

// Count returns the number of documents carrying the value.
func (b *Bucket) Count() int {
	return len(b.Documents)
}

// Group is the value map of a single taxonomy. Values keep the order in
// which they were first seen during the content walk.
type Group struct {
	Taxonomy runtimeconfig.Taxonomy

	buckets []*Bucket
	byValue map[string]*Bucket
}

func newGroup(tax runtimeconfig.Taxonomy) *Group {
	return &Group{Taxonomy: tax, byValue: map[string]*Bucket{}}
}

func (g *Group) add(value string, doc *descriptor.Descriptor) {
	bucket, ok := g.byValue[value]
	if !ok {
		bucket = &Bucket{Value: value, Normalized: Normalize(value)}
		g.byValue[value] = bucket
		g.buckets = append(g.buckets, bucket)
	}
	bucket.Documents = append(bucket.Documents, doc)
}

// Buckets returns the value buckets in first-seen order.
func (g *Group) Buckets() []*Bucket {
	if g == nil {
		return nil
	}
	return append([]*Bucket(nil), g.buckets...)
}

// Bucket returns the bucket for value.
func (g *Group) Bucket(value string) (*Bucket, bool) {
	if g == nil {
		return nil, false
	}
	bucket, ok := g.byValue[value]
	return bucket, ok
}

// Len reports the number of distinct values.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.buckets)
}

// Groups maps every configured taxonomy to its value buckets. Taxonomies
// with no matching documents are present with zero buckets.
type Groups struct {
	order []string
	byID  map[string]*Group
}

// Get returns the group for a taxonomy id.
func (gs *Groups) Get(id string) (*Group, bool) {
	if gs == nil {
		return nil, false
	}
	group, ok := gs.byID[id]
	return group, ok
}

// All returns the groups in configuration order.
func (gs *Groups) All() []*Group {
	if gs == nil {
		return nil
	}
	out := make([]*Group, 0, len(gs.order))
	for _, id := range gs.order {
		out = append(out, gs.byID[id])
	}
	return out
}

// SplitValues splits a multi-value annotation on commas. Values are trimmed
// and empty entries dropped.
func SplitValues(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		values = append(values, part)
	}
	return values
}

// Normalize returns the path and key safe form of a taxonomy value:
// letters are transliterated to ASCII, lowercased, and whitespace runs become
// hyphens. Punctuation is dropped, so "C" and "C++" share a form.
func Normalize(value string) string {
	if normalized, err := slug.HashNormalizeWithSeparator(value, "-"); err == nil && normalized != "" {
		return normalized
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "-")
}
