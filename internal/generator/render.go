package generator

import (
	"time"
)

// Output kinds recorded on rendered pages and diagnostics.
const (
	KindDocument   = "document"
	KindValueIndex = "value_index"
	KindValueList  = "value_list"
	KindAsset      = "asset"
)

// RenderedPage records one written output.
type RenderedPage struct {
	Format   string
	Kind     string
	Source   string
	Output   string
	Template string
	Checksum string
	Bytes    int
	Duration time.Duration
}

// RenderDiagnostic records a tolerated problem met while building.
type RenderDiagnostic struct {
	Format   string
	Phase    Phase
	Path     string
	Template string
	Message  string
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic *RenderDiagnostic
}
