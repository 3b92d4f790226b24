package placeholder

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"time"
)

// LayerKind orders the variable sources a template can see. Higher kinds
// override lower ones when the same name is defined twice.
type LayerKind int

const (
	LayerConfig LayerKind = iota
	LayerTaxonomy
	LayerTaxonomyValue
	LayerOutputs
	LayerDynamic
	LayerDocument
)

func (k LayerKind) String() string {
	switch k {
	case LayerConfig:
		return "config"
	case LayerTaxonomy:
		return "taxonomy"
	case LayerTaxonomyValue:
		return "taxonomy_value"
	case LayerOutputs:
		return "outputs"
	case LayerDynamic:
		return "dynamic"
	case LayerDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Layer is one named set of variables.
type Layer struct {
	Kind   LayerKind
	Values map[string]any
}

// Config, Taxonomy, TaxonomyValue, Outputs, Dynamic and Document build layers
// of the matching kind.
func Config(values map[string]any) Layer   { return Layer{Kind: LayerConfig, Values: values} }
func Taxonomy(values map[string]any) Layer { return Layer{Kind: LayerTaxonomy, Values: values} }
func TaxonomyValue(values map[string]any) Layer {
	return Layer{Kind: LayerTaxonomyValue, Values: values}
}
func Dynamic(values map[string]any) Layer  { return Layer{Kind: LayerDynamic, Values: values} }
func Document(values map[string]any) Layer { return Layer{Kind: LayerDocument, Values: values} }

// Outputs wraps previously generated named outputs as a layer.
func Outputs(values map[string]string) Layer {
	converted := make(map[string]any, len(values))
	for key, value := range values {
		converted[key] = value
	}
	return Layer{Kind: LayerOutputs, Values: converted}
}

// Scope is an immutable lookup table produced by merging layers.
type Scope struct {
	values map[string]any
}

// Merge flattens layers into a Scope. Layers are applied by kind so callers
// cannot accidentally invert precedence; layers of the same kind are applied
// in argument order.
func Merge(layers ...Layer) Scope {
	ordered := make([]Layer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind < ordered[j].Kind
	})

	size := 0
	for _, layer := range ordered {
		size += len(layer.Values)
	}
	values := make(map[string]any, size)
	for _, layer := range ordered {
		maps.Copy(values, layer.Values)
	}
	return Scope{values: values}
}

// Lookup returns the raw value bound to name.
func (s Scope) Lookup(name string) (any, bool) {
	value, ok := s.values[name]
	return value, ok
}

// Len reports the number of bound names.
func (s Scope) Len() int {
	return len(s.values)
}

// Stringify renders a scope value the way it appears in generated output.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
