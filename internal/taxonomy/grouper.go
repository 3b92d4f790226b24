package taxonomy

import (
	"fmt"

	"github.com/goliatone/go-picogen/internal/descriptor"
	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// Warning records a tolerated ambiguity found while grouping.
type Warning struct {
	Path    string
	Message string
}

// Grouper builds taxonomy groups and assigns document templates.
type Grouper struct {
	taxonomies      []runtimeconfig.Taxonomy
	defaultTemplate string
	logger          interfaces.Logger
}

// NewGrouper constructs a Grouper for the configured taxonomies.
func NewGrouper(cfg *runtimeconfig.Config, logger interfaces.Logger) *Grouper {
	defaults := runtimeconfig.DefaultConfig()
	if cfg == nil {
		cfg = &defaults
	}
	defaultTemplate := cfg.DefaultTemplate
	if defaultTemplate == "" {
		defaultTemplate = defaults.DefaultTemplate
	}
	return &Grouper{
		taxonomies:      append([]runtimeconfig.Taxonomy(nil), cfg.Taxonomies...),
		defaultTemplate: defaultTemplate,
		logger:          logging.Ensure(logger),
	}
}

// Group partitions docs by taxonomy value and sets each document's
// Template. Documents are expected to be non-drafts.
func (g *Grouper) Group(docs []*descriptor.Descriptor) (*Groups, []Warning) {
	groups := &Groups{
		order: make([]string, 0, len(g.taxonomies)),
		byID:  make(map[string]*Group, len(g.taxonomies)),
	}
	for _, tax := range g.taxonomies {
		groups.order = append(groups.order, tax.ID)
		groups.byID[tax.ID] = newGroup(tax)
	}

	var warnings []Warning
	for _, doc := range docs {
		var matched []runtimeconfig.Taxonomy
		for _, tax := range g.taxonomies {
			raw, ok := doc.Annotation(tax.ID)
			if !ok {
				continue
			}
			group := groups.byID[tax.ID]
			for _, value := range SplitValues(raw) {
				group.add(value, doc)
			}
			if tax.DocumentTemplate != "" {
				matched = append(matched, tax)
			}
		}
		if warning, ok := g.resolveTemplate(doc, matched); ok {
			warnings = append(warnings, warning)
		}
	}
	return groups, warnings
}

// resolveTemplate applies the explicit annotation, then the last matching
// taxonomy template, then the site default.
func (g *Grouper) resolveTemplate(doc *descriptor.Descriptor, matched []runtimeconfig.Taxonomy) (Warning, bool) {
	if explicit, ok := doc.Annotation(descriptor.FieldTemplate); ok && explicit != "" {
		doc.Template = explicit
		return Warning{}, false
	}

	switch len(matched) {
	case 0:
		doc.Template = g.defaultTemplate
		g.logger.Warn("taxonomy.template.default",
			"path", doc.SourcePath,
			"template", g.defaultTemplate,
		)
		return Warning{
			Path:    doc.SourcePath,
			Message: fmt.Sprintf("no template declared, using default %q", g.defaultTemplate),
		}, true
	case 1:
		doc.Template = matched[0].DocumentTemplate
		return Warning{}, false
	default:
		last := matched[len(matched)-1]
		doc.Template = last.DocumentTemplate
		candidates := make([]string, 0, len(matched))
		for _, tax := range matched {
			candidates = append(candidates, tax.ID+"="+tax.DocumentTemplate)
		}
		g.logger.Warn("taxonomy.template.ambiguous",
			"path", doc.SourcePath,
			"candidates", candidates,
			"template", last.DocumentTemplate,
		)
		return Warning{
			Path:    doc.SourcePath,
			Message: fmt.Sprintf("several taxonomies declare a document template %v, using %q from %s", candidates, last.DocumentTemplate, last.ID),
		}, true
	}
}
