// Package markdown implements the body conversion capability: Markdown is
// rendered to HTML with goldmark, or walked as a goldmark AST and written
// out as gemtext. It also extracts the teaser summaries shown in indexes.
package markdown
