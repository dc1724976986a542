// Package sanitize strips dangerous markup from article HTML before it is
// persisted. The admin editor is trusted to produce clean HTML, but the
// server re-sanitizes on every write so the stored content is safe even if
// the admin API is ever reached by another client.
package sanitize

import "github.com/microcosm-cc/bluemonday"

var policy = buildPolicy()

// buildPolicy returns the HTML policy for article content: the standard
// user-generated-content allowlist plus the elements the rich-text editor
// emits (images, code blocks, tables).
func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AllowAttrs("class").OnElements("pre", "code", "span", "p", "div")
	p.AllowTables()
	return p
}

// HTML sanitizes a fragment of article HTML.
func HTML(s string) string {
	return policy.Sanitize(s)
}
