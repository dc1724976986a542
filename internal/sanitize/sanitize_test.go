package sanitize

import (
	"strings"
	"testing"
)

func TestHTMLKeepsEditorMarkup(t *testing.T) {
	in := `<h2>Steps</h2><p class="lead">Pay the <strong>invoice</strong>.</p>` +
		`<ul><li>One</li></ul><pre><code class="language-go">x := 1</code></pre>` +
		`<img src="https://cdn.example.com/a.png" alt="diagram">`
	out := HTML(in)

	for _, want := range []string{"<h2>", "<strong>", "<li>", "<code", "<img"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q to survive sanitization, got %q", want, out)
		}
	}
}

func TestHTMLStripsScripts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		bad  string
	}{
		{"script tag", `<p>hi</p><script>alert(1)</script>`, "<script"},
		{"event handler", `<p onclick="alert(1)">hi</p>`, "onclick"},
		{"javascript url", `<a href="javascript:alert(1)">x</a>`, "javascript:"},
		{"iframe", `<iframe src="https://evil.example"></iframe>`, "<iframe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := HTML(tt.in)
			if strings.Contains(out, tt.bad) {
				t.Errorf("sanitized output still contains %q: %q", tt.bad, out)
			}
		})
	}
}
