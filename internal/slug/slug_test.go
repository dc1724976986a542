package slug

import "testing"

// TestGenerate exercises the slug generator with a broad range of inputs
// covering typical titles, special characters, unicode, and edge cases.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{
			name:  "simple two words",
			input: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "title with year",
			input: "Hello World 2026",
			want:  "hello-world-2026",
		},
		{
			name:  "already a slug",
			input: "how-to-pay",
			want:  "how-to-pay",
		},
		{
			name:  "single word",
			input: "Billing",
			want:  "billing",
		},
		{
			name:  "mixed case sentence",
			input: "Reset Your VPN Credentials",
			want:  "reset-your-vpn-credentials",
		},

		// --- Special characters collapse to single hyphens ---
		{
			name:  "punctuation marks",
			input: "How to pay? (Invoices & Billing)",
			want:  "how-to-pay-invoices-billing",
		},
		{
			name:  "apostrophe splits the word",
			input: "What's new",
			want:  "what-s-new",
		},
		{
			name:  "slashes and pipes",
			input: "Frontend/Backend | Full Stack",
			want:  "frontend-backend-full-stack",
		},
		{
			name:  "consecutive specials become one hyphen",
			input: "a --- !!! b",
			want:  "a-b",
		},
		{
			name:  "dots in version numbers",
			input: "Upgrading to v2.0.1",
			want:  "upgrading-to-v2-0-1",
		},

		// --- Trimming ---
		{
			name:  "leading and trailing spaces",
			input: "   padded title   ",
			want:  "padded-title",
		},
		{
			name:  "leading and trailing punctuation",
			input: "!!important!!",
			want:  "important",
		},

		// --- Unicode: non-ASCII runs collapse like any other specials ---
		{
			name:  "accented characters",
			input: "café menu",
			want:  "caf-menu",
		},
		{
			name:  "emoji in title",
			input: "Setup 🚀 Guide",
			want:  "setup-guide",
		},

		// --- Edge cases ---
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only special characters",
			input: "!?#$%",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "digits only",
			input: "2026",
			want:  "2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
