package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractExcerpt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "first paragraph tag wins",
			in:   "<p>First paragraph.</p><p>Second paragraph.</p>",
			want: "First paragraph.",
		},
		{
			name: "div fallback when no paragraph",
			in:   "<div>Lead content.</div><div>More.</div>",
			want: "Lead content.",
		},
		{
			name: "generic tag pair fallback",
			in:   "<span>Inline lead.</span>",
			want: "Inline lead.",
		},
		{
			name: "nested markup is stripped",
			in:   "<p>Floods hit <a href=\"/x\">the <b>city</b></a> today.</p>",
			want: "Floods hit the city today.",
		},
		{
			name: "plain text first blank-line segment",
			in:   "Lead paragraph line.\n\nSecond block.",
			want: "Lead paragraph line.",
		},
		{
			name: "plain text without blank line returned whole",
			in:   "Just one block of text.",
			want: "Just one block of text.",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "angle brackets without matching tags fall through to plain text",
			in:   "price < 100 and > 50\n\ndetails follow",
			want: "price < 100 and > 50",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractExcerpt(tt.in))
		})
	}
}
