package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_ToHTMLSanitized(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			input:    "Thanks for buying **Pro**",
			contains: []string{"<strong>Pro</strong>"},
		},
		{
			name:     "script stripped",
			input:    "Paid <script>alert(1)</script>",
			contains: []string{"Paid"},
			excludes: []string{"<script>"},
		},
		{
			name:     "link kept",
			input:    "[Open](https://example.com/billing)",
			contains: []string{`href="https://example.com/billing"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.ToHTMLSanitized(tt.input)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
