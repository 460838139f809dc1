package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReply(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		maxLen  int
		want    string
		wantErr bool
	}{
		{name: "plain text", in: "Hello there!", maxLen: 100, want: "Hello there!"},
		{name: "leading whitespace trimmed", in: "  hi \n", maxLen: 100, want: "hi"},
		{name: "speaker prefix stripped", in: "Guildmate: hello", maxLen: 100, want: "hello"},
		{name: "bracketed prefix stripped", in: "[bot]: hello", maxLen: 100, want: "hello"},
		{name: "jid prefix stripped", in: "alice@example.org: hello", maxLen: 100, want: "hello"},
		{name: "single-word label stripped", in: "Remember: be kind", maxLen: 100, want: "be kind"},
		{name: "url untouched", in: "see https://example.org/page", maxLen: 100, want: "see https://example.org/page"},
		{name: "empty", in: "   ", maxLen: 100, wantErr: true},
		{name: "prefix only", in: "Guildmate: ", maxLen: 100, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderReply(tt.in, tt.maxLen)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderReply_TruncatesRunesWithEllipsis(t *testing.T) {
	in := strings.Repeat("ä", 30)
	got, err := renderReply(in, 10)
	require.NoError(t, err)

	runes := []rune(got)
	assert.Len(t, runes, 10)
	assert.Equal(t, '…', runes[9])
}

func TestRenderReply_NoTruncationAtBound(t *testing.T) {
	in := strings.Repeat("x", 10)
	got, err := renderReply(in, 10)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}
