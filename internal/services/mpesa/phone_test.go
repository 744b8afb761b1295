package mpesa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"local format", "0712345678", "254712345678"},
		{"international with plus", "+254712345678", "254712345678"},
		{"already normalized", "254712345678", "254712345678"},
		{"bare subscriber number", "712345678", "254712345678"},
		{"with spaces", "0712 345 678", "254712345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 12))
	assert.Equal(t, "exactly12chr", truncate("exactly12chrs", 12))
	assert.Equal(t, "", truncate("", 12))
}
