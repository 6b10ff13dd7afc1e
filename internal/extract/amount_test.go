package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAmountNormalizer_Normalize(t *testing.T) {
	n := NewAmountNormalizer(zap.NewNop())

	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"english format with thousands separator", "12,942.38", 12942.38},
		{"french format with decimal comma", "1059,61", 1059.61},
		{"plain integer", "50", 50},
		{"already normalized", "12942.38", 12942.38},
		{"surrounding whitespace", "  250,00 ", 250},
		{"currency noise stripped", "1 234,56 €", 1234.56},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.raw)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestAmountNormalizer_Normalize_Invalid(t *testing.T) {
	n := NewAmountNormalizer(zap.NewNop())

	for _, raw := range []string{"", "   ", "abc", "1.2.3", "..,,"} {
		assert.Nil(t, n.Normalize(raw), "raw=%q", raw)
	}
}

func TestAmountNormalizer_Normalize_Idempotent(t *testing.T) {
	n := NewAmountNormalizer(zap.NewNop())

	first := n.Normalize("12,942.38")
	require.NotNil(t, first)

	second := n.Normalize("12942.38")
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}
