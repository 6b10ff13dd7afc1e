package extract

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// AmountNormalizer turns locale-ambiguous numeric tokens into floats.
// Invoice amounts show up both as "12,942.38" (comma = thousands) and as
// "1059,61" (comma = decimals) depending on which text layer produced them.
type AmountNormalizer struct {
	logger *zap.Logger
}

// NewAmountNormalizer creates a new amount normalizer.
func NewAmountNormalizer(logger *zap.Logger) *AmountNormalizer {
	return &AmountNormalizer{logger: logger}
}

// Normalize parses a numeric token, returning nil when it cannot be coerced.
// When both separators are present the comma is treated as a thousands
// separator; a lone comma is treated as the decimal separator. A lone period
// is kept as a decimal point, so "1.234" parses as a fraction even when the
// document meant a thousand-separated integer.
func (n *AmountNormalizer) Normalize(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	hasComma := strings.Contains(s, ",")
	hasPeriod := strings.Contains(s, ".")
	switch {
	case hasComma && hasPeriod:
		s = strings.ReplaceAll(s, ",", "")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	// Drop currency symbols, spaces and any other stray characters.
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		n.logger.Warn("Could not normalize amount", zap.String("raw", raw))
		return nil
	}
	return &value
}
