package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PlainTextProvider reads PDF text with a pure-Go parser. It is the second
// leg of the chain: slower and stricter than MuPDF, but it recovers text
// from some files whose text layer MuPDF returns empty.
type PlainTextProvider struct {
	logger *zap.Logger
}

// NewPlainTextProvider creates a pure-Go provider.
func NewPlainTextProvider(logger *zap.Logger) *PlainTextProvider {
	return &PlainTextProvider{logger: logger}
}

// ExtractText implements Provider.
func (p *PlainTextProvider) ExtractText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageNum := 1; pageNum <= totalPage; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			p.logger.Warn("Failed to read page text",
				zap.String("path", path),
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
				b.WriteString(" ")
			}
			b.WriteString("\n")
		}
	}

	p.logger.Debug("Extracted text with pure-Go reader",
		zap.String("path", path),
		zap.Int("pages", totalPage),
		zap.Int("chars", b.Len()))

	return b.String(), nil
}
