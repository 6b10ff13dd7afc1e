package pdftext

import (
	"fmt"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// FitzProvider reads the PDF text layer with MuPDF. A page whose text cannot
// be read is skipped rather than failing the document.
type FitzProvider struct {
	logger *zap.Logger
}

// NewFitzProvider creates a MuPDF-backed provider.
func NewFitzProvider(logger *zap.Logger) *FitzProvider {
	return &FitzProvider{logger: logger}
}

// ExtractText implements Provider.
func (p *FitzProvider) ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("document not found: %s", path)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	pageCount := doc.NumPage()
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		pageText, err := doc.Text(pageNum)
		if err != nil {
			p.logger.Warn("Failed to read page text",
				zap.String("path", path),
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		b.WriteString(pageText)
	}

	p.logger.Debug("Extracted text layer",
		zap.String("path", path),
		zap.Int("pages", pageCount),
		zap.Int("chars", b.Len()))

	return b.String(), nil
}
