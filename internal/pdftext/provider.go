// Package pdftext obtains the raw text of PDF documents. Two interchangeable
// providers are chained: the MuPDF text layer first, then a pure-Go reader
// when MuPDF yields nothing. The extraction engine downstream has no
// awareness of which provider produced the text.
package pdftext

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Provider extracts the full text content of one document as a single string.
type Provider interface {
	ExtractText(path string) (string, error)
}

// FallbackProvider tries a secondary provider whenever the primary fails or
// returns only whitespace. Scanned documents with a broken text layer often
// come back empty from one extractor and readable from the other.
type FallbackProvider struct {
	primary   Provider
	secondary Provider
	logger    *zap.Logger
}

// NewFallbackProvider creates a provider chain.
func NewFallbackProvider(primary, secondary Provider, logger *zap.Logger) *FallbackProvider {
	return &FallbackProvider{primary: primary, secondary: secondary, logger: logger}
}

// NewDefaultProvider returns the standard chain: MuPDF first, the pure-Go
// reader second.
func NewDefaultProvider(logger *zap.Logger) Provider {
	return NewFallbackProvider(NewFitzProvider(logger), NewPlainTextProvider(logger), logger)
}

// ExtractText implements Provider.
func (p *FallbackProvider) ExtractText(path string) (string, error) {
	text, err := p.primary.ExtractText(path)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	if err != nil {
		p.logger.Warn("Primary text provider failed, trying secondary",
			zap.String("path", path),
			zap.Error(err))
	} else {
		p.logger.Debug("Primary text provider returned empty text, trying secondary",
			zap.String("path", path))
	}

	return p.secondary.ExtractText(path)
}

// FileSource adapts a file path plus a provider into the processor's
// document source.
type FileSource struct {
	path     string
	provider Provider
}

// NewFileSource creates a source for one file on disk.
func NewFileSource(path string, provider Provider) *FileSource {
	return &FileSource{path: path, provider: provider}
}

// Name returns the base file name, used as the record's source identifier.
func (s *FileSource) Name() string {
	return filepath.Base(s.path)
}

// Text extracts the document text through the configured provider.
func (s *FileSource) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.provider.ExtractText(s.path)
}
