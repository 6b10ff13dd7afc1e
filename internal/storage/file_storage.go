package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// UploadStore persists uploaded invoice documents on disk before extraction.
type UploadStore interface {
	// SavePDF writes an uploaded document under the base directory and
	// returns the path it was stored at. The stored name is derived from
	// the original filename; collisions get a numeric suffix.
	SavePDF(filename string, content []byte) (string, error)

	// ValidatePath checks path security (no traversal, within base)
	ValidatePath(fullPath string) error
}

// LocalUploadStore implements UploadStore for the local filesystem
type LocalUploadStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalUploadStore creates a new LocalUploadStore
func NewLocalUploadStore(baseDir string, logger *zap.Logger) *LocalUploadStore {
	return &LocalUploadStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// SavePDF writes the document under the base directory
func (s *LocalUploadStore) SavePDF(filename string, content []byte) (string, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", fmt.Errorf("not a PDF document: %q", filename)
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		s.logger.Error("Failed to create upload directory",
			zap.String("path", s.baseDir),
			zap.Error(err))
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	fullPath, err := s.uniquePath(name)
	if err != nil {
		return "", err
	}
	if err := s.ValidatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Upload saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))
	return fullPath, nil
}

// ValidatePath checks that the path is safe and within the base directory
func (s *LocalUploadStore) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}

// uniquePath appends -1, -2, ... to the stem until the name is free.
func (s *LocalUploadStore) uniquePath(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(s.baseDir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil && !os.IsExist(err) {
			return "", fmt.Errorf("failed to probe path: %w", err)
		}
		if i > 1000 {
			return "", fmt.Errorf("too many name collisions for %q", name)
		}
		candidate = filepath.Join(s.baseDir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
}

// sanitizeFilename strips any directory components and characters that could
// not come from a normal document name.
func sanitizeFilename(filename string) string {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.TrimSpace(b.String())
}
