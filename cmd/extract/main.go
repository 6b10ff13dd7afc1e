// Command extract runs the extraction pipeline over a directory of PDF
// invoices and writes the multi-sheet Excel report, without needing the
// server or a database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/extract"
	"github.com/selecttt/invoice-extractor/internal/pdftext"
	"github.com/selecttt/invoice-extractor/internal/report"
	"github.com/selecttt/invoice-extractor/pkg/utils"
)

func main() {
	var (
		inDir    = flag.String("in", ".", "directory containing PDF invoices")
		outPath  = flag.String("out", "analyse_factures.xlsx", "path of the Excel report to write")
		jsonPath = flag.String("json", "", "optional path to also write extraction results as JSON")
		logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      *logLevel,
		OutputPath: "stderr",
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	paths, err := findPDFs(*inDir)
	if err != nil {
		logger.Fatal("Failed to scan input directory", zap.Error(err))
	}
	if len(paths) == 0 {
		logger.Fatal("No PDF documents found", zap.String("dir", *inDir))
	}
	logger.Info("Processing documents",
		zap.Int("count", len(paths)),
		zap.String("dir", *inDir))

	provider := pdftext.NewDefaultProvider(logger)
	sources := make([]extract.Source, 0, len(paths))
	for _, path := range paths {
		sources = append(sources, pdftext.NewFileSource(path, provider))
	}

	processor := extract.NewProcessor(logger)
	records := processor.ProcessBatch(context.Background(), sources)

	extracted := 0
	for _, record := range records {
		if record.Extracted() {
			extracted++
		}
	}
	logger.Info("Extraction complete",
		zap.Int("documents", len(records)),
		zap.Int("extracted", extracted))

	writer := report.NewWriter(logger)
	if err := writer.Save(records, *outPath); err != nil {
		logger.Fatal("Failed to write report", zap.Error(err))
	}
	logger.Info("Report written", zap.String("path", *outPath))

	if *jsonPath != "" {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			logger.Fatal("Failed to marshal results", zap.Error(err))
		}
		if err := os.WriteFile(*jsonPath, data, 0644); err != nil {
			logger.Fatal("Failed to write JSON results", zap.Error(err))
		}
		logger.Info("JSON results written", zap.String("path", *jsonPath))
	}
}

// findPDFs returns the PDF files directly inside dir, sorted by name so
// report ordering is stable across runs.
func findPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
