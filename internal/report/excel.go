// Package report renders a batch of extraction results as a multi-sheet
// XLSX workbook. All sentinel rendering for absent values happens here, at
// the presentation boundary; the data model itself keeps them nil.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/models"
)

// Sentinels rendered in place of absent values.
const (
	NoCategoryCode  = "SANS_CODE"
	NoServiceType   = "Non déterminé"
	StatusExtracted = "Succès"
	StatusPartial   = "Partiel"
)

// Sheet names, one per audience: summary for review, line detail for
// verification, rubrique roll-ups and the analysis layout for
// reconciliation.
const (
	SheetSummary   = "Résumé_Factures"
	SheetDetail    = "Detail_Lignes"
	SheetRubriques = "Rubriques_Analyse"
	SheetAnalysis  = "Donnees_Analyse"
)

// Writer builds XLSX workbooks from invoice records.
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a report writer.
func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

// Build assembles the workbook for a batch. The caller owns the returned
// file and is responsible for closing it.
func (w *Writer) Build(records []*models.InvoiceRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := w.writeSummarySheet(f, records, headerStyle); err != nil {
		return nil, err
	}
	if err := w.writeDetailSheet(f, records, headerStyle); err != nil {
		return nil, err
	}
	if err := w.writeRubriquesSheet(f, records, headerStyle); err != nil {
		return nil, err
	}
	if err := w.writeAnalysisSheet(f, records, headerStyle); err != nil {
		return nil, err
	}

	// The workbook opens on the summary; the implicit default sheet goes.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(SheetSummary)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	w.logger.Info("Report workbook built", zap.Int("invoices", len(records)))
	return f, nil
}

// Save builds the workbook and writes it to disk.
func (w *Writer) Save(records []*models.InvoiceRecord, path string) error {
	f, err := w.Build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	w.logger.Info("Report saved", zap.String("path", path))
	return nil
}

func (w *Writer) writeSummarySheet(f *excelize.File, records []*models.InvoiceRecord, headerStyle int) error {
	headers := []interface{}{
		"Nom_Fichier", "Numero_Facture", "Date_Facture", "Numero_Commande",
		"Date_Echeance", "Destinataire", "Batch_ID", "Assignment_ID",
		"Total_Net_EUR", "Total_TVA_EUR", "Total_Brut_EUR", "Devise", "Erreur",
	}
	if err := newSheet(f, SheetSummary, headers, headerStyle); err != nil {
		return err
	}

	for i, rec := range records {
		row := []interface{}{
			rec.SourceFile,
			strCell(rec.InvoiceNumber),
			strCell(rec.InvoiceDate),
			strCell(rec.PurchaseOrder),
			strCell(rec.DueDate),
			recipientCell(rec),
			strCell(rec.BatchID),
			strCell(rec.AssignmentID),
			amountCell(rec.TotalNet),
			amountCell(rec.TotalVAT),
			amountCell(rec.TotalGross),
			rec.Currency,
			rec.Error,
		}
		if err := setRow(f, SheetSummary, i+2, row); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 32, "B": 16, "F": 30, "M": 40}
	return applyWidths(f, SheetSummary, widths)
}

func (w *Writer) writeDetailSheet(f *excelize.File, records []*models.InvoiceRecord, headerStyle int) error {
	headers := []interface{}{
		"Nom_Fichier", "Numero_Facture", "Numero_Commande", "Description",
		"Code_Rubrique", "Type_Prestation", "Date_Periode", "Unite",
		"Prix_Unitaire", "Quantite", "Montant_Net", "Montant_TVA", "Montant_Brut",
	}
	if err := newSheet(f, SheetDetail, headers, headerStyle); err != nil {
		return err
	}

	rowNum := 2
	for _, rec := range records {
		if len(rec.LineItems) == 0 {
			// A document with no recognizable lines still appears once, as
			// its own totals.
			row := []interface{}{
				rec.SourceFile,
				strCell(rec.InvoiceNumber),
				strCell(rec.PurchaseOrder),
				"Total facture",
				"", "",
				strCell(rec.InvoiceDate),
				"Global",
				"",
				1,
				amountCell(rec.TotalNet),
				amountCell(rec.TotalVAT),
				amountCell(rec.TotalGross),
			}
			if err := setRow(f, SheetDetail, rowNum, row); err != nil {
				return err
			}
			rowNum++
			continue
		}

		for _, item := range rec.LineItems {
			row := []interface{}{
				rec.SourceFile,
				strCell(rec.InvoiceNumber),
				strCell(rec.PurchaseOrder),
				item.Description,
				codeCell(item.CategoryCode),
				serviceCell(item.ServiceType),
				item.PeriodDate,
				item.Unit,
				amountCell(item.UnitPrice),
				item.Quantity,
				amountCell(item.NetAmount),
				amountCell(item.VATAmount),
				amountCell(item.GrossAmount),
			}
			if err := setRow(f, SheetDetail, rowNum, row); err != nil {
				return err
			}
			rowNum++
		}
	}

	widths := map[string]float64{"A": 32, "D": 48}
	return applyWidths(f, SheetDetail, widths)
}

func (w *Writer) writeRubriquesSheet(f *excelize.File, records []*models.InvoiceRecord, headerStyle int) error {
	headers := []interface{}{
		"Nom_Fichier", "Numero_Facture", "Code_Rubrique", "Type_Prestation",
		"Batch_ID", "Assignment_ID", "Nb_Lignes", "Quantite_Totale",
		"Total_Net", "Total_TVA", "Total_Brut", "Unites", "Dates_Periode",
	}
	if err := newSheet(f, SheetRubriques, headers, headerStyle); err != nil {
		return err
	}

	rowNum := 2
	for _, rec := range records {
		for _, rub := range rec.Rubriques {
			row := []interface{}{
				rec.SourceFile,
				strCell(rec.InvoiceNumber),
				codeCell(rub.CategoryCode),
				serviceCell(rub.ServiceType),
				strCell(rub.BatchID),
				strCell(rub.AssignmentID),
				rub.LineCount,
				rub.TotalQuantity,
				rub.TotalNet,
				rub.TotalVAT,
				rub.TotalGross,
				rub.Units,
				rub.PeriodDates,
			}
			if err := setRow(f, SheetRubriques, rowNum, row); err != nil {
				return err
			}
			rowNum++
		}
	}

	widths := map[string]float64{"A": 32, "L": 24, "M": 30}
	return applyWidths(f, SheetRubriques, widths)
}

func (w *Writer) writeAnalysisSheet(f *excelize.File, records []*models.InvoiceRecord, headerStyle int) error {
	headers := []interface{}{
		"Numero_Facture", "Numero_Commande", "Date_Facture",
		"Semaine_Finissant_Le", "Emetteur", "Destinataire", "Batch_ID",
		"Assignment_ID", "Total_Net", "Total_TVA", "Total_Brut", "Nb_Lignes",
		"Statut_Extraction",
	}
	if err := newSheet(f, SheetAnalysis, headers, headerStyle); err != nil {
		return err
	}

	for i, rec := range records {
		status := StatusPartial
		if rec.Extracted() {
			status = StatusExtracted
		}
		lineCount := len(rec.LineItems)
		if lineCount == 0 {
			lineCount = 1
		}
		row := []interface{}{
			strCell(rec.InvoiceNumber),
			strCell(rec.PurchaseOrder),
			strCell(rec.InvoiceDate),
			"", // week-ending is not extracted; reconciliation fills it in
			rec.Issuer,
			recipientCell(rec),
			strCell(rec.BatchID),
			strCell(rec.AssignmentID),
			amountCell(rec.TotalNet),
			amountCell(rec.TotalVAT),
			amountCell(rec.TotalGross),
			lineCount,
			status,
		}
		if err := setRow(f, SheetAnalysis, i+2, row); err != nil {
			return err
		}
	}

	widths := map[string]float64{"E": 16, "F": 30}
	return applyWidths(f, SheetAnalysis, widths)
}

// newSheet creates a sheet with a styled, frozen header row.
func newSheet(f *excelize.File, name string, headers []interface{}, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	if err := setRow(f, name, 1, headers); err != nil {
		return err
	}

	lastCol, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", lastCol, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", name, err)
	}
	if err := f.SetPanes(name, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header of %s: %w", name, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", rowNum, sheet, err)
	}
	return nil
}

func applyWidths(f *excelize.File, sheet string, widths map[string]float64) error {
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s of %s: %w", col, sheet, err)
		}
	}
	return nil
}

// strCell renders an optional string, leaving the cell empty when absent.
func strCell(v *string) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

// amountCell renders an optional amount, leaving the cell empty when absent.
func amountCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func codeCell(v *string) string {
	if v == nil {
		return NoCategoryCode
	}
	return *v
}

func serviceCell(v *models.ServiceType) string {
	if v == nil {
		return NoServiceType
	}
	return string(*v)
}

// recipientCell falls back to the undetermined sentinel for error records,
// whose recipient was never resolved.
func recipientCell(rec *models.InvoiceRecord) string {
	if rec.Recipient == "" {
		return models.RecipientUndetermined
	}
	return rec.Recipient
}
