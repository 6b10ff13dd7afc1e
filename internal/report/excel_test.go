package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/models"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func sampleRecords() []*models.InvoiceRecord {
	expense := models.ServiceExpense
	ok := &models.InvoiceRecord{
		SourceFile:    "facture_4973.pdf",
		InvoiceNumber: strPtr("4973S0012"),
		InvoiceDate:   strPtr("2024/01/31"),
		PurchaseOrder: strPtr("1234567890"),
		Recipient:     "Mars Information Services",
		Issuer:        models.Issuer,
		BatchID:       strPtr("4973"),
		AssignmentID:  strPtr("65744"),
		TotalNet:      floatPtr(1050),
		TotalVAT:      floatPtr(210),
		TotalGross:    floatPtr(1260),
		VATRate:       models.VATRate,
		Currency:      models.Currency,
		LineItems: []models.LineItem{
			{
				Description:  "4973_65744_Temporary employees - Expense",
				BatchID:      strPtr("4973"),
				AssignmentID: strPtr("65744"),
				ServiceType:  &expense,
				CategoryCode: strPtr("OT125"),
				PeriodDate:   "2024/01/15",
				Unit:         "HRS",
				UnitPrice:    floatPtr(10),
				Quantity:     5,
				NetAmount:    floatPtr(50),
				VATAmount:    floatPtr(10),
				GrossAmount:  floatPtr(60),
			},
		},
		Rubriques: []models.RubriqueSummary{
			{
				CategoryCode:  strPtr("OT125"),
				ServiceType:   &expense,
				BatchID:       strPtr("4973"),
				AssignmentID:  strPtr("65744"),
				LineCount:     1,
				TotalQuantity: 5,
				TotalNet:      50,
				TotalVAT:      10,
				TotalGross:    60,
				Units:         "HRS",
				PeriodDates:   "2024/01/15",
			},
		},
	}

	failed := &models.InvoiceRecord{
		SourceFile: "broken.pdf",
		Issuer:     models.Issuer,
		VATRate:    models.VATRate,
		Currency:   models.Currency,
		LineItems:  []models.LineItem{},
		Rubriques:  []models.RubriqueSummary{},
		Error:      "text layer unreadable",
	}

	return []*models.InvoiceRecord{ok, failed}
}

func TestWriter_Build_Sheets(t *testing.T) {
	w := NewWriter(zap.NewNop())

	f, err := w.Build(sampleRecords())
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, []string{SheetSummary, SheetDetail, SheetRubriques, SheetAnalysis}, sheets)
}

func TestWriter_Build_SummarySheet(t *testing.T) {
	w := NewWriter(zap.NewNop())

	f, err := w.Build(sampleRecords())
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(SheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Nom_Fichier", header)

	number, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "4973S0012", number)

	// The failed record keeps its slot, with the error instead of data.
	errCell, err := f.GetCellValue(SheetSummary, "M3")
	require.NoError(t, err)
	assert.Equal(t, "text layer unreadable", errCell)

	emptyTotal, err := f.GetCellValue(SheetSummary, "I3")
	require.NoError(t, err)
	assert.Empty(t, emptyTotal)
}

func TestWriter_Build_DetailFallbackRow(t *testing.T) {
	w := NewWriter(zap.NewNop())

	f, err := w.Build(sampleRecords())
	require.NoError(t, err)
	defer f.Close()

	// Row 2 is the real line item, row 3 the placeholder for the document
	// without recognizable lines.
	desc, err := f.GetCellValue(SheetDetail, "D2")
	require.NoError(t, err)
	assert.Equal(t, "4973_65744_Temporary employees - Expense", desc)

	placeholder, err := f.GetCellValue(SheetDetail, "D3")
	require.NoError(t, err)
	assert.Equal(t, "Total facture", placeholder)

	unit, err := f.GetCellValue(SheetDetail, "H3")
	require.NoError(t, err)
	assert.Equal(t, "Global", unit)
}

func TestWriter_Build_RubriqueAndAnalysisSentinels(t *testing.T) {
	w := NewWriter(zap.NewNop())

	records := sampleRecords()
	records[0].Rubriques[0].CategoryCode = nil
	records[0].Rubriques[0].ServiceType = nil

	f, err := w.Build(records)
	require.NoError(t, err)
	defer f.Close()

	code, err := f.GetCellValue(SheetRubriques, "C2")
	require.NoError(t, err)
	assert.Equal(t, NoCategoryCode, code)

	service, err := f.GetCellValue(SheetRubriques, "D2")
	require.NoError(t, err)
	assert.Equal(t, NoServiceType, service)

	status, err := f.GetCellValue(SheetAnalysis, "M2")
	require.NoError(t, err)
	assert.Equal(t, StatusExtracted, status)

	failedStatus, err := f.GetCellValue(SheetAnalysis, "M3")
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, failedStatus)

	recipient, err := f.GetCellValue(SheetAnalysis, "F3")
	require.NoError(t, err)
	assert.Equal(t, models.RecipientUndetermined, recipient)
}

func TestWriter_Build_EmptyBatch(t *testing.T) {
	w := NewWriter(zap.NewNop())

	f, err := w.Build(nil)
	require.NoError(t, err)
	defer f.Close()

	assert.Len(t, f.GetSheetList(), 4)
}
