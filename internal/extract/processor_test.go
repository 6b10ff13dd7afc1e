package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/models"
)

const sampleInvoiceText = `Select T.T Auto-Invoice
Invoice ID/Number: 4973S0012
Invoice Date: 2024/01/31
Purchase Order: 1234567890
Payment Terms: due 2024/03/16
Bill to: Mars Information Services

4973_65744_Temporary employees - Expense 2024/01/15 HRS 10,00 5 50,00 10,00 60,00
4973_65744_Temporary employees - Timesheet 2024/01/22 HRS 10,00 100 1000,00 200,00 1200,00

Invoice Total EUR 1,050.00 210.00 1,260.00
`

// stubSource feeds canned text (or a canned failure) to the processor.
type stubSource struct {
	name string
	text string
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Text(ctx context.Context) (string, error) {
	return s.text, s.err
}

func TestProcessor_Process_FullDocument(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	record := p.Process("facture_4973.pdf", sampleInvoiceText)
	require.NotNil(t, record)

	assert.Equal(t, "facture_4973.pdf", record.SourceFile)
	assert.Equal(t, models.Issuer, record.Issuer)
	assert.Equal(t, models.VATRate, record.VATRate)
	assert.Equal(t, models.Currency, record.Currency)
	assert.Empty(t, record.Error)
	assert.True(t, record.Extracted())

	require.NotNil(t, record.InvoiceNumber)
	assert.Equal(t, "4973S0012", *record.InvoiceNumber)
	require.NotNil(t, record.InvoiceDate)
	assert.Equal(t, "2024/01/31", *record.InvoiceDate)
	require.NotNil(t, record.PurchaseOrder)
	assert.Equal(t, "1234567890", *record.PurchaseOrder)
	require.NotNil(t, record.DueDate)
	assert.Equal(t, "2024/03/16", *record.DueDate)
	assert.Equal(t, "Mars Information Services", record.Recipient)
	require.NotNil(t, record.BatchID)
	assert.Equal(t, "4973", *record.BatchID)
	require.NotNil(t, record.AssignmentID)
	assert.Equal(t, "65744", *record.AssignmentID)

	require.NotNil(t, record.TotalNet)
	assert.InDelta(t, 1050.0, *record.TotalNet, 1e-9)
	require.NotNil(t, record.TotalVAT)
	assert.InDelta(t, 210.0, *record.TotalVAT, 1e-9)
	require.NotNil(t, record.TotalGross)
	assert.InDelta(t, 1260.0, *record.TotalGross, 1e-9)

	require.Len(t, record.LineItems, 2)
	require.Len(t, record.Rubriques, 2)
	assert.Equal(t, models.ServiceExpense, *record.Rubriques[0].ServiceType)
	assert.Equal(t, models.ServiceTimesheet, *record.Rubriques[1].ServiceType)
}

func TestProcessor_Process_EmptyText(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	record := p.Process("blank.pdf", "")
	require.NotNil(t, record)

	assert.False(t, record.Extracted())
	assert.Nil(t, record.InvoiceNumber)
	assert.Nil(t, record.TotalNet)
	assert.Equal(t, models.RecipientUndetermined, record.Recipient)
	assert.NotNil(t, record.LineItems)
	assert.Empty(t, record.LineItems)
	assert.NotNil(t, record.Rubriques)
	assert.Empty(t, record.Rubriques)
}

func TestProcessor_ProcessBatch_IsolatesFailures(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	sources := []Source{
		&stubSource{name: "one.pdf", text: sampleInvoiceText},
		&stubSource{name: "two.pdf", err: errors.New("text layer unreadable")},
		&stubSource{name: "three.pdf", text: sampleInvoiceText},
	}

	records := p.ProcessBatch(context.Background(), sources)
	require.Len(t, records, 3)

	assert.True(t, records[0].Extracted())
	assert.True(t, records[2].Extracted())

	failed := records[1]
	assert.Equal(t, "two.pdf", failed.SourceFile)
	assert.Equal(t, "text layer unreadable", failed.Error)
	assert.False(t, failed.Extracted())
	assert.Nil(t, failed.TotalNet)
	assert.Equal(t, models.Issuer, failed.Issuer)
	assert.Equal(t, models.VATRate, failed.VATRate)
	assert.Equal(t, models.Currency, failed.Currency)
	assert.NotNil(t, failed.LineItems)
	assert.Empty(t, failed.LineItems)
	assert.NotNil(t, failed.Rubriques)
	assert.Empty(t, failed.Rubriques)
}

func TestProcessor_ProcessBatch_Empty(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	records := p.ProcessBatch(context.Background(), nil)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
