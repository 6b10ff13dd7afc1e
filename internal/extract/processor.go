package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/models"
)

// Source supplies the raw text for one document. Implementations wrap the
// upstream text providers; the engine has no awareness of which provider
// produced the text.
type Source interface {
	Name() string
	Text(ctx context.Context) (string, error)
}

// Processor runs the full extraction pass for a document: header fields,
// line items, then rubrique roll-ups, assembled into one InvoiceRecord.
type Processor struct {
	fields    *FieldExtractor
	lineItems *LineItemParser
	rubriques *RubriqueAggregator
	logger    *zap.Logger
}

// NewProcessor creates a processor with all three extraction stages wired to
// a shared amount normalizer.
func NewProcessor(logger *zap.Logger) *Processor {
	normalizer := NewAmountNormalizer(logger)
	return &Processor{
		fields:    NewFieldExtractor(normalizer, logger),
		lineItems: NewLineItemParser(normalizer, logger),
		rubriques: NewRubriqueAggregator(logger),
		logger:    logger,
	}
}

// Process extracts one invoice record from raw document text. It never
// fails: an unexpected fault is captured in the record's error indicator
// with every other field left empty, so one bad document cannot take down a
// batch.
func (p *Processor) Process(name, text string) (record *models.InvoiceRecord) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Extraction fault",
				zap.String("source", name),
				zap.Any("cause", r))
			record = ErrorRecord(name, fmt.Sprintf("%v", r))
		}
	}()

	record = &models.InvoiceRecord{
		SourceFile: name,
		Issuer:     models.Issuer,
		VATRate:    models.VATRate,
		Currency:   models.Currency,
	}

	record.InvoiceNumber = p.fields.InvoiceNumber(text)
	record.InvoiceDate = p.fields.InvoiceDate(text)
	record.PurchaseOrder = p.fields.PurchaseOrder(text)
	record.DueDate = p.fields.DueDate(text)
	record.Recipient = p.fields.Recipient(text)
	record.BatchID, record.AssignmentID = p.fields.BatchAssignment(text)
	record.TotalNet = p.fields.TotalNet(text)
	record.TotalVAT = p.fields.TotalVAT(text)
	record.TotalGross = p.fields.TotalGross(text)

	record.LineItems = p.lineItems.Parse(text)
	record.Rubriques = p.rubriques.Aggregate(record.LineItems)

	p.logger.Info("Document processed",
		zap.String("source", name),
		zap.Bool("invoice_number_found", record.Extracted()),
		zap.Int("line_items", len(record.LineItems)),
		zap.Int("rubriques", len(record.Rubriques)))

	return record
}

// ProcessBatch processes each source independently, in order. A source whose
// text cannot be read yields an error record in its slot; sibling documents
// are unaffected and the result always has one record per input.
func (p *Processor) ProcessBatch(ctx context.Context, sources []Source) []*models.InvoiceRecord {
	records := make([]*models.InvoiceRecord, 0, len(sources))
	for _, src := range sources {
		text, err := src.Text(ctx)
		if err != nil {
			p.logger.Error("Failed to read document text",
				zap.String("source", src.Name()),
				zap.Error(err))
			records = append(records, ErrorRecord(src.Name(), err.Error()))
			continue
		}
		records = append(records, p.Process(src.Name(), text))
	}
	return records
}

// ErrorRecord builds the record returned for a document that faulted: only
// the source identifier, the template constants and the error survive.
func ErrorRecord(name, message string) *models.InvoiceRecord {
	return &models.InvoiceRecord{
		SourceFile: name,
		Issuer:     models.Issuer,
		VATRate:    models.VATRate,
		Currency:   models.Currency,
		LineItems:  []models.LineItem{},
		Rubriques:  []models.RubriqueSummary{},
		Error:      message,
	}
}
