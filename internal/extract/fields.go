package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/models"
)

// Pattern lists are ordered most specific first: a tight, label-anchored
// match is preferred over a loose structural one, so a document containing
// several runs of the right shape resolves to the labelled occurrence.
var (
	invoiceNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Invoice ID/Number[^0-9A-Z]*([0-9]+S[0-9]+)`),
		regexp.MustCompile(`(\d{4}S\d{4})`),
		regexp.MustCompile(`(?i)Invoice.*?(\d{4}S\d{3,4})`),
	}
	invoiceDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Invoice Date[^0-9]*(\d{4}/\d{2}/\d{2})`),
		regexp.MustCompile(`(\d{4}/\d{2}/\d{2})`),
	}
	dueDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Payment Terms[^0-9]*(\d{4}/\d{2}/\d{2})`),
		regexp.MustCompile(`(?i)Modalités de Paiement[^0-9]*(\d{4}/\d{2}/\d{2})`),
	}
	purchaseOrderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Purchase Order[^0-9]*(\d{10})`),
		regexp.MustCompile(`(?i)Bon de commande[^0-9]*(\d{10})`),
		regexp.MustCompile(`(\d{10})`),
	}

	// Batch and assignment ids always travel together in one 4_5 digit shape;
	// extracting them from a single match keeps them on the same occurrence.
	batchAssignmentPattern = regexp.MustCompile(`(\d{4})_(\d{5})_`)

	// The Invoice Total line carries three whitespace-separated amounts after
	// the currency code: net, VAT, gross in that order.
	totalNetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Invoice Total.*?EUR.*?([\d,\.]+)\s+[\d,\.]+\s+[\d,\.]+`),
		regexp.MustCompile(`(?i)Invoice Total.*?EUR.*?([\d,\.]+)`),
		regexp.MustCompile(`(?i)Net Amount.*?([\d,\.]+)`),
		regexp.MustCompile(`(?i)Montant Net.*?([\d,\.]+)`),
	}
	totalVATPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Invoice Total.*?EUR.*?[\d,\.]+\s+([\d,\.]+)\s+[\d,\.]+`),
		regexp.MustCompile(`(?i)VAT Amount.*?([\d,\.]+)`),
		regexp.MustCompile(`(?i)Montant TVA.*?([\d,\.]+)`),
	}
	totalGrossPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Invoice Total.*?EUR.*?[\d,\.]+\s+[\d,\.]+\s+([\d,\.]+)`),
		regexp.MustCompile(`(?i)Gross Amount.*?([\d,\.]+)`),
		regexp.MustCompile(`(?i)Montant brut.*?([\d,\.]+)`),
	}
)

// FieldExtractor recovers scalar header fields from the full document text.
// Every field is extracted independently; a field whose pattern list is
// exhausted without a match comes back nil.
type FieldExtractor struct {
	normalizer *AmountNormalizer
	logger     *zap.Logger
}

// NewFieldExtractor creates a new field extractor.
func NewFieldExtractor(normalizer *AmountNormalizer, logger *zap.Logger) *FieldExtractor {
	return &FieldExtractor{normalizer: normalizer, logger: logger}
}

// firstMatch returns the trimmed first capture group of the first pattern
// that matches, or nil when the list is exhausted.
func firstMatch(patterns []*regexp.Regexp, text string) *string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			if v := strings.TrimSpace(m[1]); v != "" {
				return &v
			}
		}
	}
	return nil
}

// InvoiceNumber extracts the auto-invoice number (DDDDSDDDD shape).
func (e *FieldExtractor) InvoiceNumber(text string) *string {
	return firstMatch(invoiceNumberPatterns, text)
}

// InvoiceDate extracts the invoice date, falling back to the first bare
// YYYY/MM/DD occurrence anywhere in the text.
func (e *FieldExtractor) InvoiceDate(text string) *string {
	return firstMatch(invoiceDatePatterns, text)
}

// DueDate extracts the payment due date. There is no bare fallback: an
// unlabelled date is more likely the invoice date.
func (e *FieldExtractor) DueDate(text string) *string {
	return firstMatch(dueDatePatterns, text)
}

// PurchaseOrder extracts the 10-digit purchase order number. A candidate is
// accepted only when it is exactly 10 digits after trimming.
func (e *FieldExtractor) PurchaseOrder(text string) *string {
	for _, re := range purchaseOrderPatterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			if v := strings.TrimSpace(m[1]); len(v) == 10 {
				return &v
			}
		}
	}
	return nil
}

// BatchAssignment extracts the category-batch id and assignment id from the
// first DDDD_DDDDD_ occurrence. Both come from the same match.
func (e *FieldExtractor) BatchAssignment(text string) (batchID, assignmentID *string) {
	m := batchAssignmentPattern.FindStringSubmatch(text)
	if len(m) < 3 {
		return nil, nil
	}
	batch, assignment := m[1], m[2]
	return &batch, &assignment
}

// Recipient resolves the invoice recipient by an ordered containment check
// against the known recipient names.
func (e *FieldExtractor) Recipient(text string) string {
	switch {
	case strings.Contains(text, "Mars Information Services"):
		return "Mars Information Services"
	case strings.Contains(text, "Mars Petcare Food France"):
		return "Mars Petcare Food France SAS"
	case strings.Contains(text, "Mars"):
		return "Mars (à préciser)"
	}
	return models.RecipientUndetermined
}

// TotalNet extracts the pre-tax invoice total.
func (e *FieldExtractor) TotalNet(text string) *float64 {
	return e.totalAmount(totalNetPatterns, text)
}

// TotalVAT extracts the invoice tax total.
func (e *FieldExtractor) TotalVAT(text string) *float64 {
	return e.totalAmount(totalVATPatterns, text)
}

// TotalGross extracts the tax-inclusive invoice total.
func (e *FieldExtractor) TotalGross(text string) *float64 {
	return e.totalAmount(totalGrossPatterns, text)
}

// totalAmount resolves the first matching pattern and normalizes its capture.
// The first structural match wins even when normalization then fails; later,
// looser patterns are not consulted for a replacement value.
func (e *FieldExtractor) totalAmount(patterns []*regexp.Regexp, text string) *float64 {
	raw := firstMatch(patterns, text)
	if raw == nil {
		return nil
	}
	return e.normalizer.Normalize(*raw)
}
