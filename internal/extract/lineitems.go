package extract

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/models"
)

// A transaction line reads: identifier-prefixed description, period date,
// unit label, unit price, integer quantity, then net, VAT and gross amounts.
// Two structural variants cover the layouts the text extractors produce; they
// differ only in how the description tail is delimited. Both are applied, so
// a description that satisfies both (no digits and no spaces) is captured
// twice. That overlap is long-standing behavior downstream reconciles against
// and is kept as is.
var lineItemPatterns = []*regexp.Regexp{
	// Description tail may contain spaces but no digits.
	regexp.MustCompile(`(\d{4}_\d{5}_[^0-9]*?)\s+(\d{4}/\d{2}/\d{2})\s+(\w+)\s+([\d,\.]+)\s+(\d+)\s+([\d,\.]+)\s+([\d,\.]+)\s+([\d,\.]+)`),
	// Description tail is a single run without whitespace, digits allowed.
	regexp.MustCompile(`(\d{4}_\d{5}_\S*?)\s+(\d{4}/\d{2}/\d{2})\s+(\w+)\s+([\d,\.]+)\s+(\d+)\s+([\d,\.]+)\s+([\d,\.]+)\s+([\d,\.]+)`),
}

// Category codes are two letters followed by three digits, looked up with a
// labelled pattern before the bare shape.
var categoryCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:Rubrique)[^A-Za-z0-9]*([A-Z]{2}[0-9]{3})`),
	regexp.MustCompile(`\b([A-Z]{2}[0-9]{3})\b`),
}

// LineItemParser scans document text for transactional records.
type LineItemParser struct {
	normalizer *AmountNormalizer
	logger     *zap.Logger
}

// NewLineItemParser creates a new line-item parser.
func NewLineItemParser(normalizer *AmountNormalizer, logger *zap.Logger) *LineItemParser {
	return &LineItemParser{normalizer: normalizer, logger: logger}
}

// Parse returns every structurally matched line item in document order. A
// match whose numeric fields cannot all be coerced is dropped whole, never
// recorded partially.
func (p *LineItemParser) Parse(text string) []models.LineItem {
	items := []models.LineItem{}
	for _, re := range lineItemPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			item, ok := p.buildItem(m, text)
			if !ok {
				continue
			}
			items = append(items, item)
		}
	}
	return items
}

// buildItem coerces one structural match into a LineItem.
func (p *LineItemParser) buildItem(m []string, fullText string) (models.LineItem, bool) {
	description := strings.TrimSpace(m[1])

	unitPrice := p.normalizer.Normalize(m[4])
	quantity, qtyErr := strconv.Atoi(m[5])
	net := p.normalizer.Normalize(m[6])
	vat := p.normalizer.Normalize(m[7])
	gross := p.normalizer.Normalize(m[8])
	if qtyErr != nil || unitPrice == nil || net == nil || vat == nil || gross == nil {
		p.logger.Warn("Dropping line item with unparseable numeric field",
			zap.String("description", description))
		return models.LineItem{}, false
	}

	item := models.LineItem{
		Description: description,
		PeriodDate:  m[2],
		Unit:        m[3],
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		NetAmount:   net,
		VATAmount:   vat,
		GrossAmount: gross,
	}
	p.decomposeDescription(&item)
	item.CategoryCode = findCategoryCode(description, fullText)
	return item, true
}

// decomposeDescription splits the description on underscores into batch id,
// assignment id and a free-text remainder, which is scanned for the service
// type. Fewer than three segments leaves the ids nil and the service type
// undetermined.
func (p *LineItemParser) decomposeDescription(item *models.LineItem) {
	parts := strings.Split(item.Description, "_")
	if len(parts) < 3 {
		return
	}

	batch, assignment := parts[0], parts[1]
	item.BatchID = &batch
	item.AssignmentID = &assignment

	remainder := strings.ToLower(strings.Join(parts[2:], "_"))
	service := models.ServiceOther
	switch {
	case strings.Contains(remainder, "expense"):
		service = models.ServiceExpense
	case strings.Contains(remainder, "timesheet"):
		service = models.ServiceTimesheet
	}
	item.ServiceType = &service
}

// findCategoryCode looks for a category code inside the line's own
// description first, then anywhere in the document.
func findCategoryCode(description, fullText string) *string {
	for _, scope := range []string{description, fullText} {
		if code := firstMatch(categoryCodePatterns, scope); code != nil {
			return code
		}
	}
	return nil
}
