package extract

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/models"
)

// rubriqueKey groups line items. Absent values map to the empty string, so
// code-less items of different service types never merge.
type rubriqueKey struct {
	code    string
	service string
}

// rubriqueGroup accumulates one summary while the fold is in flight; the
// unit and date sets are rendered only once all items are in.
type rubriqueGroup struct {
	summary models.RubriqueSummary
	units   map[string]struct{}
	dates   map[string]struct{}
}

// RubriqueAggregator folds a document's line items into per-(category code,
// service type) summaries.
type RubriqueAggregator struct {
	logger *zap.Logger
}

// NewRubriqueAggregator creates a new rubrique aggregator.
func NewRubriqueAggregator(logger *zap.Logger) *RubriqueAggregator {
	return &RubriqueAggregator{logger: logger}
}

// Aggregate builds one summary per distinct grouping key, emitted in
// first-encounter order. A nil amount counts as zero; sums over an empty
// input are an empty slice, not nil.
func (a *RubriqueAggregator) Aggregate(items []models.LineItem) []models.RubriqueSummary {
	groups := make(map[rubriqueKey]*rubriqueGroup)
	order := []*rubriqueGroup{}

	for i := range items {
		item := &items[i]
		key := keyFor(item)

		group, ok := groups[key]
		if !ok {
			group = &rubriqueGroup{
				summary: models.RubriqueSummary{
					CategoryCode: item.CategoryCode,
					ServiceType:  item.ServiceType,
				},
				units: make(map[string]struct{}),
				dates: make(map[string]struct{}),
			}
			groups[key] = group
			order = append(order, group)
		}

		if group.summary.BatchID == nil {
			group.summary.BatchID = item.BatchID
		}
		if group.summary.AssignmentID == nil {
			group.summary.AssignmentID = item.AssignmentID
		}

		group.summary.LineCount++
		group.summary.TotalQuantity += item.Quantity
		group.summary.TotalNet += amountOrZero(item.NetAmount)
		group.summary.TotalVAT += amountOrZero(item.VATAmount)
		group.summary.TotalGross += amountOrZero(item.GrossAmount)
		group.units[item.Unit] = struct{}{}
		group.dates[item.PeriodDate] = struct{}{}
	}

	summaries := make([]models.RubriqueSummary, 0, len(order))
	for _, group := range order {
		group.summary.Units = renderSet(group.units)
		group.summary.PeriodDates = renderSet(group.dates)
		summaries = append(summaries, group.summary)
	}

	a.logger.Debug("Aggregated rubriques",
		zap.Int("line_items", len(items)),
		zap.Int("groups", len(summaries)))

	return summaries
}

func keyFor(item *models.LineItem) rubriqueKey {
	var key rubriqueKey
	if item.CategoryCode != nil {
		key.code = *item.CategoryCode
	}
	if item.ServiceType != nil {
		key.service = string(*item.ServiceType)
	}
	return key
}

func amountOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// renderSet joins a set's members into a sorted, comma-separated string.
func renderSet(set map[string]struct{}) string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}
