package models

// Constant attributes of the Select T.T auto-invoice template family. Every
// document this engine understands carries the same issuer, VAT rate and
// currency.
const (
	Issuer   = "Select T.T"
	VATRate  = "20%"
	Currency = "EUR"
)

// RecipientUndetermined is returned when none of the known recipient names
// appears in the document text.
const RecipientUndetermined = "Non déterminé"

// ServiceType is the coarse billing classification derived from a line item
// description.
type ServiceType string

const (
	ServiceExpense   ServiceType = "Expense"
	ServiceTimesheet ServiceType = "Timesheet"
	ServiceOther     ServiceType = "Other"
)

// InvoiceRecord is the complete extraction result for one source document.
// Optional fields are nil when the document layout did not yield a match.
type InvoiceRecord struct {
	SourceFile    string            `json:"nom_fichier"`
	InvoiceNumber *string           `json:"numero_facture"`
	InvoiceDate   *string           `json:"date_facture"`
	PurchaseOrder *string           `json:"numero_commande"`
	DueDate       *string           `json:"date_echeance"`
	Recipient     string            `json:"destinataire"`
	Issuer        string            `json:"emetteur"`
	BatchID       *string           `json:"batch_id"`
	AssignmentID  *string           `json:"assignment_id"`
	TotalNet      *float64          `json:"total_net"`
	TotalVAT      *float64          `json:"total_tva"`
	TotalGross    *float64          `json:"total_brut"`
	VATRate       string            `json:"taux_tva"`
	Currency      string            `json:"devise"`
	LineItems     []LineItem        `json:"lignes_detail"`
	Rubriques     []RubriqueSummary `json:"rubriques_analyse"`
	Error         string            `json:"erreur,omitempty"`
}

// Extracted reports whether extraction recovered the invoice number, the
// loose definition of a successful document.
func (r *InvoiceRecord) Extracted() bool {
	return r.InvoiceNumber != nil
}

// LineItem is one billed unit matched inside a document.
type LineItem struct {
	Description  string       `json:"description"`
	BatchID      *string      `json:"batch_id"`
	AssignmentID *string      `json:"assignment_id"`
	ServiceType  *ServiceType `json:"type_prestation"`
	CategoryCode *string      `json:"code_rubrique"`
	PeriodDate   string       `json:"date_periode"`
	Unit         string       `json:"unite"`
	UnitPrice    *float64     `json:"prix_unitaire"`
	Quantity     int          `json:"quantite"`
	NetAmount    *float64     `json:"montant_net"`
	VATAmount    *float64     `json:"montant_tva"`
	GrossAmount  *float64     `json:"montant_brut"`
}

// RubriqueSummary is the roll-up of a document's line items for one
// (category code, service type) pair. BatchID and AssignmentID carry the
// first value seen in the group; items in the same group are not guaranteed
// to share them.
type RubriqueSummary struct {
	CategoryCode  *string      `json:"code_rubrique"`
	ServiceType   *ServiceType `json:"type_prestation"`
	BatchID       *string      `json:"batch_id"`
	AssignmentID  *string      `json:"assignment_id"`
	LineCount     int          `json:"nb_lignes"`
	TotalQuantity int          `json:"quantite_totale"`
	TotalNet      float64      `json:"total_net"`
	TotalVAT      float64      `json:"total_tva"`
	TotalGross    float64      `json:"total_brut"`
	Units         string       `json:"unites"`
	PeriodDates   string       `json:"dates_periode"`
}
