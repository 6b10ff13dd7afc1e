package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/models"
	"github.com/selecttt/invoice-extractor/pkg/database"
)

// StoredInvoice is an extraction result as persisted, with its row identity.
type StoredInvoice struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	models.InvoiceRecord
}

// InvoiceRepository handles invoice persistence
type InvoiceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *database.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Save persists an extraction result with its line items and rubrique
// summaries in a single transaction, returning the new invoice id.
func (r *InvoiceRepository) Save(record *models.InvoiceRecord) (int64, error) {
	var invoiceID int64

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO invoices (
				source_file, invoice_number, invoice_date, purchase_order,
				due_date, recipient, issuer, batch_id, assignment_id,
				total_net, total_vat, total_gross, vat_rate, currency, error
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.SourceFile, record.InvoiceNumber, record.InvoiceDate,
			record.PurchaseOrder, record.DueDate, record.Recipient,
			record.Issuer, record.BatchID, record.AssignmentID,
			record.TotalNet, record.TotalVAT, record.TotalGross,
			record.VATRate, record.Currency, record.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		invoiceID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get invoice id: %w", err)
		}

		for i, item := range record.LineItems {
			if _, err := tx.Exec(`
				INSERT INTO invoice_lines (
					invoice_id, position, description, batch_id, assignment_id,
					service_type, category_code, period_date, unit,
					unit_price, quantity, net_amount, vat_amount, gross_amount
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				invoiceID, i, item.Description, item.BatchID, item.AssignmentID,
				serviceTypeValue(item.ServiceType), item.CategoryCode,
				item.PeriodDate, item.Unit, item.UnitPrice, item.Quantity,
				item.NetAmount, item.VATAmount, item.GrossAmount,
			); err != nil {
				return fmt.Errorf("failed to insert line item %d: %w", i, err)
			}
		}

		for i, rub := range record.Rubriques {
			if _, err := tx.Exec(`
				INSERT INTO invoice_rubriques (
					invoice_id, position, category_code, service_type,
					batch_id, assignment_id, line_count, total_quantity,
					total_net, total_vat, total_gross, units, period_dates
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				invoiceID, i, rub.CategoryCode, serviceTypeValue(rub.ServiceType),
				rub.BatchID, rub.AssignmentID, rub.LineCount, rub.TotalQuantity,
				rub.TotalNet, rub.TotalVAT, rub.TotalGross,
				rub.Units, rub.PeriodDates,
			); err != nil {
				return fmt.Errorf("failed to insert rubrique %d: %w", i, err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Debug("Invoice saved",
		zap.Int64("id", invoiceID),
		zap.String("source_file", record.SourceFile),
		zap.Int("line_items", len(record.LineItems)))
	return invoiceID, nil
}

// GetByID retrieves an invoice with its line items and rubrique summaries
func (r *InvoiceRepository) GetByID(id int64) (*StoredInvoice, error) {
	row := r.db.QueryRow(`
		SELECT id, source_file, invoice_number, invoice_date, purchase_order,
		       due_date, recipient, issuer, batch_id, assignment_id,
		       total_net, total_vat, total_gross, vat_rate, currency, error,
		       created_at
		FROM invoices WHERE id = ?`, id)

	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := r.loadLineItems(inv); err != nil {
		return nil, err
	}
	if err := r.loadRubriques(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// List retrieves stored invoices newest first, fully populated so callers can
// rebuild reports straight from the result.
func (r *InvoiceRepository) List(limit, offset int) ([]*StoredInvoice, error) {
	rows, err := r.db.Query(`
		SELECT id, source_file, invoice_number, invoice_date, purchase_order,
		       due_date, recipient, issuer, batch_id, assignment_id,
		       total_net, total_vat, total_gross, vat_rate, currency, error,
		       created_at
		FROM invoices
		ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*StoredInvoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, inv := range invoices {
		if err := r.loadLineItems(inv); err != nil {
			return nil, err
		}
		if err := r.loadRubriques(inv); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

// Count returns the total number of stored invoices
func (r *InvoiceRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM invoices").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}

// Delete removes an invoice; line items and rubriques cascade.
func (r *InvoiceRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*StoredInvoice, error) {
	inv := &StoredInvoice{}
	err := row.Scan(
		&inv.ID, &inv.SourceFile, &inv.InvoiceNumber, &inv.InvoiceDate,
		&inv.PurchaseOrder, &inv.DueDate, &inv.Recipient, &inv.Issuer,
		&inv.BatchID, &inv.AssignmentID,
		&inv.TotalNet, &inv.TotalVAT, &inv.TotalGross,
		&inv.VATRate, &inv.Currency, &inv.Error, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.LineItems = []models.LineItem{}
	inv.Rubriques = []models.RubriqueSummary{}
	return inv, nil
}

func (r *InvoiceRepository) loadLineItems(inv *StoredInvoice) error {
	rows, err := r.db.Query(`
		SELECT description, batch_id, assignment_id, service_type,
		       category_code, period_date, unit, unit_price, quantity,
		       net_amount, vat_amount, gross_amount
		FROM invoice_lines WHERE invoice_id = ? ORDER BY position`, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to load line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LineItem
		var serviceType *string
		if err := rows.Scan(
			&item.Description, &item.BatchID, &item.AssignmentID,
			&serviceType, &item.CategoryCode, &item.PeriodDate, &item.Unit,
			&item.UnitPrice, &item.Quantity,
			&item.NetAmount, &item.VATAmount, &item.GrossAmount,
		); err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		item.ServiceType = serviceTypePtr(serviceType)
		inv.LineItems = append(inv.LineItems, item)
	}
	return rows.Err()
}

func (r *InvoiceRepository) loadRubriques(inv *StoredInvoice) error {
	rows, err := r.db.Query(`
		SELECT category_code, service_type, batch_id, assignment_id,
		       line_count, total_quantity, total_net, total_vat, total_gross,
		       units, period_dates
		FROM invoice_rubriques WHERE invoice_id = ? ORDER BY position`, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to load rubriques: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rub models.RubriqueSummary
		var serviceType *string
		if err := rows.Scan(
			&rub.CategoryCode, &serviceType, &rub.BatchID, &rub.AssignmentID,
			&rub.LineCount, &rub.TotalQuantity,
			&rub.TotalNet, &rub.TotalVAT, &rub.TotalGross,
			&rub.Units, &rub.PeriodDates,
		); err != nil {
			return fmt.Errorf("failed to scan rubrique: %w", err)
		}
		rub.ServiceType = serviceTypePtr(serviceType)
		inv.Rubriques = append(inv.Rubriques, rub)
	}
	return rows.Err()
}

func serviceTypeValue(st *models.ServiceType) *string {
	if st == nil {
		return nil
	}
	s := string(*st)
	return &s
}

func serviceTypePtr(s *string) *models.ServiceType {
	if s == nil {
		return nil
	}
	st := models.ServiceType(*s)
	return &st
}
