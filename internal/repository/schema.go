package repository

import "github.com/selecttt/invoice-extractor/pkg/database"

// Migrations is the schema for stored extraction results. Line items and
// rubrique summaries hang off their invoice and disappear with it.
var Migrations = []database.Migration{
	{
		Version: 1,
		Name:    "create_invoices",
		SQL: `
			CREATE TABLE IF NOT EXISTS invoices (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				source_file TEXT NOT NULL,
				invoice_number TEXT,
				invoice_date TEXT,
				purchase_order TEXT,
				due_date TEXT,
				recipient TEXT NOT NULL DEFAULT '',
				issuer TEXT NOT NULL,
				batch_id TEXT,
				assignment_id TEXT,
				total_net REAL,
				total_vat REAL,
				total_gross REAL,
				vat_rate TEXT NOT NULL,
				currency TEXT NOT NULL,
				error TEXT NOT NULL DEFAULT '',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_invoices_number ON invoices(invoice_number);
		`,
	},
	{
		Version: 2,
		Name:    "create_invoice_lines",
		SQL: `
			CREATE TABLE IF NOT EXISTS invoice_lines (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				invoice_id INTEGER NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				description TEXT NOT NULL,
				batch_id TEXT,
				assignment_id TEXT,
				service_type TEXT,
				category_code TEXT,
				period_date TEXT NOT NULL,
				unit TEXT NOT NULL,
				unit_price REAL,
				quantity INTEGER NOT NULL,
				net_amount REAL,
				vat_amount REAL,
				gross_amount REAL
			);
			CREATE INDEX IF NOT EXISTS idx_invoice_lines_invoice ON invoice_lines(invoice_id);
		`,
	},
	{
		Version: 3,
		Name:    "create_invoice_rubriques",
		SQL: `
			CREATE TABLE IF NOT EXISTS invoice_rubriques (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				invoice_id INTEGER NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				category_code TEXT,
				service_type TEXT,
				batch_id TEXT,
				assignment_id TEXT,
				line_count INTEGER NOT NULL,
				total_quantity INTEGER NOT NULL,
				total_net REAL NOT NULL,
				total_vat REAL NOT NULL,
				total_gross REAL NOT NULL,
				units TEXT NOT NULL DEFAULT '',
				period_dates TEXT NOT NULL DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_invoice_rubriques_invoice ON invoice_rubriques(invoice_id);
		`,
	},
}
