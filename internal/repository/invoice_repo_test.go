package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/models"
	"github.com/selecttt/invoice-extractor/pkg/database"
)

func setupTestRepo(t *testing.T) *InvoiceRepository {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run(Migrations))

	return NewInvoiceRepository(db, logger)
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func servicePtr(st models.ServiceType) *models.ServiceType {
	return &st
}

func fullRecord() *models.InvoiceRecord {
	return &models.InvoiceRecord{
		SourceFile:    "facture_2024S1042.pdf",
		InvoiceNumber: strPtr("2024S1042"),
		InvoiceDate:   strPtr("2024/01/31"),
		PurchaseOrder: strPtr("4500123456"),
		DueDate:       strPtr("2024/03/16"),
		Recipient:     "Mars Information Services",
		Issuer:        models.Issuer,
		BatchID:       strPtr("2401"),
		AssignmentID:  strPtr("54321"),
		TotalNet:      floatPtr(4500),
		TotalVAT:      floatPtr(900),
		TotalGross:    floatPtr(5400),
		VATRate:       models.VATRate,
		Currency:      models.Currency,
		LineItems: []models.LineItem{
			{
				Description:  "2401_54321_Consulting Services",
				BatchID:      strPtr("2401"),
				AssignmentID: strPtr("54321"),
				ServiceType:  servicePtr(models.ServiceTimesheet),
				CategoryCode: strPtr("OT100"),
				PeriodDate:   "2024/01/31",
				Unit:         "DAY",
				UnitPrice:    floatPtr(450),
				Quantity:     10,
				NetAmount:    floatPtr(4500),
				VATAmount:    floatPtr(900),
				GrossAmount:  floatPtr(5400),
			},
		},
		Rubriques: []models.RubriqueSummary{
			{
				CategoryCode:  strPtr("OT100"),
				ServiceType:   servicePtr(models.ServiceTimesheet),
				BatchID:       strPtr("2401"),
				AssignmentID:  strPtr("54321"),
				LineCount:     1,
				TotalQuantity: 10,
				TotalNet:      4500,
				TotalVAT:      900,
				TotalGross:    5400,
				Units:         "DAY",
				PeriodDates:   "2024/01/31",
			},
		},
	}
}

func TestInvoiceRepository_SaveAndGet(t *testing.T) {
	repo := setupTestRepo(t)

	id, err := repo.Save(fullRecord())
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "facture_2024S1042.pdf", got.SourceFile)
	require.NotNil(t, got.InvoiceNumber)
	assert.Equal(t, "2024S1042", *got.InvoiceNumber)
	assert.Equal(t, "Mars Information Services", got.Recipient)
	require.NotNil(t, got.TotalGross)
	assert.InDelta(t, 5400, *got.TotalGross, 0.001)
	assert.False(t, got.CreatedAt.IsZero())

	require.Len(t, got.LineItems, 1)
	item := got.LineItems[0]
	assert.Equal(t, "2401_54321_Consulting Services", item.Description)
	require.NotNil(t, item.ServiceType)
	assert.Equal(t, models.ServiceTimesheet, *item.ServiceType)
	assert.Equal(t, 10, item.Quantity)

	require.Len(t, got.Rubriques, 1)
	rub := got.Rubriques[0]
	require.NotNil(t, rub.CategoryCode)
	assert.Equal(t, "OT100", *rub.CategoryCode)
	assert.Equal(t, "DAY", rub.Units)
	assert.InDelta(t, 4500, rub.TotalNet, 0.001)
}

func TestInvoiceRepository_SaveErrorRecord(t *testing.T) {
	repo := setupTestRepo(t)

	record := &models.InvoiceRecord{
		SourceFile: "broken.pdf",
		Issuer:     models.Issuer,
		VATRate:    models.VATRate,
		Currency:   models.Currency,
		LineItems:  []models.LineItem{},
		Rubriques:  []models.RubriqueSummary{},
		Error:      "unreadable document",
	}

	id, err := repo.Save(record)
	require.NoError(t, err)

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "unreadable document", got.Error)
	assert.Nil(t, got.InvoiceNumber)
	assert.Empty(t, got.LineItems)
	assert.Empty(t, got.Rubriques)
}

func TestInvoiceRepository_GetByID_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	got, err := repo.GetByID(12345)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvoiceRepository_List(t *testing.T) {
	repo := setupTestRepo(t)

	first, err := repo.Save(fullRecord())
	require.NoError(t, err)
	second, err := repo.Save(fullRecord())
	require.NoError(t, err)

	invoices, err := repo.List(10, 0)
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	// newest first
	assert.Equal(t, second, invoices[0].ID)
	assert.Equal(t, first, invoices[1].ID)
	assert.Len(t, invoices[0].LineItems, 1)
	assert.Len(t, invoices[0].Rubriques, 1)

	page, err := repo.List(1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first, page[0].ID)
}

func TestInvoiceRepository_Count(t *testing.T) {
	repo := setupTestRepo(t)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = repo.Save(fullRecord())
	require.NoError(t, err)

	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInvoiceRepository_Delete(t *testing.T) {
	repo := setupTestRepo(t)

	id, err := repo.Save(fullRecord())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(id))

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// children cascade with the invoice row
	var lines int
	require.NoError(t, repo.db.QueryRow(
		"SELECT COUNT(*) FROM invoice_lines WHERE invoice_id = ?", id).Scan(&lines))
	assert.Equal(t, 0, lines)

	assert.ErrorIs(t, repo.Delete(id), sql.ErrNoRows)
}
