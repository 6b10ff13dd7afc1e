package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/selecttt/invoice-extractor/internal/extract"
	"github.com/selecttt/invoice-extractor/internal/models"
	"github.com/selecttt/invoice-extractor/internal/pdftext"
	"github.com/selecttt/invoice-extractor/internal/report"
	"github.com/selecttt/invoice-extractor/internal/repository"
	"github.com/selecttt/invoice-extractor/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceStore is the persistence surface the handlers need
type InvoiceStore interface {
	Save(record *models.InvoiceRecord) (int64, error)
	GetByID(id int64) (*repository.StoredInvoice, error)
	List(limit, offset int) ([]*repository.StoredInvoice, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	store     InvoiceStore
	uploads   storage.UploadStore
	provider  pdftext.Provider
	processor *extract.Processor
	writer    *report.Writer
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	store InvoiceStore,
	uploads storage.UploadStore,
	provider pdftext.Provider,
	processor *extract.Processor,
	writer *report.Writer,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		store:     store,
		uploads:   uploads,
		provider:  provider,
		processor: processor,
		writer:    writer,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ExtractedDocument pairs an extraction result with its stored id
type ExtractedDocument struct {
	ID int64 `json:"id"`
	*models.InvoiceRecord
}

// ListInvoicesRequest represents query parameters for listing invoices
type ListInvoicesRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Extract handles POST /api/v1/extract. It accepts a multipart form with one
// or more PDF documents under the "files" field, runs the extraction pipeline
// on each and persists the results. A document that fails yields an error
// record; it never aborts the batch.
func (h *Handlers) Extract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid multipart form",
		})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "no files provided",
		})
		return
	}

	var sources []extract.Source
	for _, fh := range files {
		path, err := h.saveUpload(fh)
		if err != nil {
			h.logger.Warn("Rejected upload",
				zap.String("filename", fh.Filename),
				zap.Error(err))
			c.JSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   fmt.Sprintf("cannot accept %q: %v", fh.Filename, err),
			})
			return
		}
		sources = append(sources, pdftext.NewFileSource(path, h.provider))
	}

	records := h.processor.ProcessBatch(c.Request.Context(), sources)

	documents := make([]ExtractedDocument, 0, len(records))
	for _, record := range records {
		id, err := h.store.Save(record)
		if err != nil {
			h.logger.Error("Failed to save extraction result",
				zap.String("source_file", record.SourceFile),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, Response{
				Success: false,
				Error:   "failed to save extraction results",
			})
			return
		}
		documents = append(documents, ExtractedDocument{ID: id, InvoiceRecord: record})
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    documents,
	})
}

// ListInvoices handles GET /api/v1/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	invoices, err := h.store.List(req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list invoices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve invoices",
		})
		return
	}
	if invoices == nil {
		invoices = []*repository.StoredInvoice{}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    invoices,
	})
}

// GetInvoice handles GET /api/v1/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid invoice ID",
		})
		return
	}

	invoice, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("Failed to get invoice", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve invoice",
		})
		return
	}
	if invoice == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "invoice not found",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    invoice,
	})
}

// DownloadReport handles GET /api/v1/report. It rebuilds the multi-sheet
// Excel report from stored extraction results and streams it back.
func (h *Handlers) DownloadReport(c *gin.Context) {
	limit := 1000
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   "invalid limit",
			})
			return
		}
		limit = n
	}

	invoices, err := h.store.List(limit, 0)
	if err != nil {
		h.logger.Error("Failed to load invoices for report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to load invoices",
		})
		return
	}

	records := make([]*models.InvoiceRecord, 0, len(invoices))
	for _, inv := range invoices {
		records = append(records, &inv.InvoiceRecord)
	}

	f, err := h.writer.Build(records)
	if err != nil {
		h.logger.Error("Failed to build report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to build report",
		})
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.logger.Error("Failed to serialize report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to serialize report",
		})
		return
	}

	filename := fmt.Sprintf("analyse_factures_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handlers) saveUpload(fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	return h.uploads.SavePDF(fh.Filename, content)
}
