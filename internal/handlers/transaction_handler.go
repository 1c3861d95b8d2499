package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "momolens/internal/errors"
	"momolens/internal/models"
	"momolens/internal/store"
)

// exportPageSize bounds a CSV export to one store read.
const exportPageSize = 10000

// TransactionHandler handles dataset queries, clearing, and CSV export.
type TransactionHandler struct {
	store store.Store
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(s store.Store) *TransactionHandler {
	return &TransactionHandler{store: s}
}

// List returns one page of the dataset, optionally filtered by category
// and search term.
func (h *TransactionHandler) List(c *gin.Context) {
	var query store.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.store.GetPage(query)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Clear removes all transaction data.
func (h *TransactionHandler) Clear(c *gin.Context) {
	if err := h.store.Clear(); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All data cleared successfully"})
}

// ExportCSV streams the full dataset as CSV, date descending.
func (h *TransactionHandler) ExportCSV(c *gin.Context) {
	result, err := h.store.GetPage(store.PageQuery{
		PageRequest: pageOf(1, exportPageSize),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("momo_transactions_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write([]string{
		"Date", "Category", "Recipient", "Sender", "Amount",
		"Fee", "Balance", "Transaction ID", "Message", "Raw Body",
	})
	for _, tx := range result.Transactions {
		_ = writer.Write(csvRow(tx))
	}
}

// csvRow formats one transaction for export. Absent optional fields
// become empty cells.
func csvRow(tx models.Transaction) []string {
	balance := ""
	if tx.Balance != nil {
		balance = strconv.FormatFloat(*tx.Balance, 'f', -1, 64)
	}
	return []string{
		tx.Date.Format("2006-01-02 15:04:05"),
		tx.Category.Display(),
		orEmpty(tx.RecipientName),
		orEmpty(tx.SenderName),
		strconv.FormatFloat(tx.Amount, 'f', -1, 64),
		strconv.FormatFloat(tx.Fee, 'f', -1, 64),
		balance,
		orEmpty(tx.TransactionID),
		orEmpty(tx.Message),
		tx.RawBody,
	}
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
