// Package store persists the transaction dataset, the upload-history log,
// and derived statistics. Two backends implement the same contract: a
// JSON-file store with an atomic backup-rename write protocol, and a
// SQLite store that computes aggregates with live queries. The dataset is
// replaced wholesale on each successful ingest; it represents the most
// recently ingested archive, not a cumulative history.
package store

import (
	"strconv"
	"strings"

	"momolens/internal/models"
	"momolens/internal/pagination"
)

// PageQuery selects one page of the dataset, optionally filtered by exact
// category match and a case-insensitive substring search.
type PageQuery struct {
	pagination.PageRequest
	Category string `form:"category" binding:"omitempty,tx_category"`
	Search   string `form:"search"`
}

// PageResult is one page of the date-descending dataset.
type PageResult struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
	Pages        int                  `json:"pages"`
	CurrentPage  int                  `json:"current_page"`
	PerPage      int                  `json:"per_page"`
}

// UploadUpdate carries the fields of an upload record to change. Nil
// fields are left untouched.
type UploadUpdate struct {
	TotalMessages     *int
	ProcessedMessages *int
	Status            *models.UploadStatus
}

// Store is the persistence contract shared by both backends. Every
// operation is serialized against every other; mutating operations
// recompute derived statistics before returning.
type Store interface {
	// ReplaceDataset discards the current dataset and inserts the given
	// drafts as a new generation. Drafts failing validation are dropped
	// with a warning; the returned count is the number actually inserted.
	ReplaceDataset(drafts []models.Draft) (int, error)

	// GetPage returns one page of the dataset, sorted by date descending.
	GetPage(q PageQuery) (*PageResult, error)

	// Clear removes every transaction and recomputes statistics.
	Clear() error

	// AddUploadRecord appends an ingest attempt to the upload history and
	// returns its id.
	AddUploadRecord(filename string, totalMessages, processedMessages int, status models.UploadStatus) (uint, error)

	// UpdateUploadRecord applies the update to the record with the given
	// id. Updating an unknown id is a no-op; concurrent updates are
	// last-writer-wins under the store lock.
	UpdateUploadRecord(id uint, update UploadUpdate) error

	// GetUploadHistory returns the most recent upload records, newest
	// first.
	GetUploadHistory(limit int) ([]models.UploadRecord, error)

	// GetStats returns the dataset-wide aggregate snapshot.
	GetStats() (*models.StatsSnapshot, error)

	// GetMonthlyStats returns per-month aggregates, ascending by month.
	GetMonthlyStats() ([]models.MonthStat, error)

	// GetCategoryDistribution returns per-category counts with display
	// labels.
	GetCategoryDistribution() ([]models.CategoryCount, error)

	// Close releases backend resources.
	Close() error
}

// matchesSearch reports whether the transaction matches a case-insensitive
// substring search across recipient, sender, message, category, amount,
// and transaction reference.
func matchesSearch(tx models.Transaction, search string) bool {
	needle := strings.ToLower(search)
	fields := []string{
		deref(tx.RecipientName),
		deref(tx.SenderName),
		deref(tx.Message),
		string(tx.Category),
		strconv.FormatFloat(tx.Amount, 'f', -1, 64),
		deref(tx.TransactionID),
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
