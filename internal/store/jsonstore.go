package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "momolens/internal/errors"
	"momolens/internal/logger"
	"momolens/internal/models"
	"momolens/internal/pagination"
	"momolens/internal/stats"
)

const backupSuffix = ".backup"

// JSONStore persists the dataset in three JSON files under a data
// directory: transactions.json, upload_history.json, and stats.json. Every
// operation holds a single store-wide mutex for its full duration, so all
// access is strictly serialized. Each file write uses a backup-rename
// protocol: the old file is renamed aside, the new content written, and
// the backup removed on success or restored on failure, so the persisted
// file is always either fully old or fully new content.
type JSONStore struct {
	mu sync.Mutex

	transactionsFile  string
	uploadHistoryFile string
	statsFile         string

	log *zap.SugaredLogger
}

// NewJSONStore opens (or initializes) a JSON store in dataDir. Leftover
// backup files from an interrupted write are reconciled first: a backup
// with no primary is restored as the authoritative copy; a backup next to
// a surviving primary is stale and removed, since the primary only
// survives a completed write.
func NewJSONStore(dataDir string) (*JSONStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	s := &JSONStore{
		transactionsFile:  filepath.Join(dataDir, "transactions.json"),
		uploadHistoryFile: filepath.Join(dataDir, "upload_history.json"),
		statsFile:         filepath.Join(dataDir, "stats.json"),
		log:               logger.Get(),
	}

	for _, file := range []string{s.transactionsFile, s.uploadHistoryFile, s.statsFile} {
		if err := s.reconcileBackup(file); err != nil {
			return nil, err
		}
	}

	if err := s.initFiles(); err != nil {
		return nil, err
	}
	return s, nil
}

// reconcileBackup resolves a leftover .backup file from a crashed write.
func (s *JSONStore) reconcileBackup(path string) error {
	backup := path + backupSuffix
	if _, err := os.Stat(backup); err != nil {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Write was interrupted before the new content landed; the backup
		// is the authoritative copy.
		s.log.Warnw("restoring dataset file from backup", "file", path)
		if err := os.Rename(backup, path); err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		return nil
	}

	s.log.Warnw("removing stale backup file", "file", backup)
	if err := os.Remove(backup); err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return nil
}

// initFiles creates any missing data files with empty contents.
func (s *JSONStore) initFiles() error {
	if _, err := os.Stat(s.transactionsFile); os.IsNotExist(err) {
		if err := s.saveJSON(s.transactionsFile, []models.Transaction{}); err != nil {
			return err
		}
	}
	if _, err := os.Stat(s.uploadHistoryFile); os.IsNotExist(err) {
		if err := s.saveJSON(s.uploadHistoryFile, []models.UploadRecord{}); err != nil {
			return err
		}
	}
	if _, err := os.Stat(s.statsFile); os.IsNotExist(err) {
		if err := s.saveJSON(s.statsFile, stats.Recompute(nil)); err != nil {
			return err
		}
	}
	return nil
}

// saveJSON writes data to path using the backup-rename protocol.
func (s *JSONStore) saveJSON(path string, data interface{}) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	backup := path + backupSuffix
	hasBackup := false
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, backup); err == nil {
			hasBackup = true
		}
	}

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		if hasBackup {
			if restoreErr := os.Rename(backup, path); restoreErr != nil {
				s.log.Errorw("failed to restore backup after write failure",
					"file", path, "error", restoreErr)
			}
		}
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	if hasBackup {
		if err := os.Remove(backup); err != nil {
			s.log.Warnw("failed to remove backup file", "file", backup, "error", err)
		}
	}
	return nil
}

// loadTransactions reads the current dataset. A missing or corrupt file
// degrades to an empty dataset with a warning rather than failing reads.
func (s *JSONStore) loadTransactions() []models.Transaction {
	var transactions []models.Transaction
	s.loadJSON(s.transactionsFile, &transactions)
	return transactions
}

func (s *JSONStore) loadUploadHistory() []models.UploadRecord {
	var history []models.UploadRecord
	s.loadJSON(s.uploadHistoryFile, &history)
	return history
}

func (s *JSONStore) loadJSON(path string, out interface{}) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warnw("could not load data file", "file", path, "error", err)
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warnw("could not decode data file", "file", path, "error", err)
	}
}

// ReplaceDataset implements Store. Accepted drafts receive monotonic ids
// starting at 1 for the new generation and a creation timestamp; the old
// dataset is discarded, not merged.
func (s *JSONStore) ReplaceDataset(drafts []models.Draft) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	transactions := make([]models.Transaction, 0, len(drafts))
	for i, draft := range drafts {
		if !draft.Validate() {
			s.log.Warnw("dropping invalid transaction draft", "index", i)
			continue
		}
		transactions = append(transactions, draftToTransaction(draft, uint(len(transactions)+1), now))
	}

	if err := s.saveJSON(s.transactionsFile, transactions); err != nil {
		return 0, err
	}
	if err := s.updateStats(transactions); err != nil {
		return 0, err
	}
	return len(transactions), nil
}

// updateStats recomputes and persists the stats snapshot for the given
// dataset. Called under the store lock as part of every mutation.
func (s *JSONStore) updateStats(transactions []models.Transaction) error {
	return s.saveJSON(s.statsFile, stats.Recompute(transactions))
}

// GetPage implements Store.
func (s *JSONStore) GetPage(q PageQuery) (*PageResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q.Defaults()
	transactions := s.loadTransactions()

	filtered := transactions[:0:0]
	for _, tx := range transactions {
		if q.Category != "" && q.Category != "all" && string(tx.Category) != q.Category {
			continue
		}
		if q.Search != "" && !matchesSearch(tx, q.Search) {
			continue
		}
		filtered = append(filtered, tx)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.After(filtered[j].Date)
	})

	total := len(filtered)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.PerPage
	if end > total {
		end = total
	}

	return &PageResult{
		Transactions: filtered[start:end],
		Total:        total,
		Pages:        pagination.Pages(total, q.PerPage),
		CurrentPage:  q.Page,
		PerPage:      q.PerPage,
	}, nil
}

// Clear implements Store.
func (s *JSONStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveJSON(s.transactionsFile, []models.Transaction{}); err != nil {
		return err
	}
	return s.updateStats(nil)
}

// AddUploadRecord implements Store.
func (s *JSONStore) AddUploadRecord(filename string, totalMessages, processedMessages int, status models.UploadStatus) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.loadUploadHistory()
	record := models.UploadRecord{
		ID:                uint(len(history) + 1),
		Filename:          filename,
		TotalMessages:     totalMessages,
		ProcessedMessages: processedMessages,
		UploadDate:        time.Now(),
		Status:            status,
	}
	history = append(history, record)

	if err := s.saveJSON(s.uploadHistoryFile, history); err != nil {
		return 0, err
	}
	return record.ID, nil
}

// UpdateUploadRecord implements Store. Updating an unknown id is a no-op.
func (s *JSONStore) UpdateUploadRecord(id uint, update UploadUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.loadUploadHistory()
	for i := range history {
		if history[i].ID != id {
			continue
		}
		if update.TotalMessages != nil {
			history[i].TotalMessages = *update.TotalMessages
		}
		if update.ProcessedMessages != nil {
			history[i].ProcessedMessages = *update.ProcessedMessages
		}
		if update.Status != nil {
			history[i].Status = *update.Status
		}
		break
	}
	return s.saveJSON(s.uploadHistoryFile, history)
}

// GetUploadHistory implements Store.
func (s *JSONStore) GetUploadHistory(limit int) ([]models.UploadRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.loadUploadHistory()
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].UploadDate.After(history[j].UploadDate)
	})
	if limit > 0 && limit < len(history) {
		history = history[:limit]
	}
	return history, nil
}

// GetStats implements Store, returning the cached snapshot.
func (s *JSONStore) GetStats() (*models.StatsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.statsFile)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, fmt.Errorf("read stats: %w", err))
	}
	var snapshot models.StatsSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, fmt.Errorf("decode stats: %w", err))
	}
	if snapshot.Categories == nil {
		snapshot.Categories = make(map[string]models.CategoryStat)
	}
	return &snapshot, nil
}

// GetMonthlyStats implements Store.
func (s *JSONStore) GetMonthlyStats() ([]models.MonthStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stats.MonthlyBreakdown(s.loadTransactions()), nil
}

// GetCategoryDistribution implements Store.
func (s *JSONStore) GetCategoryDistribution() ([]models.CategoryCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stats.CategoryDistribution(s.loadTransactions()), nil
}

// Close implements Store.
func (s *JSONStore) Close() error { return nil }

// draftToTransaction attaches the store-assigned id and creation timestamp.
func draftToTransaction(d models.Draft, id uint, createdAt time.Time) models.Transaction {
	return models.Transaction{
		ID:              id,
		TransactionID:   d.TransactionID,
		Date:            d.Date,
		Amount:          d.Amount,
		Fee:             d.Fee,
		Balance:         d.Balance,
		Category:        d.Category,
		RecipientName:   d.RecipientName,
		RecipientNumber: d.RecipientNumber,
		SenderName:      d.SenderName,
		SenderNumber:    d.SenderNumber,
		Message:         d.Message,
		RawBody:         d.RawBody,
		CreatedAt:       createdAt,
	}
}
