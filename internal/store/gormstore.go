package store

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "momolens/internal/errors"
	"momolens/internal/logger"
	"momolens/internal/models"
	"momolens/internal/pagination"
)

// GormStore is the relational backend: transactions and upload_history
// tables in SQLite, with statistics computed by live aggregation queries
// instead of a cached snapshot file. GORM serializes access through its
// connection pool; each mutating operation runs inside a single database
// transaction.
type GormStore struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// NewGormStore wraps an open GORM database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, log: logger.Get()}
}

// ReplaceDataset implements Store. The delete and batch insert run in one
// database transaction, so readers observe either the old or the new
// generation, never a mix.
func (s *GormStore) ReplaceDataset(drafts []models.Draft) (int, error) {
	now := time.Now()
	transactions := make([]models.Transaction, 0, len(drafts))
	for i, draft := range drafts {
		if !draft.Validate() {
			s.log.Warnw("dropping invalid transaction draft", "index", i)
			continue
		}
		transactions = append(transactions, draftToTransaction(draft, uint(len(transactions)+1), now))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if len(transactions) == 0 {
			return nil
		}
		return tx.CreateInBatches(transactions, 100).Error
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return len(transactions), nil
}

// GetPage implements Store.
func (s *GormStore) GetPage(q PageQuery) (*PageResult, error) {
	q.Defaults()

	base := s.db.Model(&models.Transaction{})
	if q.Category != "" && q.Category != "all" {
		base = base.Where("category = ?", q.Category)
	}
	if q.Search != "" {
		needle := "%" + q.Search + "%"
		base = base.Where(
			"recipient_name LIKE ? OR sender_name LIKE ? OR message LIKE ? OR category LIKE ? OR CAST(amount AS TEXT) LIKE ? OR transaction_id LIKE ?",
			needle, needle, needle, needle, needle, needle,
		)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var transactions []models.Transaction
	if err := base.Order("date DESC").Scopes(pagination.Paginate(q.PageRequest)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	return &PageResult{
		Transactions: transactions,
		Total:        int(total),
		Pages:        pagination.Pages(int(total), q.PerPage),
		CurrentPage:  q.Page,
		PerPage:      q.PerPage,
	}, nil
}

// Clear implements Store.
func (s *GormStore) Clear() error {
	if err := s.db.Where("1 = 1").Delete(&models.Transaction{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return nil
}

// AddUploadRecord implements Store.
func (s *GormStore) AddUploadRecord(filename string, totalMessages, processedMessages int, status models.UploadStatus) (uint, error) {
	record := models.UploadRecord{
		Filename:          filename,
		TotalMessages:     totalMessages,
		ProcessedMessages: processedMessages,
		UploadDate:        time.Now(),
		Status:            status,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return record.ID, nil
}

// UpdateUploadRecord implements Store. Updating an unknown id is a no-op.
func (s *GormStore) UpdateUploadRecord(id uint, update UploadUpdate) error {
	fields := make(map[string]interface{})
	if update.TotalMessages != nil {
		fields["total_messages"] = *update.TotalMessages
	}
	if update.ProcessedMessages != nil {
		fields["processed_messages"] = *update.ProcessedMessages
	}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	if len(fields) == 0 {
		return nil
	}

	if err := s.db.Model(&models.UploadRecord{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return nil
}

// GetUploadHistory implements Store.
func (s *GormStore) GetUploadHistory(limit int) ([]models.UploadRecord, error) {
	query := s.db.Order("upload_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var history []models.UploadRecord
	if err := query.Find(&history).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if history == nil {
		history = []models.UploadRecord{}
	}
	return history, nil
}

// GetStats implements Store, aggregating live instead of reading a cached
// snapshot.
func (s *GormStore) GetStats() (*models.StatsSnapshot, error) {
	snapshot := &models.StatsSnapshot{
		Categories:  make(map[string]models.CategoryStat),
		LastUpdated: time.Now(),
	}

	var totals struct {
		Count  int64
		Amount float64
		Fees   float64
	}
	err := s.db.Model(&models.Transaction{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(fee), 0) AS fees").
		Scan(&totals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	snapshot.TotalTransactions = int(totals.Count)
	snapshot.TotalAmount = totals.Amount
	snapshot.TotalFees = totals.Fees

	var rows []struct {
		Category string
		Count    int
		Amount   float64
		Fees     float64
	}
	err = s.db.Model(&models.Transaction{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(fee), 0) AS fees").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	for _, row := range rows {
		snapshot.Categories[row.Category] = models.CategoryStat{
			Count:  row.Count,
			Amount: row.Amount,
			Fees:   row.Fees,
		}
	}
	return snapshot, nil
}

// GetMonthlyStats implements Store. The date column is stored in an
// ISO-like text format, so year and month are sliced positionally.
func (s *GormStore) GetMonthlyStats() ([]models.MonthStat, error) {
	var rows []struct {
		Year        int
		Month       int
		Count       int
		TotalAmount float64
		TotalFees   float64
	}
	err := s.db.Model(&models.Transaction{}).
		Select("CAST(substr(date, 1, 4) AS INTEGER) AS year, CAST(substr(date, 6, 2) AS INTEGER) AS month, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount, COALESCE(SUM(fee), 0) AS total_fees").
		Group("year, month").
		Order("year, month").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := make([]models.MonthStat, 0, len(rows))
	for _, row := range rows {
		if row.Year == 0 {
			continue
		}
		result = append(result, models.MonthStat{
			Year:        row.Year,
			Month:       row.Month,
			Count:       row.Count,
			TotalAmount: row.TotalAmount,
			TotalFees:   row.TotalFees,
		})
	}
	return result, nil
}

// GetCategoryDistribution implements Store.
func (s *GormStore) GetCategoryDistribution() ([]models.CategoryCount, error) {
	var rows []struct {
		Category string
		Count    int
	}
	err := s.db.Model(&models.Transaction{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := make([]models.CategoryCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.CategoryCount{
			Category: models.Category(row.Category).Display(),
			Count:    row.Count,
		})
	}
	return result, nil
}

// Close implements Store.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
