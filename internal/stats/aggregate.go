// Package stats recomputes derived aggregates from the transaction
// dataset. All functions are pure: no incremental state is kept, and a
// full recomputation is the only supported mode.
package stats

import (
	"sort"
	"time"

	"momolens/internal/models"
)

// Recompute builds a fresh StatsSnapshot from the given dataset: total
// count, amount and fee sums, and a per-category breakdown keyed by the
// stored category verbatim.
func Recompute(transactions []models.Transaction) *models.StatsSnapshot {
	snapshot := &models.StatsSnapshot{
		TotalTransactions: len(transactions),
		Categories:        make(map[string]models.CategoryStat),
		LastUpdated:       time.Now(),
	}

	for _, tx := range transactions {
		snapshot.TotalAmount += tx.Amount
		snapshot.TotalFees += tx.Fee

		cat := snapshot.Categories[string(tx.Category)]
		cat.Count++
		cat.Amount += tx.Amount
		cat.Fees += tx.Fee
		snapshot.Categories[string(tx.Category)] = cat
	}

	return snapshot
}

// MonthlyBreakdown groups transactions by calendar month, sorted ascending
// by (year, month). Transactions with a zero date are skipped.
func MonthlyBreakdown(transactions []models.Transaction) []models.MonthStat {
	byMonth := make(map[[2]int]*models.MonthStat)

	for _, tx := range transactions {
		if tx.Date.IsZero() {
			continue
		}
		key := [2]int{tx.Date.Year(), int(tx.Date.Month())}
		stat, ok := byMonth[key]
		if !ok {
			stat = &models.MonthStat{Year: key[0], Month: key[1]}
			byMonth[key] = stat
		}
		stat.Count++
		stat.TotalAmount += tx.Amount
		stat.TotalFees += tx.Fee
	}

	result := make([]models.MonthStat, 0, len(byMonth))
	for _, stat := range byMonth {
		result = append(result, *stat)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result
}

// CategoryDistribution counts transactions per display-formatted category
// label, for charting.
func CategoryDistribution(transactions []models.Transaction) []models.CategoryCount {
	counts := make(map[string]int)
	var order []string

	for _, tx := range transactions {
		label := tx.Category.Display()
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	result := make([]models.CategoryCount, 0, len(order))
	for _, label := range order {
		result = append(result, models.CategoryCount{Category: label, Count: counts[label]})
	}
	return result
}
