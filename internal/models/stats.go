package models

import "time"

// CategoryStat aggregates one category's transactions.
type CategoryStat struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
	Fees   float64 `json:"fees"`
}

// StatsSnapshot is the derived dataset-wide aggregate view. It is never
// edited directly; it is recomputed from the dataset after every mutation.
type StatsSnapshot struct {
	TotalTransactions int                     `json:"total_transactions"`
	TotalAmount       float64                 `json:"total_amount"`
	TotalFees         float64                 `json:"total_fees"`
	Categories        map[string]CategoryStat `json:"categories"`
	LastUpdated       time.Time               `json:"last_updated"`
}

// MonthStat aggregates one calendar month of transactions.
type MonthStat struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	TotalFees   float64 `json:"total_fees"`
}

// CategoryCount pairs a display-formatted category label with its
// transaction count, for distribution charts.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
