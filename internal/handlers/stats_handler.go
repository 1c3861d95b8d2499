package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"momolens/internal/store"
)

// StatsHandler serves the pre-aggregated statistics views.
type StatsHandler struct {
	store store.Store
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(s store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

// Overview returns the dataset-wide aggregate snapshot.
func (h *StatsHandler) Overview(c *gin.Context) {
	snapshot, err := h.store.GetStats()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Monthly returns per-month aggregates, ascending by month.
func (h *StatsHandler) Monthly(c *gin.Context) {
	monthly, err := h.store.GetMonthlyStats()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, monthly)
}

// Categories returns the per-category distribution for charts.
func (h *StatsHandler) Categories(c *gin.Context) {
	distribution, err := h.store.GetCategoryDistribution()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, distribution)
}

// Health probes the storage layer and reports the current dataset size.
func (h *StatsHandler) Health(c *gin.Context) {
	snapshot, err := h.store.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "unhealthy",
			"timestamp": time.Now(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"timestamp":          time.Now(),
		"transactions_count": snapshot.TotalTransactions,
	})
}
