package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"momolens/internal/models"
	"momolens/internal/testutil"
)

func setupStatsRouter(handler *StatsHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", handler.Health)
	r.GET("/stats", handler.Overview)
	r.GET("/stats/monthly", handler.Monthly)
	r.GET("/stats/categories", handler.Categories)
	return r
}

func TestStatsHandler_Overview(t *testing.T) {
	s := newTestStore(t)
	seedTransactions(t, s,
		testutil.Draft(models.CategoryIncomingMoney, 1000, txDay(1)),
		testutil.Draft(models.CategoryIncomingMoney, 500, txDay(2)),
	)
	r := setupStatsRouter(NewStatsHandler(s))

	rec := doRequest(r, "GET", "/stats", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_transactions"].(float64) != 2 {
		t.Errorf("expected total_transactions 2, got %v", result["total_transactions"])
	}
	if result["total_amount"].(float64) != 1500 {
		t.Errorf("expected total_amount 1500, got %v", result["total_amount"])
	}
	categories := result["categories"].(map[string]interface{})
	if _, ok := categories["incoming_money"]; !ok {
		t.Errorf("expected incoming_money in categories, got %v", categories)
	}
}

func TestStatsHandler_Monthly(t *testing.T) {
	s := newTestStore(t)
	seedTransactions(t, s,
		testutil.Draft(models.CategoryIncomingMoney, 1000, txDay(1)),
	)
	r := setupStatsRouter(NewStatsHandler(s))

	rec := doRequest(r, "GET", "/stats/monthly", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var months []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &months); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(months) != 1 {
		t.Fatalf("expected 1 month, got %d", len(months))
	}
	if months[0]["year"].(float64) != 2024 || months[0]["month"].(float64) != 1 {
		t.Errorf("expected 2024-01, got %v-%v", months[0]["year"], months[0]["month"])
	}
}

func TestStatsHandler_Categories(t *testing.T) {
	s := newTestStore(t)
	seedTransactions(t, s,
		testutil.Draft(models.CategoryIncomingMoney, 1000, txDay(1)),
		testutil.Draft(models.CategoryOther, 50, txDay(2)),
	)
	r := setupStatsRouter(NewStatsHandler(s))

	rec := doRequest(r, "GET", "/stats/categories", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var distribution []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &distribution); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(distribution) != 2 {
		t.Errorf("expected 2 categories, got %d", len(distribution))
	}
}

func TestStatsHandler_Health(t *testing.T) {
	s := newTestStore(t)
	seedTransactions(t, s, testutil.Draft(models.CategoryIncomingMoney, 1000, txDay(1)))
	r := setupStatsRouter(NewStatsHandler(s))

	rec := doRequest(r, "GET", "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", result["status"])
	}
	if result["transactions_count"].(float64) != 1 {
		t.Errorf("expected transactions_count 1, got %v", result["transactions_count"])
	}
}
