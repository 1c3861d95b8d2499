package store

import (
	"testing"
	"time"

	"momolens/internal/models"
	"momolens/internal/pagination"
	"momolens/internal/testutil"
)

// withBothBackends runs the same contract test against the JSON-file store
// and the SQLite store.
func withBothBackends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("json", func(t *testing.T) {
		s, err := NewJSONStore(t.TempDir())
		testutil.AssertNoError(t, err)
		defer s.Close()
		fn(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		fn(t, NewGormStore(db))
	})
}

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 12, 0, 0, 0, time.UTC)
}

func pageQuery(page, perPage int) PageQuery {
	return PageQuery{PageRequest: pagination.PageRequest{Page: page, PerPage: perPage}}
}

func TestReplaceDataset(t *testing.T) {
	withBothBackends(t, func(t *testing.T, s Store) {
		t.Run("inserts_valid_drafts", func(t *testing.T) {
			count, err := s.ReplaceDataset([]models.Draft{
				testutil.Draft(models.CategoryIncomingMoney, 1000, day(2024, 1, 10)),
				testutil.Draft(models.CategoryPaymentToCode, 500, day(2024, 1, 11)),
			})
			testutil.AssertNoError(t, err)
			if count != 2 {
				t.Errorf("count = %d, want 2", count)
			}

			page, err := s.GetPage(pageQuery(1, 20))
			testutil.AssertNoError(t, err)
			if page.Total != 2 {
				t.Errorf("Total = %d, want 2", page.Total)
			}
		})

		t.Run("replaces_not_merges", func(t *testing.T) {
			_, err := s.ReplaceDataset([]models.Draft{
				testutil.Draft(models.CategoryIncomingMoney, 100, day(2024, 2, 1)),
				testutil.Draft(models.CategoryIncomingMoney, 200, day(2024, 2, 2)),
				testutil.Draft(models.CategoryIncomingMoney, 300, day(2024, 2, 3)),
			})
			testutil.AssertNoError(t, err)

			count, err := s.ReplaceDataset([]models.Draft{
				testutil.Draft(models.CategoryOther, 999, day(2024, 3, 1)),
			})
			testutil.AssertNoError(t, err)
			if count != 1 {
				t.Errorf("count = %d, want 1", count)
			}

			page, err := s.GetPage(pageQuery(1, 20))
			testutil.AssertNoError(t, err)
			if page.Total != 1 {
				t.Fatalf("Total = %d, want 1 after replace", page.Total)
			}
			if page.Transactions[0].Amount != 999 {
				t.Errorf("Amount = %v, want 999 (the new generation)", page.Transactions[0].Amount)
			}
		})

		t.Run("ids_restart_per_generation", func(t *testing.T) {
			_, err := s.ReplaceDataset([]models.Draft{
				testutil.Draft(models.CategoryIncomingMoney, 10, day(2024, 4, 1)),
				testutil.Draft(models.CategoryIncomingMoney, 20, day(2024, 4, 2)),
			})
			testutil.AssertNoError(t, err)

			page, err := s.GetPage(pageQuery(1, 20))
			testutil.AssertNoError(t, err)

			seen := make(map[uint]bool)
			for _, tx := range page.Transactions {
				seen[tx.ID] = true
			}
			if !seen[1] || !seen[2] || len(seen) != 2 {
				t.Errorf("ids = %v, want exactly {1, 2}", seen)
			}
		})

		t.Run("drops_invalid_drafts", func(t *testing.T) {
			noDate := testutil.Draft(models.CategoryIncomingMoney, 100, time.Time{})
			badCategory := testutil.Draft(models.Category("bogus"), 100, day(2024, 5, 1))
			negative := testutil.Draft(models.CategoryIncomingMoney, -5, day(2024, 5, 2))
			valid := testutil.Draft(models.CategoryIncomingMoney, 100, day(2024, 5, 3))

			count, err := s.ReplaceDataset([]models.Draft{noDate, badCategory, negative, valid})
			testutil.AssertNoError(t, err)
			if count != 1 {
				t.Errorf("count = %d, want 1 (three drafts dropped)", count)
			}

			page, err := s.GetPage(pageQuery(1, 20))
			testutil.AssertNoError(t, err)
			if page.Total != 1 {
				t.Errorf("Total = %d, want 1", page.Total)
			}
		})

		t.Run("empty_dataset", func(t *testing.T) {
			count, err := s.ReplaceDataset(nil)
			testutil.AssertNoError(t, err)
			if count != 0 {
				t.Errorf("count = %d, want 0", count)
			}

			page, err := s.GetPage(pageQuery(1, 20))
			testutil.AssertNoError(t, err)
			if page.Total != 0 || page.Pages != 1 {
				t.Errorf("Total/Pages = %d/%d, want 0/1", page.Total, page.Pages)
			}
		})
	})
}

func TestGetPage(t *testing.T) {
	withBothBackends(t, func(t *testing.T, s Store) {
		// Five transactions over five distinct days.
		drafts := make([]models.Draft, 0, 5)
		for i := 1; i <= 5; i++ {
			drafts = append(drafts, testutil.Draft(models.CategoryIncomingMoney, float64(i*100), day(2024, 1, i)))
		}
		_, err := s.ReplaceDataset(drafts)
		testutil.AssertNoError(t, err)

		t.Run("sorted_date_descending", func(t *testing.T) {
			page, err := s.GetPage(pageQuery(1, 20))
			testutil.AssertNoError(t, err)
			for i := 1; i < len(page.Transactions); i++ {
				if page.Transactions[i].Date.After(page.Transactions[i-1].Date) {
					t.Fatalf("transactions not in date-descending order at index %d", i)
				}
			}
		})

		t.Run("pages_partition_without_gaps", func(t *testing.T) {
			seen := make(map[uint]bool)
			for p := 1; p <= 3; p++ {
				page, err := s.GetPage(pageQuery(p, 2))
				testutil.AssertNoError(t, err)
				if page.Total != 5 || page.Pages != 3 {
					t.Errorf("page %d: Total/Pages = %d/%d, want 5/3", p, page.Total, page.Pages)
				}
				if page.CurrentPage != p || page.PerPage != 2 {
					t.Errorf("page %d: CurrentPage/PerPage = %d/%d", p, page.CurrentPage, page.PerPage)
				}
				for _, tx := range page.Transactions {
					if seen[tx.ID] {
						t.Errorf("transaction %d appears on more than one page", tx.ID)
					}
					seen[tx.ID] = true
				}
			}
			if len(seen) != 5 {
				t.Errorf("pages covered %d transactions, want all 5", len(seen))
			}
		})

		t.Run("page_beyond_last_is_empty", func(t *testing.T) {
			page, err := s.GetPage(pageQuery(4, 2))
			testutil.AssertNoError(t, err)
			if len(page.Transactions) != 0 {
				t.Errorf("got %d transactions, want 0", len(page.Transactions))
			}
			if page.Total != 5 {
				t.Errorf("Total = %d, want 5", page.Total)
			}
		})

		t.Run("defaults_applied", func(t *testing.T) {
			page, err := s.GetPage(PageQuery{})
			testutil.AssertNoError(t, err)
			if page.CurrentPage != 1 || page.PerPage != 20 {
				t.Errorf("CurrentPage/PerPage = %d/%d, want 1/20", page.CurrentPage, page.PerPage)
			}
		})
	})
}

func TestGetPageFilters(t *testing.T) {
	withBothBackends(t, func(t *testing.T, s Store) {
		incoming := testutil.Draft(models.CategoryIncomingMoney, 1000, day(2024, 1, 1))
		incoming.SenderName = testutil.StringPtr("John Mugisha")

		payment := testutil.Draft(models.CategoryPaymentToCode, 500, day(2024, 1, 2))
		payment.RecipientName = testutil.StringPtr("Alice Mukamana")

		transfer := testutil.Draft(models.CategoryTransferToNumber, 2500, day(2024, 1, 3))
		transfer.TransactionID = testutil.StringPtr("TX777")

		_, err := s.ReplaceDataset([]models.Draft{incoming, payment, transfer})
		testutil.AssertNoError(t, err)

		t.Run("category_filter", func(t *testing.T) {
			q := pageQuery(1, 20)
			q.Category = "payment_to_code"
			page, err := s.GetPage(q)
			testutil.AssertNoError(t, err)
			if page.Total != 1 {
				t.Fatalf("Total = %d, want 1", page.Total)
			}
			if page.Transactions[0].Category != models.CategoryPaymentToCode {
				t.Errorf("Category = %s, want payment_to_code", page.Transactions[0].Category)
			}
		})

		t.Run("category_all_matches_everything", func(t *testing.T) {
			q := pageQuery(1, 20)
			q.Category = "all"
			page, err := s.GetPage(q)
			testutil.AssertNoError(t, err)
			if page.Total != 3 {
				t.Errorf("Total = %d, want 3", page.Total)
			}
		})

		t.Run("search_recipient_case_insensitive", func(t *testing.T) {
			q := pageQuery(1, 20)
			q.Search = "alice"
			page, err := s.GetPage(q)
			testutil.AssertNoError(t, err)
			if page.Total != 1 {
				t.Fatalf("Total = %d, want 1", page.Total)
			}
			if page.Transactions[0].RecipientName == nil || *page.Transactions[0].RecipientName != "Alice Mukamana" {
				t.Errorf("unexpected match: %+v", page.Transactions[0])
			}
		})

		t.Run("search_amount", func(t *testing.T) {
			q := pageQuery(1, 20)
			q.Search = "2500"
			page, err := s.GetPage(q)
			testutil.AssertNoError(t, err)
			if page.Total != 1 {
				t.Errorf("Total = %d, want 1", page.Total)
			}
		})

		t.Run("search_transaction_reference", func(t *testing.T) {
			q := pageQuery(1, 20)
			q.Search = "TX777"
			page, err := s.GetPage(q)
			testutil.AssertNoError(t, err)
			if page.Total != 1 {
				t.Errorf("Total = %d, want 1", page.Total)
			}
		})

		t.Run("search_no_match", func(t *testing.T) {
			q := pageQuery(1, 20)
			q.Search = "zzz-no-such-needle"
			page, err := s.GetPage(q)
			testutil.AssertNoError(t, err)
			if page.Total != 0 {
				t.Errorf("Total = %d, want 0", page.Total)
			}
		})
	})
}

func TestClear(t *testing.T) {
	withBothBackends(t, func(t *testing.T, s Store) {
		_, err := s.ReplaceDataset([]models.Draft{
			testutil.Draft(models.CategoryIncomingMoney, 1000, day(2024, 1, 1)),
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, s.Clear())

		page, err := s.GetPage(pageQuery(1, 20))
		testutil.AssertNoError(t, err)
		if page.Total != 0 || page.Pages != 1 {
			t.Errorf("Total/Pages = %d/%d, want 0/1", page.Total, page.Pages)
		}

		snap, err := s.GetStats()
		testutil.AssertNoError(t, err)
		if snap.TotalTransactions != 0 || snap.TotalAmount != 0 {
			t.Errorf("stats = %d/%v, want zeroes after clear", snap.TotalTransactions, snap.TotalAmount)
		}
	})
}

func TestGetStats(t *testing.T) {
	withBothBackends(t, func(t *testing.T, s Store) {
		feeDraft := testutil.Draft(models.CategoryPaymentToCode, 500, day(2024, 1, 2))
		feeDraft.Fee = 20

		_, err := s.ReplaceDataset([]models.Draft{
			testutil.Draft(models.CategoryIncomingMoney, 1000, day(2024, 1, 1)),
			testutil.Draft(models.CategoryIncomingMoney, 250, day(2024, 1, 3)),
			feeDraft,
		})
		testutil.AssertNoError(t, err)

		snap, err := s.GetStats()
		testutil.AssertNoError(t, err)

		if snap.TotalTransactions != 3 {
			t.Errorf("TotalTransactions = %d, want 3", snap.TotalTransactions)
		}
		if snap.TotalAmount != 1750 {
			t.Errorf("TotalAmount = %v, want 1750", snap.TotalAmount)
		}
		if snap.TotalFees != 20 {
			t.Errorf("TotalFees = %v, want 20", snap.TotalFees)
		}

		incoming := snap.Categories["incoming_money"]
		if incoming.Count != 2 || incoming.Amount != 1250 {
			t.Errorf("incoming_money = %+v, want count 2, amount 1250", incoming)
		}
		payment := snap.Categories["payment_to_code"]
		if payment.Count != 1 || payment.Amount != 500 || payment.Fees != 20 {
			t.Errorf("payment_to_code = %+v, want count 1, amount 500, fees 20", payment)
		}
	})
}

func TestGetMonthlyStats(t *testing.T) {
	withBothBackends(t, func(t *testing.T, s Store) {
		_, err := s.ReplaceDataset([]models.Draft{
			testutil.Draft(models.CategoryIncomingMoney, 300, day(2024, 2, 10)),
			testutil.Draft(models.CategoryIncomingMoney, 100, day(2023, 12, 1)),
			testutil.Draft(models.CategoryPaymentToCode, 200, day(2024, 2, 20)),
		})
		testutil.AssertNoError(t, err)

		months, err := s.GetMonthlyStats()
		testutil.AssertNoError(t, err)

		if len(months) != 2 {
			t.Fatalf("got %d months, want 2", len(months))
		}
		if months[0].Year != 2023 || months[0].Month != 12 || months[0].Count != 1 || months[0].TotalAmount != 100 {
			t.Errorf("months[0] = %+v, want 2023-12 count 1 amount 100", months[0])
		}
		if months[1].Year != 2024 || months[1].Month != 2 || months[1].Count != 2 || months[1].TotalAmount != 500 {
			t.Errorf("months[1] = %+v, want 2024-02 count 2 amount 500", months[1])
		}
	})
}

func TestGetCategoryDistribution(t *testing.T) {
	withBothBackends(t, func(t *testing.T, s Store) {
		_, err := s.ReplaceDataset([]models.Draft{
			testutil.Draft(models.CategoryIncomingMoney, 100, day(2024, 1, 1)),
			testutil.Draft(models.CategoryIncomingMoney, 200, day(2024, 1, 2)),
			testutil.Draft(models.CategoryOther, 50, day(2024, 1, 3)),
		})
		testutil.AssertNoError(t, err)

		dist, err := s.GetCategoryDistribution()
		testutil.AssertNoError(t, err)

		byLabel := make(map[string]int)
		total := 0
		for _, d := range dist {
			byLabel[d.Category] = d.Count
			total += d.Count
		}
		if total != 3 {
			t.Errorf("counts sum to %d, want 3", total)
		}
		if byLabel["Incoming Money"] != 2 || byLabel["Other"] != 1 {
			t.Errorf("distribution = %v, want Incoming Money 2, Other 1", byLabel)
		}
	})
}

func TestUploadHistory(t *testing.T) {
	withBothBackends(t, func(t *testing.T, s Store) {
		first, err := s.AddUploadRecord("first.xml", 0, 0, models.UploadStatusProcessing)
		testutil.AssertNoError(t, err)
		_, err = s.AddUploadRecord("second.xml", 10, 8, models.UploadStatusCompleted)
		testutil.AssertNoError(t, err)
		_, err = s.AddUploadRecord("third.xml", 0, 0, models.UploadStatusFailed)
		testutil.AssertNoError(t, err)

		t.Run("newest_first", func(t *testing.T) {
			history, err := s.GetUploadHistory(0)
			testutil.AssertNoError(t, err)
			if len(history) != 3 {
				t.Fatalf("got %d records, want 3", len(history))
			}
			if history[0].Filename != "third.xml" {
				t.Errorf("history[0] = %s, want third.xml", history[0].Filename)
			}
			if history[2].Filename != "first.xml" {
				t.Errorf("history[2] = %s, want first.xml", history[2].Filename)
			}
		})

		t.Run("limit", func(t *testing.T) {
			history, err := s.GetUploadHistory(2)
			testutil.AssertNoError(t, err)
			if len(history) != 2 {
				t.Fatalf("got %d records, want 2", len(history))
			}
			if history[0].Filename != "third.xml" || history[1].Filename != "second.xml" {
				t.Errorf("limited history = %s, %s", history[0].Filename, history[1].Filename)
			}
		})

		t.Run("update_record", func(t *testing.T) {
			total, processed := 50, 42
			status := models.UploadStatusCompleted
			err := s.UpdateUploadRecord(first, UploadUpdate{
				TotalMessages:     &total,
				ProcessedMessages: &processed,
				Status:            &status,
			})
			testutil.AssertNoError(t, err)

			history, err := s.GetUploadHistory(0)
			testutil.AssertNoError(t, err)
			var updated *models.UploadRecord
			for i := range history {
				if history[i].ID == first {
					updated = &history[i]
				}
			}
			if updated == nil {
				t.Fatal("updated record not found")
			}
			if updated.TotalMessages != 50 || updated.ProcessedMessages != 42 || updated.Status != models.UploadStatusCompleted {
				t.Errorf("record = %+v, want 50/42/completed", updated)
			}
		})

		t.Run("partial_update_leaves_other_fields", func(t *testing.T) {
			processed := 9
			err := s.UpdateUploadRecord(first, UploadUpdate{ProcessedMessages: &processed})
			testutil.AssertNoError(t, err)

			history, err := s.GetUploadHistory(0)
			testutil.AssertNoError(t, err)
			for _, rec := range history {
				if rec.ID != first {
					continue
				}
				if rec.ProcessedMessages != 9 {
					t.Errorf("ProcessedMessages = %d, want 9", rec.ProcessedMessages)
				}
				if rec.TotalMessages != 50 || rec.Status != models.UploadStatusCompleted {
					t.Errorf("untouched fields changed: %+v", rec)
				}
			}
		})

		t.Run("unknown_id_is_noop", func(t *testing.T) {
			status := models.UploadStatusFailed
			err := s.UpdateUploadRecord(9999, UploadUpdate{Status: &status})
			testutil.AssertNoError(t, err)

			history, err := s.GetUploadHistory(0)
			testutil.AssertNoError(t, err)
			if len(history) != 3 {
				t.Errorf("got %d records, want 3 unchanged", len(history))
			}
		})
	})
}
