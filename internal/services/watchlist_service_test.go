package services

import (
	"testing"

	"stocktracker/internal/models"
	"stocktracker/internal/testutil"
)

func symbolsOf(entries []models.WatchlistEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out
}

func assertSymbols(t *testing.T, got []models.WatchlistEntry, want ...string) {
	t.Helper()
	syms := symbolsOf(got)
	if len(syms) != len(want) {
		t.Fatalf("expected %v, got %v", want, syms)
	}
	for i := range want {
		if syms[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, syms)
		}
	}
}

func TestWatchlistAdd(t *testing.T) {
	t.Run("normalizes_and_appends", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		user := testutil.CreateTestUser(t, db)

		first, err := svc.Add(user.ID, " aapl ", "Apple Inc.")
		testutil.AssertNoError(t, err)
		if first.Symbol != "AAPL" {
			t.Errorf("expected AAPL, got %q", first.Symbol)
		}

		second, err := svc.Add(user.ID, "msft", "")
		testutil.AssertNoError(t, err)
		if second.Name != "MSFT" {
			t.Errorf("expected name to default to symbol, got %q", second.Name)
		}
		if second.SortOrder <= first.SortOrder {
			t.Errorf("expected MSFT after AAPL, got orders %d, %d", first.SortOrder, second.SortOrder)
		}

		list, err := svc.List(user.ID)
		testutil.AssertNoError(t, err)
		assertSymbols(t, list, "AAPL", "MSFT")
	})

	t.Run("duplicate_rejected_without_mutation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Add(user.ID, "AAPL", "Apple")
		testutil.AssertNoError(t, err)

		_, err = svc.Add(user.ID, "aapl", "Apple again")
		testutil.AssertAppError(t, err, "ALREADY_WATCHED")

		list, _ := svc.List(user.ID)
		if len(list) != 1 || list[0].Name != "Apple" {
			t.Errorf("watchlist changed after duplicate add: %+v", list)
		}
	})

	t.Run("same_symbol_different_users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)

		_, err := svc.Add(alice.ID, "AAPL", "Apple")
		testutil.AssertNoError(t, err)
		_, err = svc.Add(bob.ID, "AAPL", "Apple")
		testutil.AssertNoError(t, err)
	})

	t.Run("empty_symbol", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Add(user.ID, "   ", "Nothing")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestWatchlistList(t *testing.T) {
	t.Run("isolated_per_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		testutil.CreateTestWatchlistEntry(t, db, alice.ID, "AAPL")
		testutil.CreateTestWatchlistEntry(t, db, bob.ID, "TSLA")

		list, err := svc.List(alice.ID)
		testutil.AssertNoError(t, err)
		assertSymbols(t, list, "AAPL")
	})

	t.Run("empty_is_not_nil", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		user := testutil.CreateTestUser(t, db)

		list, err := svc.List(user.ID)
		testutil.AssertNoError(t, err)
		if list == nil || len(list) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", list)
		}
	})
}

func TestWatchlistRemove(t *testing.T) {
	t.Run("removes_own_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestWatchlistEntry(t, db, user.ID, "AAPL")
		testutil.CreateTestWatchlistEntry(t, db, user.ID, "MSFT")

		testutil.AssertNoError(t, svc.Remove(user.ID, "aapl"))

		list, _ := svc.List(user.ID)
		assertSymbols(t, list, "MSFT")
	})

	t.Run("not_watched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.AssertAppError(t, svc.Remove(user.ID, "AAPL"), "NOT_FOUND")
	})

	t.Run("other_users_entry_untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		testutil.CreateTestWatchlistEntry(t, db, bob.ID, "AAPL")

		testutil.AssertAppError(t, svc.Remove(alice.ID, "AAPL"), "NOT_FOUND")

		list, _ := svc.List(bob.ID)
		assertSymbols(t, list, "AAPL")
	})
}

func TestWatchlistReorder(t *testing.T) {
	t.Run("listed_first_rest_keep_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		user := testutil.CreateTestUser(t, db)
		for _, sym := range []string{"AAPL", "MSFT", "GOOG", "TSLA"} {
			testutil.CreateTestWatchlistEntry(t, db, user.ID, sym)
		}

		testutil.AssertNoError(t, svc.Reorder(user.ID, []string{"tsla", "GOOG"}))

		list, _ := svc.List(user.ID)
		assertSymbols(t, list, "TSLA", "GOOG", "AAPL", "MSFT")
		for i, e := range list {
			if e.SortOrder != i {
				t.Errorf("%s sort_order = %d, want %d", e.Symbol, e.SortOrder, i)
			}
		}
	})

	t.Run("unknown_symbol_changes_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestWatchlistEntry(t, db, user.ID, "AAPL")
		testutil.CreateTestWatchlistEntry(t, db, user.ID, "MSFT")

		err := svc.Reorder(user.ID, []string{"MSFT", "NVDA"})
		testutil.AssertAppError(t, err, "NOT_FOUND")

		list, _ := svc.List(user.ID)
		assertSymbols(t, list, "AAPL", "MSFT")
	})

	t.Run("cannot_reorder_other_users_symbols", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		testutil.CreateTestWatchlistEntry(t, db, bob.ID, "AAPL")

		testutil.AssertAppError(t, svc.Reorder(alice.ID, []string{"AAPL"}), "NOT_FOUND")
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWatchlistService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestWatchlistEntry(t, db, user.ID, "AAPL")

		testutil.AssertAppError(t, svc.Reorder(user.ID, nil), "INVALID_INPUT")
		testutil.AssertAppError(t, svc.Reorder(user.ID, []string{"AAPL", "aapl"}), "INVALID_INPUT")
	})
}
