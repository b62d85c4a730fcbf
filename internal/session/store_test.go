package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"stocktracker/internal/models"
	"stocktracker/internal/testutil"
)

// exerciseStore runs the behaviour every Store must share. userID must
// reference an existing user for stores with foreign keys.
func exerciseStore(t *testing.T, store Store, userID uint) {
	t.Helper()
	ctx := context.Background()

	t.Run("create_and_lookup", func(t *testing.T) {
		testutil.AssertNoError(t, store.Create(ctx, "k1", userID, time.Now().Add(time.Hour)))
		got, err := store.Lookup(ctx, "k1")
		testutil.AssertNoError(t, err)
		if got != userID {
			t.Errorf("Lookup = %d, want %d", got, userID)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := store.Lookup(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		testutil.AssertNoError(t, store.Create(ctx, "k2", userID, time.Now().Add(-time.Minute)))
		if _, err := store.Lookup(ctx, "k2"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound for expired record, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		testutil.AssertNoError(t, store.Create(ctx, "k3", userID, time.Now().Add(time.Hour)))
		testutil.AssertNoError(t, store.Delete(ctx, "k3"))
		testutil.AssertNoError(t, store.Delete(ctx, "k3"))
		if _, err := store.Lookup(ctx, "k3"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(), 1)
}

func TestDBStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)

	store := NewDBStore(db)
	exerciseStore(t, store, user.ID)

	t.Run("purge_expired", func(t *testing.T) {
		ctx := context.Background()
		testutil.AssertNoError(t, store.Create(ctx, "old", user.ID, time.Now().Add(-time.Hour)))
		testutil.AssertNoError(t, store.Create(ctx, "live", user.ID, time.Now().Add(time.Hour)))

		n, err := store.PurgeExpired(ctx)
		testutil.AssertNoError(t, err)
		if n < 1 {
			t.Errorf("expected at least one purged record, got %d", n)
		}

		var remaining int64
		db.Model(&models.Session{}).Where("id = ?", "old").Count(&remaining)
		if remaining != 0 {
			t.Error("expired record survived purge")
		}
		if _, err := store.Lookup(ctx, "live"); err != nil {
			t.Errorf("live record lost: %v", err)
		}
	})

	t.Run("unknown_user_rejected", func(t *testing.T) {
		err := store.Create(context.Background(), "orphan", 99999, time.Now().Add(time.Hour))
		if err == nil {
			t.Error("expected foreign key violation for unknown user")
		}
	})
}

// TestRedisStore needs a reachable server; set TEST_REDIS_URL to run it.
func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	exerciseStore(t, NewRedisStore(rdb), 1)
}
