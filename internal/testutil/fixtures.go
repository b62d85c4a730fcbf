package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"stocktracker/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithUsername(t, db, fmt.Sprintf("user%d", nextID()))
}

// CreateTestUserWithUsername creates a user named username with email <username>@test.com.
func CreateTestUserWithUsername(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    username + "@test.com",
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestWatchlistEntry adds symbol to the user's watchlist.
func CreateTestWatchlistEntry(t *testing.T, db *gorm.DB, userID uint, symbol string) *models.WatchlistEntry {
	t.Helper()

	var count int64
	db.Model(&models.WatchlistEntry{}).Where("user_id = ?", userID).Count(&count)

	entry := &models.WatchlistEntry{
		UserID:    userID,
		Symbol:    symbol,
		Name:      symbol + " Inc",
		SortOrder: int(count),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test watchlist entry: %v", err)
	}
	return entry
}

// CreateTestPosition creates a portfolio position for the user.
func CreateTestPosition(t *testing.T, db *gorm.DB, userID uint, symbol string, quantity, buyPrice float64) *models.PortfolioPosition {
	t.Helper()

	pos := &models.PortfolioPosition{
		UserID:   userID,
		Symbol:   symbol,
		Name:     symbol + " Inc",
		Quantity: decimal.NewFromFloat(quantity),
		BuyPrice: decimal.NewFromFloat(buyPrice),
	}
	if err := db.Create(pos).Error; err != nil {
		t.Fatalf("failed to create test position: %v", err)
	}
	return pos
}
