package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"stocktracker/internal/models"
)

// DBStore keeps sessions in the sessions table.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore returns a gorm-backed Store.
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

// Create inserts a session record.
func (s *DBStore) Create(ctx context.Context, key string, userID uint, expiresAt time.Time) error {
	return s.db.WithContext(ctx).Create(&models.Session{
		ID:        key,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
	}).Error
}

// Lookup returns the owner of an unexpired session.
func (s *DBStore) Lookup(ctx context.Context, key string) (uint, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", key, time.Now().UTC()).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	return sess.UserID, nil
}

// Delete removes a session record. Deleting a missing record is not an error.
func (s *DBStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("id = ?", key).Delete(&models.Session{}).Error
}

// PurgeExpired deletes every expired record and reports how many went.
func (s *DBStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now().UTC()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
