package repository

import (
	"fmt"
	"time"

	"github.com/kindcoins/kindcoins/internal/models"
)

// HistoryRepository handles the append-only award log.
// It deliberately exposes no update or delete methods: history entries are
// immutable once created.
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append records a new history entry.
func (r *HistoryRepository) Append(entry *models.HistoryEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// ListByChild retrieves a child's history, newest first.
func (r *HistoryRepository) ListByChild(childID string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := r.db.
		Where("child_id = ?", childID).
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history for child %s: %w", childID, err)
	}
	return entries, nil
}

// CountByChild returns the number of history entries for a child.
func (r *HistoryRepository) CountByChild(childID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.HistoryEntry{}).
		Where("child_id = ?", childID).
		Count(&count).Error
	return count, err
}

// Count returns the total number of history entries.
func (r *HistoryRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.HistoryEntry{}).Count(&count).Error
	return count, err
}

// HasEntryBetween reports whether a child logged anything in [from, to).
// The streak maintenance job uses this to detect a missed day.
func (r *HistoryRepository) HasEntryBetween(childID string, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.HistoryEntry{}).
		Where("child_id = ? AND timestamp >= ? AND timestamp < ?", childID, from, to).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
