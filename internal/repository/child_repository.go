package repository

import (
	"fmt"

	"github.com/kindcoins/kindcoins/internal/models"
)

// ChildRepository handles child-related store operations.
type ChildRepository struct {
	db *DB
}

// NewChildRepository creates a new child repository.
func NewChildRepository(db *DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// Create creates a new child.
func (r *ChildRepository) Create(child *models.Child) error {
	if err := r.db.Create(child).Error; err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}
	return nil
}

// GetByID retrieves a child by ID.
func (r *ChildRepository) GetByID(id string) (*models.Child, error) {
	var child models.Child
	if err := r.db.First(&child, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get child %s: %w", id, err)
	}
	return &child, nil
}

// Update updates a child.
func (r *ChildRepository) Update(child *models.Child) error {
	if err := r.db.Save(child).Error; err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return nil
}

// List retrieves all children, oldest first.
func (r *ChildRepository) List() ([]models.Child, error) {
	var children []models.Child
	if err := r.db.Order("created_at ASC").Find(&children).Error; err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return children, nil
}

// ListByBalance retrieves all children ordered by coin balance descending.
func (r *ChildRepository) ListByBalance() ([]models.Child, error) {
	var children []models.Child
	if err := r.db.Order("coin_balance DESC").Find(&children).Error; err != nil {
		return nil, fmt.Errorf("failed to list children by balance: %w", err)
	}
	return children, nil
}

// Count returns the number of children.
func (r *ChildRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Child{}).Count(&count).Error
	return count, err
}

// ResetStreak sets a child's streak counter back to zero.
func (r *ChildRepository) ResetStreak(childID string) error {
	return r.db.Model(&models.Child{}).
		Where("id = ?", childID).
		Update("streak_days", 0).Error
}
