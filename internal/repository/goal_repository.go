package repository

import (
	"fmt"

	"github.com/kindcoins/kindcoins/internal/models"
)

// GoalRepository handles goal-related store operations.
type GoalRepository struct {
	db *DB
}

// NewGoalRepository creates a new goal repository.
func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create creates a new goal.
func (r *GoalRepository) Create(goal *models.Goal) error {
	if err := r.db.Create(goal).Error; err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// GetByID retrieves a goal by ID.
func (r *GoalRepository) GetByID(id string) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.First(&goal, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get goal %s: %w", id, err)
	}
	return &goal, nil
}

// ListByChild retrieves all goals belonging to a child.
func (r *GoalRepository) ListByChild(childID string) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.
		Where("child_id = ?", childID).
		Order("created_at ASC").
		Find(&goals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list goals for child %s: %w", childID, err)
	}
	return goals, nil
}

// MarkAchieved flips a goal's achieved flag to true.
// Returns whether the goal was newly achieved; marking an already-achieved
// goal is a no-op, so the flag is one-way.
func (r *GoalRepository) MarkAchieved(id string) (bool, error) {
	result := r.db.Model(&models.Goal{}).
		Where("id = ? AND is_achieved = ?", id, false).
		Update("is_achieved", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark goal %s achieved: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Count returns the number of goals.
func (r *GoalRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Goal{}).Count(&count).Error
	return count, err
}
