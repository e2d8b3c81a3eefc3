package repository

import (
	"fmt"

	"github.com/kindcoins/kindcoins/internal/models"
)

// CatalogRepository handles the category and activity catalog.
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateCategory creates a new category.
func (r *CatalogRepository) CreateCategory(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategoryByID retrieves a category by ID.
func (r *CatalogRepository) GetCategoryByID(id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get category %s: %w", id, err)
	}
	return &category, nil
}

// ListCategories retrieves all categories, oldest first.
func (r *CatalogRepository) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("created_at ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CountCategories returns the number of categories.
func (r *CatalogRepository) CountCategories() (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Count(&count).Error
	return count, err
}

// CreateActivity creates a new activity. The category must exist; the
// foreign key rejects orphaned activities.
func (r *CatalogRepository) CreateActivity(activity *models.Activity) error {
	if err := r.db.Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// GetActivityByID retrieves an activity by ID.
func (r *CatalogRepository) GetActivityByID(id string) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.First(&activity, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get activity %s: %w", id, err)
	}
	return &activity, nil
}

// ListActivities retrieves all activities.
func (r *CatalogRepository) ListActivities() ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.db.Order("created_at ASC").Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// ListActivitiesByCategory retrieves all activities within a category.
func (r *CatalogRepository) ListActivitiesByCategory(categoryID string) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.
		Where("category_id = ?", categoryID).
		Order("created_at ASC").
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activities for category %s: %w", categoryID, err)
	}
	return activities, nil
}

// CountActivities returns the number of activities.
func (r *CatalogRepository) CountActivities() (int64, error) {
	var count int64
	err := r.db.Model(&models.Activity{}).Count(&count).Error
	return count, err
}
