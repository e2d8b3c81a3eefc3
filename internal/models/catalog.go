package models

import (
	"time"
)

// CategoryName is one of the fixed activity categories.
type CategoryName string

// Catalog categories. Custom covers parent-created categories.
const (
	CategoryKindness CategoryName = "Kindness"
	CategoryChores   CategoryName = "Chores"
	CategoryLearning CategoryName = "Learning"
	CategoryHealth   CategoryName = "Health"
	CategoryCustom   CategoryName = "Custom"
)

// Category represents a static activity grouping with display hints.
type Category struct {
	ID              string       `gorm:"primaryKey;size:64" json:"id"`
	Name            CategoryName `gorm:"not null;size:50" json:"name"`
	Icon            string       `gorm:"size:20" json:"icon"`
	BackgroundClass string       `gorm:"size:100" json:"background_class"`
	CreatedAt       time.Time    `json:"created_at"`
}

// TableName specifies the table name for Category model.
func (Category) TableName() string {
	return "categories"
}

// Activity represents a loggable deed worth a fixed coin reward.
type Activity struct {
	ID                 string    `gorm:"primaryKey;size:64" json:"id"`
	Name               string    `gorm:"not null;size:255" json:"name"`
	CategoryID         string    `gorm:"not null;index;size:64" json:"category_id"`
	Category           Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Icon               string    `gorm:"size:20" json:"icon"`
	Coins              int       `gorm:"not null" json:"coins"`
	ParentConfigurable bool      `gorm:"not null;default:false" json:"parent_configurable"`
	CreatedAt          time.Time `json:"created_at"`
}

// TableName specifies the table name for Activity model.
func (Activity) TableName() string {
	return "activities"
}
