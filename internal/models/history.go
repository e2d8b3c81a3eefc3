package models

import (
	"time"
)

// HistoryEntry is an append-only audit record of a coin award.
// Activity and category name/icon are denormalized at logging time so the
// log survives later catalog edits unchanged.
type HistoryEntry struct {
	ID           string       `gorm:"primaryKey;size:64" json:"id"`
	ChildID      string       `gorm:"not null;index;size:64" json:"child_id"`
	Child        Child        `gorm:"foreignKey:ChildID" json:"child,omitempty"`
	ActivityName string       `gorm:"not null;size:255" json:"activity_name"`
	CategoryName CategoryName `gorm:"not null;size:50" json:"category_name"`
	CategoryIcon string       `gorm:"size:20" json:"category_icon"`
	CoinsEarned  int          `gorm:"not null" json:"coins_earned"`
	Timestamp    time.Time    `gorm:"not null;index" json:"timestamp"`
}

// TableName specifies the table name for HistoryEntry model.
func (HistoryEntry) TableName() string {
	return "history_entries"
}
