package models

import (
	"time"
)

// Goal represents a coin-savings target a child works toward.
// Achievement is a one-way manual flag; it is not inferred from the
// child's balance.
type Goal struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	ChildID     string    `gorm:"not null;index;size:64" json:"child_id"`
	Child       Child     `gorm:"foreignKey:ChildID" json:"child,omitempty"`
	Description string    `gorm:"not null;type:text" json:"description"`
	TargetCoins int       `gorm:"not null" json:"target_coins"`
	IsAchieved  bool      `gorm:"not null;default:false" json:"is_achieved"`
	RewardNote  *string   `gorm:"type:text" json:"real_world_reward_note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Goal model.
func (Goal) TableName() string {
	return "goals"
}

// ProgressPercent returns how far a balance is toward the goal target,
// clamped to 100 for display.
func (g *Goal) ProgressPercent(balance int) int {
	if g.TargetCoins <= 0 {
		return 0
	}
	pct := balance * 100 / g.TargetCoins
	if pct > 100 {
		return 100
	}
	return pct
}
