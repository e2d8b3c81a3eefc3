// Package models defines domain models for the KindCoins reward tracker.
package models

import (
	"fmt"
	"time"
)

// MaxGrowthStage is the highest avatar growth stage a child can reach.
const MaxGrowthStage = 7

// CoinsPerStage is the coin balance needed to advance one growth stage.
const CoinsPerStage = 100

// AvatarType identifies the avatar family a child grows.
type AvatarType string

// Supported avatar types.
const (
	AvatarTree   AvatarType = "tree"
	AvatarRocket AvatarType = "rocket"
	AvatarPet    AvatarType = "pet"
	AvatarPlanet AvatarType = "planet"
)

// ValidAvatarType reports whether t is one of the supported avatar types.
func ValidAvatarType(t AvatarType) bool {
	switch t {
	case AvatarTree, AvatarRocket, AvatarPet, AvatarPlanet:
		return true
	}
	return false
}

// Child represents a child earning coins in the system.
type Child struct {
	ID              string     `gorm:"primaryKey;size:64" json:"id"`
	Name            string     `gorm:"not null;size:255" json:"name"`
	AvatarType      AvatarType `gorm:"not null;size:20" json:"avatar_type"`
	GrowthStage     int        `gorm:"not null;default:0" json:"growth_stage"`
	CoinBalance     int        `gorm:"not null;default:0" json:"coin_balance"`
	StreakDays      int        `gorm:"not null;default:0" json:"streak_days"`
	GoalProgressPct int        `gorm:"not null;default:0" json:"goal_progress_pct"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Child model.
func (Child) TableName() string {
	return "children"
}

// StageForBalance derives the growth stage from a coin balance.
// This is the single derivation point: growth stage is never set
// independently, so it stays monotone as long as balances never decrease.
func StageForBalance(balance int) int {
	stage := balance / CoinsPerStage
	if stage > MaxGrowthStage {
		return MaxGrowthStage
	}
	return stage
}

// AvatarImagePath returns the SVG asset path for the child's current stage.
// Asset naming is 1-based while stages are 0-based.
func (c *Child) AvatarImagePath() string {
	return fmt.Sprintf("/avatars/%s/%s_stage_%d.svg", c.AvatarType, c.AvatarType, c.GrowthStage+1)
}

// AvatarLottiePath returns the Lottie animation asset path for the current stage.
func (c *Child) AvatarLottiePath() string {
	return fmt.Sprintf("/lottie/avatars/%s/stage_%d.json", c.AvatarType, c.GrowthStage+1)
}

// StreakLabel renders the streak counter as display text.
func (c *Child) StreakLabel() string {
	if c.StreakDays <= 0 {
		return "New Beginning! ✨"
	}
	return fmt.Sprintf("Day %d Streak 🔥", c.StreakDays)
}
