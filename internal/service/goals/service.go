// Package goals manages coin-savings goals: creation, listing with derived
// progress, and the one-way manual completion flag.
package goals

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/kindcoins/kindcoins/internal/cache"
	"github.com/kindcoins/kindcoins/internal/metrics"
	"github.com/kindcoins/kindcoins/internal/models"
	"github.com/kindcoins/kindcoins/pkg/logger"
)

// Validation and lookup errors.
var (
	ErrChildNotFound    = errors.New("child not found")
	ErrGoalNotFound     = errors.New("goal not found")
	ErrEmptyDescription = errors.New("goal description must not be empty")
	ErrNonPositiveGoal  = errors.New("goal target must be a positive coin amount")
)

// GoalStore interface for goal persistence.
type GoalStore interface {
	Create(goal *models.Goal) error
	GetByID(id string) (*models.Goal, error)
	ListByChild(childID string) ([]models.Goal, error)
	MarkAchieved(id string) (bool, error)
}

// ChildStore interface for child lookups.
type ChildStore interface {
	GetByID(id string) (*models.Child, error)
}

// GoalView is a goal enriched with progress derived from the child's
// current balance. Progress is never stored.
type GoalView struct {
	models.Goal
	ProgressPct int `json:"progress_pct"`
}

// CompleteResult reports the outcome of a completion request.
type CompleteResult struct {
	Goal            *models.Goal `json:"goal"`
	AlreadyAchieved bool         `json:"already_achieved"`
}

// Service manages goals for children.
type Service struct {
	goals    GoalStore
	children ChildStore
	cache    cache.Cache // optional; nil disables invalidation
	log      *logger.Logger
}

// NewService creates a new goals service.
func NewService(goals GoalStore, children ChildStore, c cache.Cache, log *logger.Logger) *Service {
	return &Service{goals: goals, children: children, cache: c, log: log}
}

// AddGoal creates a goal for a child. The description is trimmed and must
// be non-empty; the target must be positive.
func (s *Service) AddGoal(ctx context.Context, childID, description string, targetCoins int, rewardNote string) (*models.Goal, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}
	if targetCoins <= 0 {
		return nil, ErrNonPositiveGoal
	}
	if _, err := s.children.GetByID(childID); err != nil {
		return nil, ErrChildNotFound
	}

	goal := &models.Goal{
		ID:          "goal" + uuid.NewString()[:8],
		ChildID:     childID,
		Description: description,
		TargetCoins: targetCoins,
	}
	if note := strings.TrimSpace(rewardNote); note != "" {
		goal.RewardNote = &note
	}
	if err := s.goals.Create(goal); err != nil {
		return nil, err
	}

	s.invalidateOverview(ctx, childID)

	metrics.RecordGoalAdded()
	s.log.Info().
		Str("goal_id", goal.ID).
		Str("child_id", childID).
		Int("target_coins", targetCoins).
		Msg("Goal added")

	return goal, nil
}

// ListForChild returns a child's goals with progress derived from the
// current coin balance.
func (s *Service) ListForChild(childID string) ([]GoalView, error) {
	child, err := s.children.GetByID(childID)
	if err != nil {
		return nil, ErrChildNotFound
	}
	goals, err := s.goals.ListByChild(childID)
	if err != nil {
		return nil, err
	}

	views := make([]GoalView, 0, len(goals))
	for i := range goals {
		views = append(views, GoalView{
			Goal:        goals[i],
			ProgressPct: goals[i].ProgressPercent(child.CoinBalance),
		})
	}
	return views, nil
}

// CompleteGoal marks a goal achieved. Completing an already-achieved goal
// is reported, not an error; the flag never flips back.
func (s *Service) CompleteGoal(ctx context.Context, goalID string) (*CompleteResult, error) {
	if _, err := s.goals.GetByID(goalID); err != nil {
		return nil, ErrGoalNotFound
	}

	newlyAchieved, err := s.goals.MarkAchieved(goalID)
	if err != nil {
		return nil, err
	}

	goal, err := s.goals.GetByID(goalID)
	if err != nil {
		return nil, ErrGoalNotFound
	}

	if newlyAchieved {
		s.invalidateOverview(ctx, goal.ChildID)
		metrics.RecordGoalCompleted()
		s.log.Info().
			Str("goal_id", goalID).
			Str("child_id", goal.ChildID).
			Msg("Goal completed")
	}

	return &CompleteResult{Goal: goal, AlreadyAchieved: !newlyAchieved}, nil
}

// invalidateOverview drops the cached overview so the next read reflects
// the goal mutation.
func (s *Service) invalidateOverview(ctx context.Context, childID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.OverviewKey(childID)); err != nil {
		s.log.Warn().Err(err).Str("child_id", childID).Msg("Failed to invalidate overview cache")
	}
}
