// Package overview assembles the read surface of the dashboard: child and
// category option lists, the focused child's composite view, leaderboard
// ranking, and the display currency. Everything here is derived from the
// stores; nothing is written except the focus and currency settings, which
// are process-local.
package overview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kindcoins/kindcoins/internal/cache"
	"github.com/kindcoins/kindcoins/internal/models"
	"github.com/kindcoins/kindcoins/pkg/logger"
)

// Lookup and validation errors.
var (
	ErrChildNotFound   = errors.New("child not found")
	ErrUnknownCurrency = errors.New("unknown currency code")
	ErrEmptyChildName  = errors.New("child name must not be empty")
)

// TimeOfDay values for the dashboard scene.
const (
	TimeOfDayDay   = "day"
	TimeOfDayNight = "night"
)

// ChildStore interface for child reads and creation.
type ChildStore interface {
	GetByID(id string) (*models.Child, error)
	List() ([]models.Child, error)
	ListByBalance() ([]models.Child, error)
	Create(child *models.Child) error
}

// CatalogStore interface for catalog reads.
type CatalogStore interface {
	ListCategories() ([]models.Category, error)
	ListActivitiesByCategory(categoryID string) ([]models.Activity, error)
}

// GoalStore interface for goal reads.
type GoalStore interface {
	ListByChild(childID string) ([]models.Goal, error)
}

// HistoryStore interface for history reads.
type HistoryStore interface {
	ListByChild(childID string) ([]models.HistoryEntry, error)
}

// Option is a select-list entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// GoalSummary is a goal with derived progress for display.
type GoalSummary struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	TargetCoins int     `json:"target_coins"`
	ProgressPct int     `json:"progress_pct"`
	IsAchieved  bool    `json:"is_achieved"`
	RewardNote  *string `json:"real_world_reward_note,omitempty"`
}

// Overview is the composite per-child dashboard payload.
type Overview struct {
	ChildID          string                `json:"child_id"`
	Name             string                `json:"name"`
	AvatarType       models.AvatarType     `json:"avatar_type"`
	GrowthStage      int                   `json:"growth_stage"`
	CoinBalance      int                   `json:"coin_balance"`
	GoalProgressPct  int                   `json:"goal_progress_pct"`
	StreakDays       int                   `json:"streak_days"`
	StreakLabel      string                `json:"streak_label"`
	AvatarImagePath  string                `json:"avatar_image_path"`
	AvatarLottiePath string                `json:"avatar_lottie_path"`
	CurrencySymbol   string                `json:"currency_symbol"`
	TimeOfDay        string                `json:"time_of_day"`
	Goals            []GoalSummary         `json:"goals"`
	History          []models.HistoryEntry `json:"history"`
}

// Earner is one leaderboard row.
type Earner struct {
	Rank        int    `json:"rank"`
	ChildID     string `json:"child_id"`
	Name        string `json:"name"`
	CoinBalance int    `json:"coin_balance"`
	GrowthStage int    `json:"growth_stage"`
}

// Service serves the derived dashboard views.
type Service struct {
	children ChildStore
	catalog  CatalogStore
	goals    GoalStore
	history  HistoryStore
	cache    cache.Cache // optional
	cacheTTL time.Duration
	log      *logger.Logger
	now      func() time.Time
	loc      *time.Location

	mu       sync.RWMutex
	currency string
	focused  string
}

// NewService creates a new overview service. cacheClient may be nil to
// disable overview caching.
func NewService(
	children ChildStore,
	catalog CatalogStore,
	goals GoalStore,
	history HistoryStore,
	cacheClient cache.Cache,
	cacheTTL time.Duration,
	loc *time.Location,
	log *logger.Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		children: children,
		catalog:  catalog,
		goals:    goals,
		history:  history,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
		loc:      loc,
		currency: models.DefaultCurrency,
	}
}

// Currency returns the active currency code and its display symbol.
func (s *Service) Currency() (code, symbol string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency, models.CurrencySymbol(s.currency)
}

// ChangeCurrency switches the display currency. Unknown codes are rejected
// and the previous setting stays in effect.
func (s *Service) ChangeCurrency(code string) (string, error) {
	if !models.ValidCurrency(code) {
		return "", ErrUnknownCurrency
	}
	s.mu.Lock()
	s.currency = code
	s.mu.Unlock()

	s.log.Info().Str("currency", code).Msg("Display currency changed")
	return models.CurrencySymbol(code), nil
}

// Children returns every registered child.
func (s *Service) Children() ([]models.Child, error) {
	return s.children.List()
}

// ChildOptions returns the select list of children.
func (s *Service) ChildOptions() ([]Option, error) {
	children, err := s.children.List()
	if err != nil {
		return nil, err
	}
	options := make([]Option, 0, len(children))
	for _, c := range children {
		options = append(options, Option{Label: c.Name, Value: c.ID})
	}
	return options, nil
}

// CategoryOptions returns the select list of categories, labelled
// "icon name" the way the dashboard renders them.
func (s *Service) CategoryOptions() ([]Option, error) {
	categories, err := s.catalog.ListCategories()
	if err != nil {
		return nil, err
	}
	options := make([]Option, 0, len(categories))
	for _, c := range categories {
		options = append(options, Option{
			Label: fmt.Sprintf("%s %s", c.Icon, c.Name),
			Value: c.ID,
		})
	}
	return options, nil
}

// ActivitiesForCategory returns the activities belonging to one category.
func (s *Service) ActivitiesForCategory(categoryID string) ([]models.Activity, error) {
	return s.catalog.ListActivitiesByCategory(categoryID)
}

// SetFocusedChild switches which child the dashboard shows.
func (s *Service) SetFocusedChild(childID string) error {
	if _, err := s.children.GetByID(childID); err != nil {
		return ErrChildNotFound
	}
	s.mu.Lock()
	s.focused = childID
	s.mu.Unlock()
	return nil
}

// FocusedChild returns the focused child id, defaulting to the first child
// when none has been picked yet.
func (s *Service) FocusedChild() (string, error) {
	s.mu.RLock()
	focused := s.focused
	s.mu.RUnlock()
	if focused != "" {
		return focused, nil
	}

	children, err := s.children.List()
	if err != nil {
		return "", err
	}
	if len(children) == 0 {
		return "", ErrChildNotFound
	}
	return children[0].ID, nil
}

// AddChild registers a new child. Unknown avatar types fall back to the
// tree; every child starts at stage zero with an empty balance.
func (s *Service) AddChild(name string, avatarType models.AvatarType) (*models.Child, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyChildName
	}
	if !models.ValidAvatarType(avatarType) {
		avatarType = models.AvatarTree
	}

	child := &models.Child{
		ID:         "child" + uuid.NewString()[:8],
		Name:       name,
		AvatarType: avatarType,
	}
	if err := s.children.Create(child); err != nil {
		return nil, fmt.Errorf("failed to add child: %w", err)
	}

	s.log.Info().
		Str("child_id", child.ID).
		Str("name", name).
		Str("avatar_type", string(avatarType)).
		Msg("Child added")
	return child, nil
}

// ChildOverview builds the composite dashboard payload for one child,
// serving from the cache when possible.
func (s *Service) ChildOverview(ctx context.Context, childID string) (*Overview, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cache.OverviewKey(childID)); err == nil && raw != "" {
			var cached Overview
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				// Currency and time-of-day are process state, not child
				// state; refresh them on every read.
				_, cached.CurrencySymbol = s.Currency()
				cached.TimeOfDay = s.timeOfDay()
				return &cached, nil
			}
		}
	}

	child, err := s.children.GetByID(childID)
	if err != nil {
		return nil, ErrChildNotFound
	}

	goals, err := s.goals.ListByChild(childID)
	if err != nil {
		return nil, err
	}
	history, err := s.history.ListByChild(childID)
	if err != nil {
		return nil, err
	}

	summaries := make([]GoalSummary, 0, len(goals))
	for i := range goals {
		summaries = append(summaries, GoalSummary{
			ID:          goals[i].ID,
			Description: goals[i].Description,
			TargetCoins: goals[i].TargetCoins,
			ProgressPct: goals[i].ProgressPercent(child.CoinBalance),
			IsAchieved:  goals[i].IsAchieved,
			RewardNote:  goals[i].RewardNote,
		})
	}

	_, symbol := s.Currency()
	view := &Overview{
		ChildID:          child.ID,
		Name:             child.Name,
		AvatarType:       child.AvatarType,
		GrowthStage:      child.GrowthStage,
		CoinBalance:      child.CoinBalance,
		GoalProgressPct:  child.GoalProgressPct,
		StreakDays:       child.StreakDays,
		StreakLabel:      child.StreakLabel(),
		AvatarImagePath:  child.AvatarImagePath(),
		AvatarLottiePath: child.AvatarLottiePath(),
		CurrencySymbol:   symbol,
		TimeOfDay:        s.timeOfDay(),
		Goals:            summaries,
		History:          history,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, cache.OverviewKey(childID), string(payload), s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Str("child_id", childID).Msg("Failed to cache overview")
			}
		}
	}

	return view, nil
}

// TopEarners returns children ranked by coin balance, highest first.
func (s *Service) TopEarners(limit int) ([]Earner, error) {
	children, err := s.children.ListByBalance()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(children) > limit {
		children = children[:limit]
	}

	earners := make([]Earner, 0, len(children))
	for i, c := range children {
		earners = append(earners, Earner{
			Rank:        i + 1,
			ChildID:     c.ID,
			Name:        c.Name,
			CoinBalance: c.CoinBalance,
			GrowthStage: c.GrowthStage,
		})
	}
	return earners, nil
}

// timeOfDay reports the dashboard scene: day between 06:00 and 18:59 local
// time, night otherwise.
func (s *Service) timeOfDay() string {
	hour := s.now().In(s.loc).Hour()
	if hour >= 6 && hour < 19 {
		return TimeOfDayDay
	}
	return TimeOfDayNight
}
