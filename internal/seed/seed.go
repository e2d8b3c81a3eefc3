// Package seed loads the embedded demo fixtures into an empty store.
// The store is process-memory only, so this runs on every start; it is
// idempotent and leaves a non-empty store untouched.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kindcoins/kindcoins/internal/models"
	"github.com/kindcoins/kindcoins/internal/repository"
	"github.com/kindcoins/kindcoins/pkg/logger"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type fixtures struct {
	Categories []categoryFixture `yaml:"categories"`
	Activities []activityFixture `yaml:"activities"`
	Children   []childFixture    `yaml:"children"`
	Goals      []goalFixture     `yaml:"goals"`
	History    []historyFixture  `yaml:"history"`
}

type categoryFixture struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Icon            string `yaml:"icon"`
	BackgroundClass string `yaml:"background_class"`
}

type activityFixture struct {
	ID                 string `yaml:"id"`
	Name               string `yaml:"name"`
	CategoryID         string `yaml:"category_id"`
	Icon               string `yaml:"icon"`
	Coins              int    `yaml:"coins"`
	ParentConfigurable bool   `yaml:"parent_configurable"`
}

type childFixture struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	AvatarType      string `yaml:"avatar_type"`
	GrowthStage     int    `yaml:"growth_stage"`
	CoinBalance     int    `yaml:"coin_balance"`
	StreakDays      int    `yaml:"streak_days"`
	GoalProgressPct int    `yaml:"goal_progress_pct"`
}

type goalFixture struct {
	ID          string `yaml:"id"`
	ChildID     string `yaml:"child_id"`
	Description string `yaml:"description"`
	TargetCoins int    `yaml:"target_coins"`
	IsAchieved  bool   `yaml:"is_achieved"`
	RewardNote  string `yaml:"reward_note"`
}

type historyFixture struct {
	ID           string `yaml:"id"`
	ChildID      string `yaml:"child_id"`
	ActivityName string `yaml:"activity_name"`
	CategoryName string `yaml:"category_name"`
	CategoryIcon string `yaml:"category_icon"`
	CoinsEarned  int    `yaml:"coins_earned"`
	AgeDays      int    `yaml:"age_days"`
}

// Seeder populates the store with demo data.
type Seeder struct {
	childRepo   *repository.ChildRepository
	catalogRepo *repository.CatalogRepository
	goalRepo    *repository.GoalRepository
	historyRepo *repository.HistoryRepository
	log         *logger.Logger
}

// New creates a new seeder.
func New(
	childRepo *repository.ChildRepository,
	catalogRepo *repository.CatalogRepository,
	goalRepo *repository.GoalRepository,
	historyRepo *repository.HistoryRepository,
	log *logger.Logger,
) *Seeder {
	return &Seeder{
		childRepo:   childRepo,
		catalogRepo: catalogRepo,
		goalRepo:    goalRepo,
		historyRepo: historyRepo,
		log:         log,
	}
}

// Run loads the fixtures into every empty table. Tables that already hold
// rows are skipped, so calling Run twice changes nothing.
func (s *Seeder) Run() error {
	var fx fixtures
	if err := yaml.Unmarshal(fixturesYAML, &fx); err != nil {
		return fmt.Errorf("failed to parse seed fixtures: %w", err)
	}

	seeded := 0

	count, err := s.catalogRepo.CountCategories()
	if err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count == 0 {
		for _, c := range fx.Categories {
			cat := &models.Category{
				ID:              c.ID,
				Name:            models.CategoryName(c.Name),
				Icon:            c.Icon,
				BackgroundClass: c.BackgroundClass,
			}
			if err := s.catalogRepo.CreateCategory(cat); err != nil {
				return err
			}
			seeded++
		}
	}

	count, err = s.catalogRepo.CountActivities()
	if err != nil {
		return fmt.Errorf("failed to count activities: %w", err)
	}
	if count == 0 {
		for _, a := range fx.Activities {
			act := &models.Activity{
				ID:                 a.ID,
				Name:               a.Name,
				CategoryID:         a.CategoryID,
				Icon:               a.Icon,
				Coins:              a.Coins,
				ParentConfigurable: a.ParentConfigurable,
			}
			if err := s.catalogRepo.CreateActivity(act); err != nil {
				return err
			}
			seeded++
		}
	}

	count, err = s.childRepo.Count()
	if err != nil {
		return fmt.Errorf("failed to count children: %w", err)
	}
	if count == 0 {
		for _, c := range fx.Children {
			child := &models.Child{
				ID:              c.ID,
				Name:            c.Name,
				AvatarType:      models.AvatarType(c.AvatarType),
				GrowthStage:     c.GrowthStage,
				CoinBalance:     c.CoinBalance,
				StreakDays:      c.StreakDays,
				GoalProgressPct: c.GoalProgressPct,
			}
			if err := s.childRepo.Create(child); err != nil {
				return err
			}
			seeded++
		}
	}

	count, err = s.goalRepo.Count()
	if err != nil {
		return fmt.Errorf("failed to count goals: %w", err)
	}
	if count == 0 {
		for _, g := range fx.Goals {
			goal := &models.Goal{
				ID:          g.ID,
				ChildID:     g.ChildID,
				Description: g.Description,
				TargetCoins: g.TargetCoins,
				IsAchieved:  g.IsAchieved,
			}
			if g.RewardNote != "" {
				note := g.RewardNote
				goal.RewardNote = &note
			}
			if err := s.goalRepo.Create(goal); err != nil {
				return err
			}
			seeded++
		}
	}

	count, err = s.historyRepo.Count()
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}
	if count == 0 {
		now := time.Now().UTC()
		for _, h := range fx.History {
			entry := &models.HistoryEntry{
				ID:           h.ID,
				ChildID:      h.ChildID,
				ActivityName: h.ActivityName,
				CategoryName: models.CategoryName(h.CategoryName),
				CategoryIcon: h.CategoryIcon,
				CoinsEarned:  h.CoinsEarned,
				Timestamp:    now.AddDate(0, 0, -h.AgeDays),
			}
			if err := s.historyRepo.Append(entry); err != nil {
				return err
			}
			seeded++
		}
	}

	if seeded > 0 {
		s.log.Info().
			Int("records", seeded).
			Msg("Seeded demo fixtures")
	}
	return nil
}
