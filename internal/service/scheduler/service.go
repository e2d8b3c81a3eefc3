// Package scheduler provides the daily streak maintenance job: children
// who logged nothing on the previous day have their streak counter reset.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kindcoins/kindcoins/internal/cache"
	"github.com/kindcoins/kindcoins/internal/config"
	prommetrics "github.com/kindcoins/kindcoins/internal/metrics"
	"github.com/kindcoins/kindcoins/internal/models"
	"github.com/kindcoins/kindcoins/pkg/logger"
)

// ChildStore interface for the child operations the job needs.
type ChildStore interface {
	List() ([]models.Child, error)
	ResetStreak(childID string) error
}

// HistoryStore interface for activity lookups.
type HistoryStore interface {
	HasEntryBetween(childID string, from, to time.Time) (bool, error)
}

// Service runs the cron-driven streak maintenance.
type Service struct {
	config   *config.Config
	children ChildStore
	history  HistoryStore
	cache    cache.Cache // optional; nil disables invalidation
	log      *logger.Logger
	cron     *cron.Cron
	now      func() time.Time
	location *time.Location
}

// NewService creates a new scheduler service.
func NewService(cfg *config.Config, children ChildStore, history HistoryStore, c cache.Cache, log *logger.Logger) *Service {
	return &Service{
		config:   cfg,
		children: children,
		history:  history,
		cache:    c,
		log:      log,
		now:      time.Now,
		location: time.UTC,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := time.LoadLocation(s.config.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}
	s.location = location

	s.cron = cron.New(cron.WithLocation(location))

	cronExpr, err := s.buildCronExpression()
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	if _, err := s.cron.AddFunc(cronExpr, s.RunStreakMaintenance); err != nil {
		return fmt.Errorf("failed to register streak maintenance job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.config.Scheduler.Timezone).
		Str("time", s.config.Scheduler.Time).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// buildCronExpression generates a daily cron expression from config.
func (s *Service) buildCronExpression() (string, error) {
	parts := strings.Split(s.config.Scheduler.Time, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", s.config.Scheduler.Time)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// RunStreakMaintenance resets the streak of every child with no logged
// activity yesterday. A child already at zero is left alone.
func (s *Service) RunStreakMaintenance() {
	start := time.Now()
	defer func() {
		prommetrics.ObserveStreakJobDuration(time.Since(start).Seconds())
	}()

	s.log.Info().Msg("Running streak maintenance job")

	children, err := s.children.List()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list children for streak maintenance")
		prommetrics.RecordStreakJobRun("error")
		return
	}

	// Yesterday in the scheduler's timezone.
	today := s.now().In(s.location)
	dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.location)
	yesterdayStart := dayStart.AddDate(0, 0, -1)

	reset := 0
	failed := false
	for i := range children {
		child := &children[i]
		if child.StreakDays == 0 {
			continue
		}

		active, err := s.history.HasEntryBetween(child.ID, yesterdayStart, dayStart)
		if err != nil {
			s.log.Error().Err(err).Str("child_id", child.ID).Msg("Failed to check activity for streak")
			failed = true
			continue
		}
		if active {
			continue
		}

		if err := s.children.ResetStreak(child.ID); err != nil {
			s.log.Error().Err(err).Str("child_id", child.ID).Msg("Failed to reset streak")
			failed = true
			continue
		}
		if s.cache != nil {
			if err := s.cache.Del(context.Background(), cache.OverviewKey(child.ID)); err != nil {
				s.log.Warn().Err(err).Str("child_id", child.ID).Msg("Failed to invalidate overview cache")
			}
		}
		prommetrics.RecordStreakReset()
		reset++

		s.log.Info().
			Str("child_id", child.ID).
			Int("previous_streak", child.StreakDays).
			Msg("Streak reset after missed day")
	}

	if failed {
		prommetrics.RecordStreakJobRun("error")
	} else {
		prommetrics.RecordStreakJobRun("success")
	}

	s.log.Info().
		Int("children", len(children)).
		Int("reset", reset).
		Msg("Streak maintenance job completed")
}
