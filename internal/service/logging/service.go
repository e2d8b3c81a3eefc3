// Package logging implements the activity-logging workflow: the category →
// activity → confirmation flow, the custom-activity branch, and the award
// transaction that credits a child's balance, advances the avatar and
// appends the history record.
package logging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kindcoins/kindcoins/internal/cache"
	prommetrics "github.com/kindcoins/kindcoins/internal/metrics"
	"github.com/kindcoins/kindcoins/internal/models"
	"github.com/kindcoins/kindcoins/pkg/logger"
)

// ChildStore interface for child operations.
type ChildStore interface {
	GetByID(id string) (*models.Child, error)
	Update(child *models.Child) error
}

// CatalogStore interface for category/activity catalog operations.
type CatalogStore interface {
	GetCategoryByID(id string) (*models.Category, error)
	GetActivityByID(id string) (*models.Activity, error)
	CreateActivity(activity *models.Activity) error
}

// HistoryStore interface for the append-only award log.
type HistoryStore interface {
	Append(entry *models.HistoryEntry) error
}

// Options configures workflow timing.
type Options struct {
	EnterDelay time.Duration // entering → entered settle
	ExitDelay  time.Duration // exiting → exited settle
	ClearDelay time.Duration // how long celebration signals stay set
}

// Service drives logging sessions and applies awards.
type Service struct {
	children ChildStore
	catalog  CatalogStore
	history  HistoryStore
	cache    cache.Cache // optional; nil disables invalidation
	log      *logger.Logger
	delayer  Delayer
	opts     Options

	sessMu   sync.RWMutex
	sessions map[string]*Session

	// Per-child serialization point: the award computation reads, derives
	// and writes balance, stage, streak and history as one unit.
	lockMu     sync.Mutex
	childLocks map[string]*sync.Mutex
}

// NewService creates a new logging workflow service.
func NewService(
	children ChildStore,
	catalog CatalogStore,
	history HistoryStore,
	c cache.Cache,
	delayer Delayer,
	opts Options,
	log *logger.Logger,
) *Service {
	return &Service{
		children:   children,
		catalog:    catalog,
		history:    history,
		cache:      c,
		log:        log,
		delayer:    delayer,
		opts:       opts,
		sessions:   make(map[string]*Session),
		childLocks: make(map[string]*sync.Mutex),
	}
}

// StartSession opens the logging overlay for a child.
func (s *Service) StartSession(childID string) (*Session, error) {
	if _, err := s.children.GetByID(childID); err != nil {
		prommetrics.RecordLoggingFailure("child_not_found")
		return nil, ErrChildNotFound
	}

	sess := newSession(uuid.NewString(), childID)
	sess.Message = "Let's log something awesome!"
	_ = beginEnter(&sess.Overlay)

	s.sessMu.Lock()
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.sessMu.Unlock()
	prommetrics.SetActiveSessions(count)

	s.scheduleSettle(sess, &sess.Overlay, s.opts.EnterDelay)

	s.log.Info().
		Str("session_id", sess.ID).
		Str("child_id", childID).
		Msg("Logging session started")

	return sess, nil
}

// Session retrieves an open session.
func (s *Service) Session(id string) (*Session, error) {
	s.sessMu.RLock()
	defer s.sessMu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// SelectCategory sets the category context and moves to activity selection.
// No award occurs here.
func (s *Service) SelectCategory(sessionID, categoryID string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}

	category, err := s.catalog.GetCategoryByID(categoryID)
	if err != nil {
		prommetrics.RecordLoggingFailure("category_not_found")
		sess.mu.Lock()
		sess.Message = "Error: Category not found."
		sess.mu.Unlock()
		return ErrCategoryNotFound
	}

	sess.mu.Lock()
	sess.SelectedCategoryID = category.ID
	sess.BackgroundClass = category.BackgroundClass
	sess.Message = fmt.Sprintf("Great choice! What kind of %s deed?", category.Name)
	sess.Step = StepActivitySelect
	reenter(&sess.Panel)
	sess.mu.Unlock()

	s.scheduleSettle(sess, &sess.Panel, s.opts.EnterDelay)
	return nil
}

// SelectActivity logs the selected activity: it applies the award and moves
// the session to confirmation. On failure the step regresses to a safe
// earlier state and the session carries a user-visible message.
func (s *Service) SelectActivity(ctx context.Context, sessionID, activityID string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.SelectedCategoryID == "" {
		sess.Step = StepCategorySelect
		sess.Message = "Hmm, child or activity is missing."
		sess.mu.Unlock()
		prommetrics.RecordLoggingFailure("no_category_selected")
		return ErrNoCategorySelected
	}
	categoryID := sess.SelectedCategoryID
	childID := sess.ChildID
	sess.mu.Unlock()

	activity, err := s.catalog.GetActivityByID(activityID)
	if err != nil {
		s.failSelection(sess, StepActivitySelect, "Oh no, something went wrong selecting the activity.", "activity_not_found")
		return ErrActivityNotFound
	}
	if activity.CategoryID != categoryID {
		s.failSelection(sess, StepActivitySelect, "Oh no, something went wrong selecting the activity.", "activity_outside_category")
		return ErrActivityOutsideCategory
	}

	sess.mu.Lock()
	sess.SelectedActivityID = activityID
	if sess.Panel == PhaseEntering || sess.Panel == PhaseEntered {
		_ = beginExit(&sess.Panel)
	}
	sess.mu.Unlock()
	s.scheduleSettle(sess, &sess.Panel, s.opts.ExitDelay)

	result, err := s.award(ctx, childID, activityID, nil)
	if err != nil {
		switch err {
		case ErrChildNotFound:
			s.failSelection(sess, StepCategorySelect, "Error: Child not found.", "child_not_found")
		case ErrCategoryNotFound:
			s.failSelection(sess, StepCategorySelect, "Error: Category not found.", "category_not_found")
		default:
			s.failSelection(sess, StepActivitySelect, "Error: Activity not found.", "activity_not_found")
		}
		return err
	}

	sess.mu.Lock()
	sess.Step = StepConfirmation
	sess.Confirmed = result
	sess.SuccessMessage = fmt.Sprintf("New Leaf! +%d Coins 🍃", result.CoinsEarned)
	sess.Message = "Amazing! Look what you earned!"
	sess.CoinBurst = CoinBurstPath
	if result.StageAdvanced {
		sess.GrowthSparkle = GrowthSparklePath
	}
	_ = beginEnter(&sess.ConfirmModal)
	sess.mu.Unlock()

	s.scheduleSettle(sess, &sess.ConfirmModal, s.opts.EnterDelay)
	s.scheduleCelebrationClear(sess)
	return nil
}

// StartCustomActivity opens the custom-activity editor. A category must
// already be selected.
func (s *Service) StartCustomActivity(sessionID string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.SelectedCategoryID == "" {
		sess.Message = "First, pick a category for your new activity!"
		sess.mu.Unlock()
		prommetrics.RecordLoggingFailure("no_category_selected")
		return ErrNoCategorySelected
	}
	if sess.Panel == PhaseEntering || sess.Panel == PhaseEntered {
		_ = beginExit(&sess.Panel)
	}
	sess.Step = StepCustomCreate
	sess.Draft = CustomDraft{Icon: "💡", Coins: 5}
	sess.Message = "Let's create a brand new activity!"
	_ = beginEnter(&sess.CustomModal)
	sess.mu.Unlock()

	s.scheduleSettle(sess, &sess.Panel, s.opts.ExitDelay)
	s.scheduleSettle(sess, &sess.CustomModal, s.opts.EnterDelay)
	return nil
}

// SaveCustomActivity appends a new parent-configurable activity to the
// catalog and immediately logs it, so creating and logging are a single
// transaction from the user's perspective.
func (s *Service) SaveCustomActivity(ctx context.Context, sessionID, name, icon string, coins int) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		// Blocking validation: the modal stays open, nothing is created.
		return ErrEmptyActivityName
	}
	if coins <= 0 {
		return ErrNonPositiveCoins
	}

	sess.mu.Lock()
	categoryID := sess.SelectedCategoryID
	if categoryID == "" {
		// The category context was lost; abandon the draft and return to
		// the start of the flow.
		if sess.CustomModal == PhaseEntering || sess.CustomModal == PhaseEntered {
			_ = beginExit(&sess.CustomModal)
		}
		sess.Step = StepCategorySelect
		sess.Message = "Category not selected."
		sess.mu.Unlock()
		s.scheduleSettle(sess, &sess.CustomModal, s.opts.ExitDelay)
		prommetrics.RecordLoggingFailure("no_category_selected")
		return ErrNoCategorySelected
	}
	sess.mu.Unlock()

	if icon == "" {
		icon = "✨"
	}
	activity := &models.Activity{
		ID:                 "custom-act-" + uuid.NewString()[:8],
		Name:               name,
		CategoryID:         categoryID,
		Icon:               icon,
		Coins:              coins,
		ParentConfigurable: true,
	}
	if err := s.catalog.CreateActivity(activity); err != nil {
		return fmt.Errorf("failed to save custom activity: %w", err)
	}

	sess.mu.Lock()
	if sess.CustomModal == PhaseEntering || sess.CustomModal == PhaseEntered {
		_ = beginExit(&sess.CustomModal)
	}
	sess.Message = fmt.Sprintf("'%s' added! Now let's log it.", activity.Name)
	sess.mu.Unlock()
	s.scheduleSettle(sess, &sess.CustomModal, s.opts.ExitDelay)

	s.log.Info().
		Str("session_id", sess.ID).
		Str("activity_id", activity.ID).
		Str("category_id", categoryID).
		Msg("Custom activity created")

	return s.SelectActivity(ctx, sessionID, activity.ID)
}

// CancelCustomActivity abandons the draft and returns to activity selection.
// Nothing was committed, so the domain model is untouched.
func (s *Service) CancelCustomActivity(sessionID string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.CustomModal == PhaseEntering || sess.CustomModal == PhaseEntered {
		_ = beginExit(&sess.CustomModal)
	}
	sess.Step = StepActivitySelect
	sess.Draft = CustomDraft{}
	sess.Message = "Okay, let's pick an existing activity then."
	reopenPanel := sess.SelectedCategoryID != ""
	if reopenPanel {
		reenter(&sess.Panel)
	}
	sess.mu.Unlock()

	s.scheduleSettle(sess, &sess.CustomModal, s.opts.ExitDelay)
	if reopenPanel {
		s.scheduleSettle(sess, &sess.Panel, s.opts.EnterDelay)
	}
	return nil
}

// ClosePanel backs out of activity selection to the category picker.
func (s *Service) ClosePanel(sessionID string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.Panel == PhaseEntering || sess.Panel == PhaseEntered {
		_ = beginExit(&sess.Panel)
	}
	sess.Step = StepCategorySelect
	sess.SelectedCategoryID = ""
	sess.BackgroundClass = DefaultBackground
	sess.Message = "Changed your mind? Pick a category!"
	sess.mu.Unlock()

	s.scheduleSettle(sess, &sess.Panel, s.opts.ExitDelay)
	return nil
}

// LogAnother dismisses the confirmation and restarts the flow within the
// same session.
func (s *Service) LogAnother(sessionID string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.ConfirmModal == PhaseEntering || sess.ConfirmModal == PhaseEntered {
		_ = beginExit(&sess.ConfirmModal)
	}
	sess.mu.Unlock()
	s.scheduleSettle(sess, &sess.ConfirmModal, s.opts.ExitDelay)

	sess.mu.Lock()
	sess.resetFlow()
	sess.Message = "Awesome! Let's log another great deed!"
	sess.mu.Unlock()
	return nil
}

// CloseOverlay ends the session. All session-scoped state is discarded; an
// in-progress but uncommitted selection has no persisted effect.
func (s *Service) CloseOverlay(sessionID string) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.ConfirmModal == PhaseEntering || sess.ConfirmModal == PhaseEntered {
		_ = beginExit(&sess.ConfirmModal)
		settle(&sess.ConfirmModal)
	}
	if sess.Overlay == PhaseEntering || sess.Overlay == PhaseEntered {
		_ = beginExit(&sess.Overlay)
	}
	sess.resetFlow()
	sess.Message = "Great job today! See your world grow!"
	sess.mu.Unlock()

	s.delayer.After(s.opts.ExitDelay, func() {
		sess.mu.Lock()
		settle(&sess.Overlay)
		sess.mu.Unlock()

		s.sessMu.Lock()
		delete(s.sessions, sessionID)
		count := len(s.sessions)
		s.sessMu.Unlock()
		prommetrics.SetActiveSessions(count)
	})

	s.log.Info().
		Str("session_id", sessionID).
		Msg("Logging session closed")
	return nil
}

// award atomically applies a reward to a child. Growth is recomputed before
// the streak update, and both complete before the history entry is
// appended; the entry denormalizes the activity/category identity captured
// on entry. On any lookup failure no state changes.
func (s *Service) award(ctx context.Context, childID, activityID string, coinsOverride *int) (*AwardResult, error) {
	activity, err := s.catalog.GetActivityByID(activityID)
	if err != nil {
		prommetrics.RecordLoggingFailure("activity_not_found")
		return nil, ErrActivityNotFound
	}
	category, err := s.catalog.GetCategoryByID(activity.CategoryID)
	if err != nil {
		prommetrics.RecordLoggingFailure("category_not_found")
		return nil, ErrCategoryNotFound
	}

	lock := s.childLock(childID)
	lock.Lock()
	defer lock.Unlock()

	child, err := s.children.GetByID(childID)
	if err != nil {
		prommetrics.RecordLoggingFailure("child_not_found")
		return nil, ErrChildNotFound
	}
	before := *child

	coinsEarned := activity.Coins
	if coinsOverride != nil {
		coinsEarned = *coinsOverride
	}

	child.CoinBalance += coinsEarned
	child.GoalProgressPct = child.CoinBalance % models.CoinsPerStage

	// Growth only ever moves forward. A seeded stage above the computed
	// one is kept until the balance catches up.
	newStage := models.StageForBalance(child.CoinBalance)
	stageAdvanced := newStage > child.GrowthStage
	if stageAdvanced {
		child.GrowthStage = newStage
	}

	// Streak is a typed day counter; any award today keeps it alive.
	if child.StreakDays <= 0 {
		child.StreakDays = 1
	} else {
		child.StreakDays++
	}

	if err := s.children.Update(child); err != nil {
		return nil, fmt.Errorf("failed to apply award: %w", err)
	}

	entry := &models.HistoryEntry{
		ID:           "hist" + uuid.NewString()[:8],
		ChildID:      child.ID,
		ActivityName: activity.Name,
		CategoryName: category.Name,
		CategoryIcon: category.Icon,
		CoinsEarned:  coinsEarned,
		Timestamp:    time.Now().UTC(),
	}
	if err := s.history.Append(entry); err != nil {
		// The award is all-or-nothing: without the history entry the
		// balance, stage and streak writes must not stand.
		if revertErr := s.children.Update(&before); revertErr != nil {
			s.log.Error().Err(revertErr).Str("child_id", child.ID).Msg("Failed to revert child after history failure")
		}
		return nil, fmt.Errorf("failed to append history: %w", err)
	}

	prommetrics.RecordActivityLogged(string(category.Name), activity.ParentConfigurable)
	prommetrics.RecordCoinsAwarded(string(category.Name), coinsEarned)
	prommetrics.SetChildBalance(child.Name, child.CoinBalance)
	prommetrics.SetChildGrowthStage(child.Name, child.GrowthStage)
	if stageAdvanced {
		prommetrics.RecordGrowthAdvance(string(child.AvatarType))
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, cache.OverviewKey(child.ID)); err != nil {
			s.log.Warn().Err(err).Str("child_id", child.ID).Msg("Failed to invalidate overview cache")
		}
	}

	s.log.Info().
		Str("child_id", child.ID).
		Str("activity_id", activity.ID).
		Int("coins_earned", coinsEarned).
		Int("new_balance", child.CoinBalance).
		Int("growth_stage", child.GrowthStage).
		Bool("stage_advanced", stageAdvanced).
		Msg("Activity logged")

	return &AwardResult{
		ActivityID:       activity.ID,
		ActivityName:     activity.Name,
		ActivityIcon:     activity.Icon,
		CategoryName:     string(category.Name),
		CategoryIcon:     category.Icon,
		CoinsEarned:      coinsEarned,
		NewBalance:       child.CoinBalance,
		GrowthStage:      child.GrowthStage,
		StageAdvanced:    stageAdvanced,
		AvatarImagePath:  child.AvatarImagePath(),
		AvatarLottiePath: child.AvatarLottiePath(),
		StreakDays:       child.StreakDays,
	}, nil
}

// failSelection regresses the workflow after a failed award and records why.
func (s *Service) failSelection(sess *Session, step Step, message, reason string) {
	prommetrics.RecordLoggingFailure(reason)
	sess.mu.Lock()
	sess.Step = step
	sess.Message = message
	sess.mu.Unlock()
}

// scheduleSettle completes an in-flight phase transition after the delay.
func (s *Service) scheduleSettle(sess *Session, phase *Phase, delay time.Duration) {
	s.delayer.After(delay, func() {
		sess.mu.Lock()
		settle(phase)
		sess.mu.Unlock()
	})
}

// scheduleCelebrationClear clears the transient celebration signals.
func (s *Service) scheduleCelebrationClear(sess *Session) {
	s.delayer.After(s.opts.ClearDelay, func() {
		sess.mu.Lock()
		sess.CoinBurst = ""
		sess.GrowthSparkle = ""
		sess.mu.Unlock()
	})
}

// childLock returns the serialization lock for a child.
func (s *Service) childLock(childID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.childLocks[childID]
	if !ok {
		lock = &sync.Mutex{}
		s.childLocks[childID] = lock
	}
	return lock
}
