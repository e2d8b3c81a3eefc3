package logging

import (
	"fmt"
	"sync"
)

// Step identifies where a logging session is in the category → activity →
// confirmation flow.
type Step string

// Logging workflow steps.
const (
	StepCategorySelect Step = "category_select"
	StepActivitySelect Step = "activity_select"
	StepConfirmation   Step = "confirmation"
	StepCustomCreate   Step = "custom_create_activity"
)

// Phase is an overlay lifecycle state, used purely to sequence UI transition
// timing. It is independent of the workflow step.
type Phase string

// Overlay lifecycle phases.
const (
	PhaseIdle     Phase = "idle"
	PhaseEntering Phase = "entering"
	PhaseEntered  Phase = "entered"
	PhaseExiting  Phase = "exiting"
	PhaseExited   Phase = "exited"
)

// DefaultBackground is the overlay background before a category is picked.
const DefaultBackground = "bg-sky-100"

// Celebratory animation asset paths. These are part of the presentation
// contract and must not change.
const (
	CoinBurstPath     = "/lottie/coin_burst.json"
	GrowthSparklePath = "/lottie/growth_sparkle.json"
)

// CustomDraft holds the in-progress custom activity form.
type CustomDraft struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Coins int    `json:"coins"`
}

// AwardResult captures everything a confirmation screen shows about a
// completed award.
type AwardResult struct {
	ActivityID       string `json:"activity_id"`
	ActivityName     string `json:"activity_name"`
	ActivityIcon     string `json:"activity_icon"`
	CategoryName     string `json:"category_name"`
	CategoryIcon     string `json:"category_icon"`
	CoinsEarned      int    `json:"coins_earned"`
	NewBalance       int    `json:"new_balance"`
	GrowthStage      int    `json:"growth_stage"`
	StageAdvanced    bool   `json:"stage_advanced"`
	AvatarImagePath  string `json:"avatar_image_path"`
	AvatarLottiePath string `json:"avatar_lottie_path"`
	StreakDays       int    `json:"streak_days"`
}

// Session is the state of one activity-logging interaction for one child.
// All session state lives here; there are no ambient globals. A session is
// owned by a single user interaction but methods are still guarded so a
// late lifecycle settle cannot race a user action.
type Session struct {
	mu sync.Mutex

	ID      string `json:"id"`
	ChildID string `json:"child_id"`

	Step               Step   `json:"step"`
	SelectedCategoryID string `json:"selected_category_id"`
	SelectedActivityID string `json:"selected_activity_id"`
	BackgroundClass    string `json:"background_class"`
	Message            string `json:"message"`
	SuccessMessage     string `json:"success_message"`

	Draft     CustomDraft  `json:"custom_draft"`
	Confirmed *AwardResult `json:"confirmed,omitempty"`

	// Celebration signals; empty when not showing.
	CoinBurst     string `json:"coin_burst,omitempty"`
	GrowthSparkle string `json:"growth_sparkle,omitempty"`

	Overlay      Phase `json:"overlay_phase"`
	Panel        Phase `json:"panel_phase"`
	ConfirmModal Phase `json:"confirmation_phase"`
	CustomModal  Phase `json:"custom_modal_phase"`
}

// newSession creates a session at the start of the flow.
func newSession(id, childID string) *Session {
	return &Session{
		ID:              id,
		ChildID:         childID,
		Step:            StepCategorySelect,
		BackgroundClass: DefaultBackground,
		Overlay:         PhaseIdle,
		Panel:           PhaseExited,
		ConfirmModal:    PhaseExited,
		CustomModal:     PhaseExited,
	}
}

// resetFlow returns the session to the start of the flow, clearing every
// selection and draft. The overlay phase is left to the caller.
func (s *Session) resetFlow() {
	s.Step = StepCategorySelect
	s.SelectedCategoryID = ""
	s.SelectedActivityID = ""
	s.BackgroundClass = DefaultBackground
	s.SuccessMessage = ""
	s.Draft = CustomDraft{}
	s.Confirmed = nil
	s.Panel = PhaseExited
	s.ConfirmModal = PhaseExited
	s.CustomModal = PhaseExited
}

// beginEnter moves a lifecycle phase to entering. Only idle or exited
// phases may begin entering.
func beginEnter(p *Phase) error {
	switch *p {
	case PhaseIdle, PhaseExited:
		*p = PhaseEntering
		return nil
	}
	return fmt.Errorf("cannot enter from phase %q", *p)
}

// beginExit moves a lifecycle phase to exiting. Only entering or entered
// phases may begin exiting.
func beginExit(p *Phase) error {
	switch *p {
	case PhaseEntering, PhaseEntered:
		*p = PhaseExiting
		return nil
	}
	return fmt.Errorf("cannot exit from phase %q", *p)
}

// reenter drives a phase back to entering regardless of an in-flight exit:
// an exiting phase is settled first so a quick reopen is not lost to a
// pending exit timer. Phases already entering or entered are left alone.
func reenter(p *Phase) {
	if *p == PhaseExiting {
		settle(p)
	}
	_ = beginEnter(p)
}

// settle completes an in-flight transition: entering settles to entered and
// exiting settles to exited. Settling a phase that moved on in the meantime
// is a no-op, so a late timer cannot clobber a newer transition.
func settle(p *Phase) {
	switch *p {
	case PhaseEntering:
		*p = PhaseEntered
	case PhaseExiting:
		*p = PhaseExited
	}
}

// Snapshot returns a copy of the session safe to serialize without holding
// the lock during encoding.
func (s *Session) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := Session{
		ID:                 s.ID,
		ChildID:            s.ChildID,
		Step:               s.Step,
		SelectedCategoryID: s.SelectedCategoryID,
		SelectedActivityID: s.SelectedActivityID,
		BackgroundClass:    s.BackgroundClass,
		Message:            s.Message,
		SuccessMessage:     s.SuccessMessage,
		Draft:              s.Draft,
		CoinBurst:          s.CoinBurst,
		GrowthSparkle:      s.GrowthSparkle,
		Overlay:            s.Overlay,
		Panel:              s.Panel,
		ConfirmModal:       s.ConfirmModal,
		CustomModal:        s.CustomModal,
	}
	if s.Confirmed != nil {
		confirmed := *s.Confirmed
		copied.Confirmed = &confirmed
	}
	return copied
}
