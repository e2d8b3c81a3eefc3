// Package dashboard provides REST API handlers for the family dashboard.
// It exposes endpoints for children, the catalog, logging sessions, goals,
// and display settings.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kindcoins/kindcoins/internal/models"
	"github.com/kindcoins/kindcoins/internal/service/goals"
	"github.com/kindcoins/kindcoins/internal/service/logging"
	"github.com/kindcoins/kindcoins/internal/service/overview"
	"github.com/kindcoins/kindcoins/pkg/logger"
)

// LoggingService interface for the activity-logging workflow.
type LoggingService interface {
	StartSession(childID string) (*logging.Session, error)
	Session(id string) (*logging.Session, error)
	SelectCategory(sessionID, categoryID string) error
	SelectActivity(ctx context.Context, sessionID, activityID string) error
	StartCustomActivity(sessionID string) error
	SaveCustomActivity(ctx context.Context, sessionID, name, icon string, coins int) error
	CancelCustomActivity(sessionID string) error
	ClosePanel(sessionID string) error
	LogAnother(sessionID string) error
	CloseOverlay(sessionID string) error
}

// GoalService interface for goal operations.
type GoalService interface {
	AddGoal(ctx context.Context, childID, description string, targetCoins int, rewardNote string) (*models.Goal, error)
	ListForChild(childID string) ([]goals.GoalView, error)
	CompleteGoal(ctx context.Context, goalID string) (*goals.CompleteResult, error)
}

// OverviewService interface for the derived read surface.
type OverviewService interface {
	Children() ([]models.Child, error)
	ChildOptions() ([]overview.Option, error)
	CategoryOptions() ([]overview.Option, error)
	ActivitiesForCategory(categoryID string) ([]models.Activity, error)
	ChildOverview(ctx context.Context, childID string) (*overview.Overview, error)
	TopEarners(limit int) ([]overview.Earner, error)
	AddChild(name string, avatarType models.AvatarType) (*models.Child, error)
	SetFocusedChild(childID string) error
	FocusedChild() (string, error)
	Currency() (code, symbol string)
	ChangeCurrency(code string) (string, error)
}

// CatalogService interface for raw catalog reads.
type CatalogService interface {
	ListCategories() ([]models.Category, error)
}

// HealthChecker reports store connectivity.
type HealthChecker interface {
	Health() error
}

// Handler handles dashboard API requests.
type Handler struct {
	loggingService  LoggingService
	goalService     GoalService
	overviewService OverviewService
	catalogService  CatalogService
	health          HealthChecker
	log             *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(
	loggingService LoggingService,
	goalService GoalService,
	overviewService OverviewService,
	catalogService CatalogService,
	health HealthChecker,
	log *logger.Logger,
) *Handler {
	return &Handler{
		loggingService:  loggingService,
		goalService:     goalService,
		overviewService: overviewService,
		catalogService:  catalogService,
		health:          health,
		log:             log,
	}
}

// ListChildren returns every registered child.
// GET /api/v1/children.
func (h *Handler) ListChildren(c *gin.Context) {
	children, err := h.overviewService.Children()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list children")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve children")
		return
	}
	c.JSON(http.StatusOK, gin.H{"children": children, "total": len(children)})
}

type addChildRequest struct {
	Name       string `json:"name" binding:"required"`
	AvatarType string `json:"avatar_type"`
}

// AddChild registers a new child.
// POST /api/v1/children.
func (h *Handler) AddChild(c *gin.Context) {
	var req addChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "name is required")
		return
	}

	child, err := h.overviewService.AddChild(req.Name, models.AvatarType(req.AvatarType))
	if err != nil {
		h.serviceError(c, err, "Failed to add child")
		return
	}
	c.JSON(http.StatusCreated, child)
}

// GetChildOptions returns the child select list.
// GET /api/v1/children/options.
func (h *Handler) GetChildOptions(c *gin.Context) {
	options, err := h.overviewService.ChildOptions()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build child options")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve child options")
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": options})
}

// GetChildOverview returns the composite dashboard payload for one child.
// GET /api/v1/children/:id/overview.
func (h *Handler) GetChildOverview(c *gin.Context) {
	view, err := h.overviewService.ChildOverview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve overview")
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetChildGoals returns a child's goals with derived progress.
// GET /api/v1/children/:id/goals.
func (h *Handler) GetChildGoals(c *gin.Context) {
	views, err := h.goalService.ListForChild(c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve goals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": views, "total": len(views)})
}

// GetTopEarners returns children ranked by coin balance.
// GET /api/v1/children/top?limit=10.
func (h *Handler) GetTopEarners(c *gin.Context) {
	limit, err := h.parseLimit(c, 10)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	earners, err := h.overviewService.TopEarners(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to rank children")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve ranking")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"earners":      earners,
		"total":        len(earners),
		"generated_at": time.Now().UTC(),
	})
}

// ListCategories returns the catalog categories.
// GET /api/v1/categories.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "total": len(categories)})
}

// GetCategoryOptions returns the category select list.
// GET /api/v1/categories/options.
func (h *Handler) GetCategoryOptions(c *gin.Context) {
	options, err := h.overviewService.CategoryOptions()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build category options")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve category options")
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": options})
}

// GetCategoryActivities returns the activities within one category.
// GET /api/v1/categories/:id/activities.
func (h *Handler) GetCategoryActivities(c *gin.Context) {
	activities, err := h.overviewService.ActivitiesForCategory(c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list activities")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve activities")
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities, "total": len(activities)})
}

type startSessionRequest struct {
	ChildID string `json:"child_id" binding:"required"`
}

// StartSession opens a logging session for a child.
// POST /api/v1/sessions.
func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "child_id is required")
		return
	}

	sess, err := h.loggingService.StartSession(req.ChildID)
	if err != nil {
		h.serviceError(c, err, "Failed to start session")
		return
	}
	c.JSON(http.StatusCreated, sess.Snapshot())
}

// GetSession returns the current session state.
// GET /api/v1/sessions/:id.
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.loggingService.Session(c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve session")
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

type selectCategoryRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
}

// SelectCategory picks a category within a session.
// POST /api/v1/sessions/:id/category.
func (h *Handler) SelectCategory(c *gin.Context) {
	var req selectCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "category_id is required")
		return
	}
	if err := h.loggingService.SelectCategory(c.Param("id"), req.CategoryID); err != nil {
		h.serviceError(c, err, "Failed to select category")
		return
	}
	h.sessionResponse(c)
}

type selectActivityRequest struct {
	ActivityID string `json:"activity_id" binding:"required"`
}

// SelectActivity logs an activity and awards its coins.
// POST /api/v1/sessions/:id/activity.
func (h *Handler) SelectActivity(c *gin.Context) {
	var req selectActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "activity_id is required")
		return
	}
	if err := h.loggingService.SelectActivity(c.Request.Context(), c.Param("id"), req.ActivityID); err != nil {
		h.serviceError(c, err, "Failed to log activity")
		return
	}
	h.sessionResponse(c)
}

// StartCustomActivity opens the custom-activity editor.
// POST /api/v1/sessions/:id/custom.
func (h *Handler) StartCustomActivity(c *gin.Context) {
	if err := h.loggingService.StartCustomActivity(c.Param("id")); err != nil {
		h.serviceError(c, err, "Failed to open custom activity editor")
		return
	}
	h.sessionResponse(c)
}

type saveCustomActivityRequest struct {
	Name  string `json:"name" binding:"required"`
	Icon  string `json:"icon"`
	Coins int    `json:"coins" binding:"required"`
}

// SaveCustomActivity creates the drafted activity and logs it.
// PUT /api/v1/sessions/:id/custom.
func (h *Handler) SaveCustomActivity(c *gin.Context) {
	var req saveCustomActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "name and coins are required")
		return
	}
	if err := h.loggingService.SaveCustomActivity(c.Request.Context(), c.Param("id"), req.Name, req.Icon, req.Coins); err != nil {
		h.serviceError(c, err, "Failed to save custom activity")
		return
	}
	h.sessionResponse(c)
}

// CancelCustomActivity abandons the custom-activity draft.
// DELETE /api/v1/sessions/:id/custom.
func (h *Handler) CancelCustomActivity(c *gin.Context) {
	if err := h.loggingService.CancelCustomActivity(c.Param("id")); err != nil {
		h.serviceError(c, err, "Failed to cancel custom activity")
		return
	}
	h.sessionResponse(c)
}

// ClosePanel backs out of activity selection.
// DELETE /api/v1/sessions/:id/panel.
func (h *Handler) ClosePanel(c *gin.Context) {
	if err := h.loggingService.ClosePanel(c.Param("id")); err != nil {
		h.serviceError(c, err, "Failed to close panel")
		return
	}
	h.sessionResponse(c)
}

// LogAnother restarts the flow after a confirmation.
// POST /api/v1/sessions/:id/another.
func (h *Handler) LogAnother(c *gin.Context) {
	if err := h.loggingService.LogAnother(c.Param("id")); err != nil {
		h.serviceError(c, err, "Failed to restart flow")
		return
	}
	h.sessionResponse(c)
}

// CloseSession ends a logging session.
// DELETE /api/v1/sessions/:id.
func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.loggingService.CloseOverlay(c.Param("id")); err != nil {
		h.serviceError(c, err, "Failed to close session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": true})
}

type addGoalRequest struct {
	ChildID     string `json:"child_id" binding:"required"`
	Description string `json:"description" binding:"required"`
	TargetCoins int    `json:"target_coins" binding:"required"`
	RewardNote  string `json:"real_world_reward_note"`
}

// AddGoal creates a savings goal for a child.
// POST /api/v1/goals.
func (h *Handler) AddGoal(c *gin.Context) {
	var req addGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "child_id, description and target_coins are required")
		return
	}

	goal, err := h.goalService.AddGoal(c.Request.Context(), req.ChildID, req.Description, req.TargetCoins, req.RewardNote)
	if err != nil {
		h.serviceError(c, err, "Failed to add goal")
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// CompleteGoal marks a goal achieved.
// POST /api/v1/goals/:id/complete.
func (h *Handler) CompleteGoal(c *gin.Context) {
	result, err := h.goalService.CompleteGoal(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "Failed to complete goal")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCurrency returns the active display currency.
// GET /api/v1/settings/currency.
func (h *Handler) GetCurrency(c *gin.Context) {
	code, symbol := h.overviewService.Currency()
	c.JSON(http.StatusOK, gin.H{"code": code, "symbol": symbol})
}

type changeCurrencyRequest struct {
	Code string `json:"code" binding:"required"`
}

// ChangeCurrency switches the display currency.
// PUT /api/v1/settings/currency.
func (h *Handler) ChangeCurrency(c *gin.Context) {
	var req changeCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "code is required")
		return
	}

	symbol, err := h.overviewService.ChangeCurrency(req.Code)
	if err != nil {
		h.serviceError(c, err, "Failed to change currency")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": req.Code, "symbol": symbol})
}

// GetFocus returns the focused child.
// GET /api/v1/settings/focus.
func (h *Handler) GetFocus(c *gin.Context) {
	childID, err := h.overviewService.FocusedChild()
	if err != nil {
		h.serviceError(c, err, "Failed to determine focused child")
		return
	}
	c.JSON(http.StatusOK, gin.H{"child_id": childID})
}

type setFocusRequest struct {
	ChildID string `json:"child_id" binding:"required"`
}

// SetFocus switches the focused child.
// PUT /api/v1/settings/focus.
func (h *Handler) SetFocus(c *gin.Context) {
	var req setFocusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "child_id is required")
		return
	}
	if err := h.overviewService.SetFocusedChild(req.ChildID); err != nil {
		h.serviceError(c, err, "Failed to set focused child")
		return
	}
	c.JSON(http.StatusOK, gin.H{"child_id": req.ChildID})
}

// GetHealth reports service health.
// GET /api/v1/health.
func (h *Handler) GetHealth(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now().UTC(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// sessionResponse returns the session's post-operation state.
func (h *Handler) sessionResponse(c *gin.Context) {
	sess, err := h.loggingService.Session(c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "Failed to retrieve session")
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 0 || limit > 100 {
		return 0, errors.New("limit must be between 0 and 100")
	}
	return limit, nil
}

// serviceError maps service errors to HTTP statuses: lookup failures are
// 404, validation failures 400, everything else 500.
func (h *Handler) serviceError(c *gin.Context, err error, fallback string) {
	switch {
	case isNotFound(err):
		h.errorResponse(c, http.StatusNotFound, err.Error())
	case isValidation(err):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg(fallback)
		h.errorResponse(c, http.StatusInternalServerError, fallback)
	}
}

func isNotFound(err error) bool {
	for _, target := range []error{
		logging.ErrSessionNotFound,
		logging.ErrChildNotFound,
		logging.ErrCategoryNotFound,
		logging.ErrActivityNotFound,
		goals.ErrChildNotFound,
		goals.ErrGoalNotFound,
		overview.ErrChildNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isValidation(err error) bool {
	for _, target := range []error{
		logging.ErrNoCategorySelected,
		logging.ErrActivityOutsideCategory,
		logging.ErrEmptyActivityName,
		logging.ErrNonPositiveCoins,
		goals.ErrEmptyDescription,
		goals.ErrNonPositiveGoal,
		overview.ErrUnknownCurrency,
		overview.ErrEmptyChildName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
