//nolint:noctx // Test file uses http.NewRequest for simplicity
package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindcoins/kindcoins/internal/models"
	"github.com/kindcoins/kindcoins/internal/service/goals"
	"github.com/kindcoins/kindcoins/internal/service/logging"
	"github.com/kindcoins/kindcoins/internal/service/overview"
	"github.com/kindcoins/kindcoins/pkg/logger"
)

var errStoreNotFound = errors.New("record not found")

// fakeStore backs every service with one in-memory data set so handler
// tests exercise the real service wiring end to end.
type fakeStore struct {
	mu         sync.Mutex
	children   map[string]models.Child
	categories map[string]models.Category
	activities map[string]models.Activity
	goals      map[string]*models.Goal
	goalOrder  []string
	history    []models.HistoryEntry
	healthErr  error
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		children:   make(map[string]models.Child),
		categories: make(map[string]models.Category),
		activities: make(map[string]models.Activity),
		goals:      make(map[string]*models.Goal),
	}
	s.children["child1"] = models.Child{
		ID: "child1", Name: "Alex", AvatarType: models.AvatarTree,
		GrowthStage: 0, CoinBalance: 80, StreakDays: 3,
	}
	s.children["child2"] = models.Child{
		ID: "child2", Name: "Bella", AvatarType: models.AvatarRocket,
		GrowthStage: 7, CoinBalance: 450,
	}
	s.categories["cat1"] = models.Category{
		ID: "cat1", Name: models.CategoryKindness, Icon: "💖", BackgroundClass: "bg-rose-100",
	}
	s.activities["act1"] = models.Activity{
		ID: "act1", Name: "Help a Sibling", CategoryID: "cat1", Icon: "🤝", Coins: 25,
	}
	return s
}

func (s *fakeStore) GetByID(id string) (*models.Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.children[id]
	if !ok {
		return nil, errStoreNotFound
	}
	copied := c
	return &copied, nil
}

func (s *fakeStore) Update(child *models.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[child.ID] = *child
	return nil
}

func (s *fakeStore) Create(child *models.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[child.ID] = *child
	return nil
}

func (s *fakeStore) List() ([]models.Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Child, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) ListByBalance() ([]models.Child, error) {
	out, _ := s.List()
	sort.Slice(out, func(i, j int) bool { return out[i].CoinBalance > out[j].CoinBalance })
	return out, nil
}

func (s *fakeStore) GetCategoryByID(id string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, errStoreNotFound
	}
	copied := c
	return &copied, nil
}

func (s *fakeStore) ListCategories() ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeStore) GetActivityByID(id string) (*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	if !ok {
		return nil, errStoreNotFound
	}
	copied := a
	return &copied, nil
}

func (s *fakeStore) CreateActivity(activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[activity.ID] = *activity
	return nil
}

func (s *fakeStore) ListActivitiesByCategory(categoryID string) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Activity
	for _, a := range s.activities {
		if a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateGoal(goal *models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *goal
	s.goals[goal.ID] = &copied
	s.goalOrder = append(s.goalOrder, goal.ID)
	return nil
}

func (s *fakeStore) GetGoalByID(id string) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return nil, errStoreNotFound
	}
	copied := *g
	return &copied, nil
}

func (s *fakeStore) ListGoalsByChild(childID string) ([]models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Goal
	for _, id := range s.goalOrder {
		if s.goals[id].ChildID == childID {
			out = append(out, *s.goals[id])
		}
	}
	return out, nil
}

func (s *fakeStore) MarkAchieved(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.IsAchieved {
		return false, nil
	}
	g.IsAchieved = true
	return true, nil
}

func (s *fakeStore) Append(entry *models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, *entry)
	return nil
}

func (s *fakeStore) ListByChild(childID string) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.HistoryEntry
	for _, e := range s.history {
		if e.ChildID == childID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) Health() error { return s.healthErr }

// goalStoreAdapter renames the goal methods to the goals.GoalStore shape.
type goalStoreAdapter struct{ *fakeStore }

func (a goalStoreAdapter) Create(goal *models.Goal) error          { return a.CreateGoal(goal) }
func (a goalStoreAdapter) GetByID(id string) (*models.Goal, error) { return a.GetGoalByID(id) }
func (a goalStoreAdapter) ListByChild(childID string) ([]models.Goal, error) {
	return a.ListGoalsByChild(childID)
}

func setupRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("error", "console")

	loggingService := logging.NewService(
		store, store, store, nil,
		&logging.SyncDelayer{},
		logging.Options{},
		log,
	)
	goalService := goals.NewService(goalStoreAdapter{store}, store, nil, log)
	overviewService := overview.NewService(
		store, store, goalStoreAdapter{store}, store,
		nil, time.Minute, time.UTC, log,
	)

	handler := NewHandler(loggingService, goalService, overviewService, store, store, log)
	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestGetHealth(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])

	store.healthErr = errors.New("store down")
	w, body = doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestListChildren(t *testing.T) {
	router := setupRouter(newFakeStore())

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/children", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["total"])
}

func TestAddChild(t *testing.T) {
	router := setupRouter(newFakeStore())

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/children", map[string]any{
		"name":        "Casey",
		"avatar_type": "pet",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Casey", body["name"])
	assert.Equal(t, "pet", body["avatar_type"])

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/children", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetChildOverview(t *testing.T) {
	router := setupRouter(newFakeStore())

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/children/child1/overview", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alex", body["name"])
	assert.Equal(t, "/avatars/tree/tree_stage_1.svg", body["avatar_image_path"])
	assert.Equal(t, "Day 3 Streak 🔥", body["streak_label"])

	w, body = doJSON(t, router, http.MethodGet, "/api/v1/children/ghost/overview", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestSessionFlow(t *testing.T) {
	router := setupRouter(newFakeStore())

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{"child_id": "child1"})
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID, ok := body["id"].(string)
	require.True(t, ok)
	assert.Equal(t, "category_select", body["step"])

	w, body = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/category", map[string]any{"category_id": "cat1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "activity_select", body["step"])
	assert.Equal(t, "bg-rose-100", body["background_class"])

	w, body = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/activity", map[string]any{"activity_id": "act1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmation", body["step"])
	confirmed, ok := body["confirmed"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(105), confirmed["new_balance"])
	assert.Equal(t, float64(1), confirmed["growth_stage"])

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/another", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionFlowUnknownChild(t *testing.T) {
	router := setupRouter(newFakeStore())

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{"child_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectUnknownActivity(t *testing.T) {
	router := setupRouter(newFakeStore())

	_, body := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{"child_id": "child1"})
	sessionID := body["id"].(string)
	doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/category", map[string]any{"category_id": "cat1"})

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/activity", map[string]any{"activity_id": "act-ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The workflow regresses rather than dying.
	w, body = doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "activity_select", body["step"])
}

func TestCustomActivityFlow(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)

	_, body := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{"child_id": "child1"})
	sessionID := body["id"].(string)
	doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/category", map[string]any{"category_id": "cat1"})

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/custom", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "custom_create_activity", body["step"])

	w, body = doJSON(t, router, http.MethodPut, "/api/v1/sessions/"+sessionID+"/custom", map[string]any{
		"name":  "Water the Plants",
		"icon":  "🌱",
		"coins": 15,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmation", body["step"])

	confirmed := body["confirmed"].(map[string]any)
	assert.Equal(t, "Water the Plants", confirmed["activity_name"])
	assert.Equal(t, float64(95), confirmed["new_balance"])
}

func TestCancelCustomActivity(t *testing.T) {
	store := newFakeStore()
	router := setupRouter(store)

	_, body := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{"child_id": "child1"})
	sessionID := body["id"].(string)
	doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/category", map[string]any{"category_id": "cat1"})
	doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+sessionID+"/custom", nil)

	activityCount := len(store.activities)
	w, body := doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+sessionID+"/custom", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "activity_select", body["step"])
	assert.Len(t, store.activities, activityCount)
}

func TestGoalEndpoints(t *testing.T) {
	router := setupRouter(newFakeStore())

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/goals", map[string]any{
		"child_id":     "child1",
		"description":  "New Bicycle",
		"target_coins": 500,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	goalID := body["id"].(string)

	w, body = doJSON(t, router, http.MethodGet, "/api/v1/children/child1/goals", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["total"])

	w, body = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/goals/%s/complete", goalID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["already_achieved"])

	w, body = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/goals/%s/complete", goalID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["already_achieved"])

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/goals/ghost/complete", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/goals", map[string]any{
		"child_id":     "ghost",
		"description":  "New Bicycle",
		"target_coins": 500,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCurrencyEndpoints(t *testing.T) {
	router := setupRouter(newFakeStore())

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/settings/currency", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "USD", body["code"])
	assert.Equal(t, "$", body["symbol"])

	w, body = doJSON(t, router, http.MethodPut, "/api/v1/settings/currency", map[string]any{"code": "EUR"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "€", body["symbol"])

	w, _ = doJSON(t, router, http.MethodPut, "/api/v1/settings/currency", map[string]any{"code": "DOGE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFocusEndpoints(t *testing.T) {
	router := setupRouter(newFakeStore())

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/settings/focus", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "child1", body["child_id"])

	w, _ = doJSON(t, router, http.MethodPut, "/api/v1/settings/focus", map[string]any{"child_id": "child2"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, router, http.MethodGet, "/api/v1/settings/focus", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "child2", body["child_id"])

	w, _ = doJSON(t, router, http.MethodPut, "/api/v1/settings/focus", map[string]any{"child_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTopEarners(t *testing.T) {
	router := setupRouter(newFakeStore())

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/children/top", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	earners := body["earners"].([]any)
	require.Len(t, earners, 2)
	first := earners[0].(map[string]any)
	assert.Equal(t, "Bella", first["name"])

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/children/top?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	router := setupRouter(newFakeStore())

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/categories", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["total"])

	w, body = doJSON(t, router, http.MethodGet, "/api/v1/categories/options", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	options := body["options"].([]any)
	require.Len(t, options, 1)
	assert.Equal(t, "💖 Kindness", options[0].(map[string]any)["label"])

	w, body = doJSON(t, router, http.MethodGet, "/api/v1/categories/cat1/activities", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["total"])
}
