package repository

import (
	"testing"

	"github.com/kindcoins/kindcoins/internal/models"
)

func setupCatalogTest(t *testing.T) *CatalogRepository {
	t.Helper()
	return NewCatalogRepository(setupChildTestDB(t))
}

func createTestCategory(t *testing.T, repo *CatalogRepository, id string, name models.CategoryName) {
	t.Helper()

	category := &models.Category{
		ID:              id,
		Name:            name,
		Icon:            "💖",
		BackgroundClass: "bg-rose-100",
	}
	if err := repo.CreateCategory(category); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
}

func TestCatalogRepository_Categories(t *testing.T) {
	repo := setupCatalogTest(t)

	createTestCategory(t, repo, "cat1", models.CategoryKindness)
	createTestCategory(t, repo, "cat2", models.CategoryChores)

	got, err := repo.GetCategoryByID("cat1")
	if err != nil {
		t.Fatalf("GetCategoryByID() error = %v", err)
	}
	if got.Name != models.CategoryKindness {
		t.Errorf("Name = %q, want Kindness", got.Name)
	}

	categories, err := repo.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 2 {
		t.Errorf("ListCategories() returned %d, want 2", len(categories))
	}
}

func TestCatalogRepository_Activities(t *testing.T) {
	repo := setupCatalogTest(t)
	createTestCategory(t, repo, "cat1", models.CategoryKindness)
	createTestCategory(t, repo, "cat2", models.CategoryChores)

	for _, a := range []*models.Activity{
		{ID: "act1", Name: "Help a Sibling", CategoryID: "cat1", Icon: "🤝", Coins: 25},
		{ID: "act2", Name: "Make the Bed", CategoryID: "cat2", Icon: "🛏️", Coins: 10},
		{ID: "act3", Name: "Share a Toy", CategoryID: "cat1", Icon: "🧸", Coins: 15},
	} {
		if err := repo.CreateActivity(a); err != nil {
			t.Fatalf("CreateActivity(%s) error = %v", a.ID, err)
		}
	}

	activities, err := repo.ListActivitiesByCategory("cat1")
	if err != nil {
		t.Fatalf("ListActivitiesByCategory() error = %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("ListActivitiesByCategory() returned %d, want 2", len(activities))
	}
	for _, a := range activities {
		if a.CategoryID != "cat1" {
			t.Errorf("activity %s in category %s", a.ID, a.CategoryID)
		}
	}

	got, err := repo.GetActivityByID("act2")
	if err != nil {
		t.Fatalf("GetActivityByID() error = %v", err)
	}
	if got.Coins != 10 {
		t.Errorf("Coins = %d, want 10", got.Coins)
	}
}

func TestCatalogRepository_ActivityRejectsUnknownCategory(t *testing.T) {
	repo := setupCatalogTest(t)

	activity := &models.Activity{
		ID:         "act1",
		Name:       "Help a Sibling",
		CategoryID: "cat-ghost",
		Coins:      25,
	}
	if err := repo.CreateActivity(activity); err == nil {
		t.Fatal("CreateActivity() should fail when the category does not exist")
	}
}

func TestCatalogRepository_Counts(t *testing.T) {
	repo := setupCatalogTest(t)
	createTestCategory(t, repo, "cat1", models.CategoryKindness)

	if err := repo.CreateActivity(&models.Activity{ID: "act1", Name: "Help a Sibling", CategoryID: "cat1", Coins: 25}); err != nil {
		t.Fatalf("CreateActivity() error = %v", err)
	}

	catCount, err := repo.CountCategories()
	if err != nil {
		t.Fatalf("CountCategories() error = %v", err)
	}
	actCount, err := repo.CountActivities()
	if err != nil {
		t.Fatalf("CountActivities() error = %v", err)
	}
	if catCount != 1 || actCount != 1 {
		t.Errorf("counts = %d categories, %d activities", catCount, actCount)
	}
}
