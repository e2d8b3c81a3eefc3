package repository

import (
	"testing"
	"time"

	"github.com/kindcoins/kindcoins/internal/models"
)

func setupHistoryTest(t *testing.T) (*HistoryRepository, *ChildRepository) {
	t.Helper()
	db := setupChildTestDB(t)
	return NewHistoryRepository(db), NewChildRepository(db)
}

func appendTestEntry(t *testing.T, repo *HistoryRepository, id, childID string, coins int, ts time.Time) {
	t.Helper()

	entry := &models.HistoryEntry{
		ID:           id,
		ChildID:      childID,
		ActivityName: "Help a Sibling",
		CategoryName: models.CategoryKindness,
		CategoryIcon: "💖",
		CoinsEarned:  coins,
		Timestamp:    ts,
	}
	if err := repo.Append(entry); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
}

func TestHistoryRepository_AppendAndList(t *testing.T) {
	historyRepo, childRepo := setupHistoryTest(t)
	createTestChild(t, childRepo, "child1", "Alex", 150)

	now := time.Now().UTC()
	appendTestEntry(t, historyRepo, "hist1", "child1", 25, now.Add(-2*time.Hour))
	appendTestEntry(t, historyRepo, "hist2", "child1", 10, now)
	appendTestEntry(t, historyRepo, "hist3", "child1", 5, now.Add(-1*time.Hour))

	entries, err := historyRepo.ListByChild("child1")
	if err != nil {
		t.Fatalf("ListByChild() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("ListByChild() returned %d entries, want 3", len(entries))
	}

	// Newest first.
	if entries[0].ID != "hist2" || entries[2].ID != "hist1" {
		t.Errorf("order = %s, %s, %s", entries[0].ID, entries[1].ID, entries[2].ID)
	}
}

func TestHistoryRepository_AppendRejectsUnknownChild(t *testing.T) {
	historyRepo, _ := setupHistoryTest(t)

	entry := &models.HistoryEntry{
		ID:           "hist1",
		ChildID:      "ghost",
		ActivityName: "Help a Sibling",
		CategoryName: models.CategoryKindness,
		CoinsEarned:  25,
		Timestamp:    time.Now().UTC(),
	}
	if err := historyRepo.Append(entry); err == nil {
		t.Fatal("Append() should fail when the child does not exist")
	}
}

func TestHistoryRepository_HasEntryBetween(t *testing.T) {
	historyRepo, childRepo := setupHistoryTest(t)
	createTestChild(t, childRepo, "child1", "Alex", 150)

	dayStart := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	nextDay := dayStart.AddDate(0, 0, 1)
	appendTestEntry(t, historyRepo, "hist1", "child1", 25, dayStart.Add(15*time.Hour))

	active, err := historyRepo.HasEntryBetween("child1", dayStart, nextDay)
	if err != nil {
		t.Fatalf("HasEntryBetween() error = %v", err)
	}
	if !active {
		t.Error("entry inside the window should count")
	}

	active, err = historyRepo.HasEntryBetween("child1", nextDay, nextDay.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("HasEntryBetween() error = %v", err)
	}
	if active {
		t.Error("window after the entry should be empty")
	}

	// The window is half-open: an entry exactly at the upper bound is out.
	active, err = historyRepo.HasEntryBetween("child1", dayStart.Add(-24*time.Hour), dayStart.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("HasEntryBetween() error = %v", err)
	}
	if active {
		t.Error("entry at the exclusive upper bound should not count")
	}
}

func TestHistoryRepository_Counts(t *testing.T) {
	historyRepo, childRepo := setupHistoryTest(t)
	createTestChild(t, childRepo, "child1", "Alex", 150)
	createTestChild(t, childRepo, "child2", "Bella", 450)

	now := time.Now().UTC()
	appendTestEntry(t, historyRepo, "hist1", "child1", 25, now)
	appendTestEntry(t, historyRepo, "hist2", "child2", 10, now)
	appendTestEntry(t, historyRepo, "hist3", "child1", 5, now)

	total, err := historyRepo.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 3 {
		t.Errorf("Count() = %d, want 3", total)
	}

	perChild, err := historyRepo.CountByChild("child1")
	if err != nil {
		t.Fatalf("CountByChild() error = %v", err)
	}
	if perChild != 2 {
		t.Errorf("CountByChild() = %d, want 2", perChild)
	}
}
