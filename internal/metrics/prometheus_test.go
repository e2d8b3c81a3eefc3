package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordActivityLogged(t *testing.T) {
	ActivitiesLoggedTotal.Reset()

	RecordActivityLogged("Chores", false)
	RecordActivityLogged("Chores", false)
	RecordActivityLogged("Kindness", true)

	count := testutil.ToFloat64(ActivitiesLoggedTotal.WithLabelValues("Chores", "false"))
	if count != 2 {
		t.Errorf("Expected Chores count = 2, got %f", count)
	}

	count = testutil.ToFloat64(ActivitiesLoggedTotal.WithLabelValues("Kindness", "true"))
	if count != 1 {
		t.Errorf("Expected custom Kindness count = 1, got %f", count)
	}
}

func TestRecordCoinsAwarded(t *testing.T) {
	CoinsAwardedTotal.Reset()

	RecordCoinsAwarded("Chores", 20)
	RecordCoinsAwarded("Chores", 5)

	total := testutil.ToFloat64(CoinsAwardedTotal.WithLabelValues("Chores"))
	if total != 25 {
		t.Errorf("Expected Chores coins = 25, got %f", total)
	}
}

func TestRecordGrowthAdvance(t *testing.T) {
	GrowthAdvancesTotal.Reset()

	RecordGrowthAdvance("tree")
	RecordGrowthAdvance("tree")
	RecordGrowthAdvance("rocket")

	count := testutil.ToFloat64(GrowthAdvancesTotal.WithLabelValues("tree"))
	if count != 2 {
		t.Errorf("Expected tree advances = 2, got %f", count)
	}
}

func TestRecordLoggingFailure(t *testing.T) {
	LoggingFailuresTotal.Reset()

	RecordLoggingFailure("activity_not_found")
	RecordLoggingFailure("activity_not_found")

	count := testutil.ToFloat64(LoggingFailuresTotal.WithLabelValues("activity_not_found"))
	if count != 2 {
		t.Errorf("Expected failure count = 2, got %f", count)
	}
}

func TestSetChildBalance(t *testing.T) {
	SetChildBalance("Alex", 150)
	SetChildBalance("Bella", 450)

	balance := testutil.ToFloat64(ChildCoinBalance.WithLabelValues("Alex"))
	if balance != 150 {
		t.Errorf("Expected Alex balance = 150, got %f", balance)
	}

	balance = testutil.ToFloat64(ChildCoinBalance.WithLabelValues("Bella"))
	if balance != 450 {
		t.Errorf("Expected Bella balance = 450, got %f", balance)
	}
}

func TestSetActiveSessions(t *testing.T) {
	SetActiveSessions(3)

	count := testutil.ToFloat64(ActiveLoggingSessions)
	if count != 3 {
		t.Errorf("Expected active sessions = 3, got %f", count)
	}
}

func TestRecordStreakJobRun(t *testing.T) {
	StreakJobsRunTotal.Reset()

	RecordStreakJobRun("success")
	RecordStreakJobRun("error")
	RecordStreakJobRun("success")

	count := testutil.ToFloat64(StreakJobsRunTotal.WithLabelValues("success"))
	if count != 2 {
		t.Errorf("Expected success runs = 2, got %f", count)
	}
}
