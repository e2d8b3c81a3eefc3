// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the KindCoins dashboard service.
var (
	// Counters.
	ActivitiesLoggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_logged_total",
			Help: "Total number of activities successfully logged",
		},
		[]string{"category", "custom"},
	)

	CoinsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coins_awarded_total",
			Help: "Total coins awarded across all children",
		},
		[]string{"category"},
	)

	GrowthAdvancesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "growth_advances_total",
			Help: "Total avatar growth-stage advances",
		},
		[]string{"avatar_type"},
	)

	LoggingFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logging_failures_total",
			Help: "Total failed activity-logging attempts",
		},
		[]string{"reason"},
	)

	GoalsAddedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goals_added_total",
			Help: "Total goals created",
		},
	)

	GoalsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goals_completed_total",
			Help: "Total goals marked achieved",
		},
	)

	StreakResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_resets_total",
			Help: "Total streak resets by the daily maintenance job",
		},
	)

	// Gauges.
	ChildCoinBalance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "child_coin_balance",
			Help: "Current coin balance per child",
		},
		[]string{"child"},
	)

	ChildGrowthStage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "child_growth_stage",
			Help: "Current avatar growth stage per child",
		},
		[]string{"child"},
	)

	ActiveLoggingSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_logging_sessions",
			Help: "Current number of open activity-logging sessions",
		},
	)

	// Histograms.
	CoinsPerAward = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coins_per_award",
			Help:    "Coins earned per logged activity",
			Buckets: prometheus.LinearBuckets(5, 5, 10), // 5 to 50 coins
		},
	)

	// Scheduler metrics.
	StreakJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_jobs_run_total",
			Help: "Total streak maintenance job executions",
		},
		[]string{"status"},
	)

	StreakJobDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streak_job_duration_seconds",
			Help:    "Time taken to execute the streak maintenance job",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
	)
)

// RecordActivityLogged records a successful activity logging.
func RecordActivityLogged(category string, custom bool) {
	customLabel := "false"
	if custom {
		customLabel = "true"
	}
	ActivitiesLoggedTotal.WithLabelValues(category, customLabel).Inc()
}

// RecordCoinsAwarded records coins credited for a category.
func RecordCoinsAwarded(category string, coins int) {
	CoinsAwardedTotal.WithLabelValues(category).Add(float64(coins))
	CoinsPerAward.Observe(float64(coins))
}

// RecordGrowthAdvance records an avatar stage advance.
func RecordGrowthAdvance(avatarType string) {
	GrowthAdvancesTotal.WithLabelValues(avatarType).Inc()
}

// RecordLoggingFailure records a failed logging attempt by reason.
func RecordLoggingFailure(reason string) {
	LoggingFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordGoalAdded records a goal creation.
func RecordGoalAdded() {
	GoalsAddedTotal.Inc()
}

// RecordGoalCompleted records a goal achievement.
func RecordGoalCompleted() {
	GoalsCompletedTotal.Inc()
}

// RecordStreakReset records a streak reset.
func RecordStreakReset() {
	StreakResetsTotal.Inc()
}

// SetChildBalance sets the coin balance gauge for a child.
func SetChildBalance(childName string, balance int) {
	ChildCoinBalance.WithLabelValues(childName).Set(float64(balance))
}

// SetChildGrowthStage sets the growth stage gauge for a child.
func SetChildGrowthStage(childName string, stage int) {
	ChildGrowthStage.WithLabelValues(childName).Set(float64(stage))
}

// SetActiveSessions sets the number of open logging sessions.
func SetActiveSessions(count int) {
	ActiveLoggingSessions.Set(float64(count))
}

// RecordStreakJobRun records a streak maintenance job execution.
func RecordStreakJobRun(status string) {
	StreakJobsRunTotal.WithLabelValues(status).Inc()
}

// ObserveStreakJobDuration observes the duration of a streak job.
func ObserveStreakJobDuration(seconds float64) {
	StreakJobDurationSeconds.Observe(seconds)
}
