package gamification

import (
	"fmt"
	"strings"
)

type AchievementKind string

const (
	AchievementFirstTodo      AchievementKind = "first_todo"
	AchievementGettingStarted AchievementKind = "getting_started"
	AchievementTaskMaster     AchievementKind = "task_master"
	AchievementWeekWarrior    AchievementKind = "week_warrior"
	AchievementRisingStar     AchievementKind = "rising_star"
)

// Metric is the user statistic an achievement criterion is evaluated against.
type Metric string

const (
	MetricCompletedTasks Metric = "completed_tasks"
	MetricStreakDays     Metric = "streak_days"
	MetricLevel          Metric = "level"
)

// ThresholdPolicy decides how a metric is compared against a criterion threshold.
type ThresholdPolicy string

const (
	// ThresholdAtLeast unlocks once the metric reaches the threshold, including
	// when the exact value was skipped.
	ThresholdAtLeast ThresholdPolicy = "at_least"
	// ThresholdExact unlocks only when the metric is observed equal to the
	// threshold. A skipped value means the achievement is never granted.
	ThresholdExact ThresholdPolicy = "exact"
)

func (p ThresholdPolicy) IsValid() bool {
	return p == ThresholdAtLeast || p == ThresholdExact
}

func ParseThresholdPolicy(input string) (ThresholdPolicy, error) {
	p := ThresholdPolicy(strings.TrimSpace(strings.ToLower(input)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid threshold policy: %q", input)
	}
	return p, nil
}

// Criterion is an unlock condition over a single metric.
type Criterion struct {
	Metric    Metric `json:"metric"`
	Threshold int    `json:"threshold"`
}

// Metrics is a snapshot of the statistics achievements are checked against.
type Metrics struct {
	CompletedTasks int
	StreakDays     int
	Level          int
}

func (m Metrics) value(metric Metric) int {
	switch metric {
	case MetricCompletedTasks:
		return m.CompletedTasks
	case MetricStreakDays:
		return m.StreakDays
	case MetricLevel:
		return m.Level
	default:
		return 0
	}
}

// AchievementDefinition is a catalog entry.
type AchievementDefinition struct {
	Kind        AchievementKind `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Category    string          `json:"category"`
	Criterion   Criterion       `json:"criterion"`
	Bonus       Reward          `json:"bonus"`
}

// IsSatisfied checks the definition's criterion against m under policy.
func (d AchievementDefinition) IsSatisfied(m Metrics, policy ThresholdPolicy) bool {
	v := m.value(d.Criterion.Metric)
	if policy == ThresholdExact {
		return v == d.Criterion.Threshold
	}
	return v >= d.Criterion.Threshold
}

var catalog = []AchievementDefinition{
	{
		Kind:        AchievementFirstTodo,
		Title:       "First Steps",
		Description: "Completed your first todo!",
		Icon:        "🎯",
		Category:    "completion",
		Criterion:   Criterion{Metric: MetricCompletedTasks, Threshold: 1},
		Bonus:       Reward{XP: 10, Coins: 5},
	},
	{
		Kind:        AchievementGettingStarted,
		Title:       "Getting Started",
		Description: "Completed 5 todos!",
		Icon:        "🚀",
		Category:    "completion",
		Criterion:   Criterion{Metric: MetricCompletedTasks, Threshold: 5},
		Bonus:       Reward{XP: 25, Coins: 15},
	},
	{
		Kind:        AchievementTaskMaster,
		Title:       "Task Master",
		Description: "Completed 50 todos!",
		Icon:        "🏆",
		Category:    "completion",
		Criterion:   Criterion{Metric: MetricCompletedTasks, Threshold: 50},
		Bonus:       Reward{XP: 100, Coins: 50},
	},
	{
		Kind:        AchievementWeekWarrior,
		Title:       "Week Warrior",
		Description: "Completed todos 7 days in a row!",
		Icon:        "🔥",
		Category:    "streak",
		Criterion:   Criterion{Metric: MetricStreakDays, Threshold: 7},
		Bonus:       Reward{XP: 50, Coins: 25},
	},
	{
		Kind:        AchievementRisingStar,
		Title:       "Rising Star",
		Description: "Reached level 5!",
		Icon:        "⭐",
		Category:    "level",
		Criterion:   Criterion{Metric: MetricLevel, Threshold: 5},
		Bonus:       Reward{XP: 50, Coins: 25},
	},
}

// Catalog returns a copy of every achievement definition in display order.
func Catalog() []AchievementDefinition {
	out := make([]AchievementDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// LookupAchievement returns the definition for kind.
func LookupAchievement(kind AchievementKind) (AchievementDefinition, bool) {
	for _, d := range catalog {
		if d.Kind == kind {
			return d, true
		}
	}
	return AchievementDefinition{}, false
}

func (k AchievementKind) IsValid() bool {
	_, ok := LookupAchievement(k)
	return ok
}

// Satisfied returns the definitions whose criteria hold for m under policy.
func Satisfied(m Metrics, policy ThresholdPolicy) []AchievementDefinition {
	var out []AchievementDefinition
	for _, d := range catalog {
		if d.IsSatisfied(m, policy) {
			out = append(out, d)
		}
	}
	return out
}
