package gamification

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateReward_Table(t *testing.T) {
	cases := []struct {
		difficulty Difficulty
		late       Reward
		onTime     Reward
	}{
		{DifficultyEasy, Reward{XP: 10, Coins: 5}, Reward{XP: 12, Coins: 5}},
		{DifficultyMedium, Reward{XP: 20, Coins: 10}, Reward{XP: 24, Coins: 10}},
		{DifficultyHard, Reward{XP: 40, Coins: 20}, Reward{XP: 48, Coins: 20}},
		{DifficultyEpic, Reward{XP: 80, Coins: 40}, Reward{XP: 96, Coins: 40}},
	}

	for _, tc := range cases {
		t.Run(string(tc.difficulty), func(t *testing.T) {
			assert.Equal(t, tc.late, CalculateReward(tc.difficulty, false))
			assert.Equal(t, tc.onTime, CalculateReward(tc.difficulty, true))
		})
	}
}

func TestCalculateReward_OnTimeBonusOnlyAffectsXP(t *testing.T) {
	for _, d := range Difficulties {
		late := CalculateReward(d, false)
		onTime := CalculateReward(d, true)

		assert.Equal(t, int(math.Round(float64(late.XP)*1.2)), onTime.XP, d)
		assert.Equal(t, late.Coins, onTime.Coins, d)
		assert.Equal(t, BaseReward(d), late, d)
	}
}

func TestDifficultyRankIsOrderedByReward(t *testing.T) {
	for i := 1; i < len(Difficulties); i++ {
		prev, cur := Difficulties[i-1], Difficulties[i]
		assert.Less(t, prev.Rank(), cur.Rank())
		assert.Less(t, BaseReward(prev).XP, BaseReward(cur).XP)
	}
	assert.Equal(t, 0, Difficulty("legendary").Rank())
}

func TestIsOnTime(t *testing.T) {
	due := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	assert.True(t, IsOnTime(due.Add(-time.Hour), &due))
	assert.True(t, IsOnTime(due, &due))
	assert.False(t, IsOnTime(due.Add(time.Second), &due))
	assert.True(t, IsOnTime(due.AddDate(1, 0, 0), nil), "no due date is always on time")
}

func TestParseDifficultyAndCategory(t *testing.T) {
	d, err := ParseDifficulty(" Hard ")
	require.NoError(t, err)
	assert.Equal(t, DifficultyHard, d)

	_, err = ParseDifficulty("legendary")
	assert.Error(t, err)

	c, err := ParseCategory("LEARNING")
	require.NoError(t, err)
	assert.Equal(t, CategoryLearning, c)

	_, err = ParseCategory("hobby")
	assert.Error(t, err)
}

func TestLevelForXP(t *testing.T) {
	cases := map[int]int{0: 1, 99: 1, 100: 2, 250: 3, 1000: 11, -5: 1}
	for xp, want := range cases {
		assert.Equal(t, want, LevelForXP(xp), "xp=%d", xp)
	}

	assert.Equal(t, 100, XPToNextLevel(0))
	assert.Equal(t, 1, XPToNextLevel(99))
	assert.Equal(t, 100, XPToNextLevel(100))
	assert.Equal(t, 50, XPToNextLevel(250))

	p := ProgressForXP(250)
	assert.Equal(t, LevelProgress{Level: 3, XP: 250, XPIntoLevel: 50, XPToNextLevel: 50}, p)
}

func TestCalculateStreak(t *testing.T) {
	today := time.Date(2026, 5, 20, 15, 30, 0, 0, time.UTC)
	day := func(offset int) time.Time { return today.AddDate(0, 0, -offset) }

	stats := CalculateStreak([]time.Time{day(0), day(1), day(2), day(5)}, today)
	assert.Equal(t, StreakStats{CurrentStreak: 3, LongestStreak: 3, TotalActiveDays: 4}, stats)
}

func TestCalculateStreak_MultipleCompletionsPerDay(t *testing.T) {
	today := time.Date(2026, 5, 20, 23, 0, 0, 0, time.UTC)
	morning := time.Date(2026, 5, 20, 8, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 5, 19, 12, 0, 0, 0, time.UTC)

	stats := CalculateStreak([]time.Time{morning, today, yesterday, yesterday}, today)
	assert.Equal(t, StreakStats{CurrentStreak: 2, LongestStreak: 2, TotalActiveDays: 2}, stats)
}

func TestCalculateStreak_NoActivityToday(t *testing.T) {
	today := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	completions := []time.Time{
		today.AddDate(0, 0, -1),
		today.AddDate(0, 0, -10),
		today.AddDate(0, 0, -11),
		today.AddDate(0, 0, -12),
		today.AddDate(0, 0, -13),
	}

	stats := CalculateStreak(completions, today)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 4, stats.LongestStreak)
	assert.Equal(t, 5, stats.TotalActiveDays)

	assert.Equal(t, StreakStats{}, CalculateStreak(nil, today))
}

func TestCalculateStreak_UsesTodayLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	today := time.Date(2026, 5, 20, 7, 0, 0, 0, tokyo)
	// 2026-05-19 23:00 UTC is 2026-05-20 08:00 in Tokyo.
	completion := time.Date(2026, 5, 19, 23, 0, 0, 0, time.UTC)

	stats := CalculateStreak([]time.Time{completion}, today)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestCalculateStreak_AcrossMonthBoundary(t *testing.T) {
	today := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	completions := []time.Time{
		time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC),
		today,
	}

	stats := CalculateStreak(completions, today)
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, 3, stats.LongestStreak)
}

func TestNextStreakCount(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	sameDay := time.Date(2026, 5, 20, 1, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 5, 19, 23, 59, 0, 0, time.UTC)
	lastWeek := time.Date(2026, 5, 13, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, NextStreakCount(0, nil, now))
	assert.Equal(t, 4, NextStreakCount(4, &sameDay, now))
	assert.Equal(t, 5, NextStreakCount(4, &yesterday, now))
	assert.Equal(t, 1, NextStreakCount(4, &lastWeek, now))
	assert.Equal(t, 1, NextStreakCount(0, &sameDay, now))
}

func TestNextOccurrence(t *testing.T) {
	from := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)

	next, err := NextOccurrence(from, RecurringDaily)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), next)

	next, err = NextOccurrence(from, RecurringWeekly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC), next)

	next, err = NextOccurrence(from, RecurringMonthly)
	require.NoError(t, err)
	assert.Equal(t, from.AddDate(0, 1, 0), next)

	_, err = NextOccurrence(from, RecurringType("yearly"))
	assert.Error(t, err)
}

func TestAchievementCriteria_AtLeast(t *testing.T) {
	first, ok := LookupAchievement(AchievementFirstTodo)
	require.True(t, ok)
	five, ok := LookupAchievement(AchievementGettingStarted)
	require.True(t, ok)

	assert.False(t, first.IsSatisfied(Metrics{CompletedTasks: 0}, ThresholdAtLeast))
	assert.True(t, first.IsSatisfied(Metrics{CompletedTasks: 1}, ThresholdAtLeast))
	assert.True(t, first.IsSatisfied(Metrics{CompletedTasks: 7}, ThresholdAtLeast))
	assert.True(t, five.IsSatisfied(Metrics{CompletedTasks: 6}, ThresholdAtLeast))
}

func TestAchievementCriteria_ExactNeverRetroactive(t *testing.T) {
	five, ok := LookupAchievement(AchievementGettingStarted)
	require.True(t, ok)

	assert.True(t, five.IsSatisfied(Metrics{CompletedTasks: 5}, ThresholdExact))
	assert.False(t, five.IsSatisfied(Metrics{CompletedTasks: 6}, ThresholdExact))
}

func TestSatisfied_UsesEveryMetric(t *testing.T) {
	kinds := func(defs []AchievementDefinition) []AchievementKind {
		out := make([]AchievementKind, 0, len(defs))
		for _, d := range defs {
			out = append(out, d.Kind)
		}
		return out
	}

	got := kinds(Satisfied(Metrics{CompletedTasks: 5, StreakDays: 7, Level: 5}, ThresholdAtLeast))
	assert.ElementsMatch(t, []AchievementKind{
		AchievementFirstTodo, AchievementGettingStarted, AchievementWeekWarrior, AchievementRisingStar,
	}, got)

	got = kinds(Satisfied(Metrics{CompletedTasks: 5, StreakDays: 8, Level: 4}, ThresholdExact))
	assert.Equal(t, []AchievementKind{AchievementGettingStarted}, got)
}

func TestCatalogIsCopied(t *testing.T) {
	c := Catalog()
	require.NotEmpty(t, c)
	c[0].Title = "changed"

	first, _ := LookupAchievement(c[0].Kind)
	assert.Equal(t, "First Steps", first.Title)

	for _, d := range Catalog() {
		assert.True(t, d.Kind.IsValid())
		assert.Positive(t, d.Criterion.Threshold)
		assert.Positive(t, d.Bonus.XP)
	}
	assert.False(t, AchievementKind("unknown").IsValid())
}

func TestParseThresholdPolicy(t *testing.T) {
	p, err := ParseThresholdPolicy("EXACT")
	require.NoError(t, err)
	assert.Equal(t, ThresholdExact, p)

	_, err = ParseThresholdPolicy("sometimes")
	assert.Error(t, err)
}
