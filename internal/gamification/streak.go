package gamification

import (
	"sort"
	"time"
)

// StreakStats summarises consecutive days with at least one completed task.
type StreakStats struct {
	CurrentStreak   int `json:"current_streak"`
	LongestStreak   int `json:"longest_streak"`
	TotalActiveDays int `json:"total_active_days"`
}

// civilDay maps t to midnight UTC of its calendar day in loc, so that day
// arithmetic is not affected by DST transitions.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalculateStreak derives streak statistics from completion timestamps.
// Days are calendar days in today's location. The current streak counts back
// from today and is zero when nothing was completed today.
func CalculateStreak(completions []time.Time, today time.Time) StreakStats {
	loc := today.Location()

	active := make(map[time.Time]struct{}, len(completions))
	for _, c := range completions {
		active[civilDay(c, loc)] = struct{}{}
	}

	stats := StreakStats{TotalActiveDays: len(active)}
	if len(active) == 0 {
		return stats
	}

	for day := civilDay(today, loc); ; day = day.AddDate(0, 0, -1) {
		if _, ok := active[day]; !ok {
			break
		}
		stats.CurrentStreak++
	}

	days := make([]time.Time, 0, len(active))
	for d := range active {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 0
	for i, d := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > stats.LongestStreak {
			stats.LongestStreak = run
		}
	}

	return stats
}

// NextStreakCount returns the profile streak after an activity at now.
// Activity on the same day keeps the streak, activity on the following day
// extends it, anything else restarts it at 1.
func NextStreakCount(current int, lastActivity *time.Time, now time.Time) int {
	if lastActivity == nil || current <= 0 {
		return 1
	}
	loc := now.Location()
	last := civilDay(*lastActivity, loc)
	today := civilDay(now, loc)

	switch {
	case last.Equal(today):
		return current
	case last.AddDate(0, 0, 1).Equal(today):
		return current + 1
	default:
		return 1
	}
}
