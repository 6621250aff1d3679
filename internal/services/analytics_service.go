package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/repository"
)

var ErrInvalidRange = errors.New("range must be one of 7d, 30d, 90d, 1y")

// analyticsRanges maps the accepted range keys to a number of days.
var analyticsRanges = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"1y":  365,
}

const DefaultAnalyticsRange = "7d"

// AnalyticsService computes productivity statistics over a user's tasks.
type AnalyticsService struct {
	taskRepo repository.TaskRepository
	location *time.Location
	now      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(taskRepo repository.TaskRepository) *AnalyticsService {
	return &AnalyticsService{
		taskRepo: taskRepo,
		location: time.UTC,
		now:      time.Now,
	}
}

// SetClock replaces the time source (used for testing)
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// SetLocation sets the time zone calendar days are counted in
func (s *AnalyticsService) SetLocation(loc *time.Location) {
	if loc != nil {
		s.location = loc
	}
}

type DailyStats struct {
	Date           string `json:"date"`
	Total          int    `json:"total"`
	Completed      int    `json:"completed"`
	XPEarned       int    `json:"xp_earned"`
	CompletionRate int    `json:"completion_rate"`
}

type CategoryStats struct {
	Category       gamification.Category `json:"category"`
	Count          int                   `json:"count"`
	CompletedCount int                   `json:"completed_count"`
	CompletionRate int                   `json:"completion_rate"`
	XP             int                   `json:"xp"`
}

type WeekdayStats struct {
	Day            string `json:"day"`
	DayIndex       int    `json:"day_index"`
	Total          int    `json:"total"`
	Completed      int    `json:"completed"`
	CompletionRate int    `json:"completion_rate"`
}

// Summary aggregates the tasks created within a range.
type Summary struct {
	Range          string                   `json:"range"`
	From           time.Time                `json:"from"`
	To             time.Time                `json:"to"`
	TotalTasks     int                      `json:"total_tasks"`
	CompletedTasks int                      `json:"completed_tasks"`
	XPEarned       int                      `json:"xp_earned"`
	CompletionRate int                      `json:"completion_rate"`
	Daily          []DailyStats             `json:"daily"`
	Categories     []CategoryStats          `json:"categories"`
	Weekdays       []WeekdayStats           `json:"weekdays"`
	Streak         gamification.StreakStats `json:"streak"`
}

// Streak returns the streak statistics over every completed task of a user
func (s *AnalyticsService) Streak(ctx context.Context, userID uint64) (gamification.StreakStats, error) {
	completions, err := s.taskRepo.ListCompletionTimes(ctx, userID)
	if err != nil {
		return gamification.StreakStats{}, fmt.Errorf("failed to list completions: %w", err)
	}

	return gamification.CalculateStreak(completions, s.now().In(s.location)), nil
}

// Summary computes the productivity summary for rangeKey
func (s *AnalyticsService) Summary(ctx context.Context, userID uint64, rangeKey string) (*Summary, error) {
	if rangeKey == "" {
		rangeKey = DefaultAnalyticsRange
	}
	days, ok := analyticsRanges[rangeKey]
	if !ok {
		return nil, ErrInvalidRange
	}

	now := s.now().In(s.location)
	from := now.AddDate(0, 0, -days)

	tasks, err := s.taskRepo.ListCreatedSince(ctx, userID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	streak, err := s.Streak(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Range:      rangeKey,
		From:       from,
		To:         now,
		Daily:      s.daily(tasks, from, now),
		Categories: categoryStats(tasks),
		Weekdays:   s.weekdayStats(tasks),
		Streak:     streak,
	}

	for _, t := range tasks {
		summary.TotalTasks++
		if t.Completed {
			summary.CompletedTasks++
			summary.XPEarned += t.XPReward
		}
	}
	summary.CompletionRate = percentage(summary.CompletedTasks, summary.TotalTasks)

	return summary, nil
}

func (s *AnalyticsService) daily(tasks []models.Task, from, to time.Time) []DailyStats {
	const layout = "2006-01-02"

	index := make(map[string]int)
	var stats []DailyStats
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.location)
	for day := start; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(layout)
		index[key] = len(stats)
		stats = append(stats, DailyStats{Date: key})
	}

	for _, t := range tasks {
		i, ok := index[t.CreatedAt.In(s.location).Format(layout)]
		if !ok {
			continue
		}
		stats[i].Total++
		if t.Completed {
			stats[i].Completed++
			stats[i].XPEarned += t.XPReward
		}
	}

	for i := range stats {
		stats[i].CompletionRate = percentage(stats[i].Completed, stats[i].Total)
	}
	return stats
}

// categoryStats returns one entry per category that has tasks.
func categoryStats(tasks []models.Task) []CategoryStats {
	byCategory := make(map[gamification.Category]*CategoryStats)
	for _, t := range tasks {
		st, ok := byCategory[t.Category]
		if !ok {
			st = &CategoryStats{Category: t.Category}
			byCategory[t.Category] = st
		}
		st.Count++
		if t.Completed {
			st.CompletedCount++
			st.XP += t.XPReward
		}
	}

	stats := make([]CategoryStats, 0, len(byCategory))
	for _, c := range gamification.Categories {
		st, ok := byCategory[c]
		if !ok {
			continue
		}
		st.CompletionRate = percentage(st.CompletedCount, st.Count)
		stats = append(stats, *st)
	}
	return stats
}

func (s *AnalyticsService) weekdayStats(tasks []models.Task) []WeekdayStats {
	stats := make([]WeekdayStats, 7)
	for i := range stats {
		stats[i] = WeekdayStats{Day: time.Weekday(i).String(), DayIndex: i}
	}

	for _, t := range tasks {
		wd := int(t.CreatedAt.In(s.location).Weekday())
		stats[wd].Total++
		if t.Completed {
			stats[wd].Completed++
		}
	}

	for i := range stats {
		stats[i].CompletionRate = percentage(stats[i].Completed, stats[i].Total)
	}
	return stats
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part*100 + total/2) / total
}
