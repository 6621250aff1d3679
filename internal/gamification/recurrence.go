package gamification

import (
	"fmt"
	"strings"
	"time"
)

type RecurringType string

const (
	RecurringDaily   RecurringType = "daily"
	RecurringWeekly  RecurringType = "weekly"
	RecurringMonthly RecurringType = "monthly"
)

func (r RecurringType) IsValid() bool {
	switch r {
	case RecurringDaily, RecurringWeekly, RecurringMonthly:
		return true
	default:
		return false
	}
}

func ParseRecurringType(input string) (RecurringType, error) {
	r := RecurringType(strings.TrimSpace(strings.ToLower(input)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid recurring type: %q", input)
	}
	return r, nil
}

// NextOccurrence advances from by one recurrence period.
func NextOccurrence(from time.Time, r RecurringType) (time.Time, error) {
	switch r {
	case RecurringDaily:
		return from.AddDate(0, 0, 1), nil
	case RecurringWeekly:
		return from.AddDate(0, 0, 7), nil
	case RecurringMonthly:
		return from.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, fmt.Errorf("invalid recurring type: %q", r)
	}
}
