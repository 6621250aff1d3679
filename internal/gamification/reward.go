// Package gamification holds the pure reward, level, streak and achievement rules.
// Nothing in here touches storage.
package gamification

import (
	"math"
	"time"
)

// OnTimeXPMultiplier is applied to the base XP when a task is completed by its due date.
const OnTimeXPMultiplier = 1.2

// Reward is an XP and coin grant.
type Reward struct {
	XP    int `json:"xp"`
	Coins int `json:"coins"`
}

func (r Reward) Add(other Reward) Reward {
	return Reward{XP: r.XP + other.XP, Coins: r.Coins + other.Coins}
}

var baseRewards = map[Difficulty]Reward{
	DifficultyEasy:   {XP: 10, Coins: 5},
	DifficultyMedium: {XP: 20, Coins: 10},
	DifficultyHard:   {XP: 40, Coins: 20},
	DifficultyEpic:   {XP: 80, Coins: 40},
}

// BaseReward returns the reward stored on a task of the given difficulty.
// Unknown difficulties yield a zero reward.
func BaseReward(d Difficulty) Reward {
	return baseRewards[d]
}

// CalculateReward returns the reward granted for completing a task.
// On-time completion multiplies XP by OnTimeXPMultiplier, rounded to the nearest
// integer. Coins do not depend on timeliness.
func CalculateReward(d Difficulty, onTime bool) Reward {
	r := BaseReward(d)
	if onTime {
		r.XP = int(math.Round(float64(r.XP) * OnTimeXPMultiplier))
	}
	return r
}

// IsOnTime reports whether a completion at completedAt meets dueDate.
// Tasks without a due date are always on time.
func IsOnTime(completedAt time.Time, dueDate *time.Time) bool {
	if dueDate == nil {
		return true
	}
	return !completedAt.After(*dueDate)
}
