package dto

import (
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/services"
)

// ProfileDTO represents the gamification state of a user
type ProfileDTO struct {
	UserID           uint64     `json:"user_id"`
	Username         string     `json:"username"`
	Level            int        `json:"level"`
	XP               int        `json:"xp"`
	Coins            int        `json:"coins"`
	StreakCount      int        `json:"streak_count"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	XPIntoLevel      int        `json:"xp_into_level"`
	XPToNextLevel    int        `json:"xp_to_next_level"`
}

// AchievementDTO represents an earned achievement
type AchievementDTO struct {
	Kind      gamification.AchievementKind `json:"kind"`
	Title     string                       `json:"title"`
	Icon      string                       `json:"icon"`
	XPBonus   int                          `json:"xp_bonus"`
	CoinBonus int                          `json:"coin_bonus"`
	EarnedAt  time.Time                    `json:"earned_at"`
}

// AchievementStatusDTO is a catalog entry with the user's unlock state
type AchievementStatusDTO struct {
	Kind        gamification.AchievementKind `json:"kind"`
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	Icon        string                       `json:"icon"`
	Category    string                       `json:"category"`
	Criterion   gamification.Criterion       `json:"criterion"`
	Bonus       RewardDTO                    `json:"bonus"`
	Earned      bool                         `json:"earned"`
	EarnedAt    *time.Time                   `json:"earned_at"`
}

// AchievementListResponse splits the catalog into earned and available entries
type AchievementListResponse struct {
	Earned    []AchievementStatusDTO `json:"earned"`
	Available []AchievementStatusDTO `json:"available"`
	Policy    string                 `json:"threshold_policy"`
}

// RewardEventDTO represents a reward ledger entry
type RewardEventDTO struct {
	ID              string                        `json:"id"`
	Source          models.RewardSource           `json:"source"`
	TaskID          *uint64                       `json:"task_id,omitempty"`
	AchievementKind *gamification.AchievementKind `json:"achievement_kind,omitempty"`
	OnTime          bool                          `json:"on_time"`
	XP              int                           `json:"xp"`
	Coins           int                           `json:"coins"`
	CreatedAt       time.Time                     `json:"created_at"`
}

// ToProfileDTO converts a Profile model to ProfileDTO
func ToProfileDTO(profile models.Profile) ProfileDTO {
	progress := gamification.ProgressForXP(profile.XP)
	return ProfileDTO{
		UserID:           profile.UserID,
		Username:         profile.Username,
		Level:            progress.Level,
		XP:               profile.XP,
		Coins:            profile.Coins,
		StreakCount:      profile.StreakCount,
		LastActivityDate: profile.LastActivityDate,
		XPIntoLevel:      progress.XPIntoLevel,
		XPToNextLevel:    progress.XPToNextLevel,
	}
}

// ToAchievementDTO converts an earned achievement to DTO
func ToAchievementDTO(a models.EarnedAchievement) AchievementDTO {
	return AchievementDTO{
		Kind:      a.Kind,
		Title:     a.Title,
		Icon:      a.Icon,
		XPBonus:   a.XPBonus,
		CoinBonus: a.CoinBonus,
		EarnedAt:  a.EarnedAt,
	}
}

// ToAchievementListResponse groups statuses into earned and available
func ToAchievementListResponse(statuses []services.AchievementStatus, policy gamification.ThresholdPolicy) AchievementListResponse {
	resp := AchievementListResponse{
		Earned:    []AchievementStatusDTO{},
		Available: []AchievementStatusDTO{},
		Policy:    string(policy),
	}

	for _, st := range statuses {
		item := AchievementStatusDTO{
			Kind:        st.Definition.Kind,
			Title:       st.Definition.Title,
			Description: st.Definition.Description,
			Icon:        st.Definition.Icon,
			Category:    st.Definition.Category,
			Criterion:   st.Definition.Criterion,
			Bonus:       ToRewardDTO(st.Definition.Bonus),
			Earned:      st.Earned,
			EarnedAt:    st.EarnedAt,
		}
		if st.Earned {
			resp.Earned = append(resp.Earned, item)
		} else {
			resp.Available = append(resp.Available, item)
		}
	}

	return resp
}

// ToRewardEventDTO converts a ledger entry to DTO
func ToRewardEventDTO(e models.RewardEvent) RewardEventDTO {
	return RewardEventDTO{
		ID:              e.ID.String(),
		Source:          e.Source,
		TaskID:          e.TaskID,
		AchievementKind: e.AchievementKind,
		OnTime:          e.OnTime,
		XP:              e.XP,
		Coins:           e.Coins,
		CreatedAt:       e.CreatedAt,
	}
}
