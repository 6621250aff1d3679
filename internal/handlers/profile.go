package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/levelup-todo-api/internal/dto"
	apierrors "github.com/yukikurage/levelup-todo-api/internal/errors"
	"github.com/yukikurage/levelup-todo-api/internal/middleware"
	"github.com/yukikurage/levelup-todo-api/internal/services"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
)

// ProfileHandler serves the gamification profile of the current user.
type ProfileHandler struct {
	profileService     *services.ProfileService
	achievementService *services.AchievementService
}

func NewProfileHandler(profileService *services.ProfileService, achievementService *services.AchievementService) *ProfileHandler {
	return &ProfileHandler{
		profileService:     profileService,
		achievementService: achievementService,
	}
}

// GetProfile returns the profile, creating it on first access.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	view, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*view.Profile))
}

// UpdateProfile changes the username shown on the profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProfileRequest struct {
		Username *string `json:"username"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.profileService.UpdateProfile(c.Request.Context(), userID, services.UpdateProfileInput{
		Username: req.Username,
	})
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*view.Profile))
}

// ListAchievements returns the achievement catalog with the user's unlocks.
func (h *ProfileHandler) ListAchievements(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	statuses, err := h.achievementService.List(c.Request.Context(), userID)
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAchievementListResponse(statuses, h.achievementService.Policy()))
}

// ListRewards returns the reward ledger, newest first.
func (h *ProfileHandler) ListRewards(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	events, total, err := h.profileService.ListRewards(c.Request.Context(), userID, params)
	if err != nil {
		respondProfileError(c, err)
		return
	}

	items := make([]dto.RewardEventDTO, len(events))
	for i, e := range events {
		items[i] = dto.ToRewardEventDTO(e)
	}

	c.JSON(http.StatusOK, gin.H{
		"rewards": items,
		"pagination": utils.NewPaginationResponse(params, total),
	})
}

func respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrUsernameTooLong):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
