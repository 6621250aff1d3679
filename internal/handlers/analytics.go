package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/levelup-todo-api/internal/errors"
	"github.com/yukikurage/levelup-todo-api/internal/middleware"
	"github.com/yukikurage/levelup-todo-api/internal/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetStreak returns the current and longest completion streaks
func (h *AnalyticsHandler) GetStreak(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	stats, err := h.analyticsService.Streak(c.Request.Context(), userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to compute streak")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetSummary returns productivity statistics for ?range=7d|30d|90d|1y
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), userID, c.DefaultQuery("range", services.DefaultAnalyticsRange))
	if err != nil {
		if errors.Is(err, services.ErrInvalidRange) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to compute summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}
