package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/levelup-todo-api/internal/constants"
	"github.com/yukikurage/levelup-todo-api/internal/dto"
	apierrors "github.com/yukikurage/levelup-todo-api/internal/errors"
	"github.com/yukikurage/levelup-todo-api/internal/middleware"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/services"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
)

// VisionHandler manages long-term vision plans.
type VisionHandler struct {
	visionService *services.VisionService
}

// NewVisionHandler creates a new VisionHandler.
func NewVisionHandler(visionService *services.VisionService) *VisionHandler {
	return &VisionHandler{
		visionService: visionService,
	}
}

// ListVisions returns the current user's plans, newest first.
func (h *VisionHandler) ListVisions(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	plans, total, err := h.visionService.ListVisions(c.Request.Context(), userID, params)
	if err != nil {
		respondVisionError(c, err)
		return
	}

	items := make([]dto.VisionDTO, len(plans))
	for i, p := range plans {
		items[i] = dto.ToVisionDTO(p)
	}

	c.JSON(http.StatusOK, gin.H{
		"visions": items,
		"pagination": utils.NewPaginationResponse(params, total),
	})
}

// CreateVision creates a new vision plan.
func (h *VisionHandler) CreateVision(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateVisionRequest struct {
		Title         string   `json:"title" binding:"required"`
		Description   string   `json:"description"`
		TimelineYears int      `json:"timeline_years" binding:"required"`
		Category      string   `json:"category"`
		Milestones    []string `json:"milestones"`
	}

	var req CreateVisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	plan, err := h.visionService.CreateVision(c.Request.Context(), services.CreateVisionInput{
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		TimelineYears: req.TimelineYears,
		Category:      req.Category,
		Milestones:    req.Milestones,
	})
	if err != nil {
		respondVisionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToVisionDTO(*plan))
}

// GetVision returns a plan loaded by RequireVisionAccess.
func (h *VisionHandler) GetVision(c *gin.Context) {
	plan, ok := visionFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToVisionDTO(*plan))
}

// UpdateVision applies a partial update.
func (h *VisionHandler) UpdateVision(c *gin.Context) {
	plan, ok := visionFromContext(c)
	if !ok {
		return
	}

	type UpdateVisionRequest struct {
		Title              *string   `json:"title"`
		Description        *string   `json:"description"`
		Category           *string   `json:"category"`
		ProgressPercentage *int      `json:"progress_percentage"`
		Milestones         *[]string `json:"milestones"`
	}

	var req UpdateVisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	updated, err := h.visionService.UpdateVision(c.Request.Context(), plan.ID, userID, services.UpdateVisionInput{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		ProgressPercentage: req.ProgressPercentage,
		Milestones:         req.Milestones,
	})
	if err != nil {
		respondVisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVisionDTO(*updated))
}

// DeleteVision deletes a plan.
func (h *VisionHandler) DeleteVision(c *gin.Context) {
	plan, ok := visionFromContext(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.visionService.DeleteVision(c.Request.Context(), plan.ID, userID); err != nil {
		respondVisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vision plan deleted successfully",
	})
}

func visionFromContext(c *gin.Context) (*models.VisionPlan, bool) {
	value, exists := c.Get(constants.ContextKeyVision)
	if !exists {
		apierrors.InternalError(c, "Vision plan not found in context")
		return nil, false
	}

	plan, ok := value.(*models.VisionPlan)
	if !ok {
		apierrors.InternalError(c, "Invalid vision plan data")
		return nil, false
	}

	return plan, true
}

func respondVisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrVisionNotFound):
		apierrors.NotFound(c, "Vision plan not found")
	case errors.Is(err, services.ErrVisionNotOwned):
		apierrors.Forbidden(c, "You do not have access to this vision plan")
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidTimeline),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrTooManyMilestones):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
