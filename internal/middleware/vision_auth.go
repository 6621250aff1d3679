package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/levelup-todo-api/internal/constants"
	apierrors "github.com/yukikurage/levelup-todo-api/internal/errors"
	"github.com/yukikurage/levelup-todo-api/internal/services"
)

// RequireVisionAccess loads the vision plan named by the :id parameter and
// checks that the current user owns it
func RequireVisionAccess(visionService *services.VisionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		visionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid vision ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		plan, err := visionService.GetVision(c.Request.Context(), visionID, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrVisionNotFound):
				apierrors.NotFound(c, "Vision plan not found")
			case errors.Is(err, services.ErrVisionNotOwned):
				apierrors.Forbidden(c, "You do not have access to this vision plan")
			default:
				apierrors.InternalError(c, "Failed to load vision plan")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyVision, plan)
		c.Next()
	}
}
