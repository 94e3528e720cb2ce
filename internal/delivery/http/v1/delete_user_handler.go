package v1

import (
	"errors"
	"net/http"

	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/apperror"
	"go-todo-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// DeleteUserHandler serves the server-side deletion endpoint. Its body shape
// is fixed by existing clients, so it writes {success} or {error} directly
// instead of the response envelope.
type DeleteUserHandler struct {
	deletionUC domain.UserDeletionUsecase
}

func NewDeleteUserHandler(admin *gin.RouterGroup, deletionUC domain.UserDeletionUsecase) {
	handler := &DeleteUserHandler{deletionUC: deletionUC}
	admin.POST("/delete-user", handler.DeleteUser)
}

type DeleteUserRequest struct {
	UserID string `json:"userId"`
}

// DeleteUser godoc
// @Summary      Delete a user by id
// @Description  Deletes the identity, then the user's tasks and profile. Repeating a completed deletion succeeds.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      DeleteUserRequest  true  "Target user"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/admin/delete-user [post]
func (h *DeleteUserHandler) DeleteUser(c *gin.Context) {
	var req DeleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	if _, err := h.deletionUC.DeleteUser(c.Request.Context(), req.UserID); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case http.StatusBadRequest, http.StatusConflict:
				c.JSON(appErr.Code, gin.H{"error": appErr.Message})
				return
			}
			logger.Log.Error("User deletion failed", "user_id", req.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": appErr.Message})
			return
		}
		logger.Log.Error("User deletion failed", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
