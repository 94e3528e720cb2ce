package v1

import (
	"net/http"
	"strings"

	"go-todo-backend/internal/delivery/http/middleware"
	"go-todo-backend/internal/delivery/http/response"
	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminUC domain.AdminUsecase
}

// NewAdminHandler expects a group already guarded by RequireRole(admin).
func NewAdminHandler(admin *gin.RouterGroup, adminUC domain.AdminUsecase) {
	handler := &AdminHandler{adminUC: adminUC}

	users := admin.Group("/admin/users")
	{
		users.GET("", handler.ListUsers)
		users.PATCH("/:id/block", handler.ToggleBlock)
		users.PATCH("/:id/promote", handler.Promote)
		users.DELETE("/:id", handler.HardDelete)
	}
}

type UserListResponse struct {
	Me    *domain.Profile  `json:"me"`
	Users []domain.Profile `json:"users"`
}

func userID(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", apperror.BadRequest("userId is required")
	}
	return id, nil
}

func (h *AdminHandler) respond(c *gin.Context, msg string, users []domain.Profile) {
	response.Success(c, http.StatusOK, msg, UserListResponse{
		Me:    middleware.ProfileFrom(c),
		Users: users,
	})
}

// ListUsers godoc
// @Summary      List users
// @Description  Every profile ordered by creation time, plus the caller's own profile
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=UserListResponse}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminUC.ListUsers(c.Request.Context(), middleware.ProfileFrom(c))
	if err != nil {
		c.Error(err)
		return
	}
	h.respond(c, "Users loaded", users)
}

// ToggleBlock godoc
// @Summary      Block or unblock a user
// @Description  Flips is_blocked. Blocked users are rejected at their next login.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=UserListResponse}
// @Failure      404  {object}  response.Response
// @Router       /v1/admin/users/{id}/block [patch]
func (h *AdminHandler) ToggleBlock(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		c.Error(err)
		return
	}

	users, err := h.adminUC.ToggleBlock(c.Request.Context(), middleware.ProfileFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	h.respond(c, "User updated", users)
}

// Promote godoc
// @Summary      Promote a user to admin
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=UserListResponse}
// @Router       /v1/admin/users/{id}/promote [patch]
func (h *AdminHandler) Promote(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		c.Error(err)
		return
	}

	users, err := h.adminUC.Promote(c.Request.Context(), middleware.ProfileFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	h.respond(c, "User promoted", users)
}

// HardDelete godoc
// @Summary      Delete a user
// @Description  Removes the identity, the profile and every task the user owns
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=UserListResponse}
// @Failure      409  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /v1/admin/users/{id} [delete]
func (h *AdminHandler) HardDelete(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		c.Error(err)
		return
	}

	users, err := h.adminUC.HardDelete(c.Request.Context(), middleware.ProfileFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	h.respond(c, "User deleted", users)
}
