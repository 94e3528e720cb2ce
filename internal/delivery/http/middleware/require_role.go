package middleware

import (
	"net/http"

	"go-todo-backend/internal/delivery/http/response"
	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/apperror"
	"go-todo-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// RequireRole loads the caller's profile and applies domain.RequireRole.
// Must run after SessionGuard.
func RequireRole(authUC domain.AuthUsecase, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)

		var profile *domain.Profile
		if sess != nil {
			p, err := authUC.GetProfile(c.Request.Context(), sess.UserID)
			if err != nil {
				if appErr, ok := apperror.As(err); !ok || appErr.Code != http.StatusNotFound {
					c.Error(err)
					c.Abort()
					return
				}
			}
			profile = p
		}

		access := domain.RequireRole(sess, profile, role)
		switch access {
		case domain.AccessGranted:
			c.Set(string(domain.KeyProfile), profile)
			c.Next()
			return
		case domain.AccessNoSession:
			response.Redirect(c, http.StatusUnauthorized, msgNoSession, access.Redirect())
		case domain.AccessProfileMissing:
			response.Error(c, http.StatusForbidden, "Profile not found for current user.", nil)
		case domain.AccessWrongRole:
			security.DefaultLogger().LogUnauthorizedAccess(c.Request.Context(), sess.UserID, c.FullPath(), "role "+string(profile.Role))
			response.Redirect(c, http.StatusForbidden, "Admin access required.", access.Redirect())
		}
		c.Abort()
	}
}
