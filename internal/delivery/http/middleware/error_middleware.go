package middleware

import (
	"errors"
	"net/http"

	"go-todo-backend/internal/delivery/http/response"
	"go-todo-backend/pkg/apperror"
	"go-todo-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
				logger.Log.Error("request failed", "path", c.FullPath(), "error", appErr.Err)
			}
			if appErr.Redirect != "" {
				response.Redirect(c, appErr.Code, appErr.Message, appErr.Redirect)
				return
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// Never expose internal error details to clients.
		logger.Log.Error("internal server error", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
