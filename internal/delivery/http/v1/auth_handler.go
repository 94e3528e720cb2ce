package v1

import (
	"net/http"
	"time"

	"go-todo-backend/internal/delivery/http/middleware"
	"go-todo-backend/internal/delivery/http/response"
	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/apperror"
	"go-todo-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC       domain.AuthUsecase
	secureCookie bool
}

func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, loginLimiter gin.HandlerFunc, secureCookie bool) {
	handler := &AuthHandler{authUC: authUC, secureCookie: secureCookie}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/login", loginLimiter, handler.Login)
		publicAuth.POST("/signup", handler.Signup)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/session", handler.Session)
		protectedAuth.POST("/logout", handler.Logout)
	}
}

// Credentials are passed through to the identity service, which owns e-mail
// format and password strength rules.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"notblank"`
	Password string `json:"password" binding:"required"`
}

type SessionResponse struct {
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   *domain.Profile `json:"profile"`
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if token == "" || maxAge < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, token, maxAge, "/", "", h.secureCookie, true)
}

// Login godoc
// @Summary      Log in
// @Description  Password sign-in through the identity service. Blocked accounts are signed out again immediately.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      CredentialsRequest  true  "Credentials"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(validation.Message(err)))
		return
	}

	res, err := h.authUC.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	h.setAuthCookie(c, res.Session.AccessToken, res.Session.ExpiresAt)
	response.SuccessRedirect(c, http.StatusOK, res.Message, gin.H{
		"session": res.Session,
		"profile": res.Profile,
	}, res.Redirect)
}

// Signup godoc
// @Summary      Sign up
// @Description  Registers a new identity. No automatic sign-in; the user verifies the e-mail and logs in.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signup  body      CredentialsRequest  true  "Credentials"
// @Success      201     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Router       /v1/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(validation.Message(err)))
		return
	}

	res, err := h.authUC.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	response.SuccessRedirect(c, http.StatusCreated, res.Message, res.User, res.Redirect)
}

// Session godoc
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=SessionResponse}
// @Failure      401  {object}  response.Response
// @Router       /v1/auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	profile, err := h.authUC.GetProfile(c.Request.Context(), sess.UserID)
	if err != nil {
		if appErr, ok := apperror.As(err); !ok || appErr.Code != http.StatusNotFound {
			c.Error(err)
			return
		}
	}

	response.Success(c, http.StatusOK, "Session active", SessionResponse{
		UserID:    sess.UserID,
		Email:     sess.Email,
		ExpiresAt: sess.ExpiresAt,
		Profile:   profile,
	})
}

// Logout godoc
// @Summary      Log out
// @Description  Signs the session out upstream, revokes the token locally and clears the cookie.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUC.Logout(c.Request.Context(), middleware.SessionFrom(c)); err != nil {
		c.Error(err)
		return
	}
	h.setAuthCookie(c, "", time.Time{})
	response.SuccessRedirect(c, http.StatusOK, "Logged out", nil, domain.RouteLogin)
}
