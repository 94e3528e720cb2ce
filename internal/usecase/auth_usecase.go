package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/apperror"
	"go-todo-backend/pkg/logger"
	"go-todo-backend/pkg/security"
)

const (
	MsgLoginSuccess  = "Login successful! Redirecting..."
	MsgBlocked       = "Your account is blocked by Admin."
	MsgSignupSuccess = "Signup successful! Check your email inbox for verification link."
	MsgNoProfile     = "Profile not found for current user."
)

type authUsecase struct {
	identity   domain.IdentityService
	profiles   domain.ProfileRepository
	revoker    domain.SessionRevoker
	secLog     *security.SecurityLogger
	failClosed bool
}

// NewAuthUsecase wires login, signup and logout. With failClosed set, a login
// whose blocked check cannot be completed is denied instead of let through.
func NewAuthUsecase(identity domain.IdentityService, profiles domain.ProfileRepository, revoker domain.SessionRevoker, secLog *security.SecurityLogger, failClosed bool) domain.AuthUsecase {
	if secLog == nil {
		secLog = security.DefaultLogger()
	}
	return &authUsecase{
		identity:   identity,
		profiles:   profiles,
		revoker:    revoker,
		secLog:     secLog,
		failClosed: failClosed,
	}
}

func (u *authUsecase) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	session, err := u.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		u.secLog.LogLoginFailed(ctx, email, err.Error())
		return nil, identityError(err, http.StatusUnauthorized)
	}

	// Re-read the identity behind the new token rather than trusting the sign-in payload.
	user, err := u.identity.GetUser(ctx, session.AccessToken)
	if err != nil {
		u.endSession(ctx, session.AccessToken, session.ExpiresAt)
		return nil, identityError(err, http.StatusUnauthorized)
	}

	profile, err := u.profiles.GetByID(ctx, user.ID)
	if err != nil {
		if u.failClosed {
			u.endSession(ctx, session.AccessToken, session.ExpiresAt)
			return nil, apperror.New(http.StatusForbidden, "Unable to verify account status.", err)
		}
		logger.Log.Warn("blocked check skipped: profile lookup failed", "user_id", user.ID, "error", err)
		profile = nil
	}

	if profile != nil && profile.IsBlocked {
		u.endSession(ctx, session.AccessToken, session.ExpiresAt)
		u.secLog.LogBlockedLogin(ctx, user.ID, user.Email)
		return nil, apperror.Forbidden(MsgBlocked)
	}

	u.secLog.LogLoginSuccess(ctx, user.ID, user.Email)
	session.User = *user
	return &domain.LoginResult{
		Session:  session,
		Profile:  profile,
		Message:  MsgLoginSuccess,
		Redirect: domain.RouteDashboard,
	}, nil
}

func (u *authUsecase) Signup(ctx context.Context, email, password string) (*domain.SignupResult, error) {
	user, err := u.identity.SignUp(ctx, email, password)
	if err != nil {
		return nil, identityError(err, http.StatusBadRequest)
	}
	return &domain.SignupResult{
		User:     user,
		Message:  MsgSignupSuccess,
		Redirect: domain.RouteLogin,
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}
	u.endSession(ctx, sess.AccessToken, sess.ExpiresAt)
	u.secLog.Log(ctx, security.SecurityEvent{Event: security.EventLogout, ActorID: sess.UserID})
	return nil
}

func (u *authUsecase) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, apperror.NotFound(MsgNoProfile)
		}
		return nil, apperror.Internal(err)
	}
	return profile, nil
}

// endSession signs the token out upstream and records it locally so the
// session guard rejects it even if the upstream call failed.
func (u *authUsecase) endSession(ctx context.Context, token string, expiresAt time.Time) {
	if err := u.identity.SignOut(ctx, token); err != nil {
		logger.Log.Warn("identity sign out failed", "error", err)
	}
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}
	if err := u.revoker.Revoke(ctx, token, expiresAt); err != nil {
		logger.Log.Error("token revocation failed", "error", err)
	}
}
