package usecase

import (
	"context"
	"errors"

	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/apperror"
	"go-todo-backend/pkg/security"
)

type adminUsecase struct {
	profiles domain.ProfileRepository
	deletion domain.UserDeletionUsecase
	secLog   *security.SecurityLogger
}

func NewAdminUsecase(profiles domain.ProfileRepository, deletion domain.UserDeletionUsecase, secLog *security.SecurityLogger) domain.AdminUsecase {
	if secLog == nil {
		secLog = security.DefaultLogger()
	}
	return &adminUsecase{profiles: profiles, deletion: deletion, secLog: secLog}
}

func (u *adminUsecase) requireAdmin(actor *domain.Profile) error {
	if !actor.IsAdmin() {
		return apperror.Forbidden("Admin access required").WithRedirect(domain.RouteDashboard)
	}
	return nil
}

func (u *adminUsecase) list(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := u.profiles.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return profiles, nil
}

func (u *adminUsecase) ListUsers(ctx context.Context, actor *domain.Profile) ([]domain.Profile, error) {
	if err := u.requireAdmin(actor); err != nil {
		return nil, err
	}
	return u.list(ctx)
}

func (u *adminUsecase) ToggleBlock(ctx context.Context, actor *domain.Profile, userID string) ([]domain.Profile, error) {
	if err := u.requireAdmin(actor); err != nil {
		return nil, err
	}

	target, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}

	blocked := !target.IsBlocked
	if _, err := u.profiles.SetBlocked(ctx, userID, blocked); err != nil {
		return nil, apperror.Internal(err)
	}

	event := security.EventUserUnblocked
	if blocked {
		event = security.EventUserBlocked
	}
	u.secLog.LogAdminAction(ctx, event, actor.ID, userID, nil)

	return u.list(ctx)
}

// Promote sets the admin role unconditionally. There is no demotion.
func (u *adminUsecase) Promote(ctx context.Context, actor *domain.Profile, userID string) ([]domain.Profile, error) {
	if err := u.requireAdmin(actor); err != nil {
		return nil, err
	}

	if _, err := u.profiles.SetRole(ctx, userID, domain.RoleAdmin); err != nil {
		return nil, apperror.Internal(err)
	}
	u.secLog.LogAdminAction(ctx, security.EventUserPromoted, actor.ID, userID, nil)

	return u.list(ctx)
}

func (u *adminUsecase) HardDelete(ctx context.Context, actor *domain.Profile, userID string) ([]domain.Profile, error) {
	if err := u.requireAdmin(actor); err != nil {
		return nil, err
	}

	if _, err := u.deletion.DeleteUser(ctx, userID); err != nil {
		return nil, err
	}
	return u.list(ctx)
}
