package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/apperror"
	"go-todo-backend/pkg/logger"
	"go-todo-backend/pkg/security"
)

const (
	deletionLeaseTTL = 2 * time.Minute
	deletionDoneTTL  = 24 * time.Hour
)

// DeletionConfig bounds the retries around each remote step.
type DeletionConfig struct {
	Attempts int
	Backoff  time.Duration
}

type userDeletionUsecase struct {
	identity domain.IdentityAdmin
	rows     domain.DeletionRepository
	lease    domain.DeletionLease
	cfg      DeletionConfig
	secLog   *security.SecurityLogger
	sleep    func(context.Context, time.Duration) error
}

func NewUserDeletionUsecase(identity domain.IdentityAdmin, rows domain.DeletionRepository, lease domain.DeletionLease, cfg DeletionConfig, secLog *security.SecurityLogger) domain.UserDeletionUsecase {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if secLog == nil {
		secLog = security.DefaultLogger()
	}
	return &userDeletionUsecase{
		identity: identity,
		rows:     rows,
		lease:    lease,
		cfg:      cfg,
		secLog:   secLog,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// DeleteUser removes the identity first and then the user's rows in one
// transaction. A run that loses the row step leaves the lease pending; the
// next call for the same id finishes it.
func (u *userDeletionUsecase) DeleteUser(ctx context.Context, userID string) (*domain.DeletedRows, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.BadRequest("userId is required")
	}

	state, err := u.lease.Acquire(ctx, userID, deletionLeaseTTL)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	switch state {
	case domain.LeaseBusy:
		return nil, apperror.Conflict("deletion already in progress")
	case domain.LeaseDone:
		return &domain.DeletedRows{}, nil
	case domain.LeasePending:
		logger.Log.Info("resuming pending user deletion", "user_id", userID)
	}

	actorID := ""
	if sess, ok := domain.SessionFromContext(ctx); ok {
		actorID = sess.UserID
	}

	existed, err := u.deleteIdentity(ctx, userID)
	if err != nil {
		if relErr := u.lease.Release(ctx, userID); relErr != nil {
			logger.Log.Error("release deletion lease", "user_id", userID, "error", relErr)
		}
		u.secLog.LogAdminAction(ctx, security.EventUserDeleteFailed, actorID, userID, map[string]interface{}{
			"step":  "identity",
			"error": err.Error(),
		})
		return nil, apperror.InternalMessage(identityFailureMessage(err), err)
	}

	deleted, err := u.deleteRows(ctx, userID)
	if err != nil {
		u.secLog.LogAdminAction(ctx, security.EventUserDeleteFailed, actorID, userID, map[string]interface{}{
			"step":  "rows",
			"error": err.Error(),
		})
		// Nothing upstream was removed by this run and no earlier run left
		// work behind, so there is nothing to resume.
		if !existed && state != domain.LeasePending {
			if relErr := u.lease.Release(ctx, userID); relErr != nil {
				logger.Log.Error("release deletion lease", "user_id", userID, "error", relErr)
			}
			return nil, apperror.InternalMessage("user data cleanup failed", err)
		}
		if markErr := u.lease.MarkPending(ctx, userID); markErr != nil {
			logger.Log.Error("mark deletion pending", "user_id", userID, "error", markErr)
		}
		logger.Log.Error("identity deleted but rows remain", "user_id", userID, "error", err)
		return nil, apperror.InternalMessage("identity deleted; profile cleanup pending: "+err.Error(), err)
	}

	if err := u.lease.Complete(ctx, userID, deletionDoneTTL); err != nil {
		logger.Log.Warn("record deletion completion", "user_id", userID, "error", err)
	}
	u.secLog.LogAdminAction(ctx, security.EventUserDeleted, actorID, userID, map[string]interface{}{
		"profiles": deleted.Profiles,
		"tasks":    deleted.Tasks,
	})
	return &deleted, nil
}

// identityFailureMessage shows the identity service's own text but never
// transport details.
func identityFailureMessage(err error) string {
	var idErr *domain.IdentityError
	switch {
	case errors.As(err, &idErr):
		return idErr.Message
	case errors.Is(err, domain.ErrIdentityUnavailable):
		return domain.ErrIdentityUnavailable.Error()
	}
	return "Internal server error"
}

// deleteIdentity reports whether the identity existed. A 404 counts as done.
func (u *userDeletionUsecase) deleteIdentity(ctx context.Context, userID string) (bool, error) {
	var err error
	for attempt := 1; attempt <= u.cfg.Attempts; attempt++ {
		err = u.identity.DeleteUser(ctx, userID)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return false, nil
		}
		if !domain.IsRetryableIdentityError(err) || attempt == u.cfg.Attempts {
			break
		}
		logger.Log.Warn("identity delete failed, retrying", "user_id", userID, "attempt", attempt, "error", err)
		if sleepErr := u.sleep(ctx, time.Duration(attempt)*u.cfg.Backoff); sleepErr != nil {
			return false, sleepErr
		}
	}
	return false, err
}

func (u *userDeletionUsecase) deleteRows(ctx context.Context, userID string) (domain.DeletedRows, error) {
	var lastErr error
	for attempt := 1; attempt <= u.cfg.Attempts; attempt++ {
		deleted, err := u.rows.DeleteUserData(ctx, userID)
		if err == nil {
			return deleted, nil
		}
		lastErr = err
		if attempt == u.cfg.Attempts {
			break
		}
		if sleepErr := u.sleep(ctx, time.Duration(attempt)*u.cfg.Backoff); sleepErr != nil {
			return domain.DeletedRows{}, sleepErr
		}
	}
	return domain.DeletedRows{}, fmt.Errorf("after %d attempts: %w", u.cfg.Attempts, lastErr)
}
