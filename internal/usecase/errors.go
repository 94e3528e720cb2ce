package usecase

import (
	"errors"
	"net/http"

	"go-todo-backend/internal/domain"
	"go-todo-backend/pkg/apperror"
)

// identityError maps an identity service failure onto the response the caller sees.
// Service errors keep their own text; transport errors get the fixed network message.
func identityError(err error, status int) *apperror.AppError {
	if errors.Is(err, domain.ErrIdentityUnavailable) {
		return apperror.New(http.StatusBadGateway, domain.ErrIdentityUnavailable.Error(), err)
	}
	var idErr *domain.IdentityError
	if errors.As(err, &idErr) {
		return apperror.New(status, idErr.Message, err)
	}
	return apperror.Internal(err)
}
