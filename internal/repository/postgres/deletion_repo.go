package postgres

import (
	"context"
	"fmt"

	"go-todo-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type deletionRepo struct {
	db *pgxpool.Pool
}

func NewDeletionRepository(db *pgxpool.Pool) domain.DeletionRepository {
	return &deletionRepo{db: db}
}

func (r *deletionRepo) DeleteUserData(ctx context.Context, userID string) (domain.DeletedRows, error) {
	var out domain.DeletedRows

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM todos WHERE user_id = $1`, userID)
		if err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		out.Tasks = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		out.Profiles = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return domain.DeletedRows{}, err
	}
	return out, nil
}
