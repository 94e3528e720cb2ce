package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-todo-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `id, COALESCE(email, ''), role, is_blocked, created_at`

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.Email, &p.Role, &p.IsBlocked, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *profileRepo) List(ctx context.Context) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) SetBlocked(ctx context.Context, id string, blocked bool) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET is_blocked = $1 WHERE id = $2`, blocked, id)
	if err != nil {
		return 0, fmt.Errorf("set blocked: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *profileRepo) SetRole(ctx context.Context, id string, role domain.Role) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET role = $1 WHERE id = $2`, string(role), id)
	if err != nil {
		return 0, fmt.Errorf("set role: %w", err)
	}
	return tag.RowsAffected(), nil
}
