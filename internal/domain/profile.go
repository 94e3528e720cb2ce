package domain

import (
	"context"
	"errors"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is the per-identity row holding role and block status. Rows are
// provisioned by the database when an identity signs up.
type Profile struct {
	ID        string    `json:"id"` // Supabase auth user id
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsBlocked bool      `json:"is_blocked"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	// List returns every profile ordered by creation time, oldest first.
	List(ctx context.Context) ([]Profile, error)
	SetBlocked(ctx context.Context, id string, blocked bool) (int64, error)
	SetRole(ctx context.Context, id string, role Role) (int64, error)
}

type AdminUsecase interface {
	ListUsers(ctx context.Context, actor *Profile) ([]Profile, error)
	ToggleBlock(ctx context.Context, actor *Profile, userID string) ([]Profile, error)
	Promote(ctx context.Context, actor *Profile, userID string) ([]Profile, error)
	HardDelete(ctx context.Context, actor *Profile, userID string) ([]Profile, error)
}
