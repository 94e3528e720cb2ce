package domain

import (
	"context"
	"time"
)

// DeletedRows counts what a user data cleanup removed.
type DeletedRows struct {
	Profiles int64 `json:"profiles"`
	Tasks    int64 `json:"tasks"`
}

type DeletionRepository interface {
	// DeleteUserData removes the user's task rows and profile row in one
	// transaction: either both go or neither does.
	DeleteUserData(ctx context.Context, userID string) (DeletedRows, error)
}

// LeaseState is the idempotency record for one target user id.
type LeaseState string

const (
	LeaseAcquired LeaseState = "acquired"
	LeaseBusy     LeaseState = "running"
	LeasePending  LeaseState = "pending"
	LeaseDone     LeaseState = "done"
)

type DeletionLease interface {
	// Acquire takes the lease unless another run holds it or a previous run
	// finished. A pending lease is taken over so the cleanup can resume.
	Acquire(ctx context.Context, userID string, ttl time.Duration) (LeaseState, error)
	MarkPending(ctx context.Context, userID string) error
	Complete(ctx context.Context, userID string, ttl time.Duration) error
	Release(ctx context.Context, userID string) error
}

type UserDeletionUsecase interface {
	DeleteUser(ctx context.Context, userID string) (*DeletedRows, error)
}

type HealthUsecase interface {
	Check(ctx context.Context) HealthReport
}

type HealthReport struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
