package usecase

import (
	"context"
	"time"

	"go-todo-backend/internal/domain"
)

// Pinger is satisfied by *pgxpool.Pool and by a function adapter for Redis.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type healthUsecase struct {
	db    Pinger
	redis Pinger
}

// NewHealthUsecase takes a nil redis pinger when Redis is not configured.
func NewHealthUsecase(db Pinger, redis Pinger) domain.HealthUsecase {
	return &healthUsecase{db: db, redis: redis}
}

func (u *healthUsecase) Check(ctx context.Context) domain.HealthReport {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	report := domain.HealthReport{Status: "operational", Components: map[string]string{}}

	switch {
	case u.db == nil:
		report.Components["database"] = "not configured"
		report.Status = "degraded"
	case u.db.Ping(ctx) != nil:
		report.Components["database"] = "down"
		report.Status = "degraded"
	default:
		report.Components["database"] = "up"
	}

	switch {
	case u.redis == nil:
		report.Components["redis"] = "not configured"
	case u.redis.Ping(ctx) != nil:
		// In-process fallbacks keep the service usable without Redis.
		report.Components["redis"] = "down"
	default:
		report.Components["redis"] = "up"
	}
	return report
}
