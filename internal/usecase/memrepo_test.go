package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go-todo-backend/internal/domain"
)

var errFlakyDB = errors.New("conn reset by peer")

// memTaskRepo is an in-memory todos table that honours the owner filter the
// same way the SQL does.
type memTaskRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Task
}

func newMemTaskRepo(seed ...domain.Task) *memTaskRepo {
	r := &memTaskRepo{rows: map[int64]domain.Task{}}
	for _, t := range seed {
		if t.ID > r.nextID {
			r.nextID = t.ID
		}
		r.rows[t.ID] = t
	}
	return r
}

func (r *memTaskRepo) List(_ context.Context, ownerID string) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Task{}
	for _, t := range r.rows {
		if ownerID == "" || t.UserID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *memTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	r.rows[task.ID] = *task
	return nil
}

func (r *memTaskRepo) UpdateStatus(_ context.Context, id int64, ownerID string, status domain.TaskStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok || (ownerID != "" && t.UserID != ownerID) {
		return 0, nil
	}
	t.Status = status
	r.rows[id] = t
	return 1, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id int64, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok || (ownerID != "" && t.UserID != ownerID) {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

func (r *memTaskRepo) deleteOwner(userID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.rows {
		if t.UserID == userID {
			delete(r.rows, id)
			n++
		}
	}
	return n
}

type memProfileRepo struct {
	mu   sync.Mutex
	rows []domain.Profile
}

func (r *memProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (r *memProfileRepo) List(_ context.Context) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.Profile{}, r.rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memProfileRepo) update(id string, fn func(*domain.Profile)) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			fn(&r.rows[i])
			return 1
		}
	}
	return 0
}

func (r *memProfileRepo) SetBlocked(_ context.Context, id string, blocked bool) (int64, error) {
	return r.update(id, func(p *domain.Profile) { p.IsBlocked = blocked }), nil
}

func (r *memProfileRepo) SetRole(_ context.Context, id string, role domain.Role) (int64, error) {
	return r.update(id, func(p *domain.Profile) { p.Role = role }), nil
}

func (r *memProfileRepo) remove(id string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.rows {
		if p.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return 1
		}
	}
	return 0
}

// memDeletionRepo deletes from both in-memory tables, optionally failing first.
type memDeletionRepo struct {
	profiles *memProfileRepo
	tasks    *memTaskRepo
	failures int
	calls    int
}

func (r *memDeletionRepo) DeleteUserData(_ context.Context, userID string) (domain.DeletedRows, error) {
	r.calls++
	if r.failures > 0 {
		r.failures--
		return domain.DeletedRows{}, errFlakyDB
	}
	return domain.DeletedRows{
		Tasks:    r.tasks.deleteOwner(userID),
		Profiles: r.profiles.remove(userID),
	}, nil
}
