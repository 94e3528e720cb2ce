package domain

import (
	"context"
	"errors"
	"fmt"
)

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "Not started"
	TaskComplete   TaskStatus = "Complete"
)

// Toggle flips Complete to Not started and anything else to Complete.
func (s TaskStatus) Toggle() TaskStatus {
	if s == TaskComplete {
		return TaskNotStarted
	}
	return TaskComplete
}

var ErrTaskNotFound = errors.New("task not found")

type Task struct {
	ID     int64      `json:"id"`
	Task   string     `json:"task"`
	Status TaskStatus `json:"status"`
	UserID string     `json:"user_id"`
}

// TaskBuckets are the three dashboard views. Today has no date column to
// filter on, so it holds every loaded task.
type TaskBuckets struct {
	Today     []Task `json:"today"`
	Completed []Task `json:"completed"`
	Pending   []Task `json:"pending"`
}

func Partition(tasks []Task) TaskBuckets {
	b := TaskBuckets{
		Today:     make([]Task, 0, len(tasks)),
		Completed: []Task{},
		Pending:   []Task{},
	}
	for _, t := range tasks {
		b.Today = append(b.Today, t)
		if t.Status == TaskComplete {
			b.Completed = append(b.Completed, t)
		} else {
			b.Pending = append(b.Pending, t)
		}
	}
	return b
}

type DashboardUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Dashboard is one full read of the caller's task list.
type Dashboard struct {
	User    DashboardUser `json:"user"`
	IsAdmin bool          `json:"is_admin"`
	Tasks   []Task        `json:"tasks"`
	Buckets TaskBuckets   `json:"buckets"`
}

// TaskMutationPolicy decides which rows toggle and delete may touch.
type TaskMutationPolicy string

const (
	// PolicyAnyAuthenticated matches rows by task id alone, so any signed-in
	// identity can flip or remove any task whose id it knows.
	PolicyAnyAuthenticated TaskMutationPolicy = "any_authenticated"
	// PolicyOwnerOrAdmin scopes mutations to the owner unless the actor is an admin.
	PolicyOwnerOrAdmin TaskMutationPolicy = "owner_or_admin"
)

func ParseTaskMutationPolicy(s string) (TaskMutationPolicy, error) {
	switch TaskMutationPolicy(s) {
	case "", PolicyAnyAuthenticated:
		return PolicyAnyAuthenticated, nil
	case PolicyOwnerOrAdmin:
		return PolicyOwnerOrAdmin, nil
	}
	return "", fmt.Errorf("unknown task mutation policy %q", s)
}

// OwnerFilter returns the owner id a mutation must be scoped to, or "" when
// the task id alone selects the row.
func (p TaskMutationPolicy) OwnerFilter(actorID string, isAdmin bool) string {
	if p == PolicyOwnerOrAdmin && !isAdmin {
		return actorID
	}
	return ""
}

type TaskRepository interface {
	// List returns tasks ordered by id ascending. An empty ownerID lists every row.
	List(ctx context.Context, ownerID string) ([]Task, error)
	GetByID(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, task *Task) error
	// UpdateStatus and Delete return rows affected; an empty ownerID means no owner filter.
	UpdateStatus(ctx context.Context, id int64, ownerID string, status TaskStatus) (int64, error)
	Delete(ctx context.Context, id int64, ownerID string) (int64, error)
}

type TaskUsecase interface {
	Load(ctx context.Context, sess *Session) (*Dashboard, error)
	Add(ctx context.Context, sess *Session, text string) (*Dashboard, bool, error)
	ToggleStatus(ctx context.Context, sess *Session, taskID int64) (*Dashboard, error)
	Delete(ctx context.Context, sess *Session, taskID int64) (*Dashboard, int64, error)
	Export(ctx context.Context, sess *Session) ([]byte, string, error)
}
